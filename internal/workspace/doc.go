// Package workspace tracks the module roots that component discovery runs
// against and notifies listeners when roots appear or disappear.
//
// Modules is the in-memory set. DirWatcher keeps a Modules set in sync with
// the immediate sub-directories of a workspace directory.
package workspace
