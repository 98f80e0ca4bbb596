// Package registry holds the components discovered below the workspace
// module roots, keyed by component path.
//
// A path is either absent or maps to exactly one descriptor; the first
// discovery of a path wins and later discoveries of the same path are
// ignored. Legacy (odo 2.x) components are registered immediately and
// migrated in the background.
//
// Discovery errors are classified by IsExpectedError. Authorization and
// connectivity failures are expected whenever the user is logged out and are
// dropped without logging; everything else is logged as an error.
package registry
