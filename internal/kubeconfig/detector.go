package kubeconfig

// HasContextChanged reports whether moving from current to next requires the
// cluster client to be recreated.
//
// Losing or gaining a current context is a change. Going from no context to
// no context is not: there is no client to rebuild. The watcher never
// delivers that transition since it only reports differing snapshots.
func HasContextChanged(current, next *Snapshot) bool {
	return hasServerChanged(current, next) || hasNewToken(current, next)
}

func hasServerChanged(current, next *Snapshot) bool {
	if current == nil && next == nil {
		return false
	}
	if current == nil || next == nil {
		return true
	}
	return current.Cluster != next.Cluster ||
		current.User != next.User ||
		current.Namespace != next.Namespace
}

func hasNewToken(current, next *Snapshot) bool {
	if next == nil {
		return false
	}
	if current == nil {
		return true
	}
	if next.Token == "" {
		// logout; the logout path refreshes on its own
		return false
	}
	return next.Token != current.Token
}
