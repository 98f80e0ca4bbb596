package registry

import (
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// expectedMessages are fragments of errors that occur routinely while the
// user is logged out or the cluster is unreachable. Anything else, including
// RBAC denials, is worth logging.
var expectedMessages = []string{
	"Unauthorized",
	"unable to access the cluster: servicebindings.binding.operators.coreos.com",
	"the server has asked for the client to provide credentials",
	"connect: no route to host",
}

// IsExpectedError reports whether a discovery error is an expected
// authorization or connectivity failure that should not be logged.
func IsExpectedError(err error) bool {
	if err == nil {
		return false
	}
	// typed 401s may carry a message without the reason text
	if apierrors.IsUnauthorized(err) {
		return true
	}
	msg := err.Error()
	for _, fragment := range expectedMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
