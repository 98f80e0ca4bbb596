// Package kubeconfigs provides kubeconfig fixtures for tests.
package kubeconfigs

import (
	_ "embed"
	"testing"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// MultiContext is a kubeconfig with two contexts: "dev" (current, c1/u1/default,
// token t1) and "prod" (c2/u2/apps, no token).
//
//go:embed multi_context.yaml
var MultiContext []byte

// Context describes one context entry written by Write.
type Context struct {
	Name      string
	Cluster   string
	Server    string
	User      string
	Namespace string
	Token     string
}

// Build assembles a kubeconfig from contexts. current may be empty.
func Build(current string, contexts ...Context) *clientcmdapi.Config {
	config := clientcmdapi.NewConfig()
	config.CurrentContext = current
	for _, c := range contexts {
		server := c.Server
		if server == "" {
			server = "https://" + c.Cluster + ".example.com:6443"
		}
		config.Clusters[c.Cluster] = &clientcmdapi.Cluster{Server: server}
		config.AuthInfos[c.User] = &clientcmdapi.AuthInfo{Token: c.Token}
		config.Contexts[c.Name] = &clientcmdapi.Context{
			Cluster:   c.Cluster,
			AuthInfo:  c.User,
			Namespace: c.Namespace,
		}
	}
	return config
}

// Write writes a kubeconfig to path, failing the test on error.
func Write(t testing.TB, path string, current string, contexts ...Context) {
	t.Helper()
	if err := clientcmd.WriteToFile(*Build(current, contexts...), path); err != nil {
		t.Fatalf("failed to write kubeconfig %s: %v", path, err)
	}
}
