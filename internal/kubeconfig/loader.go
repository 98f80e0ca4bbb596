package kubeconfig

import (
	"fmt"
	"os"
	"strings"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// DefaultPath returns the kubeconfig path honoring $KUBECONFIG. When
// $KUBECONFIG lists several files the first one is used, since that is the
// file clientcmd writes current-context changes to.
func DefaultPath() string {
	if env := os.Getenv(clientcmd.RecommendedConfigPathEnvVar); env != "" {
		for _, p := range strings.Split(env, string(os.PathListSeparator)) {
			if p != "" {
				return p
			}
		}
	}
	return clientcmd.RecommendedHomeFile
}

// LoadFile reads the kubeconfig at path and captures its current context.
// It returns nil, nil when the file has no usable current context.
func LoadFile(path string) (*Snapshot, error) {
	config, err := clientcmd.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig %s: %w", path, err)
	}
	return FromConfig(config), nil
}

// FromConfig captures the current context of an already parsed kubeconfig.
func FromConfig(config *clientcmdapi.Config) *Snapshot {
	if config == nil || config.CurrentContext == "" {
		return nil
	}
	kubeCtx, ok := config.Contexts[config.CurrentContext]
	if !ok || kubeCtx == nil {
		return nil
	}

	snapshot := &Snapshot{
		ContextName: config.CurrentContext,
		Cluster:     kubeCtx.Cluster,
		User:        kubeCtx.AuthInfo,
		Namespace:   kubeCtx.Namespace,
	}
	if cluster, ok := config.Clusters[kubeCtx.Cluster]; ok && cluster != nil {
		snapshot.Server = cluster.Server
	}
	if user, ok := config.AuthInfos[kubeCtx.AuthInfo]; ok && user != nil {
		snapshot.Token = user.Token
	}
	return snapshot
}
