package odo

import (
	"context"
	"fmt"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// KubeconfigSession logs in and out by editing the kubeconfig at Path.
type KubeconfigSession struct {
	Path string
}

// NewKubeconfigSession returns a session for the kubeconfig at path.
func NewKubeconfigSession(path string) *KubeconfigSession {
	return &KubeconfigSession{Path: path}
}

// Login implements Session.
func (s *KubeconfigSession) Login(ctx context.Context, server, token string) error {
	return Login(ctx, s.Path, server, token)
}

// Logout implements Session.
func (s *KubeconfigSession) Logout(ctx context.Context) error {
	return Logout(ctx, s.Path)
}

// Login implements Client.
func (k *kubeClient) Login(ctx context.Context, server, token string) error {
	return Login(ctx, k.kubeconfigPath, server, token)
}

// Logout implements Client.
func (k *kubeClient) Logout(ctx context.Context) error {
	return Logout(ctx, k.kubeconfigPath)
}

// Login stores token for the user of the current context in the kubeconfig at
// path, and points the current cluster at server when server is not empty.
func Login(ctx context.Context, path, server, token string) error {
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}
	return editCurrentContext(ctx, path, func(config *clientcmdapi.Config, kubeCtx *clientcmdapi.Context) error {
		user := config.AuthInfos[kubeCtx.AuthInfo]
		if user == nil {
			user = clientcmdapi.NewAuthInfo()
			config.AuthInfos[kubeCtx.AuthInfo] = user
		}
		user.Token = token

		if server != "" {
			cluster := config.Clusters[kubeCtx.Cluster]
			if cluster == nil {
				cluster = clientcmdapi.NewCluster()
				config.Clusters[kubeCtx.Cluster] = cluster
			}
			cluster.Server = server
		}
		return nil
	})
}

// Logout clears the token of the current context user in the kubeconfig at path.
func Logout(ctx context.Context, path string) error {
	return editCurrentContext(ctx, path, func(config *clientcmdapi.Config, kubeCtx *clientcmdapi.Context) error {
		user := config.AuthInfos[kubeCtx.AuthInfo]
		if user == nil || user.Token == "" {
			return fmt.Errorf("user %s is not logged in", kubeCtx.AuthInfo)
		}
		user.Token = ""
		return nil
	})
}

func editCurrentContext(ctx context.Context, path string, edit func(*clientcmdapi.Config, *clientcmdapi.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	config, err := clientcmd.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("failed to load kubeconfig %s: %w", path, err)
	}
	kubeCtx := config.Contexts[config.CurrentContext]
	if config.CurrentContext == "" || kubeCtx == nil {
		return fmt.Errorf("kubeconfig %s has no current context", path)
	}
	if err := edit(config, kubeCtx); err != nil {
		return err
	}
	if err := clientcmd.WriteToFile(*config, path); err != nil {
		return fmt.Errorf("failed to write kubeconfig %s: %w", path, err)
	}
	return nil
}
