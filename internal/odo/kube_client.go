package odo

import (
	"context"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/discovery"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"odosync/pkg/logging"
)

// InstanceLabel is the label odo puts on the resources of a component.
const InstanceLabel = "app.kubernetes.io/instance"

// DefaultTimeout bounds each request made to the cluster.
const DefaultTimeout = 15 * time.Second

// NewControllerClient creates the controller-runtime client used for
// component lookups. Overridable in tests.
var NewControllerClient = func(config *rest.Config, options client.Options) (client.Client, error) {
	return client.New(config, options)
}

// ProbeServer checks that the API server answers. Overridable in tests.
var ProbeServer = func(ctx context.Context, config *rest.Config) error {
	dc, err := discovery.NewDiscoveryClientForConfig(config)
	if err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		_, err := dc.ServerVersion()
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Options configures the kubeconfig-backed client.
type Options struct {
	// KubeconfigPath is the kubeconfig file to read and edit.
	KubeconfigPath string

	// DiscoveryDepth limits how deep Discover scans below a root.
	DiscoveryDepth int

	// Timeout bounds each request made to the cluster.
	Timeout time.Duration
}

// kubeClient implements Client on top of a kubeconfig, the local filesystem
// and the Kubernetes API.
type kubeClient struct {
	client.Client

	kubeconfigPath string
	namespace      string
	depth          int
}

// NewKubeClient builds a client for the current context of the configured
// kubeconfig and verifies that the cluster is reachable.
func NewKubeClient(ctx context.Context, opts Options) (Client, error) {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: opts.KubeconfigPath}
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{})

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get REST config from %s: %w", opts.KubeconfigPath, err)
	}
	restConfig.Timeout = opts.Timeout

	namespace, _, err := clientConfig.Namespace()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve namespace: %w", err)
	}

	if err := ProbeServer(ctx, restConfig); err != nil {
		return nil, fmt.Errorf("cluster %s is not reachable: %w", restConfig.Host, err)
	}

	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))

	k8sClient, err := NewControllerClient(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	logging.Info("OdoClient", "Connected to %s (namespace %s)", restConfig.Host, namespace)
	return &kubeClient{
		Client:         k8sClient,
		kubeconfigPath: opts.KubeconfigPath,
		namespace:      namespace,
		depth:          opts.DiscoveryDepth,
	}, nil
}

// NewFactory returns a Factory producing kubeconfig-backed clients.
func NewFactory(opts Options) Factory {
	return func(ctx context.Context) (Client, error) {
		return NewKubeClient(ctx, opts)
	}
}

// Discover scans root for components and marks those deployed in the current namespace.
func (k *kubeClient) Discover(ctx context.Context, root string) ([]ComponentDescriptor, error) {
	descriptors, err := scanComponents(root, k.depth)
	if err != nil {
		return nil, err
	}
	if len(descriptors) == 0 {
		return nil, nil
	}

	deployed, err := k.deployedInstances(ctx)
	if err != nil {
		return nil, err
	}
	for i := range descriptors {
		descriptors[i].Deployed = deployed[descriptors[i].Name]
	}
	return descriptors, nil
}

// deployedInstances returns the instance label values of odo deployments in the namespace.
func (k *kubeClient) deployedInstances(ctx context.Context) (map[string]bool, error) {
	list := &appsv1.DeploymentList{}
	if err := k.List(ctx, list, client.InNamespace(k.namespace), client.HasLabels{InstanceLabel}); err != nil {
		return nil, fmt.Errorf("failed to list deployments in %s: %w", k.namespace, err)
	}
	instances := make(map[string]bool, len(list.Items))
	for _, d := range list.Items {
		instances[d.Labels[InstanceLabel]] = true
	}
	return instances, nil
}

// CurrentNamespace implements Client.
func (k *kubeClient) CurrentNamespace() string {
	return k.namespace
}
