package odo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"odosync/internal/testing/fixtures/kubeconfigs"
)

func deployment(name, namespace, instance string) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    map[string]string{InstanceLabel: instance},
		},
	}
}

func TestKubeClient_Discover(t *testing.T) {
	root := t.TempDir()
	writeDevfile(t, filepath.Join(root, "web"), "web")
	writeDevfile(t, filepath.Join(root, "api"), "api")

	fakeClient := fake.NewClientBuilder().
		WithScheme(clientgoscheme.Scheme).
		WithObjects(
			deployment("web-app", "dev", "web"),
			deployment("api-app", "other", "api"),
		).
		Build()
	k := &kubeClient{Client: fakeClient, namespace: "dev"}

	found, err := k.Discover(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, found, 2)

	byName := map[string]ComponentDescriptor{}
	for _, d := range found {
		byName[d.Name] = d
	}
	assert.True(t, byName["web"].Deployed)
	assert.False(t, byName["api"].Deployed, "deployment lives in another namespace")
	assert.Equal(t, "dev", k.CurrentNamespace())
}

func TestKubeClient_DiscoverPropagatesClusterErrors(t *testing.T) {
	root := t.TempDir()
	writeDevfile(t, filepath.Join(root, "web"), "web")

	fakeClient := fake.NewClientBuilder().
		WithScheme(clientgoscheme.Scheme).
		WithInterceptorFuncs(interceptor.Funcs{
			List: func(ctx context.Context, c client.WithWatch, list client.ObjectList, opts ...client.ListOption) error {
				return apierrors.NewUnauthorized("Unauthorized")
			},
		}).
		Build()
	k := &kubeClient{Client: fakeClient, namespace: "dev"}

	_, err := k.Discover(context.Background(), root)
	require.Error(t, err)
	assert.True(t, apierrors.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestKubeClient_DiscoverSkipsClusterWhenNothingFound(t *testing.T) {
	fakeClient := fake.NewClientBuilder().
		WithScheme(clientgoscheme.Scheme).
		WithInterceptorFuncs(interceptor.Funcs{
			List: func(ctx context.Context, c client.WithWatch, list client.ObjectList, opts ...client.ListOption) error {
				t.Fatal("cluster must not be queried")
				return nil
			},
		}).
		Build()
	k := &kubeClient{Client: fakeClient, namespace: "dev"}

	found, err := k.Discover(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, found)
}

func overrideConstruction(t *testing.T, probe error) {
	t.Helper()
	origProbe, origClient := ProbeServer, NewControllerClient
	t.Cleanup(func() {
		ProbeServer, NewControllerClient = origProbe, origClient
	})
	ProbeServer = func(ctx context.Context, config *rest.Config) error { return probe }
	NewControllerClient = func(config *rest.Config, options client.Options) (client.Client, error) {
		return fake.NewClientBuilder().WithScheme(options.Scheme).Build(), nil
	}
}

func TestNewKubeClient(t *testing.T) {
	overrideConstruction(t, nil)
	path := filepath.Join(t.TempDir(), "config")
	kubeconfigs.Write(t, path, "dev", kubeconfigs.Context{Name: "dev", Cluster: "c1", User: "u1", Namespace: "apps", Token: "t1"})

	c, err := NewFactory(Options{KubeconfigPath: path})(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "apps", c.CurrentNamespace())

	require.NoError(t, c.Logout(context.Background()))
	require.NoError(t, c.Login(context.Background(), "", "t2"))
}

func TestNewKubeClient_Unreachable(t *testing.T) {
	overrideConstruction(t, errors.New("dial tcp: connect: no route to host"))
	path := filepath.Join(t.TempDir(), "config")
	kubeconfigs.Write(t, path, "dev", kubeconfigs.Context{Name: "dev", Cluster: "c1", User: "u1"})

	_, err := NewKubeClient(context.Background(), Options{KubeconfigPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no route to host")
}

func TestNewKubeClient_NoCurrentContext(t *testing.T) {
	overrideConstruction(t, nil)
	path := filepath.Join(t.TempDir(), "config")
	kubeconfigs.Write(t, path, "", kubeconfigs.Context{Name: "dev", Cluster: "c1", User: "u1"})

	_, err := NewKubeClient(context.Background(), Options{KubeconfigPath: path})
	assert.Error(t, err)
}
