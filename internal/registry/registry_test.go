package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"odosync/internal/handle"
	"odosync/internal/odo"
	"odosync/internal/testing/mock"
	"odosync/pkg/logging"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.InitForCLI(logging.LevelDebug, &buf)
	return &buf
}

func clientSource(client odo.Client) *handle.Handle[odo.Client] {
	return handle.New("test-client", func(ctx context.Context) (odo.Client, error) {
		return client, nil
	})
}

func TestDiscoverAndRegister_Idempotent(t *testing.T) {
	captureLogs(t)
	client := mock.NewOdoClient(nil)
	client.SetComponents("/w",
		odo.ComponentDescriptor{Path: "/w/a", Name: "a"},
		odo.ComponentDescriptor{Path: "/w/b", Name: "b"},
	)
	notifier := &mock.Notifier{}
	reg := New(notifier, nil)
	defer reg.Close()

	first := reg.DiscoverAndRegister(context.Background(), client, "/w")
	assert.Equal(t, OutcomeSucceeded, first.Outcome)
	assert.Equal(t, 2, first.Found)
	assert.Equal(t, 2, first.Added)

	second := reg.DiscoverAndRegister(context.Background(), client, "/w")
	assert.Equal(t, 2, second.Found)
	assert.Equal(t, 0, second.Added)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 0, notifier.ModelChangedCount(), "registration leaves notification to the caller")
}

func TestDiscoverAndRegister_FirstWins(t *testing.T) {
	client := mock.NewOdoClient(nil)
	client.SetComponents("/w", odo.ComponentDescriptor{Path: "/w/a", Name: "first"})
	reg := New(nil, nil)
	defer reg.Close()

	reg.DiscoverAndRegister(context.Background(), client, "/w")
	client.SetComponents("/w", odo.ComponentDescriptor{Path: "/w/a", Name: "second"})
	reg.DiscoverAndRegister(context.Background(), client, "/w")

	descriptor, ok := reg.Get("/w/a")
	require.True(t, ok)
	assert.Equal(t, "first", descriptor.Name)
}

func TestDiscoverAndRegister_NilClient(t *testing.T) {
	reg := New(nil, nil)
	defer reg.Close()

	result := reg.DiscoverAndRegister(context.Background(), nil, "/w")
	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Equal(t, 0, reg.Len())
}

func TestDiscoverAndRegister_ExpectedErrorNotLogged(t *testing.T) {
	buf := captureLogs(t)
	client := mock.NewOdoClient(nil)
	client.SetDiscoverErr(errors.New("Unauthorized"))
	notifier := &mock.Notifier{}
	reg := New(notifier, nil)
	defer reg.Close()

	result := reg.DiscoverAndRegister(context.Background(), client, "/w")

	assert.Equal(t, OutcomeIgnored, result.Outcome)
	assert.Error(t, result.Err)
	assert.NotContains(t, buf.String(), "level=ERROR")
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, notifier.Errors())
}

func TestDiscoverAndRegister_UnexpectedErrorLogged(t *testing.T) {
	buf := captureLogs(t)
	client := mock.NewOdoClient(nil)
	client.SetDiscoverErr(errors.New("devfile parse failure"))
	reg := New(nil, nil)
	defer reg.Close()

	result := reg.DiscoverAndRegister(context.Background(), client, "/w")

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "devfile parse failure")
}

func TestDiscoverAndRegister_CancelledNotLogged(t *testing.T) {
	buf := captureLogs(t)
	client := mock.NewOdoClient(nil)
	client.DiscoverHook = func(ctx context.Context, root string) error {
		<-ctx.Done()
		return ctx.Err()
	}
	reg := New(nil, nil)
	defer reg.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := reg.DiscoverAndRegister(ctx, client, "/w")

	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.ErrorIs(t, result.Err, context.Canceled)
	assert.NotContains(t, buf.String(), "level=ERROR")
}

func TestRemove(t *testing.T) {
	client := mock.NewOdoClient(nil)
	client.SetComponents("/w", odo.ComponentDescriptor{Path: "/w/a", Name: "a"})
	notifier := &mock.Notifier{}
	reg := New(notifier, nil)
	defer reg.Close()
	reg.DiscoverAndRegister(context.Background(), client, "/w")

	assert.False(t, reg.Remove("/w/missing"))
	assert.Equal(t, 0, notifier.ModelChangedCount())

	assert.True(t, reg.Remove("/w/a"))
	assert.Equal(t, 1, notifier.ModelChangedCount())
	assert.Equal(t, 0, reg.Len())
}

func TestPrune(t *testing.T) {
	client := mock.NewOdoClient(nil)
	client.SetComponents("/w",
		odo.ComponentDescriptor{Path: "/w/a", Name: "a"},
		odo.ComponentDescriptor{Path: "/w/b", Name: "b"},
		odo.ComponentDescriptor{Path: "/w/c", Name: "c"},
	)
	notifier := &mock.Notifier{}
	reg := New(notifier, nil)
	defer reg.Close()
	reg.DiscoverAndRegister(context.Background(), client, "/w")

	removed := reg.Prune(func(path string) bool { return path == "/w/b" })
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, notifier.ModelChangedCount())

	removed = reg.Prune(func(string) bool { return true })
	assert.Equal(t, 0, removed)
	assert.Equal(t, 1, notifier.ModelChangedCount())

	snapshot := reg.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "/w/b", snapshot[0].Path)
}

func TestSnapshot_SortedCopy(t *testing.T) {
	client := mock.NewOdoClient(nil)
	client.SetComponents("/w",
		odo.ComponentDescriptor{Path: "/w/z", Name: "z"},
		odo.ComponentDescriptor{Path: "/w/a", Name: "a"},
	)
	reg := New(nil, nil)
	defer reg.Close()
	reg.DiscoverAndRegister(context.Background(), client, "/w")

	snapshot := reg.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "/w/a", snapshot[0].Path)
	assert.Equal(t, "/w/z", snapshot[1].Path)

	snapshot[0].Name = "changed"
	descriptor, _ := reg.Get("/w/a")
	assert.Equal(t, "a", descriptor.Name)
}

func TestLegacyMigration(t *testing.T) {
	tests := []struct {
		name           string
		migrateErr     error
		expectMigrated []string
		expectFailed   []string
	}{
		{
			name:           "success notifies completion",
			expectMigrated: []string{"legacy"},
		},
		{
			name:         "failure notifies and keeps registration",
			migrateErr:   errors.New("permission denied"),
			expectFailed: []string{"legacy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captureLogs(t)
			client := mock.NewOdoClient(nil)
			client.MigrateErr = tt.migrateErr
			client.SetComponents("/w",
				odo.ComponentDescriptor{Path: "/w/legacy", Name: "legacy", Legacy: true},
				odo.ComponentDescriptor{Path: "/w/current", Name: "current"},
			)
			notifier := &mock.Notifier{}
			reg := New(notifier, clientSource(client))
			defer reg.Close()

			reg.DiscoverAndRegister(context.Background(), client, "/w")
			reg.WaitMigrations()

			assert.Equal(t, []string{"/w/legacy"}, client.Migrated())
			if tt.expectMigrated == nil {
				assert.Empty(t, notifier.Migrated())
			} else {
				assert.Equal(t, tt.expectMigrated, notifier.Migrated())
			}
			if tt.expectFailed == nil {
				assert.Empty(t, notifier.FailedMigrations())
			} else {
				assert.Equal(t, tt.expectFailed, notifier.FailedMigrations())
			}
			_, ok := reg.Get("/w/legacy")
			assert.True(t, ok)
		})
	}
}

func TestLegacyMigration_OncePerRegistration(t *testing.T) {
	client := mock.NewOdoClient(nil)
	client.SetComponents("/w", odo.ComponentDescriptor{Path: "/w/legacy", Name: "legacy", Legacy: true})
	reg := New(&mock.Notifier{}, clientSource(client))
	defer reg.Close()

	reg.DiscoverAndRegister(context.Background(), client, "/w")
	reg.DiscoverAndRegister(context.Background(), client, "/w")
	reg.WaitMigrations()

	assert.Len(t, client.Migrated(), 1)
}

func TestLegacyMigration_RefusedAfterClose(t *testing.T) {
	client := mock.NewOdoClient(nil)
	client.SetComponents("/w", odo.ComponentDescriptor{Path: "/w/legacy", Name: "legacy", Legacy: true})
	notifier := &mock.Notifier{}
	reg := New(notifier, clientSource(client))
	reg.Close()

	result := reg.DiscoverAndRegister(context.Background(), client, "/w")
	reg.WaitMigrations()

	assert.Equal(t, 1, result.Added)
	assert.Empty(t, client.Migrated())
	assert.Empty(t, notifier.Migrated())
}

func TestConcurrentDiscovery(t *testing.T) {
	client := mock.NewOdoClient(nil)
	for i := 0; i < 10; i++ {
		root := fmt.Sprintf("/w%d", i)
		client.SetComponents(root,
			odo.ComponentDescriptor{Path: root + "/a", Name: "a"},
			odo.ComponentDescriptor{Path: "/shared", Name: "shared"},
		)
	}
	reg := New(nil, nil)
	defer reg.Close()

	var wg sync.WaitGroup
	added := make([]int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			added[i] = reg.DiscoverAndRegister(context.Background(), client, fmt.Sprintf("/w%d", i)).Added
		}(i)
	}
	wg.Wait()

	total := 0
	for _, n := range added {
		total += n
	}
	assert.Equal(t, 11, reg.Len())
	assert.Equal(t, 11, total)
}

func TestIsExpectedError(t *testing.T) {
	gr := schema.GroupResource{Group: "apps", Resource: "deployments"}
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unauthorized message", errors.New("Unauthorized"), true},
		{"credentials", errors.New("error: the server has asked for the client to provide credentials"), true},
		{"service bindings", errors.New("unable to access the cluster: servicebindings.binding.operators.coreos.com is forbidden"), true},
		{"no route", errors.New("dial tcp 10.0.0.1:6443: connect: no route to host"), true},
		{"typed unauthorized", apierrors.NewUnauthorized("token expired"), true},
		{"typed forbidden", apierrors.NewForbidden(gr, "x", errors.New("user cannot list")), false},
		{"connection refused", fmt.Errorf("list: %w", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}), false},
		{"dial no route", fmt.Errorf("list: %w", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: no route to host")}), true},
		{"typed not found", apierrors.NewNotFound(gr, "x"), false},
		{"other", errors.New("devfile parse failure"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpectedError(tt.err))
		})
	}
}
