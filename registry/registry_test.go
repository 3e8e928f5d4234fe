package registry

import (
	"context"
	"fmt"
	"testing"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// testRegistry runs the same scenario against any Registry implementation.
func testRegistry(t *testing.T, reg Registry) {
	t.Helper()
	ctx := context.Background()

	// Register two clients and one host
	inst1 := PeerInstance{Name: "a", Addr: "127.0.0.1:8001", Role: RoleClient, Weight: 10}
	inst2 := PeerInstance{Name: "b", Addr: "127.0.0.1:8002", Role: RoleClient, Weight: 5}
	host := PeerInstance{Name: "h", Addr: "127.0.0.1:8000", Role: RoleHost, Weight: 1}

	for _, inst := range []PeerInstance{inst1, inst2, host} {
		if err := reg.Register(ctx, inst, 10); err != nil {
			t.Fatal(err)
		}
	}

	instances, err := reg.Discover(ctx, RoleClient)
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 2 {
		t.Fatalf("expect 2 instances, got %d", len(instances))
	}
	if instances[0] != inst1 || instances[1] != inst2 {
		t.Fatalf("unexpected instances: %+v", instances)
	}

	hosts, err := reg.Discover(ctx, RoleHost)
	if err != nil {
		t.Fatal(err)
	}
	if len(hosts) != 1 || hosts[0].Addr != host.Addr {
		t.Fatalf("expect only the host, got %+v", hosts)
	}

	// Deregister one
	if err := reg.Deregister(ctx, RoleClient, inst1.Addr); err != nil {
		t.Fatal(err)
	}

	instances, err = reg.Discover(ctx, RoleClient)
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 1 {
		t.Fatalf("expect 1 instance after deregister, got %d", len(instances))
	}
	if instances[0].Addr != inst2.Addr {
		t.Fatalf("expect %s, got %s", inst2.Addr, instances[0].Addr)
	}

	// Cleanup
	reg.Deregister(ctx, RoleClient, inst2.Addr)
	reg.Deregister(ctx, RoleHost, host.Addr)
}

func TestMemoryRegistry(t *testing.T) {
	testRegistry(t, NewMemoryRegistry())
}

func TestMemoryRegistryReplacesSameAddr(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()
	reg.Register(ctx, PeerInstance{Name: "old", Addr: ":1", Role: RoleHost}, 10)
	reg.Register(ctx, PeerInstance{Name: "new", Addr: ":1", Role: RoleHost}, 10)

	hosts, _ := reg.Discover(ctx, RoleHost)
	if len(hosts) != 1 || hosts[0].Name != "new" {
		t.Fatalf("expect the re-registered instance, got %+v", hosts)
	}
}

func TestEtcdRegistry(t *testing.T) {
	reg, err := NewEtcdRegistry([]string{"127.0.0.1:2379"}, fmt.Sprintf("/entity-rpc-test-%d", time.Now().UnixNano()), nil)
	if err != nil {
		t.Skipf("etcd unavailable: %v", err)
	}
	defer reg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := reg.client.Status(ctx, "127.0.0.1:2379"); err != nil {
		t.Skipf("etcd unavailable: %v", err)
	}

	testRegistry(t, reg)

	// Re-registering moves the key onto a fresh lease.
	inst := PeerInstance{Name: "h", Addr: "127.0.0.1:9000", Role: RoleHost}
	for i := 0; i < 2; i++ {
		if err := reg.Register(context.Background(), inst, 10); err != nil {
			t.Fatal(err)
		}
	}
	hosts, err := reg.Discover(context.Background(), RoleHost)
	if err != nil {
		t.Fatal(err)
	}
	if len(hosts) != 1 {
		t.Fatalf("expect 1 host after re-registration, got %d", len(hosts))
	}
	reg.Deregister(context.Background(), RoleHost, inst.Addr)
}

func TestRevokeStaleLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	// Nothing listens here; the client connects lazily.
	reg, err := NewEtcdRegistry([]string{"127.0.0.1:1"}, "", zap.New(core))
	if err != nil {
		t.Skipf("cannot build etcd client: %v", err)
	}
	defer reg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	reg.revokeStale(ctx, reg.key(RoleHost, ":1"), clientv3.LeaseID(42))

	entries := logs.FilterMessage("failed to revoke stale lease").All()
	if len(entries) != 1 {
		t.Fatalf("expect 1 warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["key"]; got != "/entity-rpc/host/:1" {
		t.Fatalf("unexpected key field %v", got)
	}
}
