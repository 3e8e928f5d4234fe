// Package registry provides the etcd-based implementation of the Registry interface.
//
// Peers announce themselves in etcd so their counterparts can find them:
//
//	Key:   {prefix}/{Role}/{Addr}
//	Value: JSON-encoded PeerInstance
//
// Registration uses TTL-based leases: if a peer process dies, the lease
// expires and the entry is removed automatically.
package registry

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

const DefaultPrefix = "/entity-rpc"

// EtcdRegistry implements the Registry interface using etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client // etcd client connection (thread-safe, shared across goroutines)
	prefix string
	log    *zap.Logger

	mu     sync.Mutex
	leases map[string]clientv3.LeaseID // key → lease kept alive for it
}

// NewEtcdRegistry creates a new registry connected to the given etcd endpoints.
func NewEtcdRegistry(endpoints []string, prefix string, log *zap.Logger) (*EtcdRegistry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	c, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
		Logger:      log.Named("etcd"),
	})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{
		client: c,
		prefix: strings.TrimSuffix(prefix, "/"),
		log:    log,
		leases: make(map[string]clientv3.LeaseID),
	}, nil
}

// Register adds a peer instance to etcd with a TTL lease.
//
// Flow:
//  1. Create a lease with the given TTL (e.g., 10 seconds)
//  2. Put the key-value pair with the lease attached
//  3. Start KeepAlive to automatically renew the lease
//
// Leases are tracked per key so several peers can share one EtcdRegistry.
func (r *EtcdRegistry) Register(ctx context.Context, instance PeerInstance, ttl int64) error {
	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return err
	}

	val, err := json.Marshal(instance)
	if err != nil {
		return err
	}

	key := r.key(instance.Role, instance.Addr)
	_, err = r.client.Put(ctx, key, string(val), clientv3.WithLease(lease.ID))
	if err != nil {
		return err
	}

	// KeepAlive must outlive the registration call.
	ch, err := r.client.KeepAlive(context.WithoutCancel(ctx), lease.ID)
	if err != nil {
		return err
	}

	// Consume KeepAlive responses to prevent the channel from filling up
	go func() {
		for range ch {
		}
	}()

	r.mu.Lock()
	old, ok := r.leases[key]
	r.leases[key] = lease.ID
	r.mu.Unlock()
	if ok {
		// Re-registration: the key now rides on the new lease.
		r.revokeStale(ctx, key, old)
	}
	return nil
}

// revokeStale drops a lease no key depends on any more. Failure is logged
// only: the lease still expires after its TTL once nobody renews it.
func (r *EtcdRegistry) revokeStale(ctx context.Context, key string, lease clientv3.LeaseID) {
	if _, err := r.client.Revoke(ctx, lease); err != nil {
		r.log.Warn("failed to revoke stale lease",
			zap.String("key", key), zap.Int64("lease", int64(lease)), zap.Error(err))
	}
}

// Deregister removes a peer instance from etcd. Revoking the lease deletes
// the key and ends its KeepAlive.
func (r *EtcdRegistry) Deregister(ctx context.Context, role Role, addr string) error {
	key := r.key(role, addr)
	r.mu.Lock()
	lease, ok := r.leases[key]
	delete(r.leases, key)
	r.mu.Unlock()

	if ok {
		if _, err := r.client.Revoke(ctx, lease); err != nil {
			return err
		}
	}
	_, err := r.client.Delete(ctx, key)
	return err
}

// Discover returns all currently registered instances for a role, ordered by key.
func (r *EtcdRegistry) Discover(ctx context.Context, role Role) ([]PeerInstance, error) {
	resp, err := r.client.Get(ctx, r.rolePrefix(role), clientv3.WithPrefix(), clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, err
	}

	instances := make([]PeerInstance, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var instance PeerInstance
		if err := json.Unmarshal(kv.Value, &instance); err != nil {
			continue // Skip malformed entries
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

func (r *EtcdRegistry) Close() error {
	return r.client.Close()
}

func (r *EtcdRegistry) rolePrefix(role Role) string {
	return r.prefix + "/" + string(role) + "/"
}

func (r *EtcdRegistry) key(role Role, addr string) string {
	return r.rolePrefix(role) + addr
}
