package registry

import (
	"context"
	"slices"
	"sync"
)

// MemoryRegistry keeps instances in process memory, in registration order.
// The TTL is ignored.
type MemoryRegistry struct {
	mu        sync.Mutex
	instances map[Role][]PeerInstance
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{instances: make(map[Role][]PeerInstance)}
}

// Register adds the instance, replacing an earlier one with the same address.
func (m *MemoryRegistry) Register(ctx context.Context, instance PeerInstance, ttl int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	insts := m.instances[instance.Role]
	if i := slices.IndexFunc(insts, func(p PeerInstance) bool { return p.Addr == instance.Addr }); i >= 0 {
		insts[i] = instance
		return nil
	}
	m.instances[instance.Role] = append(insts, instance)
	return nil
}

func (m *MemoryRegistry) Deregister(ctx context.Context, role Role, addr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.instances[role] = slices.DeleteFunc(m.instances[role], func(p PeerInstance) bool { return p.Addr == addr })
	return nil
}

func (m *MemoryRegistry) Discover(ctx context.Context, role Role) ([]PeerInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.instances[role]), nil
}
