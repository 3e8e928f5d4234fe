package loadbalance

import (
	"sync/atomic"

	"entity-rpc/registry"
)

// RoundRobinBalancer cycles through the hosts in discovery order and ignores
// the key. It is the default balancer for clients.
type RoundRobinBalancer struct {
	next atomic.Uint64
}

func (b *RoundRobinBalancer) Pick(_ string, instances []registry.PeerInstance) (*registry.PeerInstance, error) {
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}
	i := (b.next.Add(1) - 1) % uint64(len(instances))
	return &instances[i], nil
}

func (b *RoundRobinBalancer) Name() string {
	return "RoundRobin"
}
