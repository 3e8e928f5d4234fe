// Package loadbalance picks which host a client sends a request to when more
// than one host is registered.
//
// Three strategies are implemented:
//   - RoundRobin:      equal-capacity hosts
//   - WeightedRandom:  hosts with different capacity
//   - ConsistentHash:  entity affinity, every operation on one id reaches the same host
package loadbalance

import (
	"errors"
	"fmt"

	"entity-rpc/registry"
)

var ErrNoInstances = errors.New("no instances available")

// Balancer is the interface for load balancing strategies.
type Balancer interface {
	// Pick selects one instance from the available list. key is the target
	// entity id of the request; strategies without affinity ignore it.
	Pick(key string, instances []registry.PeerInstance) (*registry.PeerInstance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}

// New returns the balancer for a configuration name.
func New(name string) (Balancer, error) {
	switch name {
	case "round_robin", "":
		return &RoundRobinBalancer{}, nil
	case "weighted_random":
		return &WeightedRandomBalancer{}, nil
	case "consistent_hash":
		return NewConsistentHashBalancer(), nil
	}
	return nil, fmt.Errorf("loadbalance: unknown balancer %q", name)
}
