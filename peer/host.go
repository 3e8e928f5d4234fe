package peer

import "entity-rpc/registry"

// Host applies requests locally and broadcasts them to every client.
type Host struct {
	*Peer
}

func NewHost(addr string, opts ...Option) *Host {
	return &Host{Peer: newPeer(addr, registry.RoleHost, opts...)}
}
