package peer

import "entity-rpc/registry"

// Client applies requests locally and forwards each one to a single host,
// chosen by its balancer.
type Client struct {
	*Peer
}

func NewClient(addr string, opts ...Option) *Client {
	return &Client{Peer: newPeer(addr, registry.RoleClient, opts...)}
}
