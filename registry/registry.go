package registry

import "context"

type Role string

const (
	RoleHost   Role = "host"
	RoleClient Role = "client"
)

type PeerInstance struct {
	Name   string
	Addr   string
	Role   Role
	Weight int // Weight for load balancing
}

type Registry interface {
	Register(ctx context.Context, instance PeerInstance, ttl int64) error
	Deregister(ctx context.Context, role Role, addr string) error
	Discover(ctx context.Context, role Role) ([]PeerInstance, error)
}
