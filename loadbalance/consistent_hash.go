package loadbalance

import (
	"encoding/binary"
	"slices"
	"strconv"
	"strings"
	"sync"

	"entity-rpc/registry"
	"github.com/zeebo/blake3"
)

const defaultReplicas = 100

// ConsistentHashBalancer routes by entity id: every operation on user "3"
// lands on the same host while the host set is unchanged.
//
// Each host owns defaultReplicas points on a blake3 ring; an id belongs to
// the first point clockwise from its own hash.
//
//	ring:  0 ── h1#7 ── h2#3 ── [id "3"] ── h1#42 ── h2#90 ── 2^32
//	                                  └──► h1
type ConsistentHashBalancer struct {
	mu       sync.Mutex
	replicas int
	points   []uint32                          // sorted
	owner    map[uint32]*registry.PeerInstance // point → host
	members  string                            // sorted addrs the ring was built from
}

func NewConsistentHashBalancer() *ConsistentHashBalancer {
	return &ConsistentHashBalancer{
		replicas: defaultReplicas,
		owner:    make(map[uint32]*registry.PeerInstance),
	}
}

// Add places instance on the ring. Pick rebuilds the ring when it is handed a
// different host set, so Add is only needed when Pick is called with nil.
func (b *ConsistentHashBalancer) Add(instance *registry.PeerInstance) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.add(instance)
	slices.Sort(b.points)
}

func (b *ConsistentHashBalancer) add(instance *registry.PeerInstance) {
	for i := range b.replicas {
		point := ringHash(instance.Addr + "#" + strconv.Itoa(i))
		b.points = append(b.points, point)
		b.owner[point] = instance
	}
}

// Pick returns the host owning key. A nil instances slice picks from the ring
// as it stands.
func (b *ConsistentHashBalancer) Pick(key string, instances []registry.PeerInstance) (*registry.PeerInstance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if instances != nil {
		b.rebuild(instances)
	}
	if len(b.points) == 0 {
		return nil, ErrNoInstances
	}

	i, _ := slices.BinarySearch(b.points, ringHash(key))
	if i == len(b.points) {
		i = 0
	}
	return b.owner[b.points[i]], nil
}

func (b *ConsistentHashBalancer) Name() string {
	return "ConsistentHash"
}

func (b *ConsistentHashBalancer) rebuild(instances []registry.PeerInstance) {
	addrs := make([]string, 0, len(instances))
	for _, inst := range instances {
		addrs = append(addrs, inst.Addr)
	}
	slices.Sort(addrs)
	members := strings.Join(addrs, ",")
	if members == b.members && len(b.points) > 0 {
		return
	}

	b.points = b.points[:0]
	clear(b.owner)
	for i := range instances {
		inst := instances[i]
		b.add(&inst)
	}
	slices.Sort(b.points)
	b.members = members
}

func ringHash(key string) uint32 {
	sum := blake3.Sum256([]byte(key))
	return binary.BigEndian.Uint32(sum[:4])
}
