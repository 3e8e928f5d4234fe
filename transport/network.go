package transport

import (
	"sort"
	"sync"
)

type route struct {
	from, to string
}

// Inbound is a pipe delivering into a peer, labelled with its sender.
type Inbound struct {
	From string
	Pipe *Pipe
}

// Network hands out one Pipe per directed (from, to) address pair.
type Network struct {
	mu                sync.Mutex
	pipes             map[route]*Pipe
	compressThreshold int
}

func NewNetwork(compressThreshold int) *Network {
	return &Network{
		pipes:             make(map[route]*Pipe),
		compressThreshold: compressThreshold,
	}
}

// Pipe returns the pipe from one address to another, creating it on first use.
func (n *Network) Pipe(from, to string) *Pipe {
	n.mu.Lock()
	defer n.mu.Unlock()

	r := route{from: from, to: to}
	p, ok := n.pipes[r]
	if !ok {
		p = NewPipe(n.compressThreshold)
		n.pipes[r] = p
	}
	return p
}

// Inbound lists the pipes delivering into addr, ordered by sender address.
func (n *Network) Inbound(to string) []Inbound {
	n.mu.Lock()
	defer n.mu.Unlock()

	var in []Inbound
	for r, p := range n.pipes {
		if r.to == to {
			in = append(in, Inbound{From: r.from, Pipe: p})
		}
	}
	sort.Slice(in, func(i, j int) bool { return in[i].From < in[j].From })
	return in
}
