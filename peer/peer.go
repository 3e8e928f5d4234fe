// Package peer implements the two ends of the exchange, Host and Client.
//
// Each peer owns its own store. Sending applies the request locally and then
// hands the encoded envelope to the counterpart peers through the transport;
// receiving decodes bytes and applies them. Peers never share memory, only
// encoded frames:
//
//	Host.Send(req) → dispatch locally → encode → Pipe(host → client)
//	                                               ↓
//	Client.Deliver() → Next() → Receive(bytes) → decode → dispatch locally
//	                                               ↓ (operation failed)
//	Host.Deliver()  ← Pipe(client → host) ← ErrorEntity frame
package peer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"entity-rpc/codec"
	"entity-rpc/config"
	"entity-rpc/dispatch"
	"entity-rpc/entity"
	"entity-rpc/loadbalance"
	"entity-rpc/middleware"
	"entity-rpc/protocol"
	"entity-rpc/registry"
	"entity-rpc/store"
	"entity-rpc/transport"
	"go.uber.org/zap"
)

type Peer struct {
	name     string
	addr     string
	role     registry.Role
	weight   int
	ttl      int64
	entities *store.Entities
	codec    codec.Codec
	log      *zap.Logger

	registry    registry.Registry    // nil: no counterparts are discovered
	network     *transport.Network   // nil: nothing is transmitted
	balancer    loadbalance.Balancer // client → host selection
	balancerSet bool                 // set explicitly, config does not override
	cfg         *config.Config

	metrics     *dispatch.Metrics
	middlewares []middleware.Middleware
	dispatcher  *dispatch.Dispatcher

	remoteErrors []entity.ErrorEntity
}

type Option func(*Peer)

func WithName(name string) Option {
	return func(p *Peer) { p.name = name }
}

func WithWeight(weight int) Option {
	return func(p *Peer) { p.weight = weight }
}

// WithEntities injects the store the peer owns.
func WithEntities(e *store.Entities) Option {
	return func(p *Peer) { p.entities = e }
}

func WithCodec(c codec.Codec) Option {
	return func(p *Peer) { p.codec = c }
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Peer) { p.log = log }
}

func WithRegistry(reg registry.Registry) Option {
	return func(p *Peer) { p.registry = reg }
}

func WithNetwork(n *transport.Network) Option {
	return func(p *Peer) { p.network = n }
}

// WithBalancer takes precedence over the balancer named in WithConfig.
func WithBalancer(b loadbalance.Balancer) Option {
	return func(p *Peer) {
		p.balancer = b
		p.balancerSet = true
	}
}

func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(p *Peer) { p.middlewares = append(p.middlewares, mws...) }
}

func WithMetrics(m *dispatch.Metrics) Option {
	return func(p *Peer) { p.metrics = m }
}

// WithConfig applies codec, balancer, rate limit and registry TTL settings.
// Unless WithLogger is also given, the peer logs through cfg.NewLogger at the
// configured log_level. cfg must have passed Validate.
func WithConfig(cfg *config.Config) Option {
	return func(p *Peer) {
		p.cfg = cfg
		p.codec = codec.GetCodec(cfg.CodecType())
		p.ttl = cfg.Registry.TTL
		if cfg.RateLimit != nil {
			p.middlewares = append(p.middlewares, middleware.RateLimitMiddleware(cfg.RateLimit.Rate, cfg.RateLimit.Burst))
		}
	}
}

func newPeer(addr string, role registry.Role, opts ...Option) *Peer {
	p := &Peer{
		name:     addr,
		addr:     addr,
		role:     role,
		weight:   1,
		ttl:      10,
		entities: store.NewEntities(),
		codec:    codec.GetCodec(codec.CodecTypeJSON),
		balancer: &loadbalance.RoundRobinBalancer{},
	}
	for _, opt := range opts {
		opt(p)
	}

	var setupErrs []error
	if p.log == nil && p.cfg != nil {
		log, err := p.cfg.NewLogger()
		if err != nil {
			setupErrs = append(setupErrs, err)
		}
		p.log = log
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	p.log = p.log.With(zap.String("peer", p.name), zap.String("role", string(role)))

	if p.cfg != nil && !p.balancerSet {
		b, err := loadbalance.New(p.cfg.Balancer)
		if err != nil {
			setupErrs = append(setupErrs, err)
		} else {
			p.balancer = b
		}
	}
	for _, err := range setupErrs {
		p.log.Warn("ignoring invalid config", zap.Error(err))
	}

	p.dispatcher = dispatch.New(p.entities,
		dispatch.WithLogger(p.log),
		dispatch.WithMetrics(p.metrics),
		dispatch.WithMiddleware(p.middlewares...))
	return p
}

func (p *Peer) Addr() string              { return p.addr }
func (p *Peer) Role() registry.Role       { return p.role }
func (p *Peer) Entities() *store.Entities { return p.entities }
func (p *Peer) Codec() codec.Codec        { return p.codec }

// RemoteErrors returns the failures counterpart peers reported back.
func (p *Peer) RemoteErrors() []entity.ErrorEntity {
	return append([]entity.ErrorEntity(nil), p.remoteErrors...)
}

// Join registers the peer so counterparts can discover it.
func (p *Peer) Join(ctx context.Context) error {
	if p.registry == nil {
		return nil
	}
	return p.registry.Register(ctx, registry.PeerInstance{
		Name:   p.name,
		Addr:   p.addr,
		Role:   p.role,
		Weight: p.weight,
	}, p.ttl)
}

// Leave deregisters the peer.
func (p *Peer) Leave(ctx context.Context) error {
	if p.registry == nil {
		return nil
	}
	return p.registry.Deregister(ctx, p.role, p.addr)
}

// Send applies req to the local store, then transmits it to the counterpart
// peers. A request whose method and param disagree, or that the rate limiter
// rejected, is not transmitted. The returned error only reports encoding or
// transport problems; operation failures are not errors.
func (p *Peer) Send(ctx context.Context, req *entity.RequestSchema) error {
	if failure := p.dispatcher.Send(ctx, req); failure != nil {
		p.reply(req, "", failure)
		if failure.Message == middleware.RateLimitExceeded {
			return nil
		}
	}
	op, ok := req.Operation()
	if !ok || p.network == nil || p.registry == nil {
		return nil
	}

	targets, err := p.targets(ctx, op)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}
	data, err := req.Encode(p.codec)
	if err != nil {
		return fmt.Errorf("peer: encode request %s: %w", req.ID, err)
	}
	for _, t := range targets {
		seq, err := p.network.Pipe(p.addr, t.Addr).Send(protocol.MsgTypeRequest, byte(p.codec.Type()), data)
		if err != nil {
			return fmt.Errorf("peer: send to %s: %w", t.Addr, err)
		}
		p.log.Debug("request sent", zap.String("request_id", req.ID), zap.String("to", t.Addr), zap.Uint32("seq", seq))
	}
	return nil
}

// Do sends op under a fresh request id with the method derived from op.
func (p *Peer) Do(ctx context.Context, op entity.Param) (string, error) {
	req := entity.NewOperationRequest(entity.NewRequestID(), op)
	return req.ID, p.Send(ctx, req)
}

// Receive decodes data with the peer's codec and applies it. A decode
// failure is returned and nothing is applied.
func (p *Peer) Receive(ctx context.Context, data []byte) error {
	return p.receive(ctx, "", p.codec, data)
}

// Deliver drains every pipe addressed to this peer, in sender order, and
// returns the number of requests applied. Frames that fail to decode are
// dropped without stopping the drain.
func (p *Peer) Deliver(ctx context.Context) (int, error) {
	if p.network == nil {
		return 0, nil
	}
	applied := 0
	for _, in := range p.network.Inbound(p.addr) {
		for {
			if err := ctx.Err(); err != nil {
				return applied, err
			}
			pkt, err := in.Pipe.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				p.log.Warn("dropping frame", zap.String("from", in.From), zap.Error(err))
				continue
			}
			c := codec.GetCodec(codec.CodecType(pkt.CodecType))
			switch pkt.MsgType {
			case protocol.MsgTypeRequest:
				if err := p.receive(ctx, in.From, c, pkt.Body); err == nil {
					applied++
				}
			case protocol.MsgTypeError:
				var failure entity.ErrorEntity
				if err := c.Decode(pkt.Body, &failure); err != nil {
					p.log.Warn("failed to decode error reply", zap.String("from", in.From), zap.Error(err))
					continue
				}
				p.remoteErrors = append(p.remoteErrors, failure)
				p.log.Info("peer reported failure", zap.String("from", in.From), zap.String("error", failure.Message))
			case protocol.MsgTypeHeartbeat:
			}
		}
	}
	return applied, nil
}

// Heartbeat writes a heartbeat frame to every registered counterpart.
func (p *Peer) Heartbeat(ctx context.Context) error {
	if p.network == nil || p.registry == nil {
		return nil
	}
	peers, err := p.registry.Discover(ctx, p.counterpart())
	if err != nil {
		return err
	}
	for _, inst := range peers {
		if inst.Addr == p.addr {
			continue
		}
		if err := p.network.Pipe(p.addr, inst.Addr).Heartbeat(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Peer) receive(ctx context.Context, from string, c codec.Codec, data []byte) error {
	req, err := entity.DecodeRequest(c, data)
	if err != nil {
		p.metrics.DecodeFailed(c.Type().String())
		p.log.Warn("failed to decode request", zap.String("from", from), zap.Error(err))
		return err
	}
	if failure := p.dispatcher.Receive(ctx, req); failure != nil {
		p.reply(req, from, failure)
	}
	return nil
}

// reply serializes failure and sends it to the requester. Without a known
// requester the serialized reply is discarded.
func (p *Peer) reply(req *entity.RequestSchema, to string, failure *entity.ErrorEntity) {
	body, err := p.codec.Encode(failure)
	if err != nil {
		p.log.Error("failed to encode error message", zap.Error(err))
		return
	}
	if to == "" || p.network == nil {
		p.log.Debug("no requester for error reply", zap.String("request_id", req.ID), zap.String("error", failure.Message))
		return
	}
	if _, err := p.network.Pipe(p.addr, to).Send(protocol.MsgTypeError, byte(p.codec.Type()), body); err != nil {
		p.log.Error("failed to send error reply", zap.String("to", to), zap.Error(err))
	}
}

func (p *Peer) counterpart() registry.Role {
	if p.role == registry.RoleHost {
		return registry.RoleClient
	}
	return registry.RoleHost
}

// targets lists where a request goes: a host broadcasts to every client, a
// client picks one host keyed on the target entity id.
func (p *Peer) targets(ctx context.Context, op entity.Param) ([]registry.PeerInstance, error) {
	found, err := p.registry.Discover(ctx, p.counterpart())
	if err != nil {
		return nil, fmt.Errorf("peer: discover %s: %w", p.counterpart(), err)
	}
	peers := found[:0]
	for _, inst := range found {
		if inst.Addr != p.addr {
			peers = append(peers, inst)
		}
	}
	if p.role == registry.RoleHost || len(peers) == 0 {
		return peers, nil
	}
	inst, err := p.balancer.Pick(op.TargetID(), peers)
	if err != nil {
		return nil, err
	}
	return []registry.PeerInstance{*inst}, nil
}
