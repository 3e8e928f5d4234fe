// Package dispatch applies decoded requests to a peer's store.
//
// Request processing pipeline:
//
//	Send / Receive
//	  → Operation() (method and param must agree, otherwise drop silently)
//	    → Middleware Chain → apply (store mutation) → ErrorEntity on failure
//
// Send and Receive run the same pipeline. They only differ in the direction
// recorded in logs: a request about to be transmitted, or one just received.
package dispatch

import (
	"context"

	"entity-rpc/entity"
	"entity-rpc/middleware"
	"entity-rpc/store"
	"go.uber.org/zap"
)

const (
	UserCreationFailed     = "User creation failed"
	UserUpdateFailed       = "User update failed"
	UserDeletionFailed     = "User deletion failed"
	BuildingCreationFailed = "Building creation failed"
	BuildingUpdateFailed   = "Building update failed"
	BuildingDeletionFailed = "Building deletion failed"
)

type Dispatcher struct {
	entities    *store.Entities
	middlewares []middleware.Middleware
	handler     middleware.HandlerFunc // middleware(middleware(...(apply)))
	log         *zap.Logger
	metrics     *Metrics
}

type Option func(*Dispatcher)

func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(d *Dispatcher) { d.middlewares = append(d.middlewares, mws...) }
}

func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func New(entities *store.Entities, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		entities: entities,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	// Build the chain once, not per request.
	d.handler = middleware.Chain(d.middlewares...)(d.apply)
	return d
}

func (d *Dispatcher) Entities() *store.Entities {
	return d.entities
}

// Send applies a request that is about to be transmitted to a remote peer.
func (d *Dispatcher) Send(ctx context.Context, req *entity.RequestSchema) *entity.ErrorEntity {
	return d.dispatch(ctx, req, "send")
}

// Receive applies a request that was just received from a remote peer.
func (d *Dispatcher) Receive(ctx context.Context, req *entity.RequestSchema) *entity.ErrorEntity {
	return d.dispatch(ctx, req, "receive")
}

func (d *Dispatcher) dispatch(ctx context.Context, req *entity.RequestSchema, direction string) *entity.ErrorEntity {
	op, ok := req.Operation()
	if !ok {
		// Unmatched (method, param) pairs fall through without mutation or error.
		d.metrics.observe(req, outcomeUnmatched)
		return nil
	}
	failure := d.handler(ctx, req)
	switch {
	case failure == nil:
		d.metrics.observe(req, outcomeOK)
	case failure.Message == middleware.RateLimitExceeded:
		d.metrics.observe(req, outcomeRejected)
	default:
		d.metrics.observe(req, outcomeFailed)
		d.log.Debug("operation failed",
			zap.String("direction", direction),
			zap.String("request_id", req.ID),
			zap.String("target", op.TargetID()),
			zap.String("error", failure.Message))
	}
	return failure
}

// apply is the business handler at the bottom of the middleware chain.
func (d *Dispatcher) apply(ctx context.Context, req *entity.RequestSchema) *entity.ErrorEntity {
	op, ok := req.Operation()
	if !ok {
		return nil
	}
	users, buildings := &d.entities.Users, &d.entities.Buildings
	switch p := op.(type) {
	case entity.CreateUserParam:
		return check(users.CreateUser(p), UserCreationFailed)
	case entity.UpdateUserParam:
		return check(users.UpdateUser(p), UserUpdateFailed)
	case entity.DeleteUserParam:
		return check(users.DeleteUser(p), UserDeletionFailed)
	case entity.AddBuildingParam:
		return check(buildings.AddBuilding(p), BuildingCreationFailed)
	case entity.UpdateBuildingParam:
		return check(buildings.UpdateBuilding(p), BuildingUpdateFailed)
	case entity.DeleteBuildingParam:
		return check(buildings.DeleteBuilding(p), BuildingDeletionFailed)
	}
	return nil
}

func check(ok bool, message string) *entity.ErrorEntity {
	if ok {
		return nil
	}
	return entity.NewErrorEntity(message)
}
