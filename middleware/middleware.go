package middleware

import (
	"context"

	"entity-rpc/entity"
)

// HandlerFunc applies one request. It returns nil on success and an
// ErrorEntity when the request was applied but failed, or was rejected.
type HandlerFunc func(ctx context.Context, req *entity.RequestSchema) *entity.ErrorEntity

type Middleware func(next HandlerFunc) HandlerFunc

// Chain 将多个中间件组合成一个中间件
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
