package middleware

import (
	"context"

	"entity-rpc/entity"
	"golang.org/x/time/rate"
)

const RateLimitExceeded = "rate limit exceeded"

// RateLimitMiddleware 创建一个基于令牌桶算法的限流中间件
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *entity.RequestSchema) *entity.ErrorEntity {
			if !limiter.Allow() {
				return entity.NewErrorEntity(RateLimitExceeded)
			}
			return next(ctx, req)
		}
	}
}
