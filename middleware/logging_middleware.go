package middleware

import (
	"context"
	"time"

	"entity-rpc/entity"
	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *entity.RequestSchema) *entity.ErrorEntity {
			start := time.Now()
			failure := next(ctx, req)
			// Print the request and the time taken to apply it, and the failure if any
			fields := []zap.Field{
				zap.String("request_id", req.ID),
				zap.Stringer("method", methodName{req.Method}),
				zap.Duration("duration", time.Since(start)),
			}
			if failure != nil {
				log.Warn("request failed", append(fields, zap.String("error", failure.Message))...)
				return failure
			}
			log.Debug("request applied", fields...)
			return nil
		}
	}
}

type methodName struct{ m entity.Method }

func (n methodName) String() string {
	if n.m == nil {
		return "<nil>"
	}
	return string(n.m.Family()) + "." + n.m.String()
}
