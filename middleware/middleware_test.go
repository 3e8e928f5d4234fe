package middleware

import (
	"context"
	"testing"

	"entity-rpc/entity"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// 模拟一个简单的 handler：直接返回成功
func okHandler(ctx context.Context, req *entity.RequestSchema) *entity.ErrorEntity {
	return nil
}

// 模拟一个失败的 handler
func failHandler(ctx context.Context, req *entity.RequestSchema) *entity.ErrorEntity {
	return entity.NewErrorEntity("User update failed")
}

func newRequest() *entity.RequestSchema {
	return entity.NewOperationRequest("1", entity.DeleteUserParam{UserID: "3"})
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := LoggingMiddleware(zap.New(core))(okHandler)

	if resp := handler(context.Background(), newRequest()); resp != nil {
		t.Fatalf("expect nil response, got %v", resp)
	}

	entries := logs.FilterMessage("request applied").All()
	if len(entries) != 1 {
		t.Fatalf("expect 1 debug entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["method"]; got != "user.deleteUser" {
		t.Fatalf("expect method 'user.deleteUser', got '%v'", got)
	}
}

func TestLoggingFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := LoggingMiddleware(zap.New(core))(failHandler)

	resp := handler(context.Background(), newRequest())
	if resp == nil || resp.Message != "User update failed" {
		t.Fatalf("expect failure to pass through, got %v", resp)
	}

	entries := logs.FilterMessage("request failed").All()
	if len(entries) != 1 {
		t.Fatalf("expect 1 warn entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expect warn level, got %s", entries[0].Level)
	}
}

func TestRateLimit(t *testing.T) {
	// rate=1 per second, burst=2 → 前 2 个立刻放行，第 3 个被拒
	handler := RateLimitMiddleware(1, 2)(okHandler)
	req := newRequest()

	// 前 2 个应该通过（burst=2）
	for i := 0; i < 2; i++ {
		if resp := handler(context.Background(), req); resp != nil {
			t.Fatalf("request %d should pass, got error: %s", i, resp.Message)
		}
	}

	// 第 3 个应该被限流
	resp := handler(context.Background(), req)
	if resp == nil || resp.Message != RateLimitExceeded {
		t.Fatalf("request 3 should be rate limited, got: '%v'", resp)
	}
}

func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, req *entity.RequestSchema) *entity.ErrorEntity {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	handler := Chain(mark("a"), mark("b"), LoggingMiddleware(zap.NewNop()))(okHandler)
	if resp := handler(context.Background(), newRequest()); resp != nil {
		t.Fatalf("expect no error, got '%s'", resp.Message)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("expect order [a b], got %v", order)
	}
}
