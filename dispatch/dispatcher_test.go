package dispatch

import (
	"context"
	"testing"

	"entity-rpc/entity"
	"entity-rpc/middleware"
	"entity-rpc/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func strPtr(s string) *string { return &s }

var emi = entity.CreateUserParam{ID: "3", Name: "emi", Email: "emi@example.com"}

func TestDispatchCreateUser(t *testing.T) {
	d := New(store.NewEntities())
	req := entity.NewUserRequest("1", entity.CreateUser, emi)

	require.Nil(t, d.Send(context.Background(), req))
	u, ok := d.Entities().Users.Get("3")
	require.True(t, ok)
	assert.Equal(t, "emi", u.Name)
}

func TestSendAndReceiveBehaveIdentically(t *testing.T) {
	sent, received := New(store.NewEntities()), New(store.NewEntities())
	reqs := []*entity.RequestSchema{
		entity.NewOperationRequest("1", emi),
		entity.NewOperationRequest("2", entity.UpdateUserParam{UserID: "3", NewName: strPtr("emi2")}),
		entity.NewOperationRequest("3", entity.AddBuildingParam{ID: "b1", Name: "T", Address: "A", Residents: []string{"3"}}),
		entity.NewOperationRequest("4", entity.DeleteUserParam{UserID: "missing"}),
	}
	for _, req := range reqs {
		assert.Equal(t, sent.Send(context.Background(), req), received.Receive(context.Background(), req))
	}
	assert.Equal(t, sent.Entities().Users.All(), received.Entities().Users.All())
	assert.Equal(t, sent.Entities().Buildings.All(), received.Entities().Buildings.All())
}

func TestDispatchFailureMessages(t *testing.T) {
	cases := []struct {
		op      entity.Param
		message string
	}{
		{entity.UpdateUserParam{UserID: "x", NewName: strPtr("n")}, UserUpdateFailed},
		{entity.DeleteUserParam{UserID: "x"}, UserDeletionFailed},
		{entity.UpdateBuildingParam{BuildingID: "x"}, BuildingUpdateFailed},
		{entity.DeleteBuildingParam{BuildingID: "x"}, BuildingDeletionFailed},
	}
	d := New(store.NewEntities())
	for _, tc := range cases {
		failure := d.Receive(context.Background(), entity.NewOperationRequest("1", tc.op))
		require.NotNil(t, failure, "%T", tc.op)
		assert.Equal(t, tc.message, failure.Message)
	}
}

func TestDispatchBuildingLifecycle(t *testing.T) {
	d := New(store.NewEntities())
	ctx := context.Background()

	require.Nil(t, d.Send(ctx, entity.NewBuildingRequest("1", entity.AddBuilding,
		entity.AddBuildingParam{ID: "b1", Name: "Tower", Address: "1 Main St", Residents: []string{"3"}})))
	require.Nil(t, d.Send(ctx, entity.NewBuildingRequest("2", entity.UpdateBuilding,
		entity.UpdateBuildingParam{BuildingID: "b1", NewName: strPtr("Spire")})))

	b, ok := d.Entities().Buildings.Get("b1")
	require.True(t, ok)
	assert.Equal(t, "Spire", b.Name)
	assert.Equal(t, "1 Main St", b.Address)

	require.Nil(t, d.Send(ctx, entity.NewBuildingRequest("3", entity.DeleteBuilding,
		entity.DeleteBuildingParam{BuildingID: "b1"})))
	assert.Equal(t, 0, d.Entities().Buildings.Len())
}

func TestMismatchFallsThroughSilently(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	d := New(store.NewEntities(),
		WithLogger(zap.New(core)),
		WithMetrics(metrics),
		WithMiddleware(middleware.LoggingMiddleware(zap.New(core))))

	reqs := []*entity.RequestSchema{
		// Mismatched family.
		entity.NewRequest("1", entity.CreateUser, entity.AddBuildingParam{ID: "b1", Name: "T", Address: "A"}),
		// Mismatched operation within a family.
		entity.NewUserRequest("2", entity.DeleteUser, emi),
		entity.NewBuildingRequest("3", entity.AddBuilding, entity.DeleteBuildingParam{BuildingID: "b1"}),
		// Missing pieces.
		entity.NewRequest("4", nil, emi),
	}
	for _, req := range reqs {
		assert.Nil(t, d.Send(context.Background(), req))
		assert.Nil(t, d.Receive(context.Background(), req))
	}

	assert.Equal(t, 0, d.Entities().Users.Len())
	assert.Equal(t, 0, d.Entities().Buildings.Len())
	assert.Equal(t, 0, logs.Len())
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.Dispatched.WithLabelValues("user", "createUser", outcomeUnmatched)))
}

func TestMetricsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	d := New(store.NewEntities(),
		WithMetrics(metrics),
		WithMiddleware(middleware.RateLimitMiddleware(0, 2)))
	ctx := context.Background()

	assert.Nil(t, d.Send(ctx, entity.NewOperationRequest("1", emi)))
	assert.NotNil(t, d.Send(ctx, entity.NewOperationRequest("2", entity.DeleteUserParam{UserID: "x"})))

	rejected := d.Send(ctx, entity.NewOperationRequest("3", emi))
	require.NotNil(t, rejected)
	assert.Equal(t, middleware.RateLimitExceeded, rejected.Message)
	assert.Equal(t, 1, d.Entities().Users.Len())

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Dispatched.WithLabelValues("user", "createUser", outcomeOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Dispatched.WithLabelValues("user", "deleteUser", outcomeFailed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Dispatched.WithLabelValues("user", "createUser", outcomeRejected)))

	metrics.DecodeFailed("json")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DecodeFailures.WithLabelValues("json")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.DecodeFailed("json")
	m.observe(entity.NewOperationRequest("1", emi), outcomeOK)
}
