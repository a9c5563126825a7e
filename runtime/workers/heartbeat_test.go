package workers

import (
	"chat-relay/mocks"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func servingStatus(t *testing.T, srv *health.Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestHeartbeatWorker_Beat(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIConnectionRegistry(ctrl)
	registry.EXPECT().Len().Return(0).AnyTimes()
	srv := health.NewServer()

	bridgeUp := true
	checks := map[string]Pinger{
		"chat.store": pingFunc(func(context.Context) error { return nil }),
		"chat.bridge": pingFunc(func(context.Context) error {
			if bridgeUp {
				return nil
			}
			return fmt.Errorf("redis down")
		}),
	}
	w := NewHeartbeatWorker(logs.GetLoggerFromLevel(slog.LevelError), srv, registry, time.Second, checks)

	// Given every dependency reachable
	w.Beat(context.Background(), nil)
	req.Equal(healthpb.HealthCheckResponse_SERVING, servingStatus(t, srv, ""))

	// When the bridge goes down
	bridgeUp = false
	w.Beat(context.Background(), nil)

	// Then the process stops serving
	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, srv, ""))
	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, srv, "chat.bridge"))
	req.Equal(healthpb.HealthCheckResponse_SERVING, servingStatus(t, srv, "chat.store"))
}
