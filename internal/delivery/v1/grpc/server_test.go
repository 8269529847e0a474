package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"

	"github.com/DRSN-tech/catalog-admin/internal/cfg"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type switchPinger struct{ down atomic.Bool }

func (p *switchPinger) Ping(context.Context) error {
	if p.down.Load() {
		return errors.New("db down")
	}
	return nil
}

func startServer(t *testing.T) (*GRPCServer, healthpb.HealthClient) {
	t.Helper()

	log := logger.NewFromSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := NewGRPCServer(&cfg.GRPCConfig{}, log)
	srv.RegisterServices()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return srv, healthpb.NewHealthClient(conn)
}

func TestHealthFollowsDatabase(t *testing.T) {
	srv, client := startServer(t)
	ctx := context.Background()
	pinger := &switchPinger{}

	srv.probe(ctx, pinger)
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	pinger.down.Store(true)
	srv.probe(ctx, pinger)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestHealthUnknownService(t *testing.T) {
	_, client := startServer(t)

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "nope"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPCErrorResponse(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{err: e.Persistence(e.ErrReferentialIntegrity), want: codes.FailedPrecondition},
		{err: e.Persistence(e.ErrConflict), want: codes.AlreadyExists},
		{err: e.Wrap("op", e.ErrNotFound), want: codes.NotFound},
		{err: e.ErrValidation, want: codes.InvalidArgument},
		{err: errors.New("boom"), want: codes.Internal},
		{err: status.Error(codes.Unavailable, "x"), want: codes.Unavailable},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, status.Code(GRPCErrorResponse(tt.err)), tt.err.Error())
	}
}
