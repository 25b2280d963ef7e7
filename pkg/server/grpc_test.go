package server

import (
	"context"
	"net"
	"testing"

	"github.com/abgdnv/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func Test_NewGRPCServer_Health(t *testing.T) {
	// given
	lis := bufconn.Listen(1024 * 1024)
	registered := false
	grpcServer, healthServer := NewGRPCServer(logger.Discard(), false, func(*grpc.Server) { registered = true })
	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough://bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	client := healthpb.NewHealthClient(conn)

	// when
	before, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	after, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)

	// then
	assert.True(t, registered)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, before.GetStatus())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, after.GetStatus())
}

func Test_RecoverPanic(t *testing.T) {
	err := recoverPanic(logger.Discard())(context.Background(), "boom")

	assert.Equal(t, codes.Internal, status.Code(err))
}
