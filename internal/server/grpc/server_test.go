package grpcserver

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	flakev1 "github.com/rzbill/flake/api/flake/v1"
	cfgpkg "github.com/rzbill/flake/internal/config"
	"github.com/rzbill/flake/internal/runtime"
	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
	"github.com/rzbill/flake/pkg/id"
)

const bufSize = 1 << 20

func dialer(s *grpc.Server) func(context.Context, string) (net.Conn, error) {
	lis := bufconn.Listen(bufSize)
	go func() { _ = s.Serve(lis) }()
	return func(ctx context.Context, s string) (net.Conn, error) { return lis.DialContext(ctx) }
}

func newConn(t *testing.T, cfg cfgpkg.Config, opts ...id.Option) (*Server, *grpc.ClientConn) {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfg, GeneratorOptions: opts})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	srv := New(rt, nil)
	t.Cleanup(func() {
		srv.Close()
		_ = rt.Close()
	})
	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(dialer(srv.grpc)),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return srv, conn
}

func TestHealthOverGRPC(t *testing.T) {
	_, conn := newConn(t, cfgpkg.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := healthpb.NewHealthClient(conn)
	for _, svc := range []string{"", flakev1.ServiceName} {
		res, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: svc})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.GetStatus(), svc)
	}
}

func TestNextOverGRPC(t *testing.T) {
	_, conn := newConn(t, cfgpkg.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := flakev1.NewIDServiceClient(conn)

	var header metadata.MD
	res, err := c.Next(ctx, &flakev1.NextRequest{Count: 50, Format: "base32"}, grpc.Header(&header))
	require.NoError(t, err)
	require.Len(t, res.Ids, 50)
	assert.Equal(t, "base32", res.Format)
	assert.NotEmpty(t, header.Get("x-request-id"))

	prev := id.ID(-1)
	for _, raw := range res.Ids {
		v, err := id.ParseID(raw, id.FormatBase32)
		require.NoError(t, err)
		assert.Greater(t, v, prev)
		prev = v
	}

	one, err := c.Next(ctx, &flakev1.NextRequest{})
	require.NoError(t, err)
	assert.Len(t, one.Ids, 1)
	assert.Equal(t, "decimal", one.Format)
}

func TestDecodeAndInfoOverGRPC(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Generator.DataCenterID = 1
	cfg.Generator.MachineID = 30
	_, conn := newConn(t, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := flakev1.NewIDServiceClient(conn)

	res, err := c.Next(ctx, &flakev1.NextRequest{Count: 1})
	require.NoError(t, err)

	d, err := c.Decode(ctx, &flakev1.DecodeRequest{Id: res.Ids[0]})
	require.NoError(t, err)
	assert.Equal(t, res.Ids[0], d.Id)
	assert.EqualValues(t, 1, d.DataCenterId)
	assert.EqualValues(t, 30, d.MachineId)
	assert.Equal(t, d.UnixMs, d.Time.UnixMilli())

	info, err := c.Info(ctx, &flakev1.InfoRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 41, info.Layout.TimestampBits)
	assert.EqualValues(t, 12, info.Layout.SequenceBits)
	assert.EqualValues(t, 30, info.MachineId)
	assert.EqualValues(t, 1000, info.MaxBatch)
	assert.Contains(t, info.Formats, "base58")
}

func TestErrorCodesOverGRPC(t *testing.T) {
	var now atomic.Int64
	now.Store(id.DefaultEpoch.UnixMilli() + 5_000)
	cfg := cfgpkg.Default()
	cfg.Generator.MaxSpins = 1
	cfg.Service.MaxBatch = 5000
	_, conn := newConn(t, cfg, id.WithClock(now.Load))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := flakev1.NewIDServiceClient(conn)

	_, err := c.Next(ctx, &flakev1.NextRequest{Count: 5001})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.Decode(ctx, &flakev1.DecodeRequest{Id: "zz", Format: "decimal"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.Next(ctx, &flakev1.NextRequest{Count: 4097})
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	now.Add(-10)
	_, err = c.Next(ctx, &flakev1.NextRequest{Count: 1})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestToStatusDefaultsToInternal(t *testing.T) {
	assert.Equal(t, codes.Internal, status.Code(toStatus(assert.AnError)))
	assert.Equal(t, codes.Canceled, status.Code(toStatus(context.Canceled)))
}

func TestServeStopsHealthWatcherBeforeReturning(t *testing.T) {
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Config: cfgpkg.Default()})
	require.NoError(t, err)
	srv := New(rt, nil)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, l) }()

	conn, err := grpc.Dial(l.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	cctx, ccancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer ccancel()
	_, err = healthpb.NewHealthClient(conn).Check(cctx, &healthpb.HealthCheckRequest{}, grpc.WaitForReady(true))
	require.NoError(t, err)

	go srv.Close()
	cancel()
	require.NoError(t, <-done)
	// Nothing started by Serve touches the runtime after it returns.
	require.NoError(t, rt.Close())
	assert.Error(t, rt.CheckHealth(context.Background()))
}
