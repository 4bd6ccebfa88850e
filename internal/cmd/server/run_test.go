package serverrun

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	flakev1 "github.com/rzbill/flake/api/flake/v1"
	cfgpkg "github.com/rzbill/flake/internal/config"
	"github.com/rzbill/flake/internal/runtime"
	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
	logpkg "github.com/rzbill/flake/pkg/log"
)

func quietLogger() logpkg.Logger {
	return logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRunRequiresAnAddress(t *testing.T) {
	err := Run(context.Background(), Options{DataDir: t.TempDir(), Config: cfgpkg.Default(), Logger: quietLogger()})
	require.Error(t, err)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Generator.MachineID = 99

	err := Run(context.Background(), Options{
		DataDir:  t.TempDir(),
		HTTPAddr: freeAddr(t),
		Config:   cfg,
		Logger:   quietLogger(),
	})
	require.Error(t, err)
}

func TestRunServesBothTransportsAndPersistsWatermark(t *testing.T) {
	dataDir := t.TempDir()
	httpAddr := freeAddr(t)
	grpcAddr := freeAddr(t)

	cfg := cfgpkg.Default()
	cfg.Generator.DataCenterID = 2
	cfg.Generator.MachineID = 7

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			DataDir:  dataDir,
			GRPCAddr: grpcAddr,
			HTTPAddr: httpAddr,
			Fsync:    pebblestore.FsyncModeAlways,
			Config:   cfg,
			Logger:   quietLogger(),
		})
	}()

	base := "http://" + httpAddr + "/v1"
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get(base + "/ids?count=3")
	require.NoError(t, err)
	var out struct {
		IDs    []string `json:"ids"`
		Format string   `json:"format"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	require.Len(t, out.IDs, 3)

	conn, err := grpc.Dial(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := flakev1.NewIDServiceClient(conn)
	dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dcancel()
	dec, err := client.Decode(dctx, &flakev1.DecodeRequest{Id: out.IDs[0]})
	require.NoError(t, err)
	assert.EqualValues(t, 2, dec.DataCenterId)
	assert.EqualValues(t, 7, dec.MachineId)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	rt, err := runtime.Open(runtime.Options{DataDir: filepath.Join(dataDir, "store"), Config: cfg})
	require.NoError(t, err)
	defer rt.Close()
	marks, err := rt.Watermarks()
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.EqualValues(t, 2, marks[0].DataCenterID)
	assert.EqualValues(t, 7, marks[0].MachineID)
	assert.GreaterOrEqual(t, marks[0].UnixMs, dec.UnixMs)
}

func TestRunReturnsListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(context.Background(), Options{
			DataDir:  t.TempDir(),
			HTTPAddr: l.Addr().String(),
			Config:   cfgpkg.Default(),
			Logger:   quietLogger(),
		})
	}()
	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not fail on an occupied address")
	}
}

func TestProcessLoggerFallsBackOnBadFormat(t *testing.T) {
	l := processLogger(logpkg.Config{Level: "debug", Format: "xml", Output: "null"})
	require.NotNil(t, l)
	assert.Equal(t, logpkg.DebugLevel, l.GetLevel())
}
