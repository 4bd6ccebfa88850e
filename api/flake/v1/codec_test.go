package flakev1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodecPlainMessages(t *testing.T) {
	c := jsonCodec{}
	in := &DecodeResponse{Id: "42", Format: "decimal", Value: 42, Time: time.UnixMilli(1_600_000_000_000).UTC(), MachineId: 3}
	b, err := c.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"machineId":3`)

	var out DecodeResponse
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, *in, out)
}

func TestCodecProtoMessages(t *testing.T) {
	c := jsonCodec{}
	b, err := c.Marshal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"SERVING"`)

	var req healthpb.HealthCheckRequest
	require.NoError(t, c.Unmarshal([]byte(`{"service":"flake.v1.IDService","extra":1}`), &req))
	assert.Equal(t, ServiceName, req.GetService())
}
