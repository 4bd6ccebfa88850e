package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	flakev1 "github.com/rzbill/flake/api/flake/v1"
	idsvc "github.com/rzbill/flake/internal/services/ids"
	"github.com/rzbill/flake/pkg/id"
)

type idsSvc struct {
	flakev1.UnimplementedIDServiceServer
	svc *idsvc.Service
}

func (s *idsSvc) Next(ctx context.Context, req *flakev1.NextRequest) (*flakev1.NextResponse, error) {
	ids, err := s.svc.NextEncoded(ctx, int(req.Count), req.Format)
	if err != nil {
		return nil, toStatus(err)
	}
	format := req.Format
	if format == "" {
		format = string(id.FormatDecimal)
	}
	return &flakev1.NextResponse{Ids: ids, Format: format}, nil
}

func (s *idsSvc) Decode(ctx context.Context, req *flakev1.DecodeRequest) (*flakev1.DecodeResponse, error) {
	d, err := s.svc.Decode(ctx, req.Id, req.Format)
	if err != nil {
		return nil, toStatus(err)
	}
	return &flakev1.DecodeResponse{
		Id:           d.ID,
		Format:       string(d.Format),
		Value:        d.Value,
		Timestamp:    d.Timestamp,
		UnixMs:       d.UnixMs,
		Time:         d.Time,
		DataCenterId: d.DataCenterID,
		MachineId:    d.MachineID,
		Sequence:     d.Sequence,
	}, nil
}

func (s *idsSvc) Info(ctx context.Context, _ *flakev1.InfoRequest) (*flakev1.InfoResponse, error) {
	info, err := s.svc.Info(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	formats := make([]string, len(info.Formats))
	for i, f := range info.Formats {
		formats[i] = string(f)
	}
	return &flakev1.InfoResponse{
		EpochMs: info.EpochMs,
		Layout: flakev1.Layout{
			TimestampBits:  int32(info.Layout.TimestampBits),
			DataCenterBits: int32(info.Layout.DataCenterBits),
			MachineBits:    int32(info.Layout.MachineBits),
			SequenceBits:   int32(info.Layout.SequenceBits),
		},
		DataCenterId:  info.DataCenterID,
		MachineId:     info.MachineID,
		MaxBatch:      int32(info.MaxBatch),
		Formats:       formats,
		LastTimestamp: info.LastTimestamp,
	}, nil
}

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, idsvc.ErrInvalidArgument), errors.Is(err, id.ErrInvalidFormat):
		code = codes.InvalidArgument
	case errors.Is(err, id.ErrOverloaded):
		code = codes.ResourceExhausted
	case errors.Is(err, id.ErrClockMovedBackwards), errors.Is(err, id.ErrClockBeforeEpoch):
		code = codes.Unavailable
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}
	return status.Error(code, err.Error())
}
