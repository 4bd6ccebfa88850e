package idsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rzbill/flake/internal/runtime"
	"github.com/rzbill/flake/pkg/id"
)

// ErrInvalidArgument marks caller mistakes: bad counts, formats or ids.
var ErrInvalidArgument = errors.New("invalid argument")

type Service struct{ rt *runtime.Runtime }

func New(rt *runtime.Runtime) *Service { return &Service{rt: rt} }

// Decoded is an id split into its fields.
type Decoded struct {
	ID           string    `json:"id"`
	Format       id.Format `json:"format"`
	Value        int64     `json:"value"`
	Timestamp    int64     `json:"timestamp"`
	UnixMs       int64     `json:"unixMs"`
	Time         time.Time `json:"time"`
	DataCenterID int64     `json:"dataCenterId"`
	MachineID    int64     `json:"machineId"`
	Sequence     int64     `json:"sequence"`
}

// Info describes the node and its layout.
type Info struct {
	Epoch         time.Time   `json:"epoch"`
	EpochMs       int64       `json:"epochMs"`
	Layout        id.Layout   `json:"layout"`
	DataCenterID  int64       `json:"dataCenterId"`
	MachineID     int64       `json:"machineId"`
	MaxBatch      int         `json:"maxBatch"`
	Formats       []id.Format `json:"formats"`
	LastTimestamp int64       `json:"lastTimestamp"`
}

// Next issues count ids in increasing order. A zero count means one. If an
// error interrupts the batch, the ids issued so far are returned with it.
func (s *Service) Next(ctx context.Context, count int) ([]id.ID, error) {
	if count == 0 {
		count = 1
	}
	if limit := s.rt.Config().Service.MaxBatch; count < 0 || count > limit {
		return nil, fmt.Errorf("count %d not in [1, %d]: %w", count, limit, ErrInvalidArgument)
	}
	gen := s.rt.Generator()
	out := make([]id.ID, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		next, err := gen.NextID()
		if err != nil {
			return out, err
		}
		out = append(out, next)
	}
	return out, nil
}

// NextEncoded is Next followed by encoding every id in format.
func (s *Service) NextEncoded(ctx context.Context, count int, format string) ([]string, error) {
	f, err := parseFormat(format)
	if err != nil {
		return nil, err
	}
	ids, err := s.Next(ctx, count)
	if err != nil {
		return nil, err
	}
	return Encode(ids, f), nil
}

// Decode parses raw in format and splits it with the node's layout.
func (s *Service) Decode(ctx context.Context, raw, format string) (Decoded, error) {
	if err := ctx.Err(); err != nil {
		return Decoded{}, err
	}
	f, err := parseFormat(format)
	if err != nil {
		return Decoded{}, err
	}
	v, err := id.ParseID(raw, f)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	gen := s.rt.Generator()
	p := gen.Decode(v)
	t := gen.Time(v)
	return Decoded{
		ID:           v.Encode(f),
		Format:       f,
		Value:        v.Int64(),
		Timestamp:    p.Timestamp,
		UnixMs:       t.UnixMilli(),
		Time:         t,
		DataCenterID: p.DataCenterID,
		MachineID:    p.MachineID,
		Sequence:     p.Sequence,
	}, nil
}

// Info reports the node identity and layout.
func (s *Service) Info(ctx context.Context) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	gen := s.rt.Generator()
	return Info{
		Epoch:         gen.Epoch(),
		EpochMs:       gen.Epoch().UnixMilli(),
		Layout:        gen.Layout(),
		DataCenterID:  gen.DataCenterID(),
		MachineID:     gen.MachineID(),
		MaxBatch:      s.rt.Config().Service.MaxBatch,
		Formats:       id.Formats(),
		LastTimestamp: gen.LastTimestamp(),
	}, nil
}

// Healthy reports whether the runtime can serve.
func (s *Service) Healthy(ctx context.Context) error { return s.rt.CheckHealth(ctx) }

// Encode renders ids in f.
func Encode(ids []id.ID, f id.Format) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = v.Encode(f)
	}
	return out
}

func parseFormat(s string) (id.Format, error) {
	f, err := id.ParseFormat(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return f, nil
}
