package id

import (
	"errors"
	"fmt"
	"time"
)

const (
	// UsableBits is every bit of an int64 except the sign bit.
	UsableBits = 63
	// MinTimestampBits rejects layouts whose timestamp wraps in under ~49 days.
	MinTimestampBits = 32
)

// DefaultEpoch is the reference zero for the timestamp field.
var DefaultEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultLayout is the classic 41/5/5/12 split: ~69 years from the epoch, 32
// data centers of 32 machines, 4096 ids per millisecond per machine.
var DefaultLayout = Layout{
	TimestampBits:  41,
	DataCenterBits: 5,
	MachineBits:    5,
	SequenceBits:   12,
}

// ErrLayout reports a bit allocation that does not fit into an ID.
var ErrLayout = errors.New("invalid bit layout")

// Layout is the bit allocation of an ID, excluding the sign bit.
type Layout struct {
	TimestampBits  int `json:"timestampBits" yaml:"timestampBits"`
	DataCenterBits int `json:"dataCenterBits" yaml:"dataCenterBits"`
	MachineBits    int `json:"machineBits" yaml:"machineBits"`
	SequenceBits   int `json:"sequenceBits" yaml:"sequenceBits"`
}

// Parts are the four fields packed into an ID. Timestamp is the millisecond
// delta from the epoch, not unix time.
type Parts struct {
	Timestamp    int64 `json:"timestamp"`
	DataCenterID int64 `json:"dataCenterId"`
	MachineID    int64 `json:"machineId"`
	Sequence     int64 `json:"sequence"`
}

// IsZero reports whether no widths are set.
func (l Layout) IsZero() bool { return l == Layout{} }

// Validate checks the widths sum to UsableBits and each field is usable.
func (l Layout) Validate() error {
	if l.TimestampBits < MinTimestampBits {
		return fmt.Errorf("timestamp bits %d < %d: %w", l.TimestampBits, MinTimestampBits, ErrLayout)
	}
	if l.SequenceBits < 1 {
		return fmt.Errorf("sequence bits %d < 1: %w", l.SequenceBits, ErrLayout)
	}
	if l.DataCenterBits < 0 || l.MachineBits < 0 {
		return fmt.Errorf("negative data center (%d) or machine (%d) bits: %w", l.DataCenterBits, l.MachineBits, ErrLayout)
	}
	if sum := l.TimestampBits + l.DataCenterBits + l.MachineBits + l.SequenceBits; sum != UsableBits {
		return fmt.Errorf("widths sum to %d, want %d: %w", sum, UsableBits, ErrLayout)
	}
	return nil
}

// Largest value each field can hold.
func (l Layout) MaxTimestamp() int64    { return mask(l.TimestampBits) }
func (l Layout) MaxDataCenterID() int64 { return mask(l.DataCenterBits) }
func (l Layout) MaxMachineID() int64    { return mask(l.MachineBits) }
func (l Layout) MaxSequence() int64     { return mask(l.SequenceBits) }

func (l Layout) machineShift() int    { return l.SequenceBits }
func (l Layout) dataCenterShift() int { return l.SequenceBits + l.MachineBits }
func (l Layout) timestampShift() int  { return l.SequenceBits + l.MachineBits + l.DataCenterBits }

// Compose packs p into an ID. Every field must be within its width.
func (l Layout) Compose(p Parts) (ID, error) {
	switch {
	case p.Timestamp < 0 || p.Timestamp > l.MaxTimestamp():
		return 0, fmt.Errorf("timestamp %d out of [0, %d]: %w", p.Timestamp, l.MaxTimestamp(), ErrTimestampOverflow)
	case p.DataCenterID < 0 || p.DataCenterID > l.MaxDataCenterID():
		return 0, fmt.Errorf("data center id %d out of [0, %d]: %w", p.DataCenterID, l.MaxDataCenterID(), ErrDataCenterIDRange)
	case p.MachineID < 0 || p.MachineID > l.MaxMachineID():
		return 0, fmt.Errorf("machine id %d out of [0, %d]: %w", p.MachineID, l.MaxMachineID(), ErrMachineIDRange)
	case p.Sequence < 0 || p.Sequence > l.MaxSequence():
		return 0, fmt.Errorf("sequence %d out of [0, %d]: %w", p.Sequence, l.MaxSequence(), ErrLayout)
	}
	return l.pack(p.Timestamp, l.node(p.DataCenterID, p.MachineID), p.Sequence), nil
}

// Decode splits an ID into its fields without loss.
func (l Layout) Decode(id ID) Parts {
	v := int64(id)
	return Parts{
		Timestamp:    (v >> l.timestampShift()) & l.MaxTimestamp(),
		DataCenterID: (v >> l.dataCenterShift()) & l.MaxDataCenterID(),
		MachineID:    (v >> l.machineShift()) & l.MaxMachineID(),
		Sequence:     v & l.MaxSequence(),
	}
}

// node pre-shifts the data center and machine ids into their positions.
func (l Layout) node(dataCenterID, machineID int64) int64 {
	return dataCenterID<<l.dataCenterShift() | machineID<<l.machineShift()
}

func (l Layout) pack(delta, node, seq int64) ID {
	return ID(delta<<l.timestampShift() | node | seq)
}

func mask(bits int) int64 {
	if bits <= 0 {
		return 0
	}
	return int64(1)<<bits - 1
}
