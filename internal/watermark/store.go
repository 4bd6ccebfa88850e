package watermark

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
)

// Store persists the last issued unix millisecond of one node.
type Store struct {
	db           *pebblestore.DB
	key          []byte
	dataCenterID int64
	machineID    int64

	mu    sync.Mutex
	saved int64
}

// NewStore returns the mark of (dataCenterID, machineID) in db.
func NewStore(db *pebblestore.DB, dataCenterID, machineID int64) *Store {
	return &Store{
		db:           db,
		key:          Key(dataCenterID, machineID),
		dataCenterID: dataCenterID,
		machineID:    machineID,
	}
}

// Load returns the stored mark, or 0 when none has been saved.
func (s *Store) Load() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.load()
	if err != nil {
		return 0, err
	}
	if v > s.saved {
		s.saved = v
	}
	return v, nil
}

func (s *Store) load() (int64, error) {
	b, err := s.db.Get(s.key)
	if errors.Is(err, pebblestore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("watermark: load: %w", err)
	}
	return decodeValue(b)
}

// Save records ms unless a higher mark is already stored. It reports whether
// a write happened.
func (s *Store) Save(ms int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ms <= s.saved {
		return false, nil
	}
	current, err := s.load()
	if err != nil {
		return false, err
	}
	if ms <= current {
		s.saved = current
		return false, nil
	}
	if err := s.db.Set(s.key, appendBE8(nil, uint64(ms))); err != nil {
		return false, fmt.Errorf("watermark: save: %w", err)
	}
	s.saved = ms
	return true, nil
}

// Reset deletes the stored mark. Only safe while no generator for this node
// is running: the next process starts without a floor.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Delete(s.key); err != nil {
		return fmt.Errorf("watermark: reset: %w", err)
	}
	s.saved = 0
	return nil
}

// Mark is one persisted high-water mark.
type Mark struct {
	DataCenterID int64 `json:"dataCenterId"`
	MachineID    int64 `json:"machineId"`
	UnixMs       int64 `json:"unixMs"`
}

// List returns every mark in db ordered by (data center, machine).
func List(db *pebblestore.DB) ([]Mark, error) {
	prefix := Prefix()
	it, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: pebblestore.PrefixUpperBound(prefix)})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var marks []Mark
	for it.First(); it.Valid(); it.Next() {
		dc, machine, err := ParseKey(it.Key())
		if err != nil {
			return nil, err
		}
		ms, err := decodeValue(it.Value())
		if err != nil {
			return nil, err
		}
		marks = append(marks, Mark{DataCenterID: dc, MachineID: machine, UnixMs: ms})
	}
	return marks, it.Error()
}

func decodeValue(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("watermark: value has %d bytes, want 8", len(b))
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}
