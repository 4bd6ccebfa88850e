package watermark

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Keyspace:
// - flake/wm/{dc_be8}/{machine_be8} -> unix ms (be8)

var (
	sep      = byte('/')
	wmPrefix = []byte("flake/wm/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// Key builds the high-water mark key of one node.
func Key(dataCenterID, machineID int64) []byte {
	k := make([]byte, 0, len(wmPrefix)+17)
	k = append(k, wmPrefix...)
	k = appendBE8(k, uint64(dataCenterID))
	k = append(k, sep)
	k = appendBE8(k, uint64(machineID))
	return k
}

// Prefix is shared by every high-water mark key.
func Prefix() []byte { return append([]byte(nil), wmPrefix...) }

// ParseKey is the inverse of Key.
func ParseKey(k []byte) (dataCenterID, machineID int64, err error) {
	if !bytes.HasPrefix(k, wmPrefix) || len(k) != len(wmPrefix)+17 || k[len(wmPrefix)+8] != sep {
		return 0, 0, fmt.Errorf("watermark: malformed key %q", k)
	}
	rest := k[len(wmPrefix):]
	return int64(binary.BigEndian.Uint64(rest[:8])), int64(binary.BigEndian.Uint64(rest[9:])), nil
}
