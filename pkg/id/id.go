package id

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ID is a 64-bit snowflake identifier. Valid IDs are never negative.
type ID int64

// Format names a textual encoding of an ID.
type Format string

// Supported encodings. The non-decimal forms follow github.com/bwmarrin/snowflake
// so ids stay interchangeable with services built on it.
const (
	FormatDecimal Format = "decimal"
	FormatBase2   Format = "base2"
	FormatBase32  Format = "base32"
	FormatBase36  Format = "base36"
	FormatBase58  Format = "base58"
	FormatBase64  Format = "base64"
)

// ErrInvalidFormat is returned for unknown format names and unparsable ids.
var ErrInvalidFormat = errors.New("invalid id format")

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatDecimal, FormatBase2, FormatBase32, FormatBase36, FormatBase58, FormatBase64}
}

// ParseFormat resolves a format name. The empty string means decimal.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatDecimal, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidFormat)
}

// Int64 returns the raw integer value.
func (i ID) Int64() int64 { return int64(i) }

// String returns the decimal representation.
func (i ID) String() string { return strconv.FormatInt(int64(i), 10) }

// Bytes returns the 8-byte big-endian representation, which sorts like the
// integer for valid ids.
func (i ID) Bytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(i))
	return b
}

// Compare returns -1, 0, 1 based on numeric comparison.
func (i ID) Compare(other ID) int {
	switch {
	case i < other:
		return -1
	case i > other:
		return 1
	default:
		return 0
	}
}

// Encode renders the id in the given format. Unknown formats fall back to
// decimal.
func (i ID) Encode(f Format) string {
	sf := snowflake.ParseInt64(int64(i))
	switch f {
	case FormatBase2:
		return sf.Base2()
	case FormatBase32:
		return sf.Base32()
	case FormatBase36:
		return sf.Base36()
	case FormatBase58:
		return sf.Base58()
	case FormatBase64:
		return sf.Base64()
	default:
		return i.String()
	}
}

// ParseID parses s according to f.
func ParseID(s string, f Format) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty id: %w", ErrInvalidFormat)
	}
	var (
		sf  snowflake.ID
		err error
	)
	switch f {
	case FormatDecimal, "":
		sf, err = snowflake.ParseString(s)
	case FormatBase2:
		sf, err = snowflake.ParseBase2(s)
	case FormatBase32:
		sf, err = snowflake.ParseBase32([]byte(s))
	case FormatBase36:
		sf, err = snowflake.ParseBase36(s)
	case FormatBase58:
		sf, err = snowflake.ParseBase58([]byte(s))
	case FormatBase64:
		sf, err = snowflake.ParseBase64(s)
	default:
		return 0, fmt.Errorf("%q: %w", f, ErrInvalidFormat)
	}
	if err != nil {
		return 0, fmt.Errorf("%s id %q: %v: %w", f, s, err, ErrInvalidFormat)
	}
	if sf < 0 {
		return 0, fmt.Errorf("%s id %q is negative: %w", f, s, ErrInvalidFormat)
	}
	// The base32 and base58 decoders wrap on overflow instead of failing, so
	// only the canonical spelling of a value is accepted.
	if (f == FormatBase32 || f == FormatBase58) && ID(sf).Encode(f) != s {
		return 0, fmt.Errorf("%s id %q is not canonical: %w", f, s, ErrInvalidFormat)
	}
	return ID(sf), nil
}
