package obi

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/blockberries/themis"
)

// Decoder reads canonically encoded values from a byte slice.
// Every failure is a themis.KindMalformedEncoding structural error.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder creates a decoder over data. The slice is not copied.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

// Finish fails if any bytes are left unread.
func (d *Decoder) Finish() error {
	if n := d.Remaining(); n != 0 {
		return malformed("%d trailing bytes after offset %d", n, d.pos)
	}
	return nil
}

func (d *Decoder) take(n uint64) ([]byte, error) {
	if n > uint64(d.Remaining()) {
		return nil, malformed("need %d bytes at offset %d, have %d", n, d.pos, d.Remaining())
	}
	b := d.data[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return b, nil
}

func (d *Decoder) DecodeBool() (bool, error) {
	b, err := d.take(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, malformed("invalid bool byte 0x%02x at offset %d", b[0], d.pos-1)
	}
}

func (d *Decoder) DecodeU8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) DecodeU16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) DecodeU32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) DecodeU64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) DecodeI8() (int8, error) {
	v, err := d.DecodeU8()
	return int8(v), err
}

func (d *Decoder) DecodeI16() (int16, error) {
	v, err := d.DecodeU16()
	return int16(v), err
}

func (d *Decoder) DecodeI32() (int32, error) {
	v, err := d.DecodeU32()
	return int32(v), err
}

func (d *Decoder) DecodeI64() (int64, error) {
	v, err := d.DecodeU64()
	return int64(v), err
}

// DecodeBytes reads a length-prefixed byte string. The result is a
// copy; a zero length yields nil.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	n, err := d.DecodeU32()
	if err != nil {
		return nil, err
	}
	b, err := d.take(uint64(n))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// DecodeString reads a length-prefixed UTF-8 string.
func (d *Decoder) DecodeString() (string, error) {
	n, err := d.DecodeU32()
	if err != nil {
		return "", err
	}
	start := d.pos
	b, err := d.take(uint64(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", malformed("string at offset %d is not valid UTF-8", start)
	}
	return string(b), nil
}

func malformed(format string, args ...any) error {
	return themis.NewStructuralError(themis.KindMalformedEncoding, format, args...)
}
