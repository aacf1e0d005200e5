package obi

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Encoder appends canonically encoded values to a buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) EncodeBool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
		return
	}
	e.buf = append(e.buf, 0)
}

func (e *Encoder) EncodeU8(v uint8)   { e.buf = append(e.buf, v) }
func (e *Encoder) EncodeU16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *Encoder) EncodeU32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *Encoder) EncodeU64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }
func (e *Encoder) EncodeI8(v int8)    { e.EncodeU8(uint8(v)) }
func (e *Encoder) EncodeI16(v int16)  { e.EncodeU16(uint16(v)) }
func (e *Encoder) EncodeI32(v int32)  { e.EncodeU32(uint32(v)) }
func (e *Encoder) EncodeI64(v int64)  { e.EncodeU64(uint64(v)) }

// EncodeBytes writes a u32 length followed by the raw bytes.
func (e *Encoder) EncodeBytes(v []byte) error {
	if uint64(len(v)) > math.MaxUint32 {
		return fmt.Errorf("obi: byte string of %d bytes exceeds u32 length", len(v))
	}
	e.EncodeU32(uint32(len(v)))
	e.buf = append(e.buf, v...)
	return nil
}

// EncodeString writes a u32 length followed by the UTF-8 bytes.
// Strings that are not valid UTF-8 are rejected.
func (e *Encoder) EncodeString(v string) error {
	if !utf8.ValidString(v) {
		return fmt.Errorf("obi: string is not valid UTF-8")
	}
	if uint64(len(v)) > math.MaxUint32 {
		return fmt.Errorf("obi: string of %d bytes exceeds u32 length", len(v))
	}
	e.EncodeU32(uint32(len(v)))
	e.buf = append(e.buf, v...)
	return nil
}
