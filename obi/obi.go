// Package obi implements the canonical binary encoding used for every
// call input and result crossing the oracle host boundary.
//
// Wire rules:
//
//	bool            1 byte, 0 or 1
//	u8..u64, i8..i64 fixed width, little-endian
//	string, []byte  u32 little-endian length, then the raw bytes
//	[]T             u32 little-endian count, then each element
//	struct          exported fields in declaration order, no padding
//
// The same logical value always encodes to the same bytes. Decoding is
// strict: a declared length larger than the remaining input, or input
// left over after the last field, is a MalformedEncoding error.
// Platform-sized int/uint, maps, floats and interfaces are not
// encodable.
//
// Fields tagged `obi:"-"` are skipped. `obi:"name"` sets the field name
// used by Schema; untagged fields use their snake_cased Go name.
package obi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// ErrUnsupportedType is returned for Go types with no canonical encoding.
var ErrUnsupportedType = errors.New("obi: unsupported type")

// Marshal returns the canonical encoding of v.
func Marshal(v any) ([]byte, error) {
	e := NewEncoder()
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Unmarshal decodes data into the value pointed to by v. All of data
// must be consumed.
func Unmarshal(data []byte, v any) error {
	d := NewDecoder(data)
	if err := d.Decode(v); err != nil {
		return err
	}
	return d.Finish()
}

// Encode appends the canonical encoding of v.
func (e *Encoder) Encode(v any) error {
	return e.encodeValue(reflect.ValueOf(v))
}

// Decode reads one value into the value pointed to by v. Unlike
// Unmarshal it does not check for trailing bytes.
func (d *Decoder) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("obi: decode target must be a non-nil pointer, got %T", v)
	}
	return d.decodeValue(rv.Elem())
}

func (e *Encoder) encodeValue(v reflect.Value) error {
	if !v.IsValid() {
		return fmt.Errorf("%w: nil", ErrUnsupportedType)
	}
	switch v.Kind() {
	case reflect.Bool:
		e.EncodeBool(v.Bool())
	case reflect.Uint8:
		e.EncodeU8(uint8(v.Uint()))
	case reflect.Uint16:
		e.EncodeU16(uint16(v.Uint()))
	case reflect.Uint32:
		e.EncodeU32(uint32(v.Uint()))
	case reflect.Uint64:
		e.EncodeU64(v.Uint())
	case reflect.Int8:
		e.EncodeI8(int8(v.Int()))
	case reflect.Int16:
		e.EncodeI16(int16(v.Int()))
	case reflect.Int32:
		e.EncodeI32(int32(v.Int()))
	case reflect.Int64:
		e.EncodeI64(v.Int())
	case reflect.String:
		return e.EncodeString(v.String())
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return e.EncodeBytes(v.Bytes())
		}
		if _, err := minSize(v.Type().Elem()); err != nil {
			return err
		}
		if uint64(v.Len()) > 1<<32-1 {
			return fmt.Errorf("obi: slice of %d elements exceeds u32 count", v.Len())
		}
		e.EncodeU32(uint32(v.Len()))
		for i := 0; i < v.Len(); i++ {
			if err := e.encodeValue(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for _, f := range fieldsOf(v.Type()) {
			if err := e.encodeValue(v.Field(f.index)); err != nil {
				return fmt.Errorf("%s.%s: %w", v.Type().Name(), f.name, err)
			}
		}
	case reflect.Pointer:
		if v.IsNil() {
			return fmt.Errorf("%w: nil %s", ErrUnsupportedType, v.Type())
		}
		return e.encodeValue(v.Elem())
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
	}
	return nil
}

func (d *Decoder) decodeValue(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		b, err := d.DecodeBool()
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Uint8:
		x, err := d.DecodeU8()
		if err != nil {
			return err
		}
		v.SetUint(uint64(x))
	case reflect.Uint16:
		x, err := d.DecodeU16()
		if err != nil {
			return err
		}
		v.SetUint(uint64(x))
	case reflect.Uint32:
		x, err := d.DecodeU32()
		if err != nil {
			return err
		}
		v.SetUint(uint64(x))
	case reflect.Uint64:
		x, err := d.DecodeU64()
		if err != nil {
			return err
		}
		v.SetUint(x)
	case reflect.Int8:
		x, err := d.DecodeI8()
		if err != nil {
			return err
		}
		v.SetInt(int64(x))
	case reflect.Int16:
		x, err := d.DecodeI16()
		if err != nil {
			return err
		}
		v.SetInt(int64(x))
	case reflect.Int32:
		x, err := d.DecodeI32()
		if err != nil {
			return err
		}
		v.SetInt(int64(x))
	case reflect.Int64:
		x, err := d.DecodeI64()
		if err != nil {
			return err
		}
		v.SetInt(x)
	case reflect.String:
		s, err := d.DecodeString()
		if err != nil {
			return err
		}
		v.SetString(s)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b, err := d.DecodeBytes()
			if err != nil {
				return err
			}
			v.SetBytes(b)
			return nil
		}
		return d.decodeSlice(v)
	case reflect.Struct:
		for _, f := range fieldsOf(v.Type()) {
			if err := d.decodeValue(v.Field(f.index)); err != nil {
				return err
			}
		}
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return d.decodeValue(v.Elem())
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
	}
	return nil
}

func (d *Decoder) decodeSlice(v reflect.Value) error {
	elemSize, err := minSize(v.Type().Elem())
	if err != nil {
		return err
	}
	n, err := d.DecodeU32()
	if err != nil {
		return err
	}
	// Reject counts the remaining input cannot possibly hold before
	// allocating anything.
	if uint64(n)*uint64(elemSize) > uint64(d.Remaining()) {
		return malformed("%d elements of at least %d bytes exceed the %d remaining bytes", n, elemSize, d.Remaining())
	}
	if n == 0 {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	s := reflect.MakeSlice(v.Type(), int(n), int(n))
	for i := 0; i < int(n); i++ {
		if err := d.decodeValue(s.Index(i)); err != nil {
			return err
		}
	}
	v.Set(s)
	return nil
}

// Schema describes the encoded shape of v, e.g.
// {application:string,verification_data:{method:string,value:string}}.
func Schema(v any) (string, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return "", fmt.Errorf("%w: nil", ErrUnsupportedType)
	}
	return schemaOf(t)
}

func schemaOf(t reflect.Type) (string, error) {
	switch t.Kind() {
	case reflect.Bool:
		return "bool", nil
	case reflect.Uint8:
		return "u8", nil
	case reflect.Uint16:
		return "u16", nil
	case reflect.Uint32:
		return "u32", nil
	case reflect.Uint64:
		return "u64", nil
	case reflect.Int8:
		return "i8", nil
	case reflect.Int16:
		return "i16", nil
	case reflect.Int32:
		return "i32", nil
	case reflect.Int64:
		return "i64", nil
	case reflect.String:
		return "string", nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "bytes", nil
		}
		inner, err := schemaOf(t.Elem())
		if err != nil {
			return "", err
		}
		return "[" + inner + "]", nil
	case reflect.Struct:
		fields := fieldsOf(t)
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			inner, err := schemaOf(t.Field(f.index).Type)
			if err != nil {
				return "", err
			}
			parts = append(parts, f.name+":"+inner)
		}
		return "{" + strings.Join(parts, ",") + "}", nil
	case reflect.Pointer:
		return schemaOf(t.Elem())
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// minSize returns the smallest number of bytes a value of type t
// encodes to. Zero-sized element types are rejected because a slice of
// them could declare billions of elements in four bytes.
func minSize(t reflect.Type) (int, error) {
	switch t.Kind() {
	case reflect.Bool, reflect.Uint8, reflect.Int8:
		return 1, nil
	case reflect.Uint16, reflect.Int16:
		return 2, nil
	case reflect.Uint32, reflect.Int32, reflect.String, reflect.Slice:
		return 4, nil
	case reflect.Uint64, reflect.Int64:
		return 8, nil
	case reflect.Pointer:
		return minSize(t.Elem())
	case reflect.Struct:
		total := 0
		for _, f := range fieldsOf(t) {
			n, err := minSize(t.Field(f.index).Type)
			if err != nil {
				return 0, err
			}
			total += n
		}
		if total == 0 {
			return 0, fmt.Errorf("%w: zero-sized element %s", ErrUnsupportedType, t)
		}
		return total, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

type field struct {
	index int
	name  string
}

func fieldsOf(t reflect.Type) []field {
	fields := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("obi")
		if tag == "-" {
			continue
		}
		name := tag
		if name == "" {
			name = snakeCase(sf.Name)
		}
		fields = append(fields, field{index: i, name: name})
	}
	return fields
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
