package obi_test

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/blockberries/themis"
	"github.com/blockberries/themis/obi"
)

type verificationData struct {
	Method string `obi:"method"`
	Value  string `obi:"value"`
}

type callData struct {
	Application      string           `obi:"application"`
	VerificationData verificationData `obi:"verification_data"`
}

type everything struct {
	Flag    bool
	Small   uint8
	Medium  uint16
	Count   uint32
	Big     uint64
	Delta   int8
	Offset  int16
	Balance int32
	Height  int64
	Name    string
	Payload []byte
	Tags    []string
	Nested  []verificationData
	skipped string
	Ignored string `obi:"-"`
}

// roundTrip marshals v, unmarshals into a new T, and returns it.
func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	data, err := obi.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out T
	if err := obi.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return out
}

func TestMarshal_WireLayout(t *testing.T) {
	data, err := obi.Marshal(callData{
		Application:      "twitter",
		VerificationData: verificationData{Method: "tweet", Value: "1392033585675317252"},
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var want []byte
	want = append(want, 7, 0, 0, 0)
	want = append(want, "twitter"...)
	want = append(want, 5, 0, 0, 0)
	want = append(want, "tweet"...)
	want = append(want, 19, 0, 0, 0)
	want = append(want, "1392033585675317252"...)

	if !bytes.Equal(data, want) {
		t.Fatalf("wire layout mismatch:\n got %x\nwant %x", data, want)
	}
}

func TestMarshal_Primitives(t *testing.T) {
	cases := []struct {
		name string
		v    any
		want []byte
	}{
		{"true", true, []byte{1}},
		{"false", false, []byte{0}},
		{"u16", uint16(0x0102), []byte{0x02, 0x01}},
		{"u32", uint32(0x01020304), []byte{0x04, 0x03, 0x02, 0x01}},
		{"i64", int64(-1), []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{"empty string", "", []byte{0, 0, 0, 0}},
		{"bytes", []byte{0xde, 0xad}, []byte{2, 0, 0, 0, 0xde, 0xad}},
		{"strings", []string{"a", "bc"}, []byte{2, 0, 0, 0, 1, 0, 0, 0, 'a', 2, 0, 0, 0, 'b', 'c'}},
	}
	for _, tc := range cases {
		got, err := obi.Marshal(tc.v)
		if err != nil {
			t.Fatalf("%s: Marshal failed: %v", tc.name, err)
		}
		if !bytes.Equal(got, tc.want) {
			t.Errorf("%s: got %x, want %x", tc.name, got, tc.want)
		}
	}
}

func TestRoundTrip_AllKinds(t *testing.T) {
	v := everything{
		Flag:    true,
		Small:   7,
		Medium:  65535,
		Count:   1 << 31,
		Big:     1<<64 - 1,
		Delta:   -8,
		Offset:  -300,
		Balance: -70000,
		Height:  -1 << 40,
		Name:    "ricmontagnin",
		Payload: []byte{0x00, 0x01, 0xff},
		Tags:    []string{"tweet", "", "profile"},
		Nested:  []verificationData{{Method: "tweet", Value: "1"}, {Method: "profile", Value: "ric"}},
		skipped: "not encoded",
		Ignored: "not encoded",
	}
	got := roundTrip(t, v)

	v.skipped = ""
	v.Ignored = ""
	if !reflect.DeepEqual(got, v) {
		t.Fatalf("round-trip mismatch:\n got %+v\nwant %+v", got, v)
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	v := callData{Application: "github", VerificationData: verificationData{Method: "gist", Value: "abc"}}
	a, err := obi.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	b, err := obi.Marshal(&v)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("encoding differs between value and pointer: %x != %x", a, b)
	}
}

func TestUnmarshal_TrailingBytes(t *testing.T) {
	data, err := obi.Marshal(verificationData{Method: "tweet", Value: "1"})
	if err != nil {
		t.Fatal(err)
	}
	data = append(data, 0x00)

	var out verificationData
	err = obi.Unmarshal(data, &out)
	if !errors.Is(err, themis.ErrMalformedEncoding) {
		t.Fatalf("expected MalformedEncoding, got %v", err)
	}
}

func TestUnmarshal_Truncated(t *testing.T) {
	data, err := obi.Marshal(verificationData{Method: "tweet", Value: "1392033585675317252"})
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < len(data); n++ {
		var out verificationData
		err := obi.Unmarshal(data[:n], &out)
		if !errors.Is(err, themis.ErrMalformedEncoding) {
			t.Fatalf("truncated to %d bytes: expected MalformedEncoding, got %v", n, err)
		}
	}
}

func TestUnmarshal_DeclaredLengthTooLarge(t *testing.T) {
	var out string
	err := obi.Unmarshal([]byte{0xff, 0xff, 0xff, 0xff, 'a'}, &out)
	if !errors.Is(err, themis.ErrMalformedEncoding) {
		t.Fatalf("expected MalformedEncoding, got %v", err)
	}

	var list []string
	err = obi.Unmarshal([]byte{0xff, 0xff, 0xff, 0x7f}, &list)
	if !errors.Is(err, themis.ErrMalformedEncoding) {
		t.Fatalf("expected MalformedEncoding for oversized count, got %v", err)
	}
}

func TestUnmarshal_InvalidBool(t *testing.T) {
	var out bool
	err := obi.Unmarshal([]byte{2}, &out)
	if !errors.Is(err, themis.ErrMalformedEncoding) {
		t.Fatalf("expected MalformedEncoding, got %v", err)
	}
}

func TestUnmarshal_InvalidUTF8(t *testing.T) {
	var out string
	err := obi.Unmarshal([]byte{2, 0, 0, 0, 0xc3, 0x28}, &out)
	if !errors.Is(err, themis.ErrMalformedEncoding) {
		t.Fatalf("expected MalformedEncoding, got %v", err)
	}

	if _, err := obi.Marshal("\xc3\x28"); err == nil {
		t.Fatal("expected Marshal to reject invalid UTF-8")
	}
}

func TestUnmarshal_NeedsPointer(t *testing.T) {
	var out string
	if err := obi.Unmarshal([]byte{0, 0, 0, 0}, out); err == nil {
		t.Fatal("expected error for non-pointer target")
	}
}

func TestMarshal_UnsupportedTypes(t *testing.T) {
	for _, v := range []any{
		nil,
		42,
		uint(42),
		1.5,
		map[string]string{"a": "b"},
		[]struct{}{{}},
		(*verificationData)(nil),
	} {
		if _, err := obi.Marshal(v); !errors.Is(err, obi.ErrUnsupportedType) {
			t.Errorf("Marshal(%T): expected ErrUnsupportedType, got %v", v, err)
		}
	}
}

func TestDecoder_Streaming(t *testing.T) {
	e := obi.NewEncoder()
	e.EncodeBool(true)
	if err := e.EncodeString("https://t.co/bLokglOAel"); err != nil {
		t.Fatal(err)
	}
	e.EncodeI64(-5)

	d := obi.NewDecoder(e.Bytes())
	valid, err := d.DecodeBool()
	if err != nil || !valid {
		t.Fatalf("DecodeBool = %v, %v", valid, err)
	}
	url, err := d.DecodeString()
	if err != nil || url != "https://t.co/bLokglOAel" {
		t.Fatalf("DecodeString = %q, %v", url, err)
	}
	if d.Finish() == nil {
		t.Fatal("expected Finish to fail with unread bytes")
	}
	n, err := d.DecodeI64()
	if err != nil || n != -5 {
		t.Fatalf("DecodeI64 = %d, %v", n, err)
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestSchema(t *testing.T) {
	got, err := obi.Schema(callData{})
	if err != nil {
		t.Fatal(err)
	}
	want := "{application:string,verification_data:{method:string,value:string}}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got, err = obi.Schema(everything{})
	if err != nil {
		t.Fatal(err)
	}
	want = "{flag:bool,small:u8,medium:u16,count:u32,big:u64,delta:i8,offset:i16,balance:i32,height:i64," +
		"name:string,payload:bytes,tags:[string],nested:[{method:string,value:string}]}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
