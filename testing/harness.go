package themistest

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/blockberries/themis"
	"github.com/blockberries/themis/obi"
	"github.com/blockberries/themis/server"
	"github.com/blockberries/themis/types"
)

// Harness provides a convenient test harness for script developers
// to run their scripts through the invocation state machine.
type Harness struct {
	t   *testing.T
	srv *server.Server
}

// NewHarness creates a test harness serving the given scripts.
func NewHarness(t *testing.T, scripts ...themis.Script) *Harness {
	t.Helper()
	srv, err := server.New(nil, scripts...)
	if err != nil {
		t.Fatalf("server.New failed: %v", err)
	}
	return &Harness{t: t, srv: srv}
}

// Server returns the underlying server for direct access.
func (h *Harness) Server() *server.Server {
	return h.srv
}

// Begin starts a new invocation of the named script.
func (h *Harness) Begin(name string) *server.Invocation {
	h.t.Helper()
	inv, err := h.srv.Begin(name)
	if err != nil {
		h.t.Fatalf("Begin(%s) failed: %v", name, err)
	}
	return inv
}

// Prepare runs the prepare phase of a fresh invocation.
func (h *Harness) Prepare(name string, callInput []byte) themis.Request {
	h.t.Helper()
	req, err := h.srv.Prepare(context.Background(), name, callInput)
	if err != nil {
		h.t.Fatalf("Prepare(%s) failed: %v", name, err)
	}
	return req
}

// Execute runs a complete invocation and returns the encoded result.
func (h *Harness) Execute(name string, env themis.Env, callInput []byte, responses [][]byte) []byte {
	h.t.Helper()
	out, err := h.srv.Execute(context.Background(), name, env, callInput, responses)
	if err != nil {
		h.t.Fatalf("Execute(%s) failed: %v", name, err)
	}
	return out
}

// MustAbort asserts that a complete invocation aborts with a structural
// error of the given kind and produces no output.
func (h *Harness) MustAbort(name string, env themis.Env, callInput []byte, responses [][]byte, kind themis.ErrorKind) {
	h.t.Helper()
	out, err := h.srv.Execute(context.Background(), name, env, callInput, responses)
	if err == nil {
		h.t.Fatalf("expected %s abort, got result %x", kind, out)
	}
	if !errors.Is(err, &themis.StructuralError{Kind: kind}) {
		h.t.Fatalf("expected %s abort, got %v", kind, err)
	}
	if out != nil {
		h.t.Fatalf("aborted invocation produced output %x", out)
	}
}

// Decode decodes an encoded result into v.
func (h *Harness) Decode(result []byte, v any) {
	h.t.Helper()
	if err := obi.Unmarshal(result, v); err != nil {
		h.t.Fatalf("decode result: %v", err)
	}
}

// --- Helper Factories ---

// VerificationInput encodes a verification-request call input.
func VerificationInput(application, method, value string) []byte {
	bz, err := obi.Marshal(types.VerificationCallInput{
		Application:      application,
		VerificationData: types.VerificationData{Method: method, Value: value},
	})
	if err != nil {
		panic(err)
	}
	return bz
}

// HexInput encodes a raw hex call input carrying payload.
func HexInput(application string, payload []byte) []byte {
	bz, err := obi.Marshal(types.HexCallInput{
		Application: application,
		CallData:    hex.EncodeToString(payload),
	})
	if err != nil {
		panic(err)
	}
	return bz
}

// Responses returns n copies of raw, as collected from n sources.
func Responses(raw string, n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte(raw)
	}
	return out
}
