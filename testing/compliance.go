package themistest

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/blockberries/themis"
)

// Fixture is a well-formed invocation of the script under test.
type Fixture struct {
	CallInput []byte
	Env       themis.Env
	Responses [][]byte
}

// RunComplianceSuite runs a standard compliance test suite against
// a script to verify deterministic two-phase behavior.
//
// The factory function should return a fresh script instance for each
// test; the fixture must be an invocation the script finalizes.
func RunComplianceSuite(t *testing.T, factory func() themis.Script, fx Fixture) {
	t.Helper()

	t.Run("info_matches_name", func(t *testing.T) {
		s := factory()
		info := s.Info()
		if info.Name != s.Name() {
			t.Errorf("info name %q differs from script name %q", info.Name, s.Name())
		}
	})

	t.Run("single_request", func(t *testing.T) {
		s := factory()
		h := NewHarness(t, s)
		req := h.Prepare(s.Name(), fx.CallInput)
		if req.ExternalID != 0 {
			t.Errorf("expected external id 0, got %d", req.ExternalID)
		}
	})

	t.Run("prepare_deterministic", func(t *testing.T) {
		s1, s2 := factory(), factory()
		r1 := NewHarness(t, s1).Prepare(s1.Name(), fx.CallInput)
		r2 := NewHarness(t, s2).Prepare(s2.Name(), fx.CallInput)

		if r1.SourceID != r2.SourceID || !bytes.Equal(r1.Calldata, r2.Calldata) {
			t.Errorf("non-deterministic request: %+v != %+v", r1, r2)
		}
	})

	t.Run("execute_deterministic", func(t *testing.T) {
		s1, s2 := factory(), factory()
		o1 := NewHarness(t, s1).Execute(s1.Name(), fx.Env, fx.CallInput, fx.Responses)
		o2 := NewHarness(t, s2).Execute(s2.Name(), fx.Env, fx.CallInput, fx.Responses)

		if !bytes.Equal(o1, o2) {
			t.Errorf("non-deterministic result: %x != %x", o1, o2)
		}
	})

	t.Run("invocation_states", func(t *testing.T) {
		s := factory()
		h := NewHarness(t, s)
		inv := h.Begin(s.Name())
		if inv.State() != "Idle" {
			t.Fatalf("expected Idle, got %s", inv.State())
		}
		if _, err := inv.Prepare(context.Background(), fx.CallInput); err != nil {
			t.Fatalf("Prepare failed: %v", err)
		}
		if inv.State() != "Prepared" {
			t.Fatalf("expected Prepared, got %s", inv.State())
		}
		if _, err := inv.Execute(context.Background(), fx.Env, fx.Responses); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if inv.State() != "Finalized" {
			t.Fatalf("expected Finalized, got %s", inv.State())
		}
	})

	t.Run("execute_before_prepare_panics", func(t *testing.T) {
		s := factory()
		inv := NewHarness(t, s).Begin(s.Name())

		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic for execute before prepare")
			}
		}()
		_, _ = inv.Execute(context.Background(), fx.Env, fx.Responses)
	})

	t.Run("trailing_bytes_abort", func(t *testing.T) {
		s := factory()
		input := append(append([]byte{}, fx.CallInput...), 0x00)
		NewHarness(t, s).MustAbort(s.Name(), fx.Env, input, fx.Responses, themis.KindMalformedEncoding)
	})

	t.Run("truncated_input_aborts", func(t *testing.T) {
		if len(fx.CallInput) == 0 {
			t.Skip("empty call input")
		}
		s := factory()
		input := fx.CallInput[:len(fx.CallInput)-1]
		NewHarness(t, s).MustAbort(s.Name(), fx.Env, input, fx.Responses, themis.KindMalformedEncoding)
	})

	t.Run("concurrent_invocations", func(t *testing.T) {
		s := factory()
		h := NewHarness(t, s)
		want := h.Execute(s.Name(), fx.Env, fx.CallInput, fx.Responses)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, err := h.Server().Execute(context.Background(), s.Name(), fx.Env, fx.CallInput, fx.Responses)
				if err != nil {
					t.Errorf("concurrent Execute failed: %v", err)
					return
				}
				if !bytes.Equal(out, want) {
					t.Errorf("concurrent result differs: %x != %x", out, want)
				}
			}()
		}
		wg.Wait()
	})
}
