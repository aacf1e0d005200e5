package server

import (
	"testing"
)

func TestInvocationGuard_HappyPath(t *testing.T) {
	g := NewInvocationGuard()

	// Idle → Preparing → Prepared
	g.AcquirePrepare()
	g.CompletePrepare()

	if g.State() != "Prepared" {
		t.Fatalf("expected Prepared, got %s", g.State())
	}

	// Prepared → Executing → Finalized
	g.AcquireExecute()
	g.CompleteExecute()

	if !g.IsFinalized() {
		t.Fatal("expected Finalized after execute")
	}
}

func TestInvocationGuard_ExecuteWithoutPrepare(t *testing.T) {
	g := NewInvocationGuard()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for execute without prepare")
		}
	}()

	g.AcquireExecute()
}

func TestInvocationGuard_DoublePrepare(t *testing.T) {
	g := NewInvocationGuard()
	g.AcquirePrepare()
	g.CompletePrepare()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for double prepare")
		}
	}()

	g.AcquirePrepare()
}

func TestInvocationGuard_DoubleExecute(t *testing.T) {
	g := NewInvocationGuard()
	g.AcquirePrepare()
	g.CompletePrepare()
	g.AcquireExecute()
	g.CompleteExecute()

	// Finalized is terminal.
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for execute after finalize")
		}
	}()

	g.AcquireExecute()
}

func TestInvocationGuard_AbortIsTerminal(t *testing.T) {
	g := NewInvocationGuard()
	g.AcquirePrepare()
	g.Abort()

	if !g.IsAborted() {
		t.Fatal("expected Aborted after failed prepare")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for execute after abort")
		}
	}()

	g.AcquireExecute()
}

func TestInvocationGuard_AbortDuringExecute(t *testing.T) {
	g := NewInvocationGuard()
	g.AcquirePrepare()
	g.CompletePrepare()
	g.AcquireExecute()
	g.Abort()

	if !g.IsAborted() || g.IsFinalized() {
		t.Fatalf("expected Aborted, got %s", g.State())
	}
}

func TestInvocationGuard_State(t *testing.T) {
	g := NewInvocationGuard()

	if g.State() != "Idle" {
		t.Errorf("expected Idle, got %s", g.State())
	}

	g.AcquirePrepare()
	if g.State() != "Preparing" {
		t.Errorf("expected Preparing, got %s", g.State())
	}

	g.CompletePrepare()
	g.AcquireExecute()
	if g.State() != "Executing" {
		t.Errorf("expected Executing, got %s", g.State())
	}
}
