// Package server provides the host-side wrapper that enforces the
// per-invocation state machine and routes calls to registered scripts.
package server

import (
	"fmt"
	"sync/atomic"
)

// invocationState represents a state in the invocation state machine.
type invocationState uint32

const (
	// stateIdle: no phase has run yet. Only Prepare is allowed.
	stateIdle invocationState = iota
	// statePreparing: Prepare has been called and has not returned.
	statePreparing
	// statePrepared: Prepare returned a request. Execute is the only
	// valid next call.
	statePrepared
	// stateExecuting: Execute has been called and has not returned.
	stateExecuting
	// stateFinalized: Execute produced a result. Terminal.
	stateFinalized
	// stateAborted: a phase failed. Terminal, no output.
	stateAborted
)

func (s invocationState) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case statePreparing:
		return "Preparing"
	case statePrepared:
		return "Prepared"
	case stateExecuting:
		return "Executing"
	case stateFinalized:
		return "Finalized"
	case stateAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// InvocationGuard enforces the call order of a single invocation:
// Idle -> Prepared -> Finalized, with Aborted reachable from either
// phase. Out-of-order calls are host bugs and panic.
type InvocationGuard struct {
	state atomic.Uint32
}

// NewInvocationGuard creates a guard in the Idle state.
func NewInvocationGuard() *InvocationGuard {
	g := &InvocationGuard{}
	g.state.Store(uint32(stateIdle))
	return g
}

// State returns the current invocation state.
func (g *InvocationGuard) State() string {
	return invocationState(g.state.Load()).String()
}

// AcquirePrepare transitions Idle -> Preparing.
// Panics if not in Idle state.
func (g *InvocationGuard) AcquirePrepare() {
	if !g.state.CompareAndSwap(uint32(stateIdle), uint32(statePreparing)) {
		panic(fmt.Sprintf("github.com/blockberries/themis: Prepare called in state %s (expected Idle)",
			invocationState(g.state.Load())))
	}
}

// CompletePrepare transitions Preparing -> Prepared.
func (g *InvocationGuard) CompletePrepare() {
	g.state.Store(uint32(statePrepared))
}

// AcquireExecute transitions Prepared -> Executing.
// Panics if not in Prepared state.
func (g *InvocationGuard) AcquireExecute() {
	if !g.state.CompareAndSwap(uint32(statePrepared), uint32(stateExecuting)) {
		panic(fmt.Sprintf("github.com/blockberries/themis: Execute called in state %s (expected Prepared)",
			invocationState(g.state.Load())))
	}
}

// CompleteExecute transitions Executing -> Finalized.
func (g *InvocationGuard) CompleteExecute() {
	g.state.Store(uint32(stateFinalized))
}

// Abort moves the invocation to the terminal Aborted state. A phase
// that fails calls Abort instead of its Complete counterpart.
func (g *InvocationGuard) Abort() {
	g.state.Store(uint32(stateAborted))
}

// IsFinalized returns true if the invocation produced a result.
func (g *InvocationGuard) IsFinalized() bool {
	return invocationState(g.state.Load()) == stateFinalized
}

// IsAborted returns true if the invocation was aborted.
func (g *InvocationGuard) IsAborted() bool {
	return invocationState(g.state.Load()) == stateAborted
}
