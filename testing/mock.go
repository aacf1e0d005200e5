// Package themistest provides test utilities for oracle script
// development, including a configurable mock, a test harness,
// and an invocation compliance test suite.
package themistest

import (
	"sync/atomic"

	"github.com/blockberries/themis"
)

// Compile-time check that MockScript satisfies the interface.
var _ themis.Script = (*MockScript)(nil)

// MockScript is a configurable mock script for host testing.
// All methods are configurable via function fields. Unconfigured
// methods return sensible zero-value defaults.
type MockScript struct {
	// ScriptName is returned by Name. Defaults to "mock".
	ScriptName string

	// Configurable handlers. If nil, defaults are used.
	InfoFn    func() themis.ScriptInfo
	PrepareFn func(callInput []byte) (themis.Request, error)
	ExecuteFn func(env themis.Env, callInput []byte, responses [][]byte) ([]byte, error)

	// Call counters (atomic for concurrent access).
	PrepareCalls atomic.Int64
	ExecuteCalls atomic.Int64
}

func (m *MockScript) Name() string {
	if m.ScriptName == "" {
		return "mock"
	}
	return m.ScriptName
}

func (m *MockScript) Info() themis.ScriptInfo {
	if m.InfoFn != nil {
		return m.InfoFn()
	}
	return themis.ScriptInfo{Name: m.Name()}
}

// Prepare defaults to forwarding the call input as calldata to source 1.
func (m *MockScript) Prepare(callInput []byte) (themis.Request, error) {
	m.PrepareCalls.Add(1)
	if m.PrepareFn != nil {
		return m.PrepareFn(callInput)
	}
	return themis.Request{SourceID: 1, Calldata: callInput}, nil
}

// Execute defaults to returning the first response.
func (m *MockScript) Execute(env themis.Env, callInput []byte, responses [][]byte) ([]byte, error) {
	m.ExecuteCalls.Add(1)
	if m.ExecuteFn != nil {
		return m.ExecuteFn(env, callInput, responses)
	}
	if len(responses) == 0 {
		return nil, themis.NewStructuralError(themis.KindMalformedResponse, "no responses")
	}
	return responses[0], nil
}
