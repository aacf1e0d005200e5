// Package themis defines the boundary between an oracle host and the
// deterministic oracle scripts it runs.
//
// A script is a prepare/execute pair. Prepare turns the caller's
// encoded call input into a single data-source request; the host then
// fetches the raw responses itself and hands them to Execute, which
// aggregates and verifies them into an encoded result. Both phases are
// pure functions of their inputs: every replica executing the same
// invocation must produce byte-identical output.
package themis

import "context"

// Request is the single external data request produced by Prepare.
type Request struct {
	// ExternalID distinguishes parallel requests of one invocation.
	// Scripts issue exactly one request, so it is always 0.
	ExternalID int64 `cramberry:"1"`
	// SourceID is the host-side data-source identifier.
	SourceID int64 `cramberry:"2"`
	// Calldata is the opaque query payload forwarded to the source.
	Calldata []byte `cramberry:"3"`
}

// Env carries the per-invocation parameters owned by the host.
// They are never cached between invocations.
type Env struct {
	// AskCount is the number of sources the host queried.
	AskCount int64 `cramberry:"1"`
	// MinCount is the consensus threshold. It is trusted as-is.
	MinCount int64 `cramberry:"2"`
}

// ScriptInfo describes a registered script.
type ScriptInfo struct {
	Name         string `cramberry:"1"`
	InputSchema  string `cramberry:"2"`
	OutputSchema string `cramberry:"3"`
}

// Script is the interface every oracle script implements.
//
// The host guarantees the following call order for one invocation:
//  1. Prepare is called exactly once with the encoded call input.
//  2. Execute is called at most once, after the host has collected the
//     responses for the request returned by Prepare, with the same call
//     input.
//
// Any error returned by either phase is structural (see StructuralError)
// and aborts the invocation with no output.
type Script interface {
	// Name returns the registry name of the script.
	Name() string

	// Info returns the name and the input/output schemas.
	Info() ScriptInfo

	// Prepare plans the data request for the given encoded call input.
	Prepare(callInput []byte) (Request, error)

	// Execute aggregates the raw responses, in the order the host
	// queried the sources, into the encoded result.
	Execute(env Env, callInput []byte, responses [][]byte) ([]byte, error)
}

// Connection represents a transport-agnostic connection to a set of
// registered scripts. Both the gRPC client and the in-process adapter
// implement this.
type Connection interface {
	// Prepare runs the prepare phase of the named script.
	Prepare(ctx context.Context, script string, callInput []byte) (Request, error)

	// Execute runs a complete invocation of the named script: the call
	// input is planned again and the responses are aggregated.
	Execute(ctx context.Context, script string, env Env, callInput []byte, responses [][]byte) ([]byte, error)

	// Scripts lists the registered scripts in name order.
	Scripts(ctx context.Context) ([]ScriptInfo, error)

	// Close terminates the connection.
	Close() error
}
