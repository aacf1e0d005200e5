package server

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blockberries/themis"
)

// ErrUnknownScript is returned when no script is registered under the
// requested name.
var ErrUnknownScript = errors.New("github.com/blockberries/themis: unknown script")

// Compile-time interface check.
var _ themis.Connection = (*Server)(nil)

// Server holds the registered scripts and runs invocations against
// them. The registry is fixed at construction, so a Server is safe for
// concurrent invocations; each invocation carries its own guard.
type Server struct {
	scripts map[string]themis.Script
	names   []string
	logger  *zap.Logger
	metrics *metrics
}

// New creates a Server serving the given scripts. A nil logger
// disables logging. Script names must be unique.
func New(logger *zap.Logger, scripts ...themis.Script) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	s := &Server{
		scripts: make(map[string]themis.Script, len(scripts)),
		logger:  logger,
		metrics: m,
	}
	for _, sc := range scripts {
		name := sc.Name()
		if name == "" {
			return nil, fmt.Errorf("github.com/blockberries/themis: script with empty name")
		}
		if _, dup := s.scripts[name]; dup {
			return nil, fmt.Errorf("github.com/blockberries/themis: script %q registered twice", name)
		}
		s.scripts[name] = sc
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)
	return s, nil
}

// Begin starts a new invocation of the named script in the Idle state.
func (s *Server) Begin(name string) (*Invocation, error) {
	sc, ok := s.scripts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScript, name)
	}
	id := uuid.NewString()
	return &Invocation{
		id:     id,
		script: sc,
		guard:  NewInvocationGuard(),
		logger: s.logger.With(zap.String("invocation", id), zap.String("script", name)),
		srv:    s,
	}, nil
}

// Prepare runs the prepare phase of a fresh invocation of the named
// script.
func (s *Server) Prepare(ctx context.Context, name string, callInput []byte) (themis.Request, error) {
	inv, err := s.Begin(name)
	if err != nil {
		return themis.Request{}, err
	}
	return inv.Prepare(ctx, callInput)
}

// Execute runs both phases of a fresh invocation of the named script.
func (s *Server) Execute(ctx context.Context, name string, env themis.Env, callInput []byte, responses [][]byte) ([]byte, error) {
	inv, err := s.Begin(name)
	if err != nil {
		return nil, err
	}
	if _, err := inv.Prepare(ctx, callInput); err != nil {
		return nil, err
	}
	return inv.Execute(ctx, env, responses)
}

// Scripts lists the registered scripts in name order.
func (s *Server) Scripts(_ context.Context) ([]themis.ScriptInfo, error) {
	infos := make([]themis.ScriptInfo, 0, len(s.names))
	for _, name := range s.names {
		infos = append(infos, s.scripts[name].Info())
	}
	return infos, nil
}

// Close is a no-op for the server.
func (s *Server) Close() error { return nil }

// Invocation is one run of a script through its two phases.
type Invocation struct {
	id        string
	script    themis.Script
	guard     *InvocationGuard
	logger    *zap.Logger
	srv       *Server
	callInput []byte
}

// ID returns the invocation id used in logs.
func (inv *Invocation) ID() string { return inv.id }

// State returns the current state of the invocation.
func (inv *Invocation) State() string { return inv.guard.State() }

// Prepare runs the prepare phase. Panics unless the invocation is Idle.
func (inv *Invocation) Prepare(ctx context.Context, callInput []byte) (themis.Request, error) {
	inv.guard.AcquirePrepare()

	if err := ctx.Err(); err != nil {
		inv.abort(ctx, phasePrepare, err)
		return themis.Request{}, err
	}
	req, err := inv.script.Prepare(callInput)
	if err != nil {
		inv.abort(ctx, phasePrepare, err)
		return themis.Request{}, err
	}

	inv.callInput = callInput
	inv.guard.CompletePrepare()
	inv.srv.metrics.record(ctx, inv.script.Name(), phasePrepare, outcomeOK)
	inv.logger.Debug("invocation prepared",
		zap.Int64("source_id", req.SourceID),
		zap.Int("calldata_len", len(req.Calldata)))
	return req, nil
}

// Execute runs the execute phase with the call input given to Prepare.
// Panics unless the invocation is Prepared.
func (inv *Invocation) Execute(ctx context.Context, env themis.Env, responses [][]byte) ([]byte, error) {
	inv.guard.AcquireExecute()

	if err := ctx.Err(); err != nil {
		inv.abort(ctx, phaseExecute, err)
		return nil, err
	}
	out, err := inv.script.Execute(env, inv.callInput, responses)
	if err != nil {
		inv.abort(ctx, phaseExecute, err)
		return nil, err
	}

	inv.guard.CompleteExecute()
	inv.srv.metrics.record(ctx, inv.script.Name(), phaseExecute, outcomeOK)
	inv.logger.Debug("invocation finalized",
		zap.Int("responses", len(responses)),
		zap.Int64("min_count", env.MinCount),
		zap.Int("result_len", len(out)))
	return out, nil
}

func (inv *Invocation) abort(ctx context.Context, phase string, err error) {
	inv.guard.Abort()
	inv.srv.metrics.record(context.WithoutCancel(ctx), inv.script.Name(), phase, outcomeAborted)

	fields := []zap.Field{zap.String("phase", phase), zap.Error(err)}
	if serr, ok := themis.IsStructural(err); ok {
		fields = append(fields, zap.Stringer("kind", serr.Kind))
	}
	inv.logger.Warn("invocation aborted", fields...)
}
