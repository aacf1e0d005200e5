// Package local provides a zero-copy, in-process themis connection.
//
// For scripts compiled into the same binary as the oracle host, this
// adapter routes calls through the invocation state machine with no
// serialization overhead.
package local

import (
	"context"

	"go.uber.org/zap"

	"github.com/blockberries/themis"
	"github.com/blockberries/themis/server"
)

// Compile-time interface check.
var _ themis.Connection = (*Connection)(nil)

// Connection wraps local scripts with invocation state enforcement.
type Connection struct {
	srv *server.Server
}

// NewConnection creates an in-process connection serving the given
// scripts.
func NewConnection(logger *zap.Logger, scripts ...themis.Script) (*Connection, error) {
	srv, err := server.New(logger, scripts...)
	if err != nil {
		return nil, err
	}
	return &Connection{srv: srv}, nil
}

func (c *Connection) Prepare(ctx context.Context, script string, callInput []byte) (themis.Request, error) {
	return c.srv.Prepare(ctx, script, callInput)
}

func (c *Connection) Execute(ctx context.Context, script string, env themis.Env, callInput []byte, responses [][]byte) ([]byte, error) {
	return c.srv.Execute(ctx, script, env, callInput, responses)
}

func (c *Connection) Scripts(ctx context.Context) ([]themis.ScriptInfo, error) {
	return c.srv.Scripts(ctx)
}

func (c *Connection) Close() error { return nil }

// Server returns the underlying server for advanced use cases.
func (c *Connection) Server() *server.Server {
	return c.srv
}
