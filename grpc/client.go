package themisgrpc

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockberries/themis"
	"github.com/blockberries/themis/server"
)

// Compile-time interface check.
var _ themis.Connection = (*Client)(nil)

// Client implements themis.Connection for a remote script server
// over gRPC using cramberry serialization.
type Client struct {
	cc *grpc.ClientConn
}

// Dial connects to a remote script server.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("themis client: dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

func (c *Client) Prepare(ctx context.Context, script string, callInput []byte) (themis.Request, error) {
	req := &PrepareRequest{Script: script, CallInput: callInput}
	resp := new(themis.Request)
	if err := c.cc.Invoke(ctx, fullMethod("Prepare"), req, resp); err != nil {
		return themis.Request{}, fromStatus(err)
	}
	return *resp, nil
}

func (c *Client) Execute(ctx context.Context, script string, env themis.Env, callInput []byte, responses [][]byte) ([]byte, error) {
	req := &ExecuteRequest{Script: script, Env: env, CallInput: callInput, Responses: responses}
	resp := new(ExecuteResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Execute"), req, resp); err != nil {
		return nil, fromStatus(err)
	}
	return resp.Result, nil
}

func (c *Client) Scripts(ctx context.Context) ([]themis.ScriptInfo, error) {
	resp := new(ScriptsResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Scripts"), &ScriptsRequest{}, resp); err != nil {
		return nil, fromStatus(err)
	}
	return resp.Scripts, nil
}

// fromStatus rebuilds the errors mapped by toStatus so callers can use
// errors.Is on both sides of the transport.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		kindText, reason, _ := strings.Cut(st.Message(), ": ")
		if kind, ok := themis.ParseErrorKind(kindText); ok {
			return &themis.StructuralError{Kind: kind, Reason: reason}
		}
	case codes.NotFound:
		return fmt.Errorf("%w: %s", server.ErrUnknownScript, st.Message())
	case codes.Canceled:
		return fmt.Errorf("%w: %s", context.Canceled, st.Message())
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", context.DeadlineExceeded, st.Message())
	}
	return err
}
