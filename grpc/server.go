package themisgrpc

import (
	"context"
	"errors"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockberries/themis"
	"github.com/blockberries/themis/server"
)

// Compile-time interface check.
var _ OracleScriptServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a script server over gRPC.
// No type conversion is needed: requests and results are serialized
// directly via cramberry.
type GRPCServer struct {
	srv *server.Server
}

// NewGRPCServer creates a gRPC service backed by srv.
func NewGRPCServer(srv *server.Server) *GRPCServer {
	return &GRPCServer{srv: srv}
}

// Register adds the oracle script service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterOracleScriptServiceServer(gs, s)
}

// Serve starts a gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs.Serve(lis)
}

// Server returns the underlying server for advanced use.
func (s *GRPCServer) Server() *server.Server {
	return s.srv
}

func (s *GRPCServer) Prepare(ctx context.Context, req *PrepareRequest) (*themis.Request, error) {
	r, err := s.srv.Prepare(ctx, req.Script, req.CallInput)
	if err != nil {
		return nil, toStatus(err)
	}
	return &r, nil
}

func (s *GRPCServer) Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	out, err := s.srv.Execute(ctx, req.Script, req.Env, req.CallInput, req.Responses)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ExecuteResponse{Result: out}, nil
}

func (s *GRPCServer) Scripts(ctx context.Context, _ *ScriptsRequest) (*ScriptsResponse, error) {
	infos, err := s.srv.Scripts(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ScriptsResponse{Scripts: infos}, nil
}

// toStatus maps server errors onto gRPC status codes. Structural errors
// keep their "Kind: reason" text so the client can rebuild them.
func toStatus(err error) error {
	if serr, ok := themis.IsStructural(err); ok {
		return status.Error(codes.InvalidArgument, serr.Error())
	}
	if errors.Is(err, server.ErrUnknownScript) {
		return status.Error(codes.NotFound, err.Error())
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, err.Error())
}
