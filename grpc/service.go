package themisgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/blockberries/themis"
)

const serviceName = "themis.v1.OracleScriptService"

// OracleScriptServiceServer is the server-side interface for the
// oracle script gRPC service.
type OracleScriptServiceServer interface {
	Prepare(context.Context, *PrepareRequest) (*themis.Request, error)
	Execute(context.Context, *ExecuteRequest) (*ExecuteResponse, error)
	Scripts(context.Context, *ScriptsRequest) (*ScriptsResponse, error)
}

// RegisterOracleScriptServiceServer registers the service on a gRPC server.
func RegisterOracleScriptServiceServer(s *grpc.Server, srv OracleScriptServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerPrepare(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(PrepareRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(OracleScriptServiceServer).Prepare(ctx, req)
}

func handlerExecute(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(ExecuteRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(OracleScriptServiceServer).Execute(ctx, req)
}

func handlerScripts(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(ScriptsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(OracleScriptServiceServer).Scripts(ctx, req)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OracleScriptServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Prepare", Handler: handlerPrepare},
		{MethodName: "Execute", Handler: handlerExecute},
		{MethodName: "Scripts", Handler: handlerScripts},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "themis/v1/service.cram",
}
