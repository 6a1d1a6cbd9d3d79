package gateway

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// invokeMethod is the fully-qualified gRPC method path for the single
// unary meta-tool call every remote integration broker exposes.
// There is one method, not five, because the tool name travels inside
// the request payload (spec §6 treats all five meta-tools as entries in
// one dispatch surface, not five separate RPCs).
const invokeMethod = "/lucy.gateway.Gateway/Invoke"

// NewGRPCInvoker returns an InvokeFunc that marshals a Request into a
// structpb.Struct and calls conn.Invoke directly, without any
// protoc-generated client stub. structpb.Struct already satisfies
// proto.Message, so this is the same mechanism generated stubs use
// internally, just called by hand.
func NewGRPCInvoker(conn grpc.ClientConnInterface) InvokeFunc {
	return func(ctx context.Context, req Request) (Response, error) {
		in, err := encodeRequest(req)
		if err != nil {
			return Response{}, fmt.Errorf("gateway: encode request: %w", err)
		}

		out := &structpb.Struct{}
		if err := conn.Invoke(ctx, invokeMethod, in, out); err != nil {
			return Response{}, fmt.Errorf("gateway: invoke %s: %w", req.Tool, err)
		}
		return decodeResponse(out), nil
	}
}

// RegisterServer wires a Server into a grpc.Server via a hand-authored
// ServiceDesc, the same shape protoc-gen-go-grpc would emit from a
// gateway.proto defining one rpc Invoke(Struct) returns (Struct), but
// written directly since this repo has no protoc step.
func RegisterServer(grpcServer *grpc.Server, srv *Server) {
	grpcServer.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "lucy.gateway.Gateway",
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Invoke",
			Handler:    invokeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gateway.proto",
}

func invokeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := &structpb.Struct{}
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		resp, err := srv.(*Server).Invoke(ctx, decodeRequest(in))
		if err != nil {
			return nil, err
		}
		return encodeResponse(resp), nil
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: invokeMethod}
	return interceptor(ctx, in, info, handler)
}

func encodeRequest(req Request) (*structpb.Struct, error) {
	fields := map[string]any{"tool": string(req.Tool), "params": req.Params}
	return structpb.NewStruct(fields)
}

func decodeRequest(s *structpb.Struct) Request {
	req := Request{Tool: MetaTool(s.GetFields()["tool"].GetStringValue())}
	if params := s.GetFields()["params"].GetStructValue(); params != nil {
		req.Params = params.AsMap()
	}
	return req
}

func encodeResponse(resp Response) *structpb.Struct {
	out, err := structpb.NewStruct(map[string]any{"result": resp.Result, "error": resp.Error})
	if err != nil {
		// resp.Result only ever holds JSON-safe values produced by this
		// package's own tool handlers, so encoding cannot fail in practice.
		out, _ = structpb.NewStruct(map[string]any{"error": err.Error()})
	}
	return out
}

func decodeResponse(s *structpb.Struct) Response {
	resp := Response{Error: s.GetFields()["error"].GetStringValue()}
	if result := s.GetFields()["result"].GetStructValue(); result != nil {
		resp.Result = result.AsMap()
	}
	return resp
}
