package gateway

import "context"

// InvokeFunc performs one meta-tool round trip over whatever transport the
// caller wires up (in-process, gRPC, or otherwise).
type InvokeFunc func(ctx context.Context, req Request) (Response, error)

// RemoteClient serves meta-tool calls by delegating to a caller-supplied
// InvokeFunc, the same transport-agnostic shape the teacher's
// model-gateway RemoteClient uses for Complete/Stream: the client knows
// nothing about wire formats, only that it has a function to call.
type RemoteClient struct {
	doInvoke InvokeFunc
}

// NewRemoteClient builds a RemoteClient around doInvoke. Passing the
// gRPC-backed invoker from NewGRPCInvoker wires this client to a remote
// integration broker; passing a Server.Invoke method value keeps
// everything in-process for tests.
func NewRemoteClient(doInvoke InvokeFunc) *RemoteClient {
	return &RemoteClient{doInvoke: doInvoke}
}

// Invoke dispatches req through the configured transport.
func (c *RemoteClient) Invoke(ctx context.Context, req Request) (Response, error) {
	return c.doInvoke(ctx, req)
}
