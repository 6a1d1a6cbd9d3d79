// Package gateway implements spec §6's tool meta-interface transport: the
// five meta-tools (search_tools, manage_connections, multi_execute,
// remote_workbench, remote_bash) an agent calls as ordinary tools, routed
// either in-process or to a remote integration broker over gRPC.
package gateway

import "context"

// MetaTool is the closed set of meta-tools spec §6 names.
type MetaTool string

const (
	MetaSearchTools       MetaTool = "search_tools"
	MetaManageConnections MetaTool = "manage_connections"
	MetaMultiExecute      MetaTool = "multi_execute"
	MetaRemoteWorkbench   MetaTool = "remote_workbench"
	MetaRemoteBash        MetaTool = "remote_bash"
)

// Request is one meta-tool invocation.
type Request struct {
	Tool   MetaTool
	Params map[string]any
}

// Response is a meta-tool invocation's result.
type Response struct {
	Result map[string]any
	Error  string
}

// Handler processes a single meta-tool request and returns its response.
// Implementations receive the request context and a Request, and must
// return a Response or an error. This signature is used both by the base
// provider handler and by middleware composing additional behavior
// around it.
type Handler func(ctx context.Context, req Request) (Response, error)

// Middleware wraps a Handler to add behavior before, after, or around the
// handler invocation. Common uses include logging, metrics, per-tool rate
// limiting, and request validation.
type Middleware func(next Handler) Handler

// Option configures a Server during construction. Options are applied in
// the order they are passed to NewServer.
type Option func(*serverConfig)

type serverConfig struct {
	provider Handler
	mw       []Middleware
}

// WithProvider sets the underlying meta-tool handler. This option is
// required; NewServer returns ErrProviderRequired if no provider is
// configured.
func WithProvider(h Handler) Option {
	return func(c *serverConfig) { c.provider = h }
}

// WithMiddleware appends one or more Middleware to the Server's chain.
// Middleware are applied in registration order, with the first
// registered forming the outermost layer.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *serverConfig) { c.mw = append(c.mw, mw...) }
}

// Server adapts a meta-tool Handler into a composable request handler
// with middleware support, mirroring the teacher's model-completion
// gateway shape but generalized to Lucy's five meta-tools instead of LLM
// completions.
type Server struct {
	handler Handler
}

// NewServer constructs a Server with the provided options. The resulting
// Server has no built-in policy; all behavior is composed via middleware
// registered through WithMiddleware.
func NewServer(opts ...Option) (*Server, error) {
	var cfg serverConfig
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.provider == nil {
		return nil, ErrProviderRequired
	}

	handler := cfg.provider
	for i := len(cfg.mw) - 1; i >= 0; i-- {
		handler = cfg.mw[i](handler)
	}
	return &Server{handler: handler}, nil
}

// Invoke processes req through the configured middleware chain.
func (s *Server) Invoke(ctx context.Context, req Request) (Response, error) {
	return s.handler(ctx, req)
}
