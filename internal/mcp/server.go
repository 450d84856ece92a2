package mcp

import (
	"context"
	"net/http"

	"github.com/viant/jsonrpc/transport"
	mcpclientproto "github.com/viant/mcp-protocol/client"
	mcplogger "github.com/viant/mcp-protocol/logger"
	mcpserverproto "github.com/viant/mcp-protocol/server"
	mcpserver "github.com/viant/mcp/server"
)

// NewHTTPServer wires the handler into a streamable-HTTP MCP endpoint
// on addr. It does not start listening; callers run ListenAndServe and
// own shutdown.
func NewHTTPServer(ctx context.Context, h *Handler, addr string) (*http.Server, error) {
	srv, err := mcpserver.New(
		mcpserver.WithRootRedirect(true),
		mcpserver.WithNewHandler(func(_ context.Context, _ transport.Notifier, _ mcplogger.Logger, _ mcpclientproto.Operations) (mcpserverproto.Handler, error) {
			return h, nil
		}),
	)
	if err != nil {
		return nil, err
	}
	srv.UseStreamableHTTP(true)

	return srv.HTTP(ctx, addr), nil
}
