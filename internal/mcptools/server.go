package mcptools

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/dusk-indust/chainmerge/internal/logfields"
	"github.com/dusk-indust/chainmerge/internal/metrics"
)

// version is set by the linker at build time.
var version = "dev"

// NewServer creates an MCP server with the chain tools registered.
func NewServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "chainmerge",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge_chain",
		Description: "Merge the legs of a menu chain into one chain. The strategy defaults to the one in the menu; parallel, serial and auto can be forced. Stores the result and returns its steps with a content fingerprint.",
	}, svc.MergeChain)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_chain",
		Description: "Return a merged chain: every step, the sequence each leg runs in it, a summary and a Mermaid diagram.",
	}, svc.GetChain)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_chains",
		Description: "List the chains defined in the menu and the ones merged so far, with placeholder totals and graph counts.",
	}, svc.ListChains)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "placeholder_name",
		Description: "Render the step and sequence names of the placeholder a leg gets when it has nothing to do at an alignment position.",
	}, svc.PlaceholderName)

	return server
}

// RunStdio runs server on stdio, blocking until stdin is closed or ctx is
// cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP tools over streamable HTTP on addr. When reg is not
// nil its metrics are served on /metrics.
func RunHTTP(ctx context.Context, svc *Service, addr string, reg *prom.Registry) error {
	server := NewServer(svc)

	mux := http.NewServeMux()
	mux.Handle("/", mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	))
	if reg != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(reg))
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	svc.log.Info("mcp server listening", logfields.Addr(addr), slog.Bool("metrics", reg != nil))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
