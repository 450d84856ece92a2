package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marek/faf/internal/mcp"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP capture server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "bind host (default FAF_MCP_HOST)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "bind port (default FAF_MCP_PORT)")
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	host := a.cfg.MCPHost
	if serveHost != "" {
		host = serveHost
	}
	port := a.cfg.MCPPort
	if servePort != "" {
		port = servePort
	}
	addr := net.JoinHostPort(host, port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := mcp.NewHTTPServer(ctx, mcp.NewHandler(a.svc, a.store), addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("capture server listening on %s", addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Println("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return err
		}
	}
	return nil
}
