package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
	"github.com/louisbranch/dmscreen/internal/platform/timeouts"
	"github.com/louisbranch/dmscreen/internal/session"
	"github.com/louisbranch/dmscreen/internal/storage/driver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Supported transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config selects the store, locale and transport of the MCP server.
type Config struct {
	Storage   driver.Config
	Locale    string
	Transport string
	HTTPAddr  string
}

// Run opens the session, serves MCP until ctx ends and then closes the
// session so pending snapshots are written.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	if cfg.Transport != TransportStdio && cfg.Transport != TransportHTTP {
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	store, err := driver.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	printer := notice.New(cfg.Locale)
	controller, err := session.NewController(store, session.Options{OnEvent: logEvent(printer)})
	if err != nil {
		_ = store.Close()
		return err
	}
	if err := controller.Start(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("start session: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Shutdown)
		defer cancel()
		if err := controller.Close(closeCtx); err != nil {
			log.Printf("mcp close session: %v", err)
		}
	}()

	server, err := New(controller, printer)
	if err != nil {
		return err
	}
	if cfg.Transport == TransportHTTP {
		return server.serveHTTP(ctx, cfg.HTTPAddr)
	}
	return server.Serve(ctx)
}

// logEvent writes controller events to the log; stdout belongs to the
// stdio transport.
func logEvent(printer *notice.Printer) session.EventHandler {
	return func(event session.Event) {
		switch event.Type {
		case session.EventSaveFailed:
			log.Print(printer.Sprintf(notice.KeySaveFailed, printer.Error(event.Err)))
		case session.EventLoadFailed:
			log.Print(printer.Sprintf(notice.KeyLoadFailed, printer.Error(event.Err)))
		case session.EventResetSucceeded:
			log.Print(printer.Sprintf(notice.KeyResetSucceeded))
		}
	}
}

// serveHTTP serves the streamable HTTP transport until ctx ends.
func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	if addr == "" {
		addr = "localhost:8081"
	}
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP HTTP server on %s", addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve MCP HTTP: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown MCP HTTP: %w", err)
		}
		return nil
	}
}
