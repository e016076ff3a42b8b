// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"

	platformcmd "github.com/louisbranch/dmscreen/internal/platform/cmd"
	"github.com/louisbranch/dmscreen/internal/platform/config"
	"github.com/louisbranch/dmscreen/internal/platform/otel"
	mcpservice "github.com/louisbranch/dmscreen/internal/services/mcp/service"
	"github.com/louisbranch/dmscreen/internal/storage/driver"
)

// Config holds MCP command configuration.
type Config struct {
	Storage   driver.Config
	Locale    string `env:"DMSCREEN_LOCALE"             envDefault:"es-ES"`
	Transport string `env:"DMSCREEN_MCP_TRANSPORT"      envDefault:"stdio"`
	HTTPAddr  string `env:"DMSCREEN_MCP_HTTP_ADDR"      envDefault:"localhost:8081"`
	Telemetry otel.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string, lookup config.LookupFunc) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfigWith(&cfg, lookup); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Storage.Driver, "storage", cfg.Storage.Driver, "storage driver: sqlite, bbolt, postgres or memory")
	fs.StringVar(&cfg.Storage.SQLitePath, "sqlite-path", cfg.Storage.SQLitePath, "SQLite snapshot file")
	fs.StringVar(&cfg.Storage.BboltPath, "bbolt-path", cfg.Storage.BboltPath, "bbolt snapshot file")
	fs.StringVar(&cfg.Storage.PostgresDSN, "postgres-dsn", cfg.Storage.PostgresDSN, "PostgreSQL connection string")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for messages (en-US, es-ES)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server with tracing configured.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMCP, cfg.Telemetry, func(ctx context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			Storage:   cfg.Storage,
			Locale:    cfg.Locale,
			Transport: cfg.Transport,
			HTTPAddr:  cfg.HTTPAddr,
		})
	})
}
