// Package main runs the musclestats MCP server over stdio.
// Stdout carries the protocol, so logs go to the log file and stderr.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Toromb/gym-app-sub000/internal"
	"github.com/Toromb/gym-app-sub000/internal/config"
	"github.com/Toromb/gym-app-sub000/internal/logging"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	migrate := flag.Bool("migrate", true, "apply the musclestats schema on start")
	serveMetrics := flag.Bool("metrics", true, "serve prometheus metrics")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "musclestats-mcp",
		Console:          os.Stderr,
	})
	log.Warnf("---->> running in [%s] environment", *env)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server, err := internal.NewServer(ctx, internal.NewServerParams{
		Config:        cfg,
		DBUser:        os.Getenv("MUSCLESTATS_DB_USER"),
		DBPassword:    os.Getenv("MUSCLESTATS_DB_PASS"),
		RedisPassword: os.Getenv("MUSCLESTATS_REDIS_PASS"),
		ServiceName:   "musclestats_mcp",
		Migrate:       *migrate,
	})
	if err != nil {
		log.Fatalf("new server: %s", err)
	}
	defer server.GracefulShutdown()

	if *serveMetrics {
		server.ServeMetrics()
	}

	if err := server.MCPServer().Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Errorf("mcp server: %s", err)
	}
	log.Infoln("mcp server stopped")
}
