// Package main runs the gymstats MCP server over stdio.
// Stdout carries the protocol, so logs go to stderr or the configured log file.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/2beens/gymtracker/internal/config"
	"github.com/2beens/gymtracker/internal/gymstats"
	gymstatsmcp "github.com/2beens/gymtracker/internal/gymstats/mcp"
	"github.com/2beens/gymtracker/internal/gymstats/plan"
	"github.com/2beens/gymtracker/internal/logging"
	"github.com/2beens/gymtracker/internal/storage"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if cfg.LogsPath != "" {
		logging.Setup(logging.LoggerSetupParams{
			LogFileName:   cfg.LogsPath + "-mcp",
			LogLevel:      cfg.LogLevel,
			LogFormatJSON: cfg.LogFormatJSON,
			Environment:   *env,
		})
	}

	ctx := context.Background()
	promRegistry := metrics.SetupPrometheus()
	store, err := storage.New(ctx, storage.Params{
		Driver:        cfg.StorageDriver,
		DataDir:       cfg.DataDir,
		SQLitePath:    cfg.SQLitePath,
		RedisHost:     cfg.RedisHost,
		RedisPort:     cfg.RedisPort,
		RedisPassword: os.Getenv("GYMTRACKER_REDIS_PASS"),
		RedisPrefix:   cfg.RedisPrefix,

		PostgresHost:     cfg.PostgresHost,
		PostgresPort:     cfg.PostgresPort,
		PostgresDBName:   cfg.PostgresDBName,
		PostgresUser:     cfg.PostgresUser,
		PostgresPassword: os.Getenv("GYMTRACKER_POSTGRES_PASS"),

		MetricsRegisterer: promRegistry,
	})
	if err != nil {
		log.Fatalf("new store: %v", err)
	}

	tracker, err := gymstats.NewTracker(ctx, gymstats.NewTrackerParams{
		Store:     store,
		Generator: plan.NewGenerator(plan.NewRandomSource()),
		Metrics:   metrics.NewManager("gymtracker", "mcp", promRegistry),
	})
	if err != nil {
		log.Fatalf("new tracker: %v", err)
	}
	defer func() {
		if err := tracker.Close(); err != nil {
			log.Errorf("close tracker: %v", err)
		}
	}()

	server := gymstatsmcp.NewServer(tracker)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Errorf("mcp server: %v", err)
	}
}
