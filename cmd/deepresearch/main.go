// deepresearch runs the Session Service Façade behind an HTTP adapter:
// it wires Session Storage, the Retrieval Layer, the Sandbox Runner, the
// Orchestrator, and the Pipeline Sink from one resolved configuration.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deepresearch-go/deepresearch/pkg/api"
	"github.com/deepresearch-go/deepresearch/pkg/cleanup"
	"github.com/deepresearch-go/deepresearch/pkg/config"
	"github.com/deepresearch-go/deepresearch/pkg/database"
	"github.com/deepresearch-go/deepresearch/pkg/facade"
	"github.com/deepresearch-go/deepresearch/pkg/orchestrator"
	"github.com/deepresearch-go/deepresearch/pkg/pipeline"
	"github.com/deepresearch-go/deepresearch/pkg/retrieval"
	"github.com/deepresearch-go/deepresearch/pkg/sandbox"
	"github.com/deepresearch-go/deepresearch/pkg/slack"
	"github.com/deepresearch-go/deepresearch/pkg/storage"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func buildStorage(ctx context.Context, cfg *config.Config) (storage.Storage, func(), error) {
	if cfg.StorageKind != "relational" {
		return storage.NewMemory(), func() {}, nil
	}

	dbCfg, err := database.LoadConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}
	client, err := database.NewClient(ctx, dbCfg)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewPostgres(client.Pool), func() {
		if err := client.Close(); err != nil {
			slog.Error("error closing database client", "error", err)
		}
	}, nil
}

func buildRetrieval(cfg *config.Config) retrieval.Retriever {
	if cfg.RetrievalKind == "hybrid" {
		return retrieval.NewHybrid(cfg.RetrievalConcurrencyLimit)
	}
	return retrieval.NewStub()
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	httpPort := getEnv("HTTP_PORT", "8080")
	gin.SetMode(getEnv("GIN_MODE", "release"))

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("failed to initialize configuration: %v", err)
	}

	stg, closeStorage, err := buildStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize session storage: %v", err)
	}
	defer closeStorage()

	slackSvc := slack.NewService(slack.ServiceConfig{
		Token:        cfg.SlackToken,
		Channel:      cfg.SlackChannel,
		DashboardURL: cfg.SlackDashboardURL,
	})
	var observer sandbox.FailureStreakObserver
	if cfg.SlackEnabled && slackSvc != nil {
		observer = slackSvc
	}

	runner := sandbox.NewDockerRunner(cfg.Sandbox, observer)

	var sink *pipeline.Sink
	if cfg.PipelineRawDir != "" {
		sink = pipeline.NewSink(cfg.PipelineRawDir)
	}

	sessionLog := cleanup.NewLogger("logs")
	retention := cleanup.NewService("logs", cfg.LogRetentionDays, 24*time.Hour)
	retention.Start(ctx)

	o := &orchestrator.Orchestrator{
		Storage:      stg,
		Retrieval:    buildRetrieval(cfg),
		Sandbox:      runner,
		FactCheck:    cfg.FactCheck,
		TraceDir:     cfg.TraceDir,
		PipelineSink: sink,
		SessionLog:   sessionLog,
	}

	svc := facade.New(o, facade.Config{
		MaxConcurrency:     int64(cfg.MaxConcurrency),
		Namespace:          cfg.Namespace,
		DefaultEnableTrace: cfg.DefaultEnableTrace,
	})

	server := api.NewServer(svc, api.Config{
		AuthToken: cfg.AuthToken,
		Enabled:   true,
	})

	slog.Info("starting deepresearch",
		"http_port", httpPort,
		"storage_kind", cfg.StorageKind,
		"retrieval_kind", cfg.RetrievalKind,
		"max_concurrency", cfg.MaxConcurrency,
	)

	if err := http.ListenAndServe(":"+httpPort, server.Handler()); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}
