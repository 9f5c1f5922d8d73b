package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/kgraph/backend/internal/queue"
	"github.com/OFFIS-RIT/kgraph/backend/internal/setup"
	"github.com/OFFIS-RIT/kgraph/backend/internal/storage"
	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/ai"
	s3loader "github.com/OFFIS-RIT/kgraph/backend/pkg/loader/s3"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader/web"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := setup.ConfigFromEnv()
	setup.InitLogger(cfg)
	defer logger.Close()

	aiClient, err := setup.NewAIClient(cfg)
	if err != nil {
		logger.Fatal("Could not create AI client", "err", err)
	}
	graphClient, err := setup.NewGraphClient(cfg, aiClient)
	if err != nil {
		logger.Fatal("Could not create graph client", "err", err)
	}
	st, err := setup.NewStore(ctx, cfg, aiClient)
	if err != nil {
		logger.Fatal("Could not open graph store", "store", cfg.GraphStore, "err", err)
	}
	defer st.Close(context.Background())

	deps := queue.BuildDeps{
		Graph: graphClient,
		Store: st,
		Web:   web.NewWebGraphLoader(),
	}

	// Init s3 client
	s3Client, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("Could not create S3 client", "err", err)
	}
	if s3Client != nil {
		deps.Objects = s3loader.NewS3GraphFileLoaderWithClient(storage.Bucket(), s3Client)
	}

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.BuildQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	handlers := map[string]queue.Handler{
		queue.BuildQueue: func(ctx context.Context, body []byte) error {
			startTime := time.Now()
			err := queue.ProcessBuildMessage(ctx, deps, body)
			logMetrics(aiClient, time.Since(startTime))
			return err
		},
	}

	if err := queue.Consume(ctx, conn, handlers); err != nil {
		logger.Fatal("Consumer stopped", "err", err)
	}
	logger.Info("Shutdown signal received, exiting...")
}

func logMetrics(aiClient ai.GraphAIClient, processing time.Duration) {
	if aiClient != nil {
		metrics := aiClient.GetMetrics()
		logger.Info(
			"AI Metrics",
			"input_tokens", metrics.InputTokens,
			"output_tokens", metrics.OutputTokens,
			"total_tokens", metrics.TotalTokens,
			"duration", clock(time.Duration(metrics.DurationMs)*time.Millisecond),
		)
		aiClient.ResetMetrics()
	}
	logger.Info("Processing time", "duration", clock(processing))
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
