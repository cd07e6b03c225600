package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	storyhandler "github.com/trmquang93/magical-stories-sub004/internal/api/handlers/story"
	"github.com/trmquang93/magical-stories-sub004/internal/api/router"
	"github.com/trmquang93/magical-stories-sub004/internal/api/server"
	"github.com/trmquang93/magical-stories-sub004/internal/config"
	"github.com/trmquang93/magical-stories-sub004/internal/generation"
	"github.com/trmquang93/magical-stories-sub004/internal/illustrator"
	"github.com/trmquang93/magical-stories-sub004/internal/infra/kafka/consumer"
	"github.com/trmquang93/magical-stories-sub004/internal/infra/kafka/producer"
	storymsg "github.com/trmquang93/magical-stories-sub004/internal/kafka/handlers/story"
	"github.com/trmquang93/magical-stories-sub004/internal/pipeline"
	"github.com/trmquang93/magical-stories-sub004/internal/planner"
	"github.com/trmquang93/magical-stories-sub004/internal/queue"
	storyrepo "github.com/trmquang93/magical-stories-sub004/internal/repository/story"
	"github.com/trmquang93/magical-stories-sub004/internal/scheduler"
	"github.com/trmquang93/magical-stories-sub004/internal/segmenter"
	storysvc "github.com/trmquang93/magical-stories-sub004/internal/service/story"
	"github.com/trmquang93/magical-stories-sub004/internal/storage/file"
)

func main() {
	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad("./config")

	// A missing generation credential is a hard startup failure; the
	// pipeline itself never needs it again (the planner falls back
	// locally and failed pages stay retryable).
	if cfg.Generation.APIKey == "" {
		zlog.Logger.Fatal().Msg("generation api key is required (GENERATION_API_KEY)")
	}

	// Retry strategy for remote illustration calls and Kafka.
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}

	// Initialize artifact storage (MinIO).
	storage, err := file.NewStorage(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.BucketName, cfg.Storage.UseSSL)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to storage")
	}

	// Remote generation capabilities.
	textClient := generation.NewTextClient(cfg.Generation.APIKey, cfg.Generation.BaseURL, cfg.Generation.TextModel)
	imageClient := generation.NewImageClient(cfg.Generation.APIKey, cfg.Generation.BaseURL, cfg.Generation.ImageModel, cfg.Generation.ImageSize)

	// Core pipeline components: one shared queue, one scheduler.
	stories := storyrepo.NewRepository()
	ill := illustrator.New(imageClient, storage, cfg.Generation.StyleSuffix)
	taskQueue := queue.New()
	sched := scheduler.New(taskQueue, ill, stories, strategy, cfg.Scheduler.Pacing)
	orch := pipeline.New(segmenter.New(), planner.New(textClient), taskQueue, sched, stories)

	// Kafka producer, service layer, and message handler.
	p := producer.New(&cfg.Kafka, strategy)
	service := storysvc.NewService(stories, p, orch, taskQueue, storage)
	requestedHandler := storymsg.NewRequestedHandler(service)

	// HTTP handler for story routes.
	h := storyhandler.NewHandler(service)

	// Kafka consumer for illustration requests.
	c := consumer.New(&cfg.Kafka, strategy, requestedHandler)

	// Start the scheduler worker and the Kafka consumer.
	sched.StartProcessing(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go c.Consume(ctx, &wg)

	// Start HTTP server in a separate goroutine.
	r := router.Setup(h)
	s := server.New(cfg.Server.HTTPPort, r)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Wait for the Kafka consumer goroutine, then halt the scheduler
	// after its in-flight task completes.
	wg.Wait()
	sched.StopProcessing()

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// Close Kafka producer and consumer clients.
	if err = p.Client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka producer client")
	}
	if err = c.Client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka consumer client")
	}
}
