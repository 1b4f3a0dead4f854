package main

// Background worker consuming document reprocess jobs from Redis:
//   go run ./cmd/worker

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"dock-optimizer/internal/bootstrap"
	"dock-optimizer/internal/shared/config"
	"dock-optimizer/internal/shared/server"
	"dock-optimizer/internal/workerproc"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	if app.DB != nil {
		defer app.DB.Close()
	}

	concurrency := cfg.WorkerConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	// Ops surface: health, metrics, document status lookups.
	ops := &http.Server{
		Addr:    server.Addr(cfg.Port),
		Handler: server.NewRouter(server.RouterDeps{Documents: app.DocumentsService}),
	}
	go func() {
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("ops server stopped: %v", err)
		}
	}()

	worker := asynq.NewServer(app.RedisOpt(), asynq.Config{
		Concurrency: concurrency,
	})
	processor := workerproc.NewProcessor(app.Intake)

	go func() {
		<-ctx.Done()
		worker.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ops.Shutdown(shutdownCtx)
	}()

	log.Printf("worker started redis=%s concurrency=%d ops=%s", cfg.RedisAddr, concurrency, ops.Addr)
	if err := worker.Run(processor.Handler()); err != nil {
		log.Printf("worker stopped: %v", err)
		os.Exit(1)
	}
}
