// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/graphkb/ai"
	"github.com/poiesic/graphkb/ai/openai"
	"github.com/poiesic/graphkb/engine/lightgraph"
	"github.com/poiesic/graphkb/graph"
	"github.com/poiesic/graphkb/ingestion"
	"github.com/poiesic/graphkb/kb"
	"github.com/poiesic/graphkb/server"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "graphkb",
		Usage:  "Multi-tenant knowledge-base indexing and retrieval service",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP service",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "API key for the LLM service",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "api-base",
						Usage:   "Base URL of the OpenAI-compatible LLM service",
						EnvVars: []string{"OPENAI_API_BASE"},
					},
					&cli.StringFlag{
						Name:    "model",
						Usage:   "Chat-completion model name",
						EnvVars: []string{"OPENAI_MODEL"},
					},
					&cli.StringFlag{
						Name:    "storage-dir",
						Usage:   "Root directory for knowledge base storage",
						Value:   "./graphkb-data",
						EnvVars: []string{"GRAPHKB_STORAGE_DIR"},
					},
					&cli.StringFlag{
						Name:    "host",
						Usage:   "Bind address",
						Value:   "0.0.0.0",
						EnvVars: []string{"GRAPHKB_HOST"},
					},
					&cli.IntFlag{
						Name:    "port",
						Usage:   "Bind port",
						Value:   8005,
						EnvVars: []string{"GRAPHKB_PORT"},
					},
					&cli.IntFlag{
						Name:    "index-delay",
						Usage:   "Seconds to pause between documents of one indexing job (0 = none)",
						EnvVars: []string{"INDEX_DELAY_SECONDS"},
					},
					&cli.IntFlag{
						Name:    "llm-concurrency",
						Usage:   "Maximum concurrent LLM/embedding calls (0 = unlimited)",
						EnvVars: []string{"LLM_CONCURRENCY"},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	logger := slog.Default().With("component", "main")

	storageDir := c.String("storage-dir")
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return fmt.Errorf("creating storage root: %w", err)
	}

	opts := []ai.ConfigOption{ai.WithMaxConcurrent(c.Int("llm-concurrency"))}
	if key := c.String("api-key"); key != "" {
		opts = append(opts, ai.WithAPIKey(key))
	}
	if base := c.String("api-base"); base != "" {
		opts = append(opts, ai.WithBaseURL(base))
	}
	if model := c.String("model"); model != "" {
		opts = append(opts, ai.WithModel(model))
	}
	provider, err := openai.NewProvider(ai.NewConfig(opts...))
	if err != nil {
		return fmt.Errorf("creating llm provider: %w", err)
	}
	defer provider.Close()

	registry := kb.NewRegistry(storageDir, lightgraph.New, provider)
	tracker := kb.NewTracker(storageDir)
	service := kb.NewService(storageDir, registry, tracker)
	defer service.Close()

	pipeline, err := ingestion.NewPipeline(registry, tracker,
		ingestion.WithDelay(time.Duration(c.Int("index-delay"))*time.Second))
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}
	defer pipeline.Release()

	srv, err := server.New(server.Config{
		Service:  service,
		Pipeline: pipeline,
		Reader:   graph.NewReader(storageDir),
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	addr := net.JoinHostPort(c.String("host"), fmt.Sprintf("%d", c.Int("port")))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "storage_dir", storageDir)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Warn("shutdown incomplete", "err", err)
		}
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
