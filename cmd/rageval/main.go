//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Command rageval starts the RAG evaluation backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trpc.group/trpc-go/trpc-rageval-go/configstore"
	storeinmemory "trpc.group/trpc-go/trpc-rageval-go/configstore/inmemory"
	storemongo "trpc.group/trpc-go/trpc-rageval-go/configstore/mongo"
	evalservice "trpc.group/trpc-go/trpc-rageval-go/eval/service"
	llmopenai "trpc.group/trpc-go/trpc-rageval-go/llm/openai"
	"trpc.group/trpc-go/trpc-rageval-go/log"
	"trpc.group/trpc-go/trpc-rageval-go/retrieval"
	"trpc.group/trpc-go/trpc-rageval-go/scoring/llmjudge"
	searches "trpc.group/trpc-go/trpc-rageval-go/search/elasticsearch"
	"trpc.group/trpc-go/trpc-rageval-go/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional, environment variables win either way.
	_ = godotenv.Load()

	if level := os.Getenv("RAGEVAL_LOG_LEVEL"); level != "" {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx)
	if err != nil {
		log.Fatalf("create config store: %v", err)
	}
	defer store.Close(context.Background())

	searchClient := newSearchClient()
	svc, err := evalservice.New(
		retrieval.New(searchClient),
		llmopenai.Factory(),
		llmjudge.Factory(),
		store,
		evalservice.WithParallelism(envInt("RAGEVAL_PARALLELISM", 0)),
		evalservice.WithCallTimeout(envDuration("RAGEVAL_CALL_TIMEOUT", 0)),
	)
	if err != nil {
		log.Fatalf("create evaluation service: %v", err)
	}
	defer svc.Close()

	srv := server.New(store, svc, searchClient,
		server.WithStaticDir(os.Getenv("RAGEVAL_STATIC_DIR")))

	addr := os.Getenv("RAGEVAL_ADDR")
	if addr == "" {
		addr = ":8000"
	}
	httpServer := &http.Server{Addr: addr, Handler: srv.Handler()}
	go func() {
		log.Infof("rageval listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown http server: %v", err)
	}
}

// newStore selects the config store backend from RAGEVAL_STORE.
func newStore(ctx context.Context) (configstore.Store, error) {
	switch backend := os.Getenv("RAGEVAL_STORE"); backend {
	case "", "memory":
		return storeinmemory.New(), nil
	case "mongo":
		return storemongo.New(ctx,
			storemongo.WithURI(os.Getenv("RAGEVAL_MONGO_URI")),
			storemongo.WithDatabase(envString("RAGEVAL_MONGO_DATABASE", "rageval")),
			storemongo.WithCollection(envString("RAGEVAL_MONGO_COLLECTION", "configs")),
		)
	default:
		return nil, errors.New("unknown store backend: " + backend)
	}
}

// newSearchClient builds the Elasticsearch client with optional credentials.
func newSearchClient() *searches.Client {
	var opts []searches.Option
	if apiKey := os.Getenv("RAGEVAL_ES_API_KEY"); apiKey != "" {
		opts = append(opts, searches.WithAPIKey(apiKey))
	}
	if username := os.Getenv("RAGEVAL_ES_USERNAME"); username != "" {
		opts = append(opts, searches.WithBasicAuth(username, os.Getenv("RAGEVAL_ES_PASSWORD")))
	}
	return searches.New(opts...)
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warnf("invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Warnf("invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return parsed
}
