//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package server provides the HTTP surface of the evaluation backend: config
// CRUD, test data upload, evaluation runs and result queries.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-rageval-go/configstore"
	"trpc.group/trpc-go/trpc-rageval-go/eval"
	"trpc.group/trpc-go/trpc-rageval-go/search"
)

// EvalRunner runs one evaluation end to end and persists the result.
type EvalRunner interface {
	Run(ctx context.Context, req *eval.Request) (*eval.Result, error)
}

// Server exposes the REST endpoints of the evaluation backend.
type Server struct {
	router       *mux.Router
	store        configstore.Store
	evalRunner   EvalRunner
	searchClient search.Client
	staticDir    string
	now          func() time.Time
}

// Option configures the Server instance.
type Option func(*Server)

// WithStaticDir sets the directory served at / and /static/.
// If omitted, no frontend is served.
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// New creates the HTTP server with its collaborators. The behaviour can be
// tweaked via functional options.
func New(store configstore.Store, evalRunner EvalRunner, searchClient search.Client, opts ...Option) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		store:        store,
		evalRunner:   evalRunner,
		searchClient: searchClient,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type", "Content-Disposition"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// registerRoutes sets up all REST endpoints.
func (s *Server) registerRoutes() {
	s.router.HandleFunc("/sample-test-data", s.handleSampleTestData).Methods(http.MethodGet)
	s.router.HandleFunc("/upload-test-data", s.handleUploadTestData).Methods(http.MethodPost)

	s.router.HandleFunc("/llm-configs", s.handleListLLMConfigs).Methods(http.MethodGet)
	s.router.HandleFunc("/llm-configs", s.handleCreateLLMConfig).Methods(http.MethodPost)
	s.router.HandleFunc("/llm-configs/{configId}", s.handleUpdateLLMConfig).Methods(http.MethodPut)
	s.router.HandleFunc("/llm-configs/{configId}", s.handleDeleteLLMConfig).Methods(http.MethodDelete)

	s.router.HandleFunc("/search-configs", s.handleListSearchConfigs).Methods(http.MethodGet)
	s.router.HandleFunc("/search-configs", s.handleCreateSearchConfig).Methods(http.MethodPost)
	s.router.HandleFunc("/search-configs/{configId}", s.handleUpdateSearchConfig).Methods(http.MethodPut)
	s.router.HandleFunc("/search-configs/{configId}", s.handleDeleteSearchConfig).Methods(http.MethodDelete)
	s.router.HandleFunc("/search-indexes/{configId}", s.handleListSearchIndexes).Methods(http.MethodGet)

	s.router.HandleFunc("/run-ragas", s.handleRunEvaluation).Methods(http.MethodPost)
	s.router.HandleFunc("/evaluations", s.handleListEvaluations).Methods(http.MethodGet)
	s.router.HandleFunc("/evaluations/{evaluationId}", s.handleGetEvaluation).Methods(http.MethodGet)

	if s.staticDir != "" {
		s.router.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))
	}
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
}

// Handler returns the root HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.staticDir == "" {
		s.writeJSON(w, map[string]string{"name": "trpc-rageval-go", "status": "ok"})
		return
	}
	http.ServeFile(w, r, filepath.Join(s.staticDir, "index.html"))
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
