//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"trpc.group/trpc-go/trpc-rageval-go/configstore"
	"trpc.group/trpc-go/trpc-rageval-go/eval"
	"trpc.group/trpc-go/trpc-rageval-go/log"
	"trpc.group/trpc-go/trpc-rageval-go/search"
)

// handleListSearchIndexes resolves a stored search configuration and lists
// the indexes on that endpoint. Listing failures degrade to an empty list.
func (s *Server) handleListSearchIndexes(w http.ResponseWriter, r *http.Request) {
	configID := mux.Vars(r)["configId"]
	entry, err := s.store.GetByID(r.Context(), configID)
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "Search configuration not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entry.Type != configstore.TypeSearchService {
		http.Error(w, "Search configuration not found", http.StatusNotFound)
		return
	}
	var config SearchConfig
	if err := json.Unmarshal(entry.Payload, &config); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	indexes, err := s.searchClient.ListIndexes(r.Context(), config.Endpoint)
	if err != nil {
		log.Warnf("list indexes on %s: %v", config.Endpoint, err)
		indexes = []search.Index{}
	}
	if indexes == nil {
		indexes = []search.Index{}
	}
	s.writeJSON(w, indexes)
}

// handleRunEvaluation validates the request, runs the evaluation and returns
// the persisted result.
func (s *Server) handleRunEvaluation(w http.ResponseWriter, r *http.Request) {
	var req eval.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := s.evalRunner.Run(r.Context(), &req)
	if err != nil {
		http.Error(w, fmt.Sprintf("evaluation failed: %v", err), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, map[string]any{
		"status":        "success",
		"evaluation_id": result.EvaluationID,
		"result":        result,
	})
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.QueryByType(r.Context(), configstore.TypeEvaluationResult)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, flattenEntries(entries))
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	evaluationID := mux.Vars(r)["evaluationId"]
	entry, err := s.store.GetByID(r.Context(), evaluationID)
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "Evaluation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entry.Type != configstore.TypeEvaluationResult {
		http.Error(w, "Evaluation not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, flattenEntry(entry))
}
