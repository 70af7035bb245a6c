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
	"time"

	"github.com/gorilla/mux"

	"trpc.group/trpc-go/trpc-rageval-go/configstore"
)

// LLMConfig is the stored shape of an LLM connection configuration.
type LLMConfig struct {
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	ChatEndpoint    string  `json:"chat_endpoint"`
	DeploymentName  string  `json:"deployment_name"`
	APIVersion      string  `json:"api_version"`
	SubscriptionKey string  `json:"subscription_key"`
	Temperature     float64 `json:"temperature"`
	MaxTokens       int     `json:"max_tokens"`
}

// SearchConfig is the stored shape of a search service configuration.
type SearchConfig struct {
	Name     string `json:"name"`
	Endpoint string `json:"search_service_endpoint"`
}

func (s *Server) handleListLLMConfigs(w http.ResponseWriter, r *http.Request) {
	s.listConfigs(w, r, configstore.TypeLLMConfig)
}

func (s *Server) handleCreateLLMConfig(w http.ResponseWriter, r *http.Request) {
	var config LLMConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.createConfig(w, r, configstore.TypeLLMConfig, "llm", &config)
}

func (s *Server) handleUpdateLLMConfig(w http.ResponseWriter, r *http.Request) {
	var config LLMConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.updateConfig(w, r, configstore.TypeLLMConfig, &config)
}

func (s *Server) handleDeleteLLMConfig(w http.ResponseWriter, r *http.Request) {
	s.deleteConfig(w, r, configstore.TypeLLMConfig)
}

func (s *Server) handleListSearchConfigs(w http.ResponseWriter, r *http.Request) {
	s.listConfigs(w, r, configstore.TypeSearchService)
}

func (s *Server) handleCreateSearchConfig(w http.ResponseWriter, r *http.Request) {
	var config SearchConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.createConfig(w, r, configstore.TypeSearchService, "search", &config)
}

func (s *Server) handleUpdateSearchConfig(w http.ResponseWriter, r *http.Request) {
	var config SearchConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.updateConfig(w, r, configstore.TypeSearchService, &config)
}

func (s *Server) handleDeleteSearchConfig(w http.ResponseWriter, r *http.Request) {
	s.deleteConfig(w, r, configstore.TypeSearchService)
}

func (s *Server) listConfigs(w http.ResponseWriter, r *http.Request, configType string) {
	entries, err := s.store.QueryByType(r.Context(), configType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, flattenEntries(entries))
}

// createConfig stores a new configuration under a freshly minted id and
// returns the stored document.
func (s *Server) createConfig(w http.ResponseWriter, r *http.Request,
	configType, idPrefix string, config any) {
	payload, err := json.Marshal(config)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	now := s.now().UTC()
	entry := &configstore.Entry{
		ID:        fmt.Sprintf("%s-%d", idPrefix, now.UnixMilli()),
		Type:      configType,
		CreatedAt: now,
		UpdatedAt: now,
		Payload:   payload,
	}
	if err := s.store.Create(r.Context(), entry); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, flattenEntry(entry))
}

// updateConfig replaces an existing configuration, preserving its creation
// timestamp.
func (s *Server) updateConfig(w http.ResponseWriter, r *http.Request, configType string, config any) {
	configID := mux.Vars(r)["configId"]
	existing, err := s.store.GetByID(r.Context(), configID)
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "Configuration not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if existing.Type != configType {
		http.Error(w, "Configuration not found", http.StatusNotFound)
		return
	}
	payload, err := json.Marshal(config)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	entry := &configstore.Entry{
		ID:        configID,
		Type:      configType,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: s.now().UTC(),
		Payload:   payload,
	}
	if err := s.store.Upsert(r.Context(), entry); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, flattenEntry(entry))
}

func (s *Server) deleteConfig(w http.ResponseWriter, r *http.Request, configType string) {
	configID := mux.Vars(r)["configId"]
	err := s.store.Delete(r.Context(), configID, configType)
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "Configuration not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, map[string]string{"status": "success", "id": configID})
}

// flattenEntry merges the stored payload with the document metadata, matching
// the shape the documents were persisted with.
func flattenEntry(entry *configstore.Entry) map[string]any {
	doc := map[string]any{}
	if len(entry.Payload) > 0 {
		_ = json.Unmarshal(entry.Payload, &doc)
	}
	doc["id"] = entry.ID
	doc["type"] = entry.Type
	doc["created_at"] = entry.CreatedAt.UTC().Format(time.RFC3339Nano)
	doc["updated_at"] = entry.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return doc
}

func flattenEntries(entries []*configstore.Entry) []map[string]any {
	docs := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, flattenEntry(entry))
	}
	return docs
}
