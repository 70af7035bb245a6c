//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package configstore provides durable storage for configuration documents
// and evaluation results, keyed by (type, id).
package configstore

import (
	"context"
	"encoding/json"
	"time"
)

// Document types stored by the backend. Type acts as the partition key.
const (
	TypeLLMConfig        = "llm-config"
	TypeSearchService    = "search-service"
	TypeEvaluationResult = "evaluation-result"
)

// Entry is one stored document.
type Entry struct {
	// ID uniquely identifies the document.
	ID string `json:"id"`
	// Type is the document type, used as the partition key.
	Type string `json:"type"`
	// CreatedAt is when the document was first stored.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the document was last written.
	UpdatedAt time.Time `json:"updated_at"`
	// Payload is the document body.
	Payload json.RawMessage `json:"payload"`
}

// Store defines the interface for the configuration store collaborator.
// Single-document reads and writes are atomic; lookups for missing documents
// return an error wrapping os.ErrNotExist.
type Store interface {
	// QueryByType returns all documents of the given type, newest first.
	QueryByType(ctx context.Context, entryType string) ([]*Entry, error)
	// GetByID returns the document with the given id, regardless of type.
	GetByID(ctx context.Context, id string) (*Entry, error)
	// Create stores a new document. It fails if the id already exists.
	Create(ctx context.Context, entry *Entry) error
	// Upsert stores the document, replacing any existing one with the same id.
	Upsert(ctx context.Context, entry *Entry) error
	// Delete removes the document identified by id and type.
	Delete(ctx context.Context, id, entryType string) error
	// Close releases backend resources.
	Close(ctx context.Context) error
}
