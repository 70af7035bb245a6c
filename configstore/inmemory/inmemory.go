//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory configuration store, suitable for
// development and tests.
package inmemory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"trpc.group/trpc-go/trpc-rageval-go/configstore"
	"trpc.group/trpc-go/trpc-rageval-go/internal/clone"
)

// Store is an in-memory implementation of configstore.Store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*configstore.Entry // keyed by id
}

var _ configstore.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{entries: make(map[string]*configstore.Entry)}
}

// QueryByType returns all documents of the given type, newest first.
func (s *Store) QueryByType(ctx context.Context, entryType string) ([]*configstore.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*configstore.Entry
	for _, entry := range s.entries {
		if entry.Type != entryType {
			continue
		}
		cloned, err := clone.Clone(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to clone entry: %w", err)
		}
		result = append(result, cloned)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// GetByID returns the document with the given id.
func (s *Store) GetByID(ctx context.Context, id string) (*configstore.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("entry %s: %w", id, os.ErrNotExist)
	}
	return clone.Clone(entry)
}

// Create stores a new document. It fails if the id already exists.
func (s *Store) Create(ctx context.Context, entry *configstore.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.ID]; ok {
		return fmt.Errorf("entry %s already exists", entry.ID)
	}
	cloned, err := clone.Clone(entry)
	if err != nil {
		return fmt.Errorf("failed to clone entry: %w", err)
	}
	s.entries[entry.ID] = cloned
	return nil
}

// Upsert stores the document, replacing any existing one with the same id.
func (s *Store) Upsert(ctx context.Context, entry *configstore.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cloned, err := clone.Clone(entry)
	if err != nil {
		return fmt.Errorf("failed to clone entry: %w", err)
	}
	s.entries[entry.ID] = cloned
	return nil
}

// Delete removes the document identified by id and type.
func (s *Store) Delete(ctx context.Context, id, entryType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || entry.Type != entryType {
		return fmt.Errorf("entry %s: %w", id, os.ErrNotExist)
	}
	delete(s.entries, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close(ctx context.Context) error {
	return nil
}
