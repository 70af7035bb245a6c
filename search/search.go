//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package search defines the contract with the external search collaborator.
package search

import "context"

// Document is one ranked hit returned by the search service.
type Document struct {
	// Content is the textual body of the document.
	Content string `json:"content"`
	// Title is the document title, if the index carries one.
	Title string `json:"title,omitempty"`
	// URL points at the source document, if the index carries one.
	URL string `json:"url,omitempty"`
	// Score is the service-assigned relevance score.
	Score float64 `json:"score"`
}

// Index describes one queryable index on a search service.
type Index struct {
	// Name is the index name.
	Name string `json:"name"`
	// Description is the index description, empty when the service has none.
	Description string `json:"description"`
	// FieldsCount is the number of fields defined by the index mapping.
	FieldsCount int `json:"fields_count"`
}

// Client queries an external full-text search service.
// Implementations return errors; degrading failures to empty results is the
// caller's policy, not the client's.
type Client interface {
	// ListIndexes returns the indexes available on the given endpoint.
	ListIndexes(ctx context.Context, endpoint string) ([]Index, error)
	// Search returns up to topK ranked documents matching the query.
	Search(ctx context.Context, endpoint, index, query string, topK int) ([]Document, error)
}
