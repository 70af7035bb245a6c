//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package retrieval fetches context passages for evaluation questions.
package retrieval

import (
	"context"

	"trpc.group/trpc-go/trpc-rageval-go/eval"
	"trpc.group/trpc-go/trpc-rageval-go/log"
	"trpc.group/trpc-go/trpc-rageval-go/search"
)

// Retriever turns search hits into context passages for the generator.
type Retriever struct {
	client search.Client
}

// New creates a Retriever over the given search client.
func New(client search.Client) *Retriever {
	return &Retriever{client: client}
}

// Retrieve returns up to topK passages relevant to the question. Documents
// with empty content are skipped, so fewer than topK passages may come back.
// Any search failure degrades to an empty result instead of aborting the run:
// one bad search call must not lose the other test cases' results.
func (r *Retriever) Retrieve(ctx context.Context, question string, index eval.SearchIndexRef, topK int) []string {
	docs, err := r.client.Search(ctx, index.Endpoint, index.IndexName, question, topK)
	if err != nil {
		log.Warnf("retrieve contexts for %q on %s/%s: %v", question, index.Endpoint, index.IndexName, err)
		return []string{}
	}
	contexts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		contexts = append(contexts, doc.Content)
	}
	return contexts
}
