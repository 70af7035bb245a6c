//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rageval-go/eval"
	"trpc.group/trpc-go/trpc-rageval-go/search"
)

type fakeSearchClient struct {
	docs []search.Document
	err  error

	gotEndpoint string
	gotIndex    string
	gotQuery    string
	gotTopK     int
}

func (f *fakeSearchClient) ListIndexes(ctx context.Context, endpoint string) ([]search.Index, error) {
	return nil, errors.New("not used")
}

func (f *fakeSearchClient) Search(ctx context.Context, endpoint, index, query string, topK int) ([]search.Document, error) {
	f.gotEndpoint = endpoint
	f.gotIndex = index
	f.gotQuery = query
	f.gotTopK = topK
	return f.docs, f.err
}

var testIndex = eval.SearchIndexRef{
	Endpoint:  "https://search.example.com",
	IndexName: "docs",
}

func TestRetrieve(t *testing.T) {
	client := &fakeSearchClient{docs: []search.Document{
		{Content: "first passage", Score: 2.0},
		{Content: "second passage", Score: 1.0},
	}}
	retriever := New(client)

	contexts := retriever.Retrieve(context.Background(), "What is X?", testIndex, 5)
	require.Equal(t, []string{"first passage", "second passage"}, contexts)

	assert.Equal(t, "https://search.example.com", client.gotEndpoint)
	assert.Equal(t, "docs", client.gotIndex)
	assert.Equal(t, "What is X?", client.gotQuery)
	assert.Equal(t, 5, client.gotTopK)
}

func TestRetrieveSkipsEmptyContent(t *testing.T) {
	client := &fakeSearchClient{docs: []search.Document{
		{Content: "kept"},
		{Content: "", Title: "metadata only"},
		{Content: "also kept"},
	}}

	contexts := New(client).Retrieve(context.Background(), "q", testIndex, 5)
	assert.Equal(t, []string{"kept", "also kept"}, contexts)
}

func TestRetrieveFailureDegradesToEmpty(t *testing.T) {
	client := &fakeSearchClient{err: errors.New("connection refused")}

	contexts := New(client).Retrieve(context.Background(), "q", testIndex, 5)
	require.NotNil(t, contexts)
	assert.Empty(t, contexts)
}
