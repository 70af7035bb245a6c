//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package elasticsearch provides a search.Client backed by Elasticsearch.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	es "github.com/elastic/go-elasticsearch/v9"
	"trpc.group/trpc-go/trpc-rageval-go/search"
)

// Client implements search.Client on top of go-elasticsearch. One underlying
// ES client is built lazily per endpoint and reused across calls.
type Client struct {
	mu      sync.Mutex
	clients map[string]*es.Client

	username  string
	password  string
	apiKey    string
	transport http.RoundTripper
}

// Option configures the Client.
type Option func(*Client)

// WithBasicAuth sets basic auth credentials applied to every endpoint.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithAPIKey sets the API key applied to every endpoint.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithTransport overrides the HTTP transport, mainly for testing.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// New creates an Elasticsearch-backed search client.
func New(opt ...Option) *Client {
	c := &Client{clients: make(map[string]*es.Client)}
	for _, o := range opt {
		o(c)
	}
	return c
}

// client returns the cached ES client for endpoint, building it on first use.
func (c *Client) client(endpoint string) (*es.Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("elasticsearch: endpoint is empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cli, ok := c.clients[endpoint]; ok {
		return cli, nil
	}
	cfg := es.Config{
		Addresses: []string{endpoint},
		Username:  c.username,
		Password:  c.password,
		APIKey:    c.apiKey,
		Transport: c.transport,
	}
	cli, err := es.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client for %s: %w", endpoint, err)
	}
	c.clients[endpoint] = cli
	return cli, nil
}

// ListIndexes returns the non-system indexes available on the endpoint,
// sorted by name.
func (c *Client) ListIndexes(ctx context.Context, endpoint string) ([]search.Index, error) {
	cli, err := c.client(endpoint)
	if err != nil {
		return nil, err
	}
	res, err := cli.Indices.Get([]string{"*"}, cli.Indices.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: get indices: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch: get indices: %s", res.Status())
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: read indices response: %w", err)
	}
	var raw map[string]struct {
		Mappings struct {
			Meta       map[string]any             `json:"_meta"`
			Properties map[string]json.RawMessage `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("elasticsearch: decode indices response: %w", err)
	}
	indexes := make([]search.Index, 0, len(raw))
	for name, meta := range raw {
		// Dot-prefixed indexes are internal to the cluster.
		if strings.HasPrefix(name, ".") {
			continue
		}
		description := ""
		if d, ok := meta.Mappings.Meta["description"].(string); ok {
			description = d
		}
		indexes = append(indexes, search.Index{
			Name:        name,
			Description: description,
			FieldsCount: len(meta.Mappings.Properties),
		})
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i].Name < indexes[j].Name })
	return indexes, nil
}

// Search runs a full-text query against the index and returns up to topK
// ranked documents.
func (c *Client) Search(ctx context.Context, endpoint, index, query string, topK int) ([]search.Document, error) {
	cli, err := c.client(endpoint)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"simple_query_string": map[string]any{"query": query},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: marshal query: %w", err)
	}
	res, err := cli.Search(
		cli.Search.WithContext(ctx),
		cli.Search.WithIndex(index),
		cli.Search.WithBody(bytes.NewReader(body)),
		cli.Search.WithSize(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: search %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch: search %s: %s", index, res.Status())
	}
	var sr struct {
		Hits struct {
			Hits []struct {
				Score  float64        `json:"_score"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("elasticsearch: decode search response: %w", err)
	}
	docs := make([]search.Document, 0, len(sr.Hits.Hits))
	for _, hit := range sr.Hits.Hits {
		docs = append(docs, search.Document{
			Content: stringField(hit.Source, "content"),
			Title:   stringField(hit.Source, "title"),
			URL:     stringField(hit.Source, "url"),
			Score:   hit.Score,
		})
	}
	return docs, nil
}

func stringField(source map[string]any, key string) string {
	if v, ok := source[key].(string); ok {
		return v
	}
	return ""
}
