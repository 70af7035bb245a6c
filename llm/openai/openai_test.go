//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rageval-go/eval"
	"trpc.group/trpc-go/trpc-rageval-go/llm"
)

// roundTripper allows mocking http.Transport.
type roundTripper func(*http.Request) *http.Response

func (f roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func jsonResponse(status int, body string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func testConfig(provider string) eval.ModelConfig {
	return eval.ModelConfig{
		Provider:        provider,
		ChatEndpoint:    "https://llm.example.com",
		DeploymentName:  "gpt-4o",
		APIVersion:      "2024-06-01",
		SubscriptionKey: "key",
		Temperature:     0.2,
		TopK:            5,
		MaxTokens:       512,
	}
}

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": "X is a thing."}, "finish_reason": "stop"}
  ]
}`

func TestComplete(t *testing.T) {
	var gotBody []byte
	httpClient := &http.Client{Transport: roundTripper(func(req *http.Request) *http.Response {
		gotBody, _ = io.ReadAll(req.Body)
		return jsonResponse(http.StatusOK, completionBody)
	})}
	client, err := New(testConfig("openai"), WithHTTPClient(httpClient))
	require.NoError(t, err)

	answer, err := client.Complete(context.Background(), &llm.Request{
		SystemPrompt: "You are a helpful assistant.",
		Prompt:       "What is X?",
	})
	require.NoError(t, err)
	assert.Equal(t, "X is a thing.", answer)

	var params struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &params))
	assert.Equal(t, "gpt-4o", params.Model)
	assert.Equal(t, 0.2, params.Temperature)
	assert.Equal(t, 512, params.MaxTokens)
	require.Len(t, params.Messages, 2)
	assert.Equal(t, "system", params.Messages[0].Role)
	assert.Equal(t, "user", params.Messages[1].Role)
	assert.Equal(t, "What is X?", params.Messages[1].Content)
}

func TestCompleteAzureRoutesThroughDeployment(t *testing.T) {
	var gotURL string
	httpClient := &http.Client{Transport: roundTripper(func(req *http.Request) *http.Response {
		gotURL = req.URL.String()
		return jsonResponse(http.StatusOK, completionBody)
	})}
	client, err := New(testConfig("azure"), WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), &llm.Request{Prompt: "What is X?"})
	require.NoError(t, err)
	assert.Contains(t, gotURL, "gpt-4o")
	assert.Contains(t, gotURL, "api-version=2024-06-01")
}

func TestCompleteNoSystemPrompt(t *testing.T) {
	var gotBody []byte
	httpClient := &http.Client{Transport: roundTripper(func(req *http.Request) *http.Response {
		gotBody, _ = io.ReadAll(req.Body)
		return jsonResponse(http.StatusOK, completionBody)
	})}
	client, err := New(testConfig("openai"), WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), &llm.Request{Prompt: "What is X?"})
	require.NoError(t, err)

	var params struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &params))
	require.Len(t, params.Messages, 1)
	assert.Equal(t, "user", params.Messages[0].Role)
}

func TestCompleteNoChoices(t *testing.T) {
	httpClient := &http.Client{Transport: roundTripper(func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{"id": "chatcmpl-1", "choices": []}`)
	})}
	client, err := New(testConfig("openai"), WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), &llm.Request{Prompt: "q"})
	assert.Error(t, err)
}

func TestNewValidation(t *testing.T) {
	cfg := testConfig("azure")
	cfg.ChatEndpoint = ""
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = testConfig("azure")
	cfg.DeploymentName = ""
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestCompleteNilRequest(t *testing.T) {
	client, err := New(testConfig("openai"))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), nil)
	assert.Error(t, err)
}
