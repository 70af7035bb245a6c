//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an llm.Client for OpenAI-compatible deployments.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	openaiopt "github.com/openai/openai-go/option"
	"trpc.group/trpc-go/trpc-rageval-go/eval"
	"trpc.group/trpc-go/trpc-rageval-go/llm"
)

// providerOpenAI selects plain OpenAI-compatible endpoint handling; every
// other provider value is treated as an Azure OpenAI deployment, which is
// what the model config fields (deployment name, API version) describe.
const providerOpenAI = "openai"

// Client implements llm.Client via the openai-go SDK.
type Client struct {
	client      openai.Client
	deployment  string
	temperature float64
	maxTokens   int
}

// Option configures the Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the HTTP client, mainly for testing.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// New creates a client for the deployment described by cfg.
func New(cfg eval.ModelConfig, opt ...Option) (*Client, error) {
	if cfg.ChatEndpoint == "" {
		return nil, errors.New("openai: chat endpoint is empty")
	}
	if cfg.DeploymentName == "" {
		return nil, errors.New("openai: deployment name is empty")
	}
	o := &options{}
	for _, op := range opt {
		op(o)
	}
	var clientOpts []openaiopt.RequestOption
	if cfg.Provider == providerOpenAI {
		clientOpts = append(clientOpts,
			openaiopt.WithBaseURL(cfg.ChatEndpoint),
			openaiopt.WithAPIKey(cfg.SubscriptionKey),
		)
	} else {
		clientOpts = append(clientOpts,
			azure.WithEndpoint(cfg.ChatEndpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.SubscriptionKey),
		)
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, openaiopt.WithHTTPClient(o.httpClient))
	}
	return &Client{
		client:      openai.NewClient(clientOpts...),
		deployment:  cfg.DeploymentName,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Factory returns an llm.Factory building clients with the given options.
func Factory(opt ...Option) llm.Factory {
	return func(cfg eval.ModelConfig) (llm.Client, error) {
		return New(cfg, opt...)
	}
}

// Complete sends the prompt and returns the generated text.
func (c *Client) Complete(ctx context.Context, req *llm.Request) (string, error) {
	if req == nil {
		return "", errors.New("openai: request is nil")
	}
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.deployment),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	return completion.Choices[0].Message.Content, nil
}
