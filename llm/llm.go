//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package llm defines the contract with the LLM collaborator.
package llm

import (
	"context"

	"trpc.group/trpc-go/trpc-rageval-go/eval"
)

// Request is one completion request.
type Request struct {
	// SystemPrompt is the optional system message.
	SystemPrompt string
	// Prompt is the user message.
	Prompt string
}

// Client produces text completions from one LLM deployment.
type Client interface {
	// Complete sends the prompt and returns the generated text.
	Complete(ctx context.Context, req *Request) (string, error)
}

// Factory builds a Client for the deployment described by the model config.
// Evaluation requests carry their own deployment settings, so clients are
// constructed per run rather than at process start.
type Factory func(cfg eval.ModelConfig) (Client, error)
