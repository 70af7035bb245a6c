//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRAGPrompt(t *testing.T) {
	prompts := Prompts{
		RAGPrompt: "Context:\n{context}\n\nQuestion: {question}\nAnswer:",
	}

	got := prompts.BuildRAGPrompt("What is X?", []string{"X is a thing.", "X was built in 2020."})
	assert.Equal(t, "Context:\nX is a thing.\n\nX was built in 2020.\n\nQuestion: What is X?\nAnswer:", got)
}

func TestBuildRAGPromptNoContexts(t *testing.T) {
	prompts := Prompts{RAGPrompt: "{context}|{question}"}

	got := prompts.BuildRAGPrompt("q", nil)
	assert.Equal(t, "|q", got)
}

func TestBuildRAGPromptRepeatedPlaceholders(t *testing.T) {
	prompts := Prompts{RAGPrompt: "{question} {context} {question}"}

	got := prompts.BuildRAGPrompt("q", []string{"c"})
	assert.Equal(t, "q c q", got)
}

func TestBuildRAGPromptLiteralPlaceholderInContext(t *testing.T) {
	// Placeholder text inside a retrieved passage is data, not a
	// substitution point, and must survive untouched.
	prompts := Prompts{RAGPrompt: "Context: {context}\nQuestion: {question}"}

	got := prompts.BuildRAGPrompt("what is x", []string{"doc says use {question} syntax"})
	assert.Equal(t, "Context: doc says use {question} syntax\nQuestion: what is x", got)
}
