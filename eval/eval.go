//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package eval provides the entities shared by the RAG evaluation pipeline.
package eval

import (
	"strings"
	"time"
)

// Substitution points the RAG prompt template must contain.
const (
	PlaceholderContext  = "{context}"
	PlaceholderQuestion = "{question}"
)

// contextSeparator joins retrieved passages into one prompt block.
const contextSeparator = "\n\n"

// TestCase is a single question/ground-truth sample supplied by the caller.
// Test cases are immutable once loaded.
type TestCase struct {
	// ID uniquely identifies this test case within its test set.
	ID string `json:"id"`
	// Question is the user question to evaluate.
	Question string `json:"question"`
	// Answer is an optional caller-provided answer, kept for reference only.
	Answer string `json:"answer,omitempty"`
	// Citation lists the caller-provided source documents, kept for reference only.
	Citation []string `json:"citation,omitempty"`
	// GroundTruth is the authoritative answer used to score generated answers.
	GroundTruth string `json:"ground_truth"`
}

// ModelConfig describes how to reach one LLM deployment.
type ModelConfig struct {
	// Provider identifies the model provider.
	Provider string `json:"provider"`
	// ChatEndpoint is the chat completions endpoint URL.
	ChatEndpoint string `json:"chat_endpoint"`
	// DeploymentName is the deployment to invoke.
	DeploymentName string `json:"deployment_name"`
	// APIVersion selects the service API version.
	APIVersion string `json:"api_version"`
	// SubscriptionKey is the API credential.
	SubscriptionKey string `json:"subscription_key"`
	// Temperature is the sampling temperature.
	Temperature float64 `json:"temperature"`
	// TopK is the retrieval depth used when fetching contexts.
	TopK int `json:"top_k"`
	// MaxTokens limits the generated output length.
	MaxTokens int `json:"max_tokens"`
}

// SearchIndexRef identifies one queryable document collection.
type SearchIndexRef struct {
	// Endpoint is the search service endpoint URL.
	Endpoint string `json:"search_service_endpoint"`
	// IndexName is the index to query.
	IndexName string `json:"index_name"`
}

// Prompts carries the template strings used during answer generation.
type Prompts struct {
	// AssistantPrompt is the system prompt given to the generating model.
	AssistantPrompt string `json:"assistant_prompt"`
	// RAGPrompt is the user prompt template. It must contain the
	// {context} and {question} substitution points.
	RAGPrompt string `json:"rag_prompt"`
}

// BuildRAGPrompt joins the retrieved contexts into one block and substitutes
// it together with the question into the RAG prompt template. Substitution is
// a single pass over the template, so placeholder text occurring inside a
// retrieved passage is left untouched.
func (p Prompts) BuildRAGPrompt(question string, contexts []string) string {
	return strings.NewReplacer(
		PlaceholderContext, strings.Join(contexts, contextSeparator),
		PlaceholderQuestion, question,
	).Replace(p.RAGPrompt)
}

// Request is the full input to one evaluation run.
// The ordering of TestCases is significant and preserved in the output.
type Request struct {
	// Name labels the evaluation run.
	Name string `json:"name"`
	// Model describes the LLM deployment used for generation and judging.
	Model ModelConfig `json:"model"`
	// SearchIndex identifies the document collection to retrieve contexts from.
	SearchIndex SearchIndexRef `json:"search_index"`
	// Prompts carries the generation templates.
	Prompts Prompts `json:"prompts"`
	// TestCases are the samples to evaluate, in order.
	TestCases []TestCase `json:"test_cases"`
}

// Record is one (question, answer, contexts, ground truth) tuple built during
// the run and consumed by the scorer.
type Record struct {
	// Question is the test case question.
	Question string `json:"question"`
	// Answer is the generated answer.
	Answer string `json:"answer"`
	// Contexts are the retrieved passages the answer was conditioned on.
	Contexts []string `json:"contexts"`
	// GroundTruth is the reference answer.
	GroundTruth string `json:"ground_truth"`
}

// Metrics holds the four RAG quality scores. Each value is scorer-defined,
// normally in [0, 1]; the system does not re-validate the range.
type Metrics struct {
	// Faithfulness measures how well the answer is supported by the contexts.
	Faithfulness float64 `json:"faithfulness"`
	// AnswerRelevancy measures semantic relevance of the answer to the question.
	AnswerRelevancy float64 `json:"answer_relevancy"`
	// ContextRecall measures whether the retrieved contexts cover the ground truth.
	ContextRecall float64 `json:"context_recall"`
	// ContextPrecision measures ranking quality of relevant retrieved contexts.
	ContextPrecision float64 `json:"context_precision"`
}

// TestCaseResult is the per-case slice of an evaluation result. Position i in
// the result corresponds to position i of the request's test cases.
type TestCaseResult struct {
	// TestCaseID identifies the originating test case.
	TestCaseID string `json:"test_case_id"`
	// Question is the test case question.
	Question string `json:"question"`
	// GeneratedAnswer is the answer produced during the run.
	GeneratedAnswer string `json:"generated_answer"`
	// GroundTruth is the reference answer.
	GroundTruth string `json:"ground_truth"`
	// Contexts are the retrieved passages.
	Contexts []string `json:"contexts"`
	// Metrics are the per-case scores.
	Metrics Metrics `json:"metrics"`
}

// Result is the report produced by one evaluation run.
// It is persisted once and immutable thereafter.
type Result struct {
	// EvaluationID uniquely identifies this run.
	EvaluationID string `json:"evaluation_id"`
	// Name labels the run, copied from the request.
	Name string `json:"name"`
	// OverallMetrics are the dataset-level aggregate scores.
	OverallMetrics Metrics `json:"overall_metrics"`
	// TestCaseResults are the per-case results, aligned with the request order.
	TestCaseResults []TestCaseResult `json:"test_case_results"`
	// TotalTestCases is the number of evaluated test cases.
	TotalTestCases int `json:"total_test_cases"`
	// CreatedAt is when this run completed.
	CreatedAt time.Time `json:"created_at"`
}
