//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package scoring defines the batch metric scorer contract.
package scoring

import (
	"context"

	"trpc.group/trpc-go/trpc-rageval-go/eval"
	"trpc.group/trpc-go/trpc-rageval-go/llm"
)

// Names of the computed quality metrics.
const (
	MetricFaithfulness     = "faithfulness"
	MetricAnswerRelevancy  = "answer_relevancy"
	MetricContextRecall    = "context_recall"
	MetricContextPrecision = "context_precision"
)

// Scorer computes quality metrics over a batch of evaluation records.
//
// Score is a pure function of the batch: calling it twice with the same
// records and a deterministic judge yields identical results.
type Scorer interface {
	// Score evaluates the whole batch at once. It returns dataset-level
	// aggregates and per-record metrics aligned with the input order.
	Score(ctx context.Context, records []eval.Record) (overall eval.Metrics, perRecord []eval.Metrics, err error)
}

// Factory builds a Scorer around the judge model used for the run.
type Factory func(judge llm.Client) Scorer
