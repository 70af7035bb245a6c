//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package llmjudge implements a scoring.Scorer that uses an LLM as judge.
package llmjudge

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"trpc.group/trpc-go/trpc-rageval-go/eval"
	"trpc.group/trpc-go/trpc-rageval-go/llm"
	"trpc.group/trpc-go/trpc-rageval-go/log"
	"trpc.group/trpc-go/trpc-rageval-go/scoring"
)

var (
	faithfulnessPrompt = `You are an expert rater for retrieval-augmented generation systems.
Rate how faithful the answer is to the retrieved contexts: every claim in the
answer should be directly supported by the contexts. Unsupported or
contradicted claims lower the score.

Contexts:
{{.Contexts}}

Answer:
{{.Answer}}

Respond with a json alone which follows the structure below, where score is a
number between 0.0 (completely unfaithful) and 1.0 (fully supported):
{
  "reasoning": [reasoning],
  "score": [score]
}
`
	answerRelevancyPrompt = `You are an expert rater for question answering systems.
Rate how relevant the answer is to the question: a relevant answer addresses
the question directly and completely, without redundant or off-topic content.

Question:
{{.Question}}

Answer:
{{.Answer}}

Respond with a json alone which follows the structure below, where score is a
number between 0.0 (irrelevant) and 1.0 (fully relevant):
{
  "reasoning": [reasoning],
  "score": [score]
}
`
	contextRecallPrompt = `You are an expert rater for retrieval systems.
Rate how well the retrieved contexts cover the reference answer: every
statement in the reference answer should be attributable to the contexts.

Reference answer:
{{.GroundTruth}}

Contexts:
{{.Contexts}}

Respond with a json alone which follows the structure below, where score is a
number between 0.0 (nothing covered) and 1.0 (fully covered):
{
  "reasoning": [reasoning],
  "score": [score]
}
`
	contextPrecisionPrompt = `You are an expert rater for retrieval systems.
Rate the ranking quality of the retrieved contexts for the question: contexts
relevant to answering the question should appear before irrelevant ones, and
irrelevant contexts lower the score.

Question:
{{.Question}}

Contexts, in ranked order:
{{.Contexts}}

Respond with a json alone which follows the structure below, where score is a
number between 0.0 (only irrelevant contexts) and 1.0 (all contexts relevant
and well ranked):
{
  "reasoning": [reasoning],
  "score": [score]
}
`

	// scoreRe extracts the numeric score from the judge output.
	scoreRe = regexp.MustCompile(`"score"\s*:\s*\[?\s*([0-9]*\.?[0-9]+)\s*\]?`)
)

// metricPrompts maps each metric to its judge prompt template, in the order
// scores are reported.
var metricPrompts = []struct {
	name string
	tmpl *template.Template
}{
	{scoring.MetricFaithfulness, template.Must(template.New(scoring.MetricFaithfulness).Parse(faithfulnessPrompt))},
	{scoring.MetricAnswerRelevancy, template.Must(template.New(scoring.MetricAnswerRelevancy).Parse(answerRelevancyPrompt))},
	{scoring.MetricContextRecall, template.Must(template.New(scoring.MetricContextRecall).Parse(contextRecallPrompt))},
	{scoring.MetricContextPrecision, template.Must(template.New(scoring.MetricContextPrecision).Parse(contextPrecisionPrompt))},
}

// promptData is the material rendered into the judge prompt templates.
type promptData struct {
	Question    string
	Answer      string
	Contexts    string
	GroundTruth string
}

// Scorer judges each record against the four RAG quality metrics.
type Scorer struct {
	judge llm.Client
}

// New creates a Scorer backed by the given judge model.
func New(judge llm.Client) *Scorer {
	return &Scorer{judge: judge}
}

// Factory returns a scoring.Factory producing LLM-as-judge scorers.
func Factory() scoring.Factory {
	return func(judge llm.Client) scoring.Scorer {
		return New(judge)
	}
}

// Score evaluates the whole batch. A failed or unparseable judge response for
// one metric degrades that metric to 0.0 rather than failing the batch; only
// context cancellation aborts.
func (s *Scorer) Score(ctx context.Context, records []eval.Record) (eval.Metrics, []eval.Metrics, error) {
	perRecord := make([]eval.Metrics, len(records))
	for i, record := range records {
		data := promptData{
			Question:    record.Question,
			Answer:      record.Answer,
			Contexts:    numberContexts(record.Contexts),
			GroundTruth: record.GroundTruth,
		}
		for _, mp := range metricPrompts {
			if err := ctx.Err(); err != nil {
				return eval.Metrics{}, nil, fmt.Errorf("score batch: %w", err)
			}
			score, err := s.scoreMetric(ctx, mp.tmpl, data)
			if err != nil {
				log.Warnf("judge metric %s for record %d: %v", mp.name, i, err)
				score = 0.0
			}
			setMetric(&perRecord[i], mp.name, score)
		}
	}
	return aggregate(perRecord), perRecord, nil
}

// scoreMetric renders the prompt, invokes the judge and parses the score.
func (s *Scorer) scoreMetric(ctx context.Context, tmpl *template.Template, data promptData) (float64, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return 0, fmt.Errorf("execute judge prompt template: %w", err)
	}
	response, err := s.judge.Complete(ctx, &llm.Request{Prompt: buf.String()})
	if err != nil {
		return 0, fmt.Errorf("judge completion: %w", err)
	}
	return parseScore(response)
}

// parseScore extracts the numeric score from the judge response. Scores
// outside [0, 1] are clamped.
func parseScore(response string) (float64, error) {
	match := scoreRe.FindStringSubmatch(response)
	if match == nil {
		return 0, fmt.Errorf("no score in judge response")
	}
	score, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", match[1], err)
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}

// numberContexts renders contexts as a numbered list to expose ranking order
// to the judge.
func numberContexts(contexts []string) string {
	if len(contexts) == 0 {
		return "(no contexts retrieved)"
	}
	var b strings.Builder
	for i, c := range contexts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}
	return b.String()
}

func setMetric(m *eval.Metrics, name string, score float64) {
	switch name {
	case scoring.MetricFaithfulness:
		m.Faithfulness = score
	case scoring.MetricAnswerRelevancy:
		m.AnswerRelevancy = score
	case scoring.MetricContextRecall:
		m.ContextRecall = score
	case scoring.MetricContextPrecision:
		m.ContextPrecision = score
	}
}

// aggregate averages the per-record metrics into dataset-level scores.
func aggregate(perRecord []eval.Metrics) eval.Metrics {
	if len(perRecord) == 0 {
		return eval.Metrics{}
	}
	var sum eval.Metrics
	for _, m := range perRecord {
		sum.Faithfulness += m.Faithfulness
		sum.AnswerRelevancy += m.AnswerRelevancy
		sum.ContextRecall += m.ContextRecall
		sum.ContextPrecision += m.ContextPrecision
	}
	n := float64(len(perRecord))
	return eval.Metrics{
		Faithfulness:     sum.Faithfulness / n,
		AnswerRelevancy:  sum.AnswerRelevancy / n,
		ContextRecall:    sum.ContextRecall / n,
		ContextPrecision: sum.ContextPrecision / n,
	}
}
