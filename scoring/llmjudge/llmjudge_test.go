//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package llmjudge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rageval-go/eval"
	"trpc.group/trpc-go/trpc-rageval-go/llm"
)

// fakeJudge responds with a fixed score per metric, recognized by a marker
// string in the rendered prompt.
type fakeJudge struct {
	scores map[string]string // prompt marker -> score literal
	err    error
	calls  int
}

func (f *fakeJudge) Complete(ctx context.Context, req *llm.Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	for marker, score := range f.scores {
		if strings.Contains(req.Prompt, marker) {
			return `{"reasoning": ["ok"], "score": [` + score + `]}`, nil
		}
	}
	return `{"reasoning": ["default"], "score": 0.5}`, nil
}

var judgeMarkers = map[string]string{
	"faithful the answer": "0.9",
	"relevant the answer": "0.8",
	"cover the reference": "0.7",
	"ranking quality":     "0.6",
}

func testRecords() []eval.Record {
	return []eval.Record{
		{
			Question:    "What is X?",
			Answer:      "X is a thing.",
			Contexts:    []string{"X is a thing.", "X was built in 2020."},
			GroundTruth: "X is a thing built in 2020.",
		},
		{
			Question:    "What is Y?",
			Answer:      "Error generating answer: model unavailable",
			Contexts:    []string{},
			GroundTruth: "Y is different.",
		},
	}
}

func TestScoreBatch(t *testing.T) {
	judge := &fakeJudge{scores: judgeMarkers}
	scorer := New(judge)

	overall, perRecord, err := scorer.Score(context.Background(), testRecords())
	require.NoError(t, err)
	require.Len(t, perRecord, 2)

	expected := eval.Metrics{
		Faithfulness:     0.9,
		AnswerRelevancy:  0.8,
		ContextRecall:    0.7,
		ContextPrecision: 0.6,
	}
	assert.Equal(t, expected, perRecord[0])
	assert.Equal(t, expected, perRecord[1])
	assert.Equal(t, expected, overall)
	// 2 records x 4 metrics.
	assert.Equal(t, 8, judge.calls)
}

func TestScoreIdempotent(t *testing.T) {
	scorer := New(&fakeJudge{scores: judgeMarkers})
	records := testRecords()

	overall1, perRecord1, err := scorer.Score(context.Background(), records)
	require.NoError(t, err)
	overall2, perRecord2, err := scorer.Score(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, overall1, overall2)
	assert.Equal(t, perRecord1, perRecord2)
}

func TestScoreJudgeFailureDefaultsToZero(t *testing.T) {
	scorer := New(&fakeJudge{err: errors.New("judge down")})

	overall, perRecord, err := scorer.Score(context.Background(), testRecords()[:1])
	require.NoError(t, err)
	require.Len(t, perRecord, 1)
	assert.Equal(t, eval.Metrics{}, perRecord[0])
	assert.Equal(t, eval.Metrics{}, overall)
}

func TestScoreEmptyBatch(t *testing.T) {
	scorer := New(&fakeJudge{scores: judgeMarkers})

	overall, perRecord, err := scorer.Score(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, perRecord)
	assert.Equal(t, eval.Metrics{}, overall)
}

func TestScoreCancelledContext(t *testing.T) {
	scorer := New(&fakeJudge{scores: judgeMarkers})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := scorer.Score(ctx, testRecords())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseScore(t *testing.T) {
	score, err := parseScore(`{"reasoning": ["fine"], "score": 0.75}`)
	require.NoError(t, err)
	assert.Equal(t, 0.75, score)

	// Bracketed scores follow the response template literally.
	score, err = parseScore(`{"score": [1]}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	// Out-of-range scores are clamped.
	score, err = parseScore(`{"score": 7.5}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	_, err = parseScore("no json here")
	assert.Error(t, err)
}

func TestNumberContexts(t *testing.T) {
	assert.Equal(t, "(no contexts retrieved)", numberContexts(nil))
	assert.Equal(t, "1. a\n2. b\n", numberContexts([]string{"a", "b"}))
}
