//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package service orchestrates evaluation runs: it retrieves contexts and
// generates answers for every test case, scores the resulting records in one
// batch, and persists the final result.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-rageval-go/configstore"
	"trpc.group/trpc-go/trpc-rageval-go/eval"
	"trpc.group/trpc-go/trpc-rageval-go/llm"
	"trpc.group/trpc-go/trpc-rageval-go/log"
	"trpc.group/trpc-go/trpc-rageval-go/scoring"
)

var tracer = otel.Tracer("trpc.group/trpc-go/trpc-rageval-go/eval/service")

// Retriever supplies grounding contexts for a question. Implementations
// degrade to an empty slice on failure instead of returning an error.
type Retriever interface {
	Retrieve(ctx context.Context, question string, index eval.SearchIndexRef, topK int) []string
}

// Service runs evaluations end to end.
type Service struct {
	retriever     Retriever
	llmFactory    llm.Factory
	scorerFactory scoring.Factory
	store         configstore.Store
	callTimeout   time.Duration
	pool          *ants.PoolWithFunc
}

// New creates an evaluation service with the given collaborators.
func New(retriever Retriever, llmFactory llm.Factory, scorerFactory scoring.Factory,
	store configstore.Store, opt ...Option) (*Service, error) {
	if retriever == nil {
		return nil, errors.New("retriever is nil")
	}
	if llmFactory == nil {
		return nil, errors.New("llm factory is nil")
	}
	if scorerFactory == nil {
		return nil, errors.New("scorer factory is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	opts := NewOptions(opt...)
	svc := &Service{
		retriever:     retriever,
		llmFactory:    llmFactory,
		scorerFactory: scorerFactory,
		store:         store,
		callTimeout:   opts.CallTimeout,
	}
	if opts.Parallelism > 1 {
		pool, err := createInferencePool(opts.Parallelism)
		if err != nil {
			return nil, fmt.Errorf("create inference pool: %w", err)
		}
		svc.pool = pool
	}
	return svc, nil
}

// Close releases the resources owned by the service.
func (s *Service) Close() error {
	if s.pool != nil {
		s.pool.Release()
	}
	return nil
}

// Run validates the request, infers and scores every test case, persists the
// result, and returns it. A failure anywhere at the run level aborts the run
// and leaves nothing persisted.
func (s *Service) Run(ctx context.Context, req *eval.Request) (*eval.Result, error) {
	if req == nil {
		return nil, errors.New("evaluation request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid evaluation request: %w", err)
	}
	ctx, span := tracer.Start(ctx, "eval.run", trace.WithAttributes(
		attribute.String("eval.name", req.Name),
		attribute.Int("eval.test_case_count", len(req.TestCases)),
	))
	defer span.End()

	client, err := s.llmFactory(req.Model)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	records, err := s.inferAll(ctx, req, client)
	if err != nil {
		return nil, err
	}

	// The scorer receives the whole record batch in one call and reuses the
	// evaluated model as its judge.
	overall, perRecord, err := s.scorerFactory(client).Score(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("score records: %w", err)
	}
	if len(perRecord) < len(records) {
		// A short metric batch is degraded data, not a fatal error: the
		// uncovered tail defaults to zero scores and the run completes.
		log.Warnf("scorer returned %d per-record results for %d records, defaulting the rest to 0.0",
			len(perRecord), len(records))
		padded := make([]eval.Metrics, len(records))
		copy(padded, perRecord)
		perRecord = padded
	}

	result := buildResult(req, records, overall, perRecord)
	if err := s.saveResult(ctx, req, result); err != nil {
		return nil, fmt.Errorf("save evaluation result: %w", err)
	}
	return result, nil
}

// inferAll produces one record per test case, preserving test case order.
func (s *Service) inferAll(ctx context.Context, req *eval.Request, client llm.Client) ([]eval.Record, error) {
	records := make([]eval.Record, len(req.TestCases))
	if s.pool == nil {
		for i, testCase := range req.TestCases {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			records[i] = s.inferTestCase(ctx, req, testCase, client)
		}
		return records, nil
	}
	var wg sync.WaitGroup
	for i, testCase := range req.TestCases {
		wg.Add(1)
		param := inferenceParamPool.Get().(*inferenceParam)
		param.idx = i
		param.ctx = ctx
		param.req = req
		param.testCase = testCase
		param.client = client
		param.svc = s
		param.records = records
		param.wg = &wg
		if err := s.pool.Invoke(param); err != nil {
			wg.Done()
			param.reset()
			inferenceParamPool.Put(param)
			return nil, fmt.Errorf("submit test case %s: %w", testCase.ID, err)
		}
	}
	wg.Wait()
	return records, ctx.Err()
}

// inferTestCase retrieves contexts and generates an answer for one test case.
// Failures degrade into the record instead of failing the run.
func (s *Service) inferTestCase(ctx context.Context, req *eval.Request,
	testCase eval.TestCase, client llm.Client) eval.Record {
	ctx, span := tracer.Start(ctx, "eval.infer_case", trace.WithAttributes(
		attribute.String("eval.test_case_id", testCase.ID),
	))
	defer span.End()

	contexts := s.retrieveContexts(ctx, req, testCase.Question)
	answer := s.generateAnswer(ctx, req, testCase.Question, contexts, client)
	return eval.Record{
		Question:    testCase.Question,
		Answer:      answer,
		Contexts:    contexts,
		GroundTruth: testCase.GroundTruth,
	}
}

func (s *Service) retrieveContexts(ctx context.Context, req *eval.Request, question string) []string {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.retriever.Retrieve(ctx, question, req.SearchIndex, req.Model.TopK)
}

func (s *Service) generateAnswer(ctx context.Context, req *eval.Request,
	question string, contexts []string, client llm.Client) string {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	answer, err := client.Complete(ctx, &llm.Request{
		SystemPrompt: req.Prompts.AssistantPrompt,
		Prompt:       req.Prompts.BuildRAGPrompt(question, contexts),
	})
	if err != nil {
		log.Warnf("generate answer for question %q: %v", question, err)
		return fmt.Sprintf("Error generating answer: %v", err)
	}
	return answer
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

// buildResult zips test cases, records and per-record metrics by position.
func buildResult(req *eval.Request, records []eval.Record,
	overall eval.Metrics, perRecord []eval.Metrics) *eval.Result {
	result := &eval.Result{
		EvaluationID:    uuid.NewString(),
		Name:            req.Name,
		OverallMetrics:  overall,
		TestCaseResults: make([]eval.TestCaseResult, len(records)),
		TotalTestCases:  len(req.TestCases),
		CreatedAt:       time.Now().UTC(),
	}
	for i, record := range records {
		result.TestCaseResults[i] = eval.TestCaseResult{
			TestCaseID:      req.TestCases[i].ID,
			Question:        record.Question,
			GeneratedAnswer: record.Answer,
			GroundTruth:     record.GroundTruth,
			Contexts:        record.Contexts,
			Metrics:         perRecord[i],
		}
	}
	return result
}

// storedResult is the persisted form of an evaluation result. It carries the
// request that produced the run so a stored evaluation stays traceable to the
// model, index, and prompts behind it.
type storedResult struct {
	*eval.Result
	Config *eval.Request `json:"config"`
}

// saveResult persists the result as an immutable document. The request
// credential is stripped before writing.
func (s *Service) saveResult(ctx context.Context, req *eval.Request, result *eval.Result) error {
	redacted := *req
	redacted.Model.SubscriptionKey = ""
	payload, err := json.Marshal(storedResult{Result: result, Config: &redacted})
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return s.store.Create(ctx, &configstore.Entry{
		ID:        result.EvaluationID,
		Type:      configstore.TypeEvaluationResult,
		CreatedAt: result.CreatedAt,
		UpdatedAt: result.CreatedAt,
		Payload:   payload,
	})
}
