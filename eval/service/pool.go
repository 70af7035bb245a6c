//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-rageval-go/eval"
	"trpc.group/trpc-go/trpc-rageval-go/llm"
)

type inferenceParam struct {
	idx      int
	ctx      context.Context
	req      *eval.Request
	testCase eval.TestCase
	client   llm.Client
	svc      *Service
	records  []eval.Record
	wg       *sync.WaitGroup
}

func (p *inferenceParam) reset() {
	p.idx = 0
	p.ctx = nil
	p.req = nil
	p.testCase = eval.TestCase{}
	p.client = nil
	p.svc = nil
	p.records = nil
	p.wg = nil
}

var inferenceParamPool = &sync.Pool{
	New: func() any { return new(inferenceParam) },
}

func createInferencePool(size int) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*inferenceParam)
		if !ok {
			panic("inference pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			inferenceParamPool.Put(param)
		}()
		param.records[param.idx] = param.svc.inferTestCase(param.ctx, param.req, param.testCase, param.client)
	})
	if err != nil {
		return nil, fmt.Errorf("create inference pool: %w", err)
	}
	return pool, nil
}
