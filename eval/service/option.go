//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package service

import "time"

// Options is the configuration for the evaluation service.
type Options struct {
	// Parallelism is the number of test cases inferred concurrently.
	// Values below 2 keep inference sequential.
	Parallelism int
	// CallTimeout bounds each retrieval and generation call.
	// Zero means no per-call timeout.
	CallTimeout time.Duration
}

// Option configures the evaluation service.
type Option func(*Options)

// NewOptions creates Options from the given Option list.
func NewOptions(opt ...Option) *Options {
	opts := &Options{}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// WithParallelism sets the number of test cases inferred concurrently.
func WithParallelism(parallelism int) Option {
	return func(o *Options) {
		o.Parallelism = parallelism
	}
}

// WithCallTimeout bounds each retrieval and generation call.
func WithCallTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.CallTimeout = timeout
	}
}
