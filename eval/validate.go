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
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Validate checks the request shape before orchestration begins. All problems
// are collected so the caller sees every malformed field at once.
func (r *Request) Validate() error {
	if r == nil {
		return errors.New("request is nil")
	}
	var result *multierror.Error
	if r.Name == "" {
		result = multierror.Append(result, errors.New("name is empty"))
	}
	result = multierror.Append(result, r.Model.validate())
	if r.SearchIndex.Endpoint == "" {
		result = multierror.Append(result, errors.New("search_index.search_service_endpoint is empty"))
	}
	if r.SearchIndex.IndexName == "" {
		result = multierror.Append(result, errors.New("search_index.index_name is empty"))
	}
	result = multierror.Append(result, r.Prompts.validate())
	if len(r.TestCases) == 0 {
		result = multierror.Append(result, errors.New("test_cases is empty"))
	}
	for i, tc := range r.TestCases {
		if tc.ID == "" {
			result = multierror.Append(result, fmt.Errorf("test_cases[%d].id is empty", i))
		}
		if tc.Question == "" {
			result = multierror.Append(result, fmt.Errorf("test_cases[%d].question is empty", i))
		}
		if tc.GroundTruth == "" {
			result = multierror.Append(result, fmt.Errorf("test_cases[%d].ground_truth is empty", i))
		}
	}
	return result.ErrorOrNil()
}

func (m ModelConfig) validate() error {
	var result *multierror.Error
	if m.ChatEndpoint == "" {
		result = multierror.Append(result, errors.New("model.chat_endpoint is empty"))
	}
	if m.DeploymentName == "" {
		result = multierror.Append(result, errors.New("model.deployment_name is empty"))
	}
	if m.APIVersion == "" {
		result = multierror.Append(result, errors.New("model.api_version is empty"))
	}
	if m.SubscriptionKey == "" {
		result = multierror.Append(result, errors.New("model.subscription_key is empty"))
	}
	if m.TopK <= 0 {
		result = multierror.Append(result, errors.New("model.top_k must be greater than 0"))
	}
	if m.MaxTokens <= 0 {
		result = multierror.Append(result, errors.New("model.max_tokens must be greater than 0"))
	}
	return result.ErrorOrNil()
}

func (p Prompts) validate() error {
	var result *multierror.Error
	if p.RAGPrompt == "" {
		result = multierror.Append(result, errors.New("prompts.rag_prompt is empty"))
		return result.ErrorOrNil()
	}
	if !strings.Contains(p.RAGPrompt, PlaceholderContext) {
		result = multierror.Append(result, fmt.Errorf("prompts.rag_prompt must contain %s", PlaceholderContext))
	}
	if !strings.Contains(p.RAGPrompt, PlaceholderQuestion) {
		result = multierror.Append(result, fmt.Errorf("prompts.rag_prompt must contain %s", PlaceholderQuestion))
	}
	return result.ErrorOrNil()
}
