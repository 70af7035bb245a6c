//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"trpc.group/trpc-go/trpc-rageval-go/eval"
)

// maxUploadSize bounds test data uploads at 10 MiB.
const maxUploadSize = 10 << 20

var sampleTestData = []eval.TestCase{
	{
		ID:          "q1",
		Question:    "What is the product return window?",
		Answer:      "Products can be returned within 30 days of delivery.",
		Citation:    []string{"returns_policy.pdf"},
		GroundTruth: "Customers may return products within 30 days of delivery for a full refund.",
	},
	{
		ID:          "q2",
		Question:    "How does the refund process work?",
		Answer:      "Refunds are issued to the original payment method.",
		Citation:    []string{"refunds.pdf", "faq.doc"},
		GroundTruth: "Refunds are processed within 7-14 business days to the original payment method.",
	},
}

// handleSampleTestData serves a sample test set as a JSON attachment.
func (s *Server) handleSampleTestData(w http.ResponseWriter, r *http.Request) {
	data, err := json.MarshalIndent(sampleTestData, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="sample_test_data.json"`)
	_, _ = w.Write(data)
}

// handleUploadTestData validates an uploaded test set and echoes it back.
// The file must be a JSON array and every test case must carry id, question
// and ground_truth.
func (s *Server) handleUploadTestData(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".json") {
		http.Error(w, "File must be a JSON file", http.StatusBadRequest)
		return
	}
	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	testData, err := parseTestData(content)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, map[string]any{
		"status": "success",
		"data":   testData,
		"count":  len(testData),
	})
}

func parseTestData(content []byte) ([]map[string]any, error) {
	var probe any
	if err := json.Unmarshal(content, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON file")
	}
	if _, ok := probe.([]any); !ok {
		return nil, fmt.Errorf("JSON must be an array of test cases")
	}
	var testData []map[string]any
	if err := json.Unmarshal(content, &testData); err != nil {
		return nil, fmt.Errorf("JSON must be an array of test cases")
	}
	for _, item := range testData {
		for _, field := range []string{"id", "question", "ground_truth"} {
			if _, ok := item[field]; !ok {
				return nil, fmt.Errorf("each test case must have: id, question, ground_truth")
			}
		}
	}
	return testData, nil
}
