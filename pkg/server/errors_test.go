// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NVIDIA/machinestate/pkg/collector"
	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"invalid request", ErrCodeInvalidRequest, http.StatusBadRequest},
		{"not found", ErrCodeNotFound, http.StatusNotFound},
		{"method not allowed", ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{"rate limit", ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{"unavailable", ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{"timeout", ErrCodeTimeout, http.StatusGatewayTimeout},
		{"configuration", ErrCodeInvalidConfiguration, http.StatusInternalServerError},
		{"internal", ErrCodeInternalError, http.StatusInternalServerError},
		{"unknown defaults to internal", "SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFromCode(tt.code); got != tt.want {
				t.Fatalf("HTTPStatusFromCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestRetryableFromCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"invalid request", ErrCodeInvalidRequest, false},
		{"not found", ErrCodeNotFound, false},
		{"method not allowed", ErrCodeMethodNotAllowed, false},
		{"configuration", ErrCodeInvalidConfiguration, false},
		{"timeout", ErrCodeTimeout, true},
		{"unavailable", ErrCodeServiceUnavailable, true},
		{"rate limit", ErrCodeRateLimitExceeded, true},
		{"internal", ErrCodeInternalError, true},
		{"unknown defaults false", "SOMETHING_ELSE", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryableFromCode(tt.code); got != tt.want {
				t.Fatalf("retryableFromCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestCodeFromErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", fmt.Errorf("update: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeServiceUnavailable},
		{"unknown group", fmt.Errorf("%w %q", collector.ErrUnknownGroup, "gpu"), ErrCodeInvalidRequest},
		{"configuration", &infogroup.ConfigurationError{Group: "x", Reason: "bad"}, ErrCodeInvalidConfiguration},
		{"other", errors.New("boom"), ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codeFromErr(tt.err); got != tt.want {
				t.Fatalf("codeFromErr(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestMergeDetails(t *testing.T) {
	t.Run("both empty returns nil", func(t *testing.T) {
		if got := mergeDetails(nil, nil); got != nil {
			t.Fatalf("expected nil, got %#v", got)
		}
		if got := mergeDetails(map[string]any{}, map[string]any{}); got != nil {
			t.Fatalf("expected nil, got %#v", got)
		}
	})

	t.Run("merges and second overwrites", func(t *testing.T) {
		a := map[string]any{"a": 1, "shared": "old"}
		b := map[string]any{"b": 2, "shared": "new"}

		got := mergeDetails(a, b)
		if got == nil {
			t.Fatal("expected map, got nil")
		}
		if got["a"].(int) != 1 {
			t.Fatalf("expected a=1, got %#v", got["a"])
		}
		if got["b"].(int) != 2 {
			t.Fatalf("expected b=2, got %#v", got["b"])
		}
		if got["shared"].(string) != "new" {
			t.Fatalf("expected shared to be overwritten to 'new', got %#v", got["shared"])
		}
	})
}

func TestWriteError_WritesErrorResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), contextKeyRequestID, "req-123"))
	w := httptest.NewRecorder()

	WriteError(w, req, http.StatusBadRequest, ErrCodeInvalidRequest, "bad request", false, map[string]any{"k": "v"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Code != ErrCodeInvalidRequest {
		t.Fatalf("expected code %q, got %q", ErrCodeInvalidRequest, resp.Code)
	}
	if resp.Message != "bad request" {
		t.Fatalf("expected message %q, got %q", "bad request", resp.Message)
	}
	if resp.RequestID != "req-123" {
		t.Fatalf("expected requestId %q, got %q", "req-123", resp.RequestID)
	}
	if resp.Retryable {
		t.Fatalf("expected retryable=false, got true")
	}
	if resp.Details == nil || resp.Details["k"].(string) != "v" {
		t.Fatalf("expected details to include k=v, got %#v", resp.Details)
	}
}

func TestWriteErrorFromErr_Timeout(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	err := fmt.Errorf("failed to update group %q: %w", "os", context.DeadlineExceeded)
	WriteErrorFromErr(w, req, err, "collection timed out", map[string]any{"extra": "yes"})

	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected status %d, got %d", http.StatusGatewayTimeout, w.Code)
	}

	var resp ErrorResponse
	if uerr := json.Unmarshal(w.Body.Bytes(), &resp); uerr != nil {
		t.Fatalf("failed to unmarshal response: %v", uerr)
	}

	if resp.Code != ErrCodeTimeout {
		t.Fatalf("expected code %q, got %q", ErrCodeTimeout, resp.Code)
	}
	if !resp.Retryable {
		t.Fatalf("expected retryable=true")
	}
	if resp.RequestID == "" {
		t.Fatalf("expected generated request id")
	}
	if resp.Details["extra"].(string) != "yes" {
		t.Fatalf("expected extra=yes, got %#v", resp.Details["extra"])
	}
	if resp.Details["error"].(string) != err.Error() {
		t.Fatalf("expected error cause propagated, got %#v", resp.Details["error"])
	}
}

func TestWriteErrorFromErr_FallsBackToInternal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	WriteErrorFromErr(w, req, errors.New("boom"), "fallback", map[string]any{"x": "y"})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Code != ErrCodeInternalError {
		t.Fatalf("expected code %q, got %q", ErrCodeInternalError, resp.Code)
	}
	if resp.Message != "fallback" {
		t.Fatalf("expected message %q, got %q", "fallback", resp.Message)
	}
	if resp.Details["error"].(string) != "boom" {
		t.Fatalf("expected details error=boom, got %#v", resp.Details["error"])
	}
}
