// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
)

// mockProvider is a scriptable Provider for router tests.
type mockProvider struct {
	name    string
	healthy bool
	resp    *ChatResponse
	err     error
	calls   int
}

func (m *mockProvider) Name() string    { return m.name }
func (m *mockProvider) IsHealthy() bool { return m.healthy }

func (m *mockProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestNewRouterRequiresProviders(t *testing.T) {
	if _, err := NewRouter(nil); err == nil {
		t.Error("expected error for empty provider list")
	}
}

func TestRoutePrefersFirstHealthyProvider(t *testing.T) {
	primary := &mockProvider{name: "azure-openai", healthy: true, resp: &ChatResponse{Content: "hi", Model: "gpt-4o-mini"}}
	backup := &mockProvider{name: "openai", healthy: true, resp: &ChatResponse{Content: "backup"}}

	r, err := NewRouter([]Provider{primary, backup}, WithRouterLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	resp, info, err := r.Route(context.Background(), ChatRequest{Messages: []Message{UserMessage("hello")}})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if resp.Content != "hi" {
		t.Errorf("expected primary response, got %q", resp.Content)
	}
	if info.ProviderName != "azure-openai" || info.FailedOver {
		t.Errorf("unexpected route info: %+v", info)
	}
	if backup.calls != 0 {
		t.Error("backup must not be called when primary succeeds")
	}
}

func TestRouteSkipsUnhealthyProvider(t *testing.T) {
	primary := &mockProvider{name: "azure-openai", healthy: false, resp: &ChatResponse{Content: "primary"}}
	backup := &mockProvider{name: "openai", healthy: true, resp: &ChatResponse{Content: "backup"}}

	r, err := NewRouter([]Provider{primary, backup}, WithRouterLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	resp, info, err := r.Route(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if resp.Content != "backup" || info.ProviderName != "openai" {
		t.Errorf("expected backup to handle request, got %+v", info)
	}
	if primary.calls != 0 {
		t.Error("unhealthy primary must be skipped")
	}
}

func TestRouteFailsOverOnError(t *testing.T) {
	primary := &mockProvider{name: "azure-openai", healthy: true, err: fmt.Errorf("boom")}
	backup := &mockProvider{name: "openai", healthy: true, resp: &ChatResponse{Content: "backup"}}

	r, err := NewRouter([]Provider{primary, backup}, WithRouterLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	resp, info, err := r.Route(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if resp.Content != "backup" || !info.FailedOver {
		t.Errorf("expected failover to backup, got %+v", info)
	}

	metrics := r.Metrics()
	if metrics["azure-openai"].ErrorCount != 1 {
		t.Errorf("expected one recorded error for primary, got %+v", metrics["azure-openai"])
	}
	if metrics["openai"].RequestCount != 1 {
		t.Errorf("expected one recorded success for backup, got %+v", metrics["openai"])
	}
}

func TestRouteAllProvidersFailed(t *testing.T) {
	primary := &mockProvider{name: "azure-openai", healthy: true, err: fmt.Errorf("down")}
	backup := &mockProvider{name: "openai", healthy: true, err: fmt.Errorf("also down")}

	r, err := NewRouter([]Provider{primary, backup}, WithRouterLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	if _, _, err := r.Route(context.Background(), ChatRequest{}); err == nil {
		t.Error("expected error when all providers fail")
	}
}

func TestRouteSingleProviderNoFallback(t *testing.T) {
	only := &mockProvider{name: "openai", healthy: true, err: fmt.Errorf("down")}

	r, err := NewRouter([]Provider{only}, WithRouterLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	if _, _, err := r.Route(context.Background(), ChatRequest{}); err == nil {
		t.Error("expected error when the only provider fails")
	}
}

func TestProviderErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		wantCode  string
		retryable bool
	}{
		{429, ErrCodeRateLimit, true},
		{401, ErrCodeAuth, false},
		{500, ErrCodeServerError, true},
		{400, ErrCodeInvalidRequest, false},
	}

	for _, tt := range tests {
		err := ErrorFromStatus("openai", tt.status, "detail")
		if err.Code != tt.wantCode {
			t.Errorf("status %d: expected code %s, got %s", tt.status, tt.wantCode, err.Code)
		}
		if err.Retryable != tt.retryable {
			t.Errorf("status %d: expected retryable=%v", tt.status, tt.retryable)
		}
	}
}
