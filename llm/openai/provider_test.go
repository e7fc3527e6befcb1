// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"sliceline/assistant/llm"
)

type mockHTTPClient struct {
	doFunc  func(req *http.Request) (*http.Response, error)
	lastReq *http.Request
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	return m.doFunc(req)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

const successBody = `{
	"id": "chatcmpl-1",
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"message": {"role": "assistant", "content": "Sure thing"},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 8, "completion_tokens": 3, "total_tokens": 11}
}`

func newTestProvider(t *testing.T, mock *mockHTTPClient) *Provider {
	t.Helper()
	p, err := NewProvider(Config{APIKey: "sk-test", Client: mock})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return p
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	if _, err := NewProvider(Config{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestChatSendsBearerAuthAndModel(t *testing.T) {
	mock := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return response(http.StatusOK, successBody), nil
	}}
	p := newTestProvider(t, mock)

	resp, err := p.Chat(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{llm.UserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "Sure thing" {
		t.Errorf("unexpected content: %q", resp.Content)
	}

	if got := mock.lastReq.URL.String(); got != DefaultBaseURL+"/chat/completions" {
		t.Errorf("unexpected URL: %s", got)
	}
	if got := mock.lastReq.Header.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("expected Bearer auth, got %q", got)
	}

	var sent map[string]any
	if err := json.NewDecoder(mock.lastReq.Body).Decode(&sent); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if sent["model"] != DefaultModel {
		t.Errorf("expected default model in body, got %v", sent["model"])
	}
}

func TestChatModelOverride(t *testing.T) {
	mock := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return response(http.StatusOK, successBody), nil
	}}
	p := newTestProvider(t, mock)

	if _, err := p.Chat(context.Background(), llm.ChatRequest{Model: "gpt-4o"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	var sent map[string]any
	if err := json.NewDecoder(mock.lastReq.Body).Decode(&sent); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if sent["model"] != "gpt-4o" {
		t.Errorf("expected model override, got %v", sent["model"])
	}
}

func TestChatAuthErrorNotRetryable(t *testing.T) {
	mock := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return response(http.StatusUnauthorized, `{"error":{"message":"bad key"}}`), nil
	}}
	p := newTestProvider(t, mock)

	_, err := p.Chat(context.Background(), llm.ChatRequest{})
	var provErr *llm.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *llm.ProviderError, got %T", err)
	}
	if provErr.Code != llm.ErrCodeAuth || provErr.Retryable {
		t.Errorf("unexpected classification: %+v", provErr)
	}
}

func TestChatTransportErrorMarksUnhealthy(t *testing.T) {
	mock := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}}
	p := newTestProvider(t, mock)

	_, err := p.Chat(context.Background(), llm.ChatRequest{})
	var provErr *llm.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *llm.ProviderError, got %T", err)
	}
	if !provErr.Retryable {
		t.Error("transport errors must be retryable")
	}
	if p.IsHealthy() {
		t.Error("expected provider marked unhealthy after transport error")
	}
}
