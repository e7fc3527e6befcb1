// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Router routes chat requests across the configured providers. Providers are
// tried in preference order, with automatic failover when the preferred
// provider errors or reports unhealthy.
type Router struct {
	providers []Provider
	tracker   *metricsTracker
	logger    *log.Logger
}

// RouteInfo describes which provider handled a routed request.
type RouteInfo struct {
	ProviderName   string `json:"provider_name"`
	Model          string `json:"model"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	TokensUsed     int    `json:"tokens_used"`
	FailedOver     bool   `json:"failed_over,omitempty"`
}

// RouteMetrics tracks per-provider routing statistics.
type RouteMetrics struct {
	RequestCount    int64   `json:"request_count"`
	ErrorCount      int64   `json:"error_count"`
	AvgResponseTime float64 `json:"avg_response_time_ms"`
}

// RouterOption configures the Router.
type RouterOption func(*Router)

// WithRouterLogger sets the logger for the router.
func WithRouterLogger(l *log.Logger) RouterOption {
	return func(r *Router) {
		r.logger = l
	}
}

// NewRouter creates a router over the given providers, in preference order.
// At least one provider is required.
func NewRouter(providers []Provider, opts ...RouterOption) (*Router, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one LLM provider is required")
	}

	r := &Router{
		providers: providers,
		tracker:   newMetricsTracker(),
		logger:    log.New(os.Stdout, "[LLM_ROUTER] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Providers returns the provider names in preference order.
func (r *Router) Providers() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}

// Route sends the request to the preferred healthy provider, failing over to
// the next one when the call errors.
func (r *Router) Route(ctx context.Context, req ChatRequest) (*ChatResponse, *RouteInfo, error) {
	primary := r.selectProvider()

	start := time.Now()
	resp, err := primary.Chat(ctx, req)
	failedOver := false
	provider := primary

	if err != nil {
		r.tracker.recordError(primary.Name())

		fallback := r.fallbackFor(primary.Name())
		if fallback == nil {
			return nil, nil, fmt.Errorf("provider %s failed and no fallback available: %w", primary.Name(), err)
		}

		r.logger.Printf("Failing over from %s to %s: %v", primary.Name(), fallback.Name(), err)
		resp, err = fallback.Chat(ctx, req)
		if err != nil {
			r.tracker.recordError(fallback.Name())
			return nil, nil, fmt.Errorf("all providers failed: %w", err)
		}
		provider = fallback
		failedOver = true
	}

	elapsed := time.Since(start)
	r.tracker.recordSuccess(provider.Name(), elapsed)

	return resp, &RouteInfo{
		ProviderName:   provider.Name(),
		Model:          resp.Model,
		ResponseTimeMs: elapsed.Milliseconds(),
		TokensUsed:     resp.Usage.TotalTokens,
		FailedOver:     failedOver,
	}, nil
}

// selectProvider returns the first healthy provider, or the most preferred one
// when none report healthy (the call itself then decides).
func (r *Router) selectProvider() Provider {
	for _, p := range r.providers {
		if p.IsHealthy() {
			return p
		}
	}
	return r.providers[0]
}

// fallbackFor returns the next provider after the failed one, skipping
// unhealthy candidates unless nothing else remains.
func (r *Router) fallbackFor(failed string) Provider {
	var anyOther Provider
	for _, p := range r.providers {
		if p.Name() == failed {
			continue
		}
		if p.IsHealthy() {
			return p
		}
		if anyOther == nil {
			anyOther = p
		}
	}
	return anyOther
}

// Metrics returns a snapshot of per-provider routing metrics.
func (r *Router) Metrics() map[string]RouteMetrics {
	return r.tracker.snapshot()
}

// metricsTracker tracks routing metrics.
type metricsTracker struct {
	metrics map[string]*RouteMetrics
	mu      sync.RWMutex
}

func newMetricsTracker() *metricsTracker {
	return &metricsTracker{metrics: make(map[string]*RouteMetrics)}
}

func (t *metricsTracker) recordSuccess(provider string, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, exists := t.metrics[provider]
	if !exists {
		m = &RouteMetrics{}
		t.metrics[provider] = m
	}
	m.RequestCount++

	// Incremental average update
	totalMs := float64(m.RequestCount-1) * m.AvgResponseTime
	totalMs += float64(latency.Milliseconds())
	m.AvgResponseTime = totalMs / float64(m.RequestCount)
}

func (t *metricsTracker) recordError(provider string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, exists := t.metrics[provider]
	if !exists {
		m = &RouteMetrics{}
		t.metrics[provider] = m
	}
	m.ErrorCount++
}

func (t *metricsTracker) snapshot() map[string]RouteMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]RouteMetrics, len(t.metrics))
	for name, m := range t.metrics {
		out[name] = *m
	}
	return out
}
