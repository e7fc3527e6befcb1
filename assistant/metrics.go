// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics
var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sliceline_assistant_requests_total",
			Help: "Total number of HTTP requests processed by the assistant",
		},
		[]string{"endpoint", "status"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sliceline_assistant_request_duration_milliseconds",
			Help:    "Request duration in milliseconds",
			Buckets: []float64{5, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"endpoint"},
	)
	llmCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sliceline_assistant_llm_calls_total",
			Help: "Total number of LLM calls by provider and outcome",
		},
		[]string{"provider", "status"},
	)
	toolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sliceline_assistant_tool_calls_total",
			Help: "Total number of tool invocations by tool name",
		},
		[]string{"tool"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(llmCallsTotal)
	prometheus.MustRegister(toolCallsTotal)
}
