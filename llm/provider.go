// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
)

// Provider is the unified interface for chat-completion providers.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the unique identifier for this provider instance.
	// This is used for routing, logging, and metrics.
	Name() string

	// Chat generates a completion for the given request.
	// The context should be used for cancellation and timeout.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// IsHealthy reports whether the provider is believed operational.
	// Implementations track this from recent call outcomes.
	IsHealthy() bool
}
