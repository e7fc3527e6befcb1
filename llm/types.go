// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

// Package llm provides a unified interface and types for chat-completion
// providers. Both supported backends (Azure OpenAI and OpenAI) speak the same
// wire format, so the request and response types here map directly onto it.
package llm

import (
	"fmt"
	"time"
)

// Message roles in a chat conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single entry in the conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set on assistant messages that request tool execution.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool-role message back to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message, carrying any tool calls
// the model requested.
func AssistantMessage(content string, toolCalls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
}

// ToolMessage builds a tool-role message answering the given tool call.
func ToolMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the function and carries its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDef describes a tool the model may call.
type ToolDef struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

// FunctionDef is the function schema inside a tool definition.
type FunctionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// NewToolDef builds a function tool definition.
func NewToolDef(name, description string, parameters map[string]any) ToolDef {
	return ToolDef{
		Type: "function",
		Function: FunctionDef{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// ChatRequest encapsulates all parameters for a chat completion.
type ChatRequest struct {
	// Messages is the full conversation history, oldest first.
	Messages []Message `json:"messages"`

	// Tools lists the tools the model may call. Empty disables tool calling.
	Tools []ToolDef `json:"tools,omitempty"`

	// MaxTokens limits the response length. 0 uses the provider default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness. Negative uses the provider default.
	Temperature float64 `json:"temperature,omitempty"`

	// Model overrides the provider's default model or deployment.
	Model string `json:"model,omitempty"`
}

// ChatResponse contains the result of a chat completion.
type ChatResponse struct {
	// Content is the generated text. Empty when the model only requested
	// tool calls.
	Content string `json:"content"`

	// ToolCalls lists the tool invocations the model requested, if any.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Model is the actual model used (may differ from requested).
	Model string `json:"model"`

	// FinishReason indicates why generation stopped
	// ("stop", "tool_calls", "max_tokens", "content_filter").
	FinishReason string `json:"finish_reason,omitempty"`

	// Usage contains token usage statistics.
	Usage UsageStats `json:"usage"`

	// Latency is the time taken to generate the response.
	Latency time.Duration `json:"latency"`
}

// UsageStats tracks token usage for monitoring.
type UsageStats struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderError represents an error from a chat-completion provider.
type ProviderError struct {
	// Provider is the name of the provider that returned the error.
	Provider string `json:"provider"`

	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// StatusCode is the HTTP status code (if applicable).
	StatusCode int `json:"status_code,omitempty"`

	// Retryable indicates if the request can be retried elsewhere.
	Retryable bool `json:"retryable"`

	// Cause is the underlying error (if any).
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Common error codes.
const (
	ErrCodeRateLimit      = "rate_limit"
	ErrCodeAuth           = "authentication_error"
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeContextLength  = "context_length_exceeded"
	ErrCodeContentFilter  = "content_filter"
	ErrCodeServerError    = "server_error"
	ErrCodeTimeout        = "timeout"
	ErrCodeUnavailable    = "unavailable"
)

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, code, message string) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Code:      code,
		Message:   message,
		Retryable: isRetryableCode(code),
	}
}

// ErrorFromStatus builds a ProviderError from an HTTP status code.
func ErrorFromStatus(provider string, statusCode int, message string) *ProviderError {
	code := codeForStatus(statusCode)
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  isRetryableCode(code),
	}
}

func codeForStatus(statusCode int) string {
	switch {
	case statusCode == 429:
		return ErrCodeRateLimit
	case statusCode == 401 || statusCode == 403:
		return ErrCodeAuth
	case statusCode == 408:
		return ErrCodeTimeout
	case statusCode >= 500:
		return ErrCodeServerError
	default:
		return ErrCodeInvalidRequest
	}
}

// isRetryableCode determines if an error code is worth a failover attempt.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeRateLimit, ErrCodeServerError, ErrCodeTimeout, ErrCodeUnavailable:
		return true
	default:
		return false
	}
}
