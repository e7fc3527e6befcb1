// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

// Package azure provides a chat-completion provider for Azure OpenAI Service.
// It supports GPT-4o, GPT-4o-mini, and other Azure-hosted OpenAI deployments
// with function/tool calling.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"sliceline/assistant/llm"
)

const (
	// DefaultAPIVersion is the default Azure OpenAI API version.
	DefaultAPIVersion = "2024-08-01-preview"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 120 * time.Second

	// DefaultMaxTokens is the default max output tokens for completions.
	DefaultMaxTokens = 4096

	// DefaultTemperature is the default temperature for completions.
	DefaultTemperature = 0.7
)

// HTTPClient is an interface for HTTP client operations (enables testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AuthType represents the authentication method for Azure OpenAI.
type AuthType string

const (
	// AuthTypeAPIKey uses the api-key header (Classic Azure OpenAI)
	AuthTypeAPIKey AuthType = "api-key"

	// AuthTypeBearer uses Authorization: Bearer header (Azure AI Foundry)
	AuthTypeBearer AuthType = "bearer"
)

// Provider implements llm.Provider for Azure OpenAI.
type Provider struct {
	endpoint       string // Azure OpenAI endpoint (e.g., https://myresource.openai.azure.com)
	apiKey         string
	deploymentName string // Azure deployment name
	apiVersion     string
	authType       AuthType // Authentication type (auto-detected from endpoint)
	client         HTTPClient
	healthy        bool
	mu             sync.RWMutex
}

// Config contains configuration for the Azure OpenAI provider.
type Config struct {
	Endpoint       string        // Required: Azure OpenAI endpoint URL
	APIKey         string        // Required: Azure OpenAI API key or Bearer token
	DeploymentName string        // Required: Azure deployment name
	APIVersion     string        // Optional: API version (default: 2024-08-01-preview)
	AuthType       AuthType      // Optional: Auth type (auto-detected from endpoint if empty)
	Timeout        time.Duration // Optional: HTTP timeout (default: 120s)
	Client         HTTPClient    // Optional: injected HTTP client for tests
}

// NewProvider creates a new Azure OpenAI provider instance.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("azure OpenAI endpoint is required")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("azure OpenAI API key is required")
	}

	if cfg.DeploymentName == "" {
		return nil, fmt.Errorf("azure OpenAI deployment name is required")
	}

	// Normalize endpoint (remove trailing slash)
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	// Auto-detect auth type from endpoint if not specified
	authType := cfg.AuthType
	if authType == "" {
		authType = detectAuthType(cfg.Endpoint)
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Provider{
		endpoint:       cfg.Endpoint,
		apiKey:         cfg.APIKey,
		deploymentName: cfg.DeploymentName,
		apiVersion:     cfg.APIVersion,
		authType:       authType,
		client:         client,
		healthy:        true,
	}, nil
}

// detectAuthType auto-detects the authentication type based on the endpoint URL.
// - Classic Azure OpenAI (*.openai.azure.com) uses api-key header
// - Azure AI Foundry (*.cognitiveservices.azure.com) uses Bearer token
func detectAuthType(endpoint string) AuthType {
	endpoint = strings.ToLower(endpoint)
	if strings.Contains(endpoint, ".cognitiveservices.azure.com") {
		return AuthTypeBearer
	}
	// Default to api-key for *.openai.azure.com and other endpoints
	return AuthTypeAPIKey
}

// setAuthHeaders sets the appropriate authentication headers based on auth type.
func (p *Provider) setAuthHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	switch p.authType {
	case AuthTypeBearer:
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	default:
		req.Header.Set("api-key", p.apiKey)
	}
}

// GetAuthType returns the authentication type being used.
func (p *Provider) GetAuthType() AuthType {
	return p.authType
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "azure-openai"
}

// IsHealthy returns whether the provider is healthy.
func (p *Provider) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthy && p.apiKey != ""
}

// setHealthy updates the provider health status.
func (p *Provider) setHealthy(healthy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.healthy = healthy
}

// buildURL constructs the Azure OpenAI API URL.
// Azure OpenAI URL format:
// https://{resource}.openai.azure.com/openai/deployments/{deployment}/chat/completions?api-version={version}
func (p *Provider) buildURL(deploymentName string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		p.endpoint, deploymentName, p.apiVersion)
}

// Chat generates a chat completion for the given request.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	start := time.Now()

	// Use deployment name from config, or override from request
	deploymentName := p.deploymentName
	if req.Model != "" {
		deploymentName = req.Model
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	// Temperature: 0.0 is valid (deterministic), negative is invalid
	temperature := req.Temperature
	if temperature < 0 {
		temperature = DefaultTemperature
	}

	apiReq := map[string]any{
		"messages":    req.Messages,
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}
	if len(req.Tools) > 0 {
		apiReq["tools"] = req.Tools
	}

	reqBody, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.buildURL(deploymentName), bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.setAuthHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.setHealthy(false)
		return nil, &llm.ProviderError{
			Provider:  p.Name(),
			Code:      llm.ErrCodeUnavailable,
			Message:   err.Error(),
			Retryable: true,
			Cause:     err,
		}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			p.setHealthy(false)
		}
		return nil, parseAPIError(p.Name(), resp.StatusCode, body)
	}

	p.setHealthy(true)

	var apiResp chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return toChatResponse(&apiResp, time.Since(start)), nil
}

// parseAPIError parses an API error response into a ProviderError.
func parseAPIError(provider string, statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	message := string(body)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}
	return llm.ErrorFromStatus(provider, statusCode, message)
}

// mapFinishReason maps Azure OpenAI finish reasons to standard reasons.
func mapFinishReason(reason string) string {
	switch reason {
	case "length":
		return "max_tokens"
	default:
		return reason
	}
}

// toChatResponse converts the wire response to the unified response type.
func toChatResponse(apiResp *chatCompletionResponse, latency time.Duration) *llm.ChatResponse {
	out := &llm.ChatResponse{
		Model: apiResp.Model,
		Usage: llm.UsageStats{
			PromptTokens:     apiResp.Usage.PromptTokens,
			CompletionTokens: apiResp.Usage.CompletionTokens,
			TotalTokens:      apiResp.Usage.TotalTokens,
		},
		Latency: latency,
	}
	if len(apiResp.Choices) > 0 {
		choice := apiResp.Choices[0]
		out.Content = choice.Message.Content
		out.ToolCalls = choice.Message.ToolCalls
		out.FinishReason = mapFinishReason(choice.FinishReason)
	}
	return out
}

// Internal API types (OpenAI-compatible format)

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role      string         `json:"role"`
			Content   string         `json:"content"`
			ToolCalls []llm.ToolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
