// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

// Package assistant wires chat agents, tool plugins, conversation threads,
// and the HTTP service into the pizza ordering assistant.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"sliceline/assistant/llm"
	"sliceline/assistant/plugins"
	"sliceline/assistant/shared/logger"
)

// ChatService is the LLM call surface agents depend on. The router satisfies
// it through a thin adapter so per-provider metrics stay in one place.
type ChatService interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// DefaultMaxToolIterations bounds the tool-calling loop per user turn.
const DefaultMaxToolIterations = 8

// FunctionCall records a tool invocation made during a turn.
type FunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// FunctionResult records a tool result produced during a turn.
type FunctionResult struct {
	Name   string `json:"name"`
	Result string `json:"result"`
}

// AgentResponse is the outcome of one agent turn.
type AgentResponse struct {
	Content         string
	FunctionCalls   []FunctionCall
	FunctionResults []FunctionResult
}

// ChatAgent is a named specialist: instructions, a tool set, and a chat
// service to drive the tool-calling loop.
type ChatAgent struct {
	name          string
	description   string
	instructions  string
	chat          ChatService
	tools         map[string]plugins.Tool
	toolDefs      []llm.ToolDef
	maxIterations int
	log           *logger.Logger
}

// NewChatAgent builds an agent from its definition and plugin set.
func NewChatAgent(def AgentDef, chat ChatService, pluginSet []plugins.Plugin, log *logger.Logger) *ChatAgent {
	a := &ChatAgent{
		name:          def.Name,
		description:   def.Description,
		instructions:  def.Instructions,
		chat:          chat,
		tools:         make(map[string]plugins.Tool),
		maxIterations: DefaultMaxToolIterations,
		log:           log,
	}
	for _, p := range pluginSet {
		for _, tool := range p.Tools() {
			a.tools[tool.Name] = tool
			a.toolDefs = append(a.toolDefs, llm.NewToolDef(tool.Name, tool.Description, tool.Parameters))
		}
	}
	return a
}

// Name returns the agent name.
func (a *ChatAgent) Name() string {
	return a.name
}

// Description returns the agent description used for selection.
func (a *ChatAgent) Description() string {
	return a.description
}

// Respond runs one agent turn: the model answers the user message against the
// conversation history, calling tools as needed until it produces text.
func (a *ChatAgent) Respond(ctx context.Context, history []llm.Message, userMessage string) (*AgentResponse, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.SystemMessage(a.instructions))
	messages = append(messages, history...)
	messages = append(messages, llm.UserMessage(userMessage))

	out := &AgentResponse{}

	for i := 0; i < a.maxIterations; i++ {
		resp, err := a.chat.Chat(ctx, llm.ChatRequest{
			Messages:    messages,
			Tools:       a.toolDefs,
			Temperature: -1, // provider default
		})
		if err != nil {
			return nil, fmt.Errorf("agent %s: chat call failed: %w", a.name, err)
		}

		if len(resp.ToolCalls) == 0 {
			out.Content = resp.Content
			return out, nil
		}

		messages = append(messages, llm.AssistantMessage(resp.Content, resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			args := map[string]any{}
			_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
			out.FunctionCalls = append(out.FunctionCalls, FunctionCall{Name: call.Function.Name, Arguments: args})

			result := a.invokeTool(ctx, call)
			out.FunctionResults = append(out.FunctionResults, FunctionResult{Name: call.Function.Name, Result: result})
			messages = append(messages, llm.ToolMessage(call.ID, result))
		}
	}

	return nil, fmt.Errorf("agent %s: no final response after %d tool iterations", a.name, a.maxIterations)
}

// invokeTool executes a single tool call. Failures are reported back to the
// model as text so the conversation can recover.
func (a *ChatAgent) invokeTool(ctx context.Context, call llm.ToolCall) string {
	name := call.Function.Name
	tool, ok := a.tools[name]
	if !ok {
		a.log.Warn("", "", "Model requested unknown tool", map[string]any{"agent": a.name, "tool": name})
		return fmt.Sprintf("Error: unknown tool '%s'.", name)
	}

	args := map[string]any{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			a.log.Warn("", "", "Malformed tool arguments", map[string]any{"agent": a.name, "tool": name, "error": err.Error()})
			return fmt.Sprintf("Error: invalid arguments for tool '%s'.", name)
		}
	}

	toolCallsTotal.WithLabelValues(name).Inc()

	result, err := tool.Handler(ctx, args)
	if err != nil {
		a.log.ErrorWithErr("", "", "Tool execution failed", err, map[string]any{"agent": a.name, "tool": name})
		return fmt.Sprintf("Error executing tool '%s': %v", name, err)
	}
	return result
}
