// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"context"
	"fmt"

	"sliceline/assistant/llm"
)

// Turn is one agent response within a group chat invocation.
type Turn struct {
	Agent           string
	Content         string
	FunctionCalls   []FunctionCall
	FunctionResults []FunctionResult
}

// GroupChat coordinates a set of agents behind a selection strategy. Each
// user message produces up to maxIterations agent turns (one by default).
type GroupChat struct {
	agents        []*ChatAgent
	selection     SelectionStrategy
	maxIterations int
}

// NewGroupChat creates a group chat. maxIterations <= 0 defaults to 1.
func NewGroupChat(agents []*ChatAgent, selection SelectionStrategy, maxIterations int) (*GroupChat, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("at least one agent is required")
	}
	if selection == nil {
		return nil, fmt.Errorf("a selection strategy is required")
	}
	if maxIterations <= 0 {
		maxIterations = 1
	}
	return &GroupChat{agents: agents, selection: selection, maxIterations: maxIterations}, nil
}

// Agents returns the agent names in registration order.
func (g *GroupChat) Agents() []string {
	names := make([]string, 0, len(g.agents))
	for _, agent := range g.agents {
		names = append(names, agent.Name())
	}
	return names
}

// Invoke runs the group chat for one user message. It returns the agent turns
// and the updated conversation history (user message plus agent replies).
func (g *GroupChat) Invoke(ctx context.Context, history []llm.Message, userMessage string) ([]Turn, []llm.Message, error) {
	turns := make([]Turn, 0, g.maxIterations)
	turnHistory := append([]llm.Message{}, history...)

	for i := 0; i < g.maxIterations; i++ {
		agent, err := g.selection.SelectAgent(ctx, userMessage, g.agents)
		if err != nil {
			return nil, nil, fmt.Errorf("agent selection failed: %w", err)
		}

		resp, err := agent.Respond(ctx, turnHistory, userMessage)
		if err != nil {
			return nil, nil, err
		}

		turns = append(turns, Turn{
			Agent:           agent.Name(),
			Content:         resp.Content,
			FunctionCalls:   resp.FunctionCalls,
			FunctionResults: resp.FunctionResults,
		})
		// Subsequent iterations see the previous turn as history.
		turnHistory = append(turnHistory, llm.AssistantMessage(resp.Content, nil))
	}

	updated := append(append([]llm.Message{}, history...), llm.UserMessage(userMessage))
	for _, turn := range turns {
		updated = append(updated, llm.AssistantMessage(turn.Content, nil))
	}
	return turns, updated, nil
}
