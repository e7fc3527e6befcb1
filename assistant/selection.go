// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"context"
	"fmt"
	"strings"

	"sliceline/assistant/llm"
	"sliceline/assistant/shared/logger"
)

// SelectionStrategy decides which agent takes the next turn for a user
// message.
type SelectionStrategy interface {
	SelectAgent(ctx context.Context, userMessage string, agents []*ChatAgent) (*ChatAgent, error)
}

// RuleSelectionStrategy routes by regex rules, ordered by priority. It is the
// deterministic fallback when LLM-based selection is unavailable.
type RuleSelectionStrategy struct {
	rules []CompiledRoutingRule
}

// NewRuleSelectionStrategy creates a rule-based strategy from compiled rules.
func NewRuleSelectionStrategy(rules []CompiledRoutingRule) *RuleSelectionStrategy {
	return &RuleSelectionStrategy{rules: rules}
}

// SelectAgent implements SelectionStrategy. When no rule matches, the first
// agent takes the turn.
func (s *RuleSelectionStrategy) SelectAgent(ctx context.Context, userMessage string, agents []*ChatAgent) (*ChatAgent, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("no agents available")
	}

	for _, rule := range s.rules {
		if !rule.Pattern.MatchString(userMessage) {
			continue
		}
		if agent := agentByName(agents, rule.Rule.Agent); agent != nil {
			return agent, nil
		}
	}
	return agents[0], nil
}

// LLMSelectionStrategy asks the model to name the agent for the user message.
// Unparseable replies fall back to the first agent; call failures delegate to
// the fallback strategy when one is set.
type LLMSelectionStrategy struct {
	chat     ChatService
	prompt   string
	fallback SelectionStrategy
	log      *logger.Logger
}

// NewLLMSelectionStrategy creates an LLM-based strategy. prompt may be empty
// to use the default selection prompt; fallback may be nil.
func NewLLMSelectionStrategy(chat ChatService, prompt string, fallback SelectionStrategy, log *logger.Logger) *LLMSelectionStrategy {
	return &LLMSelectionStrategy{chat: chat, prompt: prompt, fallback: fallback, log: log}
}

// SelectAgent implements SelectionStrategy.
func (s *LLMSelectionStrategy) SelectAgent(ctx context.Context, userMessage string, agents []*ChatAgent) (*ChatAgent, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("no agents available")
	}

	resp, err := s.chat.Chat(ctx, llm.ChatRequest{
		Messages:    []llm.Message{llm.UserMessage(s.buildPrompt(userMessage, agents))},
		Temperature: 0,
		MaxTokens:   32,
	})
	if err != nil {
		if s.fallback != nil {
			s.log.Warn("", "", "Agent selection call failed, using rule fallback", map[string]any{"error": err.Error()})
			return s.fallback.SelectAgent(ctx, userMessage, agents)
		}
		return nil, fmt.Errorf("agent selection failed: %w", err)
	}

	if agent := parseAgentChoice(resp.Content, agents); agent != nil {
		return agent, nil
	}
	// Unparseable output defaults to the first agent.
	return agents[0], nil
}

// buildPrompt renders the selection prompt with the agent roster and the
// user message.
func (s *LLMSelectionStrategy) buildPrompt(userMessage string, agents []*ChatAgent) string {
	var roster strings.Builder
	names := make([]string, 0, len(agents))
	for _, agent := range agents {
		names = append(names, agent.Name())
		fmt.Fprintf(&roster, "- %s: %s\n", agent.Name(), agent.Description())
	}

	prompt := s.prompt
	if prompt == "" {
		prompt = "Determine which agent should handle this user request.\n" +
			"State ONLY the name of the agent to take the next turn.\n\n" +
			"Choose only from these agents:\n%s\n" +
			"User request: %s\n\n" +
			"Reply with just the name of the agent (%s)."
	}
	return fmt.Sprintf(prompt, roster.String(), userMessage, strings.Join(names, " or "))
}

// parseAgentChoice matches the model reply to an agent, exact name first and
// then substring, so replies like "OrderAgent." still resolve.
func parseAgentChoice(reply string, agents []*ChatAgent) *ChatAgent {
	reply = strings.TrimSpace(reply)
	if agent := agentByName(agents, reply); agent != nil {
		return agent
	}
	for _, agent := range agents {
		if strings.Contains(strings.ToLower(reply), strings.ToLower(agent.Name())) {
			return agent
		}
	}
	return nil
}

func agentByName(agents []*ChatAgent, name string) *ChatAgent {
	for _, agent := range agents {
		if strings.EqualFold(agent.Name(), name) {
			return agent
		}
	}
	return nil
}
