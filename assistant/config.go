// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the service configuration, sourced from the environment.
type Config struct {
	Port string

	// Azure OpenAI credentials. All three must be set for the Azure
	// provider to be used.
	AzureEndpoint   string
	AzureAPIKey     string
	AzureDeployment string

	// OpenAI fallback credential.
	OpenAIAPIKey string

	// Remote pizza API. Both must be set to enable the pizzaapi tools.
	PizzaAPIBaseURL string
	PizzaUserID     string

	// Redis for thread storage and distributed rate limiting. Empty falls
	// back to in-memory implementations.
	RedisURL string

	// RateLimitPerMinute caps chat requests per client. 0 disables.
	RateLimitPerMinute int

	// AgentConfigPath points at a YAML agent definition file. Empty uses
	// the built-in MenuAgent/OrderAgent pair.
	AgentConfigPath string

	// ThreadTTL bounds how long idle conversations are kept.
	ThreadTTL time.Duration
}

// Configuration defaults.
const (
	DefaultPort               = "8000"
	DefaultRateLimitPerMinute = 60
	DefaultThreadTTL          = time.Hour
)

// LoadConfig reads the service configuration from the environment.
func LoadConfig() Config {
	return Config{
		Port:               getEnv("AGENT_SERVICE_PORT", DefaultPort),
		AzureEndpoint:      os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureAPIKey:        os.Getenv("AZURE_OPENAI_API_KEY"),
		AzureDeployment:    os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		PizzaAPIBaseURL:    os.Getenv("PIZZA_API_BASE_URL"),
		PizzaUserID:        os.Getenv("PIZZA_ID"),
		RedisURL:           os.Getenv("REDIS_URL"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", DefaultRateLimitPerMinute),
		AgentConfigPath:    os.Getenv("AGENT_CONFIG_FILE"),
		ThreadTTL:          getEnvDuration("THREAD_TTL", DefaultThreadTTL),
	}
}

// HasAzure reports whether the full Azure OpenAI credential set is present.
func (c Config) HasAzure() bool {
	return c.AzureEndpoint != "" && c.AzureAPIKey != "" && c.AzureDeployment != ""
}

// HasOpenAI reports whether the OpenAI credential is present.
func (c Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// HasPizzaAPI reports whether the remote pizza API is configured.
func (c Config) HasPizzaAPI() bool {
	return c.PizzaAPIBaseURL != "" && c.PizzaUserID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// AgentConfigFile represents a complete agent configuration file
// following the Kubernetes-style apiVersion/kind pattern.
type AgentConfigFile struct {
	APIVersion string          `yaml:"apiVersion"`
	Kind       string          `yaml:"kind"`
	Metadata   AgentMetadata   `yaml:"metadata"`
	Spec       AgentConfigSpec `yaml:"spec"`
}

// AgentMetadata contains identification and description for the agent config.
type AgentMetadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// AgentConfigSpec defines the agents, routing rules, and selection prompt.
type AgentConfigSpec struct {
	SelectionPrompt string        `yaml:"selection_prompt,omitempty"`
	MaxIterations   int           `yaml:"max_iterations,omitempty"`
	Agents          []AgentDef    `yaml:"agents"`
	Routing         []RoutingRule `yaml:"routing"`
}

// AgentDef defines a single agent within a configuration.
type AgentDef struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Instructions string   `yaml:"instructions"`
	Plugins      []string `yaml:"plugins"`
}

// RoutingRule maps user messages to agents via regex patterns. Rules act as
// the deterministic fallback when LLM-based selection is unavailable.
type RoutingRule struct {
	Pattern  string `yaml:"pattern"`
	Agent    string `yaml:"agent"`
	Priority int    `yaml:"priority,omitempty"`
}

// CompiledRoutingRule is a routing rule with pre-compiled regex.
type CompiledRoutingRule struct {
	Rule    RoutingRule
	Pattern *regexp.Regexp
}

// MaxPatternLength caps routing pattern size (ReDoS prevention).
const MaxPatternLength = 1000

// ExpectedConfigKind is the kind accepted in agent configuration files.
const ExpectedConfigKind = "AgentConfig"

// DefaultAgentConfig returns the built-in MenuAgent/OrderAgent pair used when
// no configuration file is provided.
func DefaultAgentConfig() *AgentConfigFile {
	return &AgentConfigFile{
		APIVersion: "sliceline.dev/v1",
		Kind:       ExpectedConfigKind,
		Metadata: AgentMetadata{
			Name:        "pizza-assistant",
			Description: "Menu and order specialists for the pizza ordering demo",
		},
		Spec: AgentConfigSpec{
			MaxIterations: 1,
			Agents: []AgentDef{
				{
					Name: "MenuAgent",
					Description: "For questions about menu items, ingredients, prices, getting pizza information, " +
						"browsing the menu, asking about available pizzas, or any general menu information.",
					Instructions: "You are a specialist in pizza restaurant menus.\n" +
						"Your role is to help customers understand the menu options, ingredients, and pricing.\n" +
						"Use your tools to get accurate and up-to-date information about available pizzas and toppings.\n" +
						"Be informative, friendly, and helpful when discussing menu items.",
					Plugins: []string{"menu", "pizzaapi"},
				},
				{
					Name: "OrderAgent",
					Description: "For creating orders, placing orders, adding items to orders, checking order status, " +
						"canceling orders, or any order management task.",
					Instructions: "You are a specialist in handling pizza restaurant orders.\n" +
						"Your role is to help customers create and manage their orders.\n" +
						"You can help customers place new orders, check order status, and cancel orders if needed.\n\n" +
						"When a customer wants to place an order:\n" +
						"1. First get the list of available pizzas\n" +
						"2. Help them select pizzas and quantities\n" +
						"3. Place the order using the place_order function\n" +
						"4. Provide order confirmation details\n\n" +
						"Be efficient, accurate, and friendly when processing orders.",
					Plugins: []string{"orderbook", "pizzaapi"},
				},
			},
			Routing: []RoutingRule{
				{Pattern: `(?i)\b(order|cancel|status|place|add .* to|checkout|buy)\b`, Agent: "OrderAgent", Priority: 10},
				{Pattern: `(?i).*`, Agent: "MenuAgent", Priority: 0},
			},
		},
	}
}

// LoadAgentConfig loads the agent configuration from path, falling back to
// the built-in defaults when path is empty.
func LoadAgentConfig(path string) (*AgentConfigFile, error) {
	if path == "" {
		return DefaultAgentConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent config: %w", err)
	}

	var cfg AgentConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse agent config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks structural consistency of the configuration.
func (c *AgentConfigFile) Validate() error {
	if c.Kind != ExpectedConfigKind {
		return fmt.Errorf("unexpected kind %q (want %q)", c.Kind, ExpectedConfigKind)
	}
	if len(c.Spec.Agents) == 0 {
		return fmt.Errorf("at least one agent is required")
	}
	if c.Spec.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative")
	}

	seen := make(map[string]bool, len(c.Spec.Agents))
	for i, agent := range c.Spec.Agents {
		if agent.Name == "" {
			return fmt.Errorf("agent %d: name is required", i)
		}
		if seen[agent.Name] {
			return fmt.Errorf("duplicate agent name %q", agent.Name)
		}
		seen[agent.Name] = true
		if agent.Instructions == "" {
			return fmt.Errorf("agent %q: instructions are required", agent.Name)
		}
	}

	for i, rule := range c.Spec.Routing {
		if rule.Pattern == "" {
			return fmt.Errorf("routing rule %d: pattern is required", i)
		}
		if len(rule.Pattern) > MaxPatternLength {
			return fmt.Errorf("routing rule %d: pattern exceeds %d characters", i, MaxPatternLength)
		}
		if !seen[rule.Agent] {
			return fmt.Errorf("routing rule %d: unknown agent %q", i, rule.Agent)
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("routing rule %d: invalid pattern: %w", i, err)
		}
	}
	return nil
}

// CompileRouting compiles the routing rules, ordered by descending priority.
func (c *AgentConfigFile) CompileRouting() ([]CompiledRoutingRule, error) {
	compiled := make([]CompiledRoutingRule, 0, len(c.Spec.Routing))
	for i, rule := range c.Spec.Routing {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("routing rule %d: %w", i, err)
		}
		compiled = append(compiled, CompiledRoutingRule{Rule: rule, Pattern: re})
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Rule.Priority > compiled[j].Rule.Priority
	})
	return compiled, nil
}
