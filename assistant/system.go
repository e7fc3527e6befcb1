// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"sliceline/assistant/llm"
	"sliceline/assistant/llm/azure"
	"sliceline/assistant/llm/openai"
	"sliceline/assistant/orders"
	"sliceline/assistant/plugins"
	"sliceline/assistant/plugins/menu"
	"sliceline/assistant/plugins/orderbook"
	"sliceline/assistant/plugins/pizzaapi"
	"sliceline/assistant/shared/logger"
)

// System is the assembled assistant: the agent group chat plus the stores and
// router it runs on. Both the HTTP service and the terminal client build one.
type System struct {
	Chat    *GroupChat
	Router  *llm.Router
	Threads ThreadStore
	Limiter *RateLimiter
	Store   *orders.Store
	Log     *logger.Logger

	redisClient *redis.Client
}

// routedChat adapts the provider router to the ChatService interface and
// records per-provider call metrics.
type routedChat struct {
	router *llm.Router
}

func (c routedChat) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, info, err := c.router.Route(ctx, req)
	if err != nil {
		llmCallsTotal.WithLabelValues("router", "error").Inc()
		return nil, err
	}
	llmCallsTotal.WithLabelValues(info.ProviderName, "success").Inc()
	return resp, nil
}

// NewSystem assembles the assistant from configuration. It fails when no LLM
// credentials are configured; Redis absence degrades to in-memory stores.
func NewSystem(cfg Config) (*System, error) {
	log := logger.New("assistant")

	router, err := buildRouter(cfg)
	if err != nil {
		return nil, err
	}
	chat := routedChat{router: router}

	sys := &System{
		Router: router,
		Store:  orders.NewStore(),
		Log:    log,
	}

	// Redis backs threads and rate limiting when configured; otherwise the
	// in-memory implementations serve.
	if cfg.RedisURL != "" {
		client, err := connectRedis(cfg.RedisURL)
		if err != nil {
			log.Warn("", "", "Redis unavailable, using in-memory stores", map[string]any{"error": err.Error()})
		} else {
			sys.redisClient = client
			log.Info("", "", "Redis connected", map[string]any{"url": cfg.RedisURL})
		}
	}
	if sys.redisClient != nil {
		sys.Threads = NewRedisThreadStore(sys.redisClient, cfg.ThreadTTL)
	} else {
		sys.Threads = NewMemoryThreadStore(cfg.ThreadTTL)
	}
	sys.Limiter = NewRateLimiter(sys.redisClient, cfg.RateLimitPerMinute, log)

	registry, err := buildPlugins(cfg, sys.Store)
	if err != nil {
		return nil, err
	}

	agentCfg, err := LoadAgentConfig(cfg.AgentConfigPath)
	if err != nil {
		return nil, err
	}

	agents := make([]*ChatAgent, 0, len(agentCfg.Spec.Agents))
	for _, def := range agentCfg.Spec.Agents {
		var pluginSet []plugins.Plugin
		for _, name := range def.Plugins {
			p, ok := registry[name]
			if !ok {
				// pizzaapi is legitimately absent when the remote API
				// is not configured.
				log.Warn("", "", "Plugin not available for agent", map[string]any{"agent": def.Name, "plugin": name})
				continue
			}
			pluginSet = append(pluginSet, p)
		}
		agents = append(agents, NewChatAgent(def, chat, pluginSet, log))
	}

	rules, err := agentCfg.CompileRouting()
	if err != nil {
		return nil, err
	}
	ruleStrategy := NewRuleSelectionStrategy(rules)
	selection := NewLLMSelectionStrategy(chat, agentCfg.Spec.SelectionPrompt, ruleStrategy, log)

	groupChat, err := NewGroupChat(agents, selection, agentCfg.Spec.MaxIterations)
	if err != nil {
		return nil, err
	}
	sys.Chat = groupChat

	return sys, nil
}

// Close releases system resources.
func (s *System) Close() error {
	if s.redisClient != nil {
		return s.redisClient.Close()
	}
	return nil
}

// buildRouter creates the provider router following the original credential
// order: Azure OpenAI when fully configured, then OpenAI.
func buildRouter(cfg Config) (*llm.Router, error) {
	var providers []llm.Provider

	if cfg.HasAzure() {
		p, err := azure.NewProvider(azure.Config{
			Endpoint:       cfg.AzureEndpoint,
			APIKey:         cfg.AzureAPIKey,
			DeploymentName: cfg.AzureDeployment,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	if cfg.HasOpenAI() {
		p, err := openai.NewProvider(openai.Config{APIKey: cfg.OpenAIAPIKey})
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no valid OpenAI credentials found: set OPENAI_API_KEY or " +
			"AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY, and AZURE_OPENAI_DEPLOYMENT_NAME")
	}
	return llm.NewRouter(providers)
}

// buildPlugins creates the tool plugin registry keyed by plugin name.
func buildPlugins(cfg Config, store *orders.Store) (map[string]plugins.Plugin, error) {
	registry := map[string]plugins.Plugin{
		"menu":      menu.New(),
		"orderbook": orderbook.New(store),
	}

	if cfg.HasPizzaAPI() {
		client, err := pizzaapi.NewClient(pizzaapi.Config{
			BaseURL: cfg.PizzaAPIBaseURL,
			UserID:  cfg.PizzaUserID,
		})
		if err != nil {
			return nil, err
		}
		registry["pizzaapi"] = pizzaapi.NewPlugin(client)
	}
	return registry, nil
}

func connectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
