// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

/*
Command assistant runs the SliceLine pizza ordering assistant service.

The service exposes a chat API backed by a pair of specialist agents
(menu questions and order management) that call pizza tools through an
OpenAI-compatible LLM provider.

# Usage

	assistant

# Environment Variables

Credentials (one provider required):
  - AZURE_OPENAI_ENDPOINT: Azure OpenAI resource endpoint
  - AZURE_OPENAI_API_KEY: Azure OpenAI API key
  - AZURE_OPENAI_DEPLOYMENT_NAME: Azure OpenAI deployment
  - OPENAI_API_KEY: OpenAI API key (used when Azure is not configured)

Optional:
  - AGENT_SERVICE_PORT: HTTP server port (default: 8000)
  - PIZZA_API_BASE_URL: remote pizza API base URL
  - PIZZA_ID: user ID for the remote pizza API
  - REDIS_URL: Redis URL for thread storage and rate limiting
  - RATE_LIMIT_PER_MINUTE: chat requests per client per minute (default: 60)
  - AGENT_CONFIG_FILE: YAML agent configuration file
  - THREAD_TTL: idle conversation retention (default: 1h)

# Example

	export OPENAI_API_KEY="sk-..."
	export PIZZA_API_BASE_URL="https://pizza.example.com"
	export PIZZA_ID="customer-1"
	./assistant
*/
package main
