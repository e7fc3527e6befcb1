// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

/*
Package logger provides structured JSON logging for SliceLine components.

Each log entry is a single JSON line on stdout so container runtimes and log
aggregators can consume it directly. Entries carry the component name, the
instance/container identity, and the conversation-thread and request IDs used
to correlate one chat exchange across the agent, provider, and tool layers.

Create a logger for a component:

	log := logger.New("assistant")

Log with thread and request context:

	log.Info(threadID, reqID, "processing message", map[string]interface{}{
	    "agent": "OrderAgent",
	})

Thread safety: Logger instances are safe for concurrent use.
*/
package logger
