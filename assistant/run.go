// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"log"
	"net/http"
	"time"
)

// Run loads configuration, assembles the system, and serves HTTP until the
// process exits. Startup failures are fatal.
func Run() {
	cfg := LoadConfig()

	sys, err := NewSystem(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize assistant: %v", err)
	}
	defer sys.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      NewServer(sys).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Agents registered: %v", sys.Chat.Agents())
	log.Printf("Assistant service listening on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
