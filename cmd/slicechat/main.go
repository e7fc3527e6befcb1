// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

// Package main is a terminal client for the pizza ordering assistant.
//
// It runs the agent group chat in-process, so it needs the same LLM
// credentials as the HTTP service but no running server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"sliceline/assistant/assistant"
	"sliceline/assistant/llm"
)

func main() {
	fmt.Println("Setting up pizza ordering system with multi-agent architecture...")

	sys, err := assistant.NewSystem(assistant.LoadConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
		fmt.Fprintln(os.Stderr, "Set OPENAI_API_KEY or the AZURE_OPENAI_* variables and try again.")
		os.Exit(1)
	}
	defer sys.Close()

	fmt.Println()
	fmt.Println("Welcome to the Pizza Ordering System!")
	fmt.Println("You can ask about our menu or place orders.")
	fmt.Println("Type 'exit' to quit.")
	fmt.Println()

	var history []llm.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			break
		}

		turns, updated, err := sys.Chat.Invoke(context.Background(), history, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		history = updated

		for _, turn := range turns {
			fmt.Printf("Agent (%s): %s\n", turn.Agent, turn.Content)
		}
		fmt.Println()
	}

	fmt.Println("Thank you for using our Pizza Ordering System. Goodbye!")
}
