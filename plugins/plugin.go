// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

// Package plugins defines the tool abstraction shared by all assistant
// plugins. A plugin is a named bundle of tools; a tool is a function the
// model can call by name with JSON arguments, returning a human-readable
// string that the agent relays back into the conversation.
package plugins

import "context"

// Handler executes a tool call with the decoded JSON arguments.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Tool describes a single callable function exposed to the model.
// Parameters follows the JSON Schema object shape expected by the
// chat-completions tools API.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     Handler
}

// Plugin groups related tools under a name.
type Plugin interface {
	Name() string
	Tools() []Tool
}

// ObjectSchema builds a JSON Schema object with the given properties and
// required field names.
func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringProp builds a string property schema.
func StringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// IntProp builds an integer property schema.
func IntProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

// StringArg extracts a string argument, returning "" when absent or of the
// wrong type.
func StringArg(args map[string]any, key string) string {
	v, ok := args[key].(string)
	if !ok {
		return ""
	}
	return v
}

// IntArg extracts an integer argument. JSON numbers decode as float64, so
// both forms are accepted. Returns def when absent or not numeric.
func IntArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}
