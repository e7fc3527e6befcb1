// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

// Logger provides structured logging with conversation-thread correlation
type Logger struct {
	Component  string
	InstanceID string
	Container  string
}

// LogEntry represents a single structured log line
type LogEntry struct {
	Timestamp  string                 `json:"timestamp"`
	Level      LogLevel               `json:"level"`
	Component  string                 `json:"component"`
	InstanceID string                 `json:"instance_id"`
	Container  string                 `json:"container"`
	ThreadID   string                 `json:"thread_id,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
	Message    string                 `json:"message"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// New creates a new Logger for the specified component
func New(component string) *Logger {
	// Instance ID is set during deployment
	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		instanceID = "unknown"
	}

	container, err := os.Hostname()
	if err != nil {
		container = "unknown"
	}

	return &Logger{
		Component:  component,
		InstanceID: instanceID,
		Container:  container,
	}
}

// Log writes a structured log entry at the given level
func (l *Logger) Log(level LogLevel, threadID, requestID, message string, fields map[string]interface{}) {
	entry := LogEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Level:      level,
		Component:  l.Component,
		InstanceID: l.InstanceID,
		Container:  l.Container,
		ThreadID:   threadID,
		RequestID:  requestID,
		Message:    message,
		Fields:     fields,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		log.Printf("ERROR: Failed to marshal log entry: %v", err)
		return
	}

	log.Println(string(jsonBytes))
}

// Info logs an informational message
func (l *Logger) Info(threadID, requestID, message string, fields map[string]interface{}) {
	l.Log(INFO, threadID, requestID, message, fields)
}

// Error logs an error message
func (l *Logger) Error(threadID, requestID, message string, fields map[string]interface{}) {
	l.Log(ERROR, threadID, requestID, message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(threadID, requestID, message string, fields map[string]interface{}) {
	l.Log(WARN, threadID, requestID, message, fields)
}

// Debug logs a debug message
func (l *Logger) Debug(threadID, requestID, message string, fields map[string]interface{}) {
	l.Log(DEBUG, threadID, requestID, message, fields)
}

// InfoWithDuration logs an info message with a duration field
func (l *Logger) InfoWithDuration(threadID, requestID, message string, durationMS float64, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["duration_ms"] = durationMS
	l.Info(threadID, requestID, message, fields)
}

// ErrorWithErr logs an error message with the error string attached
func (l *Logger) ErrorWithErr(threadID, requestID, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Error(threadID, requestID, message, fields)
}
