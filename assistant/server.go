// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"sliceline/assistant/llm"
)

// Streaming defaults: chunks of a few words with a short delay, so clients
// render a typing effect even when the model reply arrives all at once.
const (
	DefaultStreamChunkWords = 3
	DefaultStreamChunkDelay = 50 * time.Millisecond
)

// MessageRequest is the chat request body.
type MessageRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId"`
}

// MessageResponse is the chat response body.
type MessageResponse struct {
	Response        string           `json:"response"`
	ThreadID        string           `json:"threadId"`
	FunctionCalls   []FunctionCall   `json:"functionCalls"`
	FunctionResults []FunctionResult `json:"functionResults"`
}

// StreamEvent is one NDJSON line of a streaming chat response.
type StreamEvent struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	ThreadID string `json:"threadId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Server exposes the assistant over HTTP.
type Server struct {
	sys       *System
	startTime time.Time

	chunkWords int
	chunkDelay time.Duration

	requestCount atomic.Int64
	successCount atomic.Int64
	failureCount atomic.Int64
}

// NewServer creates a server over an assembled system.
func NewServer(sys *System) *Server {
	return &Server{
		sys:        sys,
		startTime:  time.Now(),
		chunkWords: DefaultStreamChunkWords,
		chunkDelay: DefaultStreamChunkDelay,
	}
}

// Handler returns the full HTTP handler with routing and CORS applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/agent", s.handleChat).Methods("POST")
	r.HandleFunc("/api/agent/stream", s.handleChatStream).Methods("POST")
	r.HandleFunc("/api/agent", s.handleDeleteThread).Methods("DELETE")
	r.HandleFunc("/api/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	r.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	// Demo service, so CORS is wide open.
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// handleChat runs one group chat turn and returns the full response.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.requestCount.Add(1)

	req, ok := s.decodeChatRequest(w, r, "agent")
	if !ok {
		return
	}
	if !s.checkRateLimit(w, r, req, "agent") {
		return
	}

	threadID, history := s.loadThread(r.Context(), req.ThreadID)
	turns, updated, err := s.sys.Chat.Invoke(r.Context(), history, req.Message)
	if err != nil {
		s.sys.Log.ErrorWithErr(threadID, "", "Chat invocation failed", err, nil)
		s.writeError(w, http.StatusInternalServerError, "Failed to process message", "agent")
		return
	}

	if err := s.sys.Threads.Put(r.Context(), &Thread{ID: threadID, Messages: updated}); err != nil {
		s.sys.Log.ErrorWithErr(threadID, "", "Failed to persist thread", err, nil)
	}

	resp := buildMessageResponse(threadID, turns)
	s.successCount.Add(1)
	requestsTotal.WithLabelValues("agent", "success").Inc()
	requestDuration.WithLabelValues("agent").Observe(float64(time.Since(start).Milliseconds()))
	s.sys.Log.InfoWithDuration(threadID, "", "Chat handled", float64(time.Since(start).Milliseconds()), map[string]any{
		"agent": lastAgent(turns),
	})
	writeJSON(w, http.StatusOK, resp)
}

// handleChatStream runs one group chat turn and streams the reply as NDJSON
// events: init, metadata, cumulative content chunks, then done.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.requestCount.Add(1)

	req, ok := s.decodeChatRequest(w, r, "agent_stream")
	if !ok {
		return
	}
	if !s.checkRateLimit(w, r, req, "agent_stream") {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "Streaming not supported", "agent_stream")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	send := func(ev StreamEvent) {
		if err := enc.Encode(ev); err != nil {
			return
		}
		flusher.Flush()
	}

	send(StreamEvent{Type: "init", Content: "Thinking..."})

	threadID, history := s.loadThread(r.Context(), req.ThreadID)
	send(StreamEvent{Type: "metadata", ThreadID: threadID})

	turns, updated, err := s.sys.Chat.Invoke(r.Context(), history, req.Message)
	if err != nil {
		s.sys.Log.ErrorWithErr(threadID, "", "Chat invocation failed", err, nil)
		s.failureCount.Add(1)
		requestsTotal.WithLabelValues("agent_stream", "error").Inc()
		send(StreamEvent{Type: "error", Error: "Failed to process message"})
		return
	}

	if err := s.sys.Threads.Put(r.Context(), &Thread{ID: threadID, Messages: updated}); err != nil {
		s.sys.Log.ErrorWithErr(threadID, "", "Failed to persist thread", err, nil)
	}

	// Cumulative chunks: each content event carries everything sent so far.
	reply := buildMessageResponse(threadID, turns).Response
	words := strings.Fields(reply)
	for i := 0; i < len(words); i += s.chunkWords {
		end := i + s.chunkWords
		if end > len(words) {
			end = len(words)
		}
		send(StreamEvent{Type: "content", Content: strings.Join(words[:end], " ")})
		if s.chunkDelay > 0 && end < len(words) {
			time.Sleep(s.chunkDelay)
		}
	}

	send(StreamEvent{Type: "done"})
	s.successCount.Add(1)
	requestsTotal.WithLabelValues("agent_stream", "success").Inc()
	requestDuration.WithLabelValues("agent_stream").Observe(float64(time.Since(start).Milliseconds()))
}

// handleDeleteThread removes a conversation thread.
func (s *Server) handleDeleteThread(w http.ResponseWriter, r *http.Request) {
	threadID := r.URL.Query().Get("threadId")
	if threadID == "" {
		s.writeError(w, http.StatusBadRequest, "threadId query parameter is required", "delete_thread")
		return
	}

	if err := s.sys.Threads.Delete(r.Context(), threadID); err != nil {
		if errors.Is(err, ErrThreadNotFound) {
			s.writeError(w, http.StatusNotFound, "Thread not found", "delete_thread")
			return
		}
		s.sys.Log.ErrorWithErr(threadID, "", "Failed to delete thread", err, nil)
		s.writeError(w, http.StatusInternalServerError, "Failed to delete thread", "delete_thread")
		return
	}

	requestsTotal.WithLabelValues("delete_thread", "success").Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics returns a JSON operational summary. Prometheus scrape format
// is served separately on /prometheus.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	summary := map[string]any{
		"uptime_seconds":  int64(time.Since(s.startTime).Seconds()),
		"requests_total":  s.requestCount.Load(),
		"requests_ok":     s.successCount.Load(),
		"requests_failed": s.failureCount.Load(),
		"agents":          s.sys.Chat.Agents(),
	}
	if s.sys.Router != nil {
		providers := make(map[string]any)
		for name, m := range s.sys.Router.Metrics() {
			providers[name] = map[string]any{
				"requests":             m.RequestCount,
				"errors":               m.ErrorCount,
				"avg_response_time_ms": m.AvgResponseTime,
			}
		}
		summary["providers"] = providers
	}
	writeJSON(w, http.StatusOK, summary)
}

// decodeChatRequest parses and validates the chat body, writing the error
// response itself on failure.
func (s *Server) decodeChatRequest(w http.ResponseWriter, r *http.Request, endpoint string) (MessageRequest, bool) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", endpoint)
		return req, false
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required", endpoint)
		return req, false
	}
	return req, true
}

// checkRateLimit applies the per-client limit, keyed by thread when the
// client supplies one and by remote address otherwise.
func (s *Server) checkRateLimit(w http.ResponseWriter, r *http.Request, req MessageRequest, endpoint string) bool {
	clientID := req.ThreadID
	if clientID == "" {
		clientID = r.RemoteAddr
	}
	if err := s.sys.Limiter.Allow(r.Context(), clientID); err != nil {
		if errors.Is(err, ErrRateLimited) {
			s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please slow down.", endpoint)
			return false
		}
		// Limiter errors other than the limit itself fail open.
		s.sys.Log.ErrorWithErr("", "", "Rate limiter error", err, nil)
	}
	return true
}

// loadThread resolves the request thread: a fresh ID when none is supplied,
// stored history when the thread exists, and an empty history under the
// client's ID when it does not (expired threads restart transparently).
func (s *Server) loadThread(ctx context.Context, threadID string) (string, []llm.Message) {
	if threadID == "" {
		return NewThreadID(), nil
	}
	thread, err := s.sys.Threads.Get(ctx, threadID)
	if err != nil {
		return threadID, nil
	}
	return threadID, thread.Messages
}

// buildMessageResponse flattens group chat turns into the response payload.
// With multiple turns the contents are joined in order.
func buildMessageResponse(threadID string, turns []Turn) MessageResponse {
	resp := MessageResponse{
		ThreadID:        threadID,
		FunctionCalls:   []FunctionCall{},
		FunctionResults: []FunctionResult{},
	}
	contents := make([]string, 0, len(turns))
	for _, turn := range turns {
		if turn.Content != "" {
			contents = append(contents, turn.Content)
		}
		resp.FunctionCalls = append(resp.FunctionCalls, turn.FunctionCalls...)
		resp.FunctionResults = append(resp.FunctionResults, turn.FunctionResults...)
	}
	resp.Response = strings.Join(contents, "\n\n")
	return resp
}

func lastAgent(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	return turns[len(turns)-1].Agent
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, endpoint string) {
	s.failureCount.Add(1)
	requestsTotal.WithLabelValues(endpoint, "error").Inc()
	writeJSON(w, status, map[string]string{"detail": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(w, `{"detail":"encoding error"}`)
	}
}
