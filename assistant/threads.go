// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"sliceline/assistant/llm"
)

// ErrThreadNotFound is returned for unknown thread IDs.
var ErrThreadNotFound = errors.New("thread not found")

// Thread is a stored conversation.
type Thread struct {
	ID        string        `json:"id"`
	Messages  []llm.Message `json:"messages"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewThreadID generates a fresh thread identifier.
func NewThreadID() string {
	return uuid.NewString()
}

// ThreadStore persists conversation threads keyed by thread ID.
type ThreadStore interface {
	Get(ctx context.Context, id string) (*Thread, error)
	Put(ctx context.Context, thread *Thread) error
	Delete(ctx context.Context, id string) error
}

// MemoryThreadStore is the in-process ThreadStore used when Redis is not
// configured. Expiry is enforced lazily on access.
type MemoryThreadStore struct {
	mu      sync.RWMutex
	threads map[string]*Thread
	ttl     time.Duration
}

// NewMemoryThreadStore creates an in-memory store. ttl <= 0 disables expiry.
func NewMemoryThreadStore(ttl time.Duration) *MemoryThreadStore {
	return &MemoryThreadStore{
		threads: make(map[string]*Thread),
		ttl:     ttl,
	}
}

// Get implements ThreadStore.
func (s *MemoryThreadStore) Get(ctx context.Context, id string) (*Thread, error) {
	s.mu.RLock()
	thread, ok := s.threads[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("thread %s: %w", id, ErrThreadNotFound)
	}
	if s.expired(thread) {
		s.mu.Lock()
		delete(s.threads, id)
		s.mu.Unlock()
		return nil, fmt.Errorf("thread %s: %w", id, ErrThreadNotFound)
	}

	// Copy so callers can append without racing the store.
	cp := *thread
	cp.Messages = append([]llm.Message{}, thread.Messages...)
	return &cp, nil
}

// Put implements ThreadStore.
func (s *MemoryThreadStore) Put(ctx context.Context, thread *Thread) error {
	cp := *thread
	cp.Messages = append([]llm.Message{}, thread.Messages...)
	cp.UpdatedAt = time.Now()

	s.mu.Lock()
	s.threads[thread.ID] = &cp
	s.mu.Unlock()
	return nil
}

// Delete implements ThreadStore.
func (s *MemoryThreadStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.threads[id]; !ok {
		return fmt.Errorf("thread %s: %w", id, ErrThreadNotFound)
	}
	delete(s.threads, id)
	return nil
}

func (s *MemoryThreadStore) expired(thread *Thread) bool {
	return s.ttl > 0 && time.Since(thread.UpdatedAt) > s.ttl
}

// RedisThreadStore persists threads in Redis with a TTL, so conversations
// survive restarts and are shared across replicas.
type RedisThreadStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisThreadStore creates a Redis-backed store.
func NewRedisThreadStore(client *redis.Client, ttl time.Duration) *RedisThreadStore {
	return &RedisThreadStore{client: client, ttl: ttl}
}

func threadKey(id string) string {
	return "thread:" + id
}

// Get implements ThreadStore.
func (s *RedisThreadStore) Get(ctx context.Context, id string) (*Thread, error) {
	data, err := s.client.Get(ctx, threadKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("thread %s: %w", id, ErrThreadNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load thread %s: %w", id, err)
	}

	var thread Thread
	if err := json.Unmarshal(data, &thread); err != nil {
		return nil, fmt.Errorf("failed to decode thread %s: %w", id, err)
	}
	return &thread, nil
}

// Put implements ThreadStore.
func (s *RedisThreadStore) Put(ctx context.Context, thread *Thread) error {
	thread.UpdatedAt = time.Now()

	data, err := json.Marshal(thread)
	if err != nil {
		return fmt.Errorf("failed to encode thread %s: %w", thread.ID, err)
	}
	if err := s.client.Set(ctx, threadKey(thread.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store thread %s: %w", thread.ID, err)
	}
	return nil
}

// Delete implements ThreadStore.
func (s *RedisThreadStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, threadKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete thread %s: %w", id, err)
	}
	if removed == 0 {
		return fmt.Errorf("thread %s: %w", id, ErrThreadNotFound)
	}
	return nil
}
