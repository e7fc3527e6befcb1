// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"sliceline/assistant/llm"
)

func sampleThread(id string) *Thread {
	return &Thread{
		ID: id,
		Messages: []llm.Message{
			llm.UserMessage("What pizzas do you have?"),
			llm.AssistantMessage("We have Margherita and Pepperoni.", nil),
		},
	}
}

func TestMemoryThreadStore(t *testing.T) {
	store := NewMemoryThreadStore(0)
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrThreadNotFound", err)
	}

	id := NewThreadID()
	if err := store.Put(ctx, sampleThread(id)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("Messages = %+v", got.Messages)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set by Put")
	}

	// Mutating the returned copy must not affect the stored thread.
	got.Messages = append(got.Messages, llm.UserMessage("another"))
	again, _ := store.Get(ctx, id)
	if len(again.Messages) != 2 {
		t.Errorf("stored thread mutated through returned copy: %d messages", len(again.Messages))
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, id); !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("second Delete() error = %v, want ErrThreadNotFound", err)
	}
}

func TestMemoryThreadStoreTTL(t *testing.T) {
	store := NewMemoryThreadStore(10 * time.Millisecond)
	ctx := context.Background()

	id := NewThreadID()
	if err := store.Put(ctx, sampleThread(id)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, id); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}

	time.Sleep(25 * time.Millisecond)
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrThreadNotFound", err)
	}
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisThreadStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisThreadStore(client, time.Hour)
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrThreadNotFound", err)
	}

	id := NewThreadID()
	if err := store.Put(ctx, sampleThread(id)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != id || len(got.Messages) != 2 {
		t.Fatalf("thread = %+v", got)
	}
	if got.Messages[1].Role != llm.RoleAssistant {
		t.Errorf("Messages[1] = %+v", got.Messages[1])
	}

	// Idle threads expire with the TTL.
	mr.FastForward(2 * time.Hour)
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("Get() after TTL error = %v, want ErrThreadNotFound", err)
	}
}

func TestRedisThreadStoreDelete(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisThreadStore(client, time.Hour)
	ctx := context.Background()

	id := NewThreadID()
	if err := store.Put(ctx, sampleThread(id)); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, id); !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("second Delete() error = %v, want ErrThreadNotFound", err)
	}
}
