// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package pizzaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

// mockHTTPClient records requests and replays canned responses.
type mockHTTPClient struct {
	doFunc   func(req *http.Request) (*http.Response, error)
	requests []*http.Request
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.requests = append(m.requests, req)
	return m.doFunc(req)
}

func jsonResponse(status int, body any) *http.Response {
	data, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     make(http.Header),
	}
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(t *testing.T, mock *mockHTTPClient) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL: "https://pizza.example.com",
		UserID:  "user-42",
		Client:  mock,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{UserID: "u"}); err == nil {
		t.Error("expected error for missing base URL")
	}
	if _, err := NewClient(Config{BaseURL: "https://x"}); err == nil {
		t.Error("expected error for missing user ID")
	}
}

func TestGetPizzas(t *testing.T) {
	mock := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, []Pizza{
			{ID: "p1", Name: "Margherita", Price: 10.99},
		}), nil
	}}
	client := newTestClient(t, mock)

	pizzas, err := client.GetPizzas(context.Background())
	if err != nil {
		t.Fatalf("GetPizzas: %v", err)
	}
	if len(pizzas) != 1 || pizzas[0].Name != "Margherita" {
		t.Errorf("unexpected pizzas: %+v", pizzas)
	}
	if got := mock.requests[0].URL.Path; got != "/api/pizzas" {
		t.Errorf("unexpected path: %s", got)
	}
}

func TestGetOrdersSendsUserAndFilters(t *testing.T) {
	mock := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, []Order{}), nil
	}}
	client := newTestClient(t, mock)

	if _, err := client.GetOrders(context.Background(), "pending", "60m"); err != nil {
		t.Fatalf("GetOrders: %v", err)
	}

	q := mock.requests[0].URL.Query()
	if q.Get("userId") != "user-42" {
		t.Errorf("expected userId query param, got %q", q.Get("userId"))
	}
	if q.Get("status") != "pending" || q.Get("last") != "60m" {
		t.Errorf("unexpected filters: %v", q)
	}
}

func TestPlaceOrderPostsItems(t *testing.T) {
	mock := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		var body placeOrderRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		if body.UserID != "user-42" || len(body.Items) != 2 {
			return nil, fmt.Errorf("unexpected request body: %+v", body)
		}
		return jsonResponse(http.StatusCreated, Order{ID: "o1", Status: "pending", Total: 24.98}), nil
	}}
	client := newTestClient(t, mock)

	order, err := client.PlaceOrder(context.Background(), []placeOrderItem{
		{PizzaID: "p1", Quantity: 1},
		{PizzaID: "p2", Quantity: 1, ExtraToppingIDs: []string{"t1"}},
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.ID != "o1" || order.Status != "pending" {
		t.Errorf("unexpected order: %+v", order)
	}
	if got := mock.requests[0].Method; got != http.MethodPost {
		t.Errorf("expected POST, got %s", got)
	}
}

func TestCancelOrderErrorsCarryStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus int
	}{
		{"already preparing", http.StatusBadRequest, http.StatusBadRequest},
		{"not found", http.StatusNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
				return textResponse(tt.status, "nope"), nil
			}}
			client := newTestClient(t, mock)

			err := client.CancelOrder(context.Background(), "o1")
			apiErr, ok := err.(*APIError)
			if !ok {
				t.Fatalf("expected *APIError, got %T (%v)", err, err)
			}
			if apiErr.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.StatusCode)
			}
		})
	}
}

func TestCancelOrderSuccess(t *testing.T) {
	mock := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return textResponse(http.StatusNoContent, ""), nil
	}}
	client := newTestClient(t, mock)

	if err := client.CancelOrder(context.Background(), "o1"); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	req := mock.requests[0]
	if req.Method != http.MethodDelete {
		t.Errorf("expected DELETE, got %s", req.Method)
	}
	if req.URL.Query().Get("userId") != "user-42" {
		t.Errorf("expected userId query param on cancel: %s", req.URL.RawQuery)
	}
}
