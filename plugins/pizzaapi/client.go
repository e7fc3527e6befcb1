// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

// Package pizzaapi is a client for the hosted pizza REST API (pizzas,
// toppings, orders) and exposes it to the assistant as tools. Every tool is a
// direct pass-through: fetch, format, reply.
package pizzaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP timeout for API calls.
const DefaultTimeout = 30 * time.Second

// HTTPClient is an interface for HTTP client operations (enables testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config contains configuration for the pizza API client.
type Config struct {
	BaseURL string        // Required: API base URL
	UserID  string        // Required: assigned pizza user ID, sent with order operations
	Timeout time.Duration // Optional: HTTP timeout (default: 30s)
	Client  HTTPClient    // Optional: injected HTTP client for tests
}

// Client calls the remote pizza API.
type Client struct {
	baseURL string
	userID  string
	client  HTTPClient
}

// NewClient creates a pizza API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("pizza API base URL is required")
	}
	if cfg.UserID == "" {
		return nil, fmt.Errorf("pizza user ID is required")
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		userID:  cfg.UserID,
		client:  client,
	}, nil
}

// Topping is a pizza topping as served by the API.
type Topping struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// Pizza is a menu pizza as served by the API.
type Pizza struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Toppings    []Topping `json:"toppings"`
}

// OrderItem is a line item on a remote order.
type OrderItem struct {
	Pizza         Pizza     `json:"pizza"`
	Quantity      int       `json:"quantity"`
	ExtraToppings []Topping `json:"extraToppings"`
}

// Order is a remote order. Unlike the in-memory store, remote orders carry a
// status field (pending, ready, completed).
type Order struct {
	ID                      string      `json:"id"`
	Status                  string      `json:"status"`
	Items                   []OrderItem `json:"items"`
	Total                   float64     `json:"total"`
	CreatedAt               string      `json:"createdAt"`
	EstimatedCompletionTime string      `json:"estimatedCompletionTime"`
}

// placeOrderItem is the wire shape for a new order line.
type placeOrderItem struct {
	PizzaID         string   `json:"pizzaId"`
	Quantity        int      `json:"quantity"`
	ExtraToppingIDs []string `json:"extraToppingIds,omitempty"`
}

// placeOrderRequest is the wire shape for POST /api/orders.
type placeOrderRequest struct {
	UserID string           `json:"userId"`
	Items  []placeOrderItem `json:"items"`
}

// APIError reports a non-2xx response from the pizza API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pizza API returned status %d: %s", e.StatusCode, e.Body)
}

// getJSON issues a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("pizza API request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetPizzas lists all pizzas on the menu.
func (c *Client) GetPizzas(ctx context.Context) ([]Pizza, error) {
	var pizzas []Pizza
	if err := c.getJSON(ctx, "/api/pizzas", nil, &pizzas); err != nil {
		return nil, err
	}
	return pizzas, nil
}

// GetPizzaByID fetches a single pizza.
func (c *Client) GetPizzaByID(ctx context.Context, pizzaID string) (*Pizza, error) {
	var pizza Pizza
	if err := c.getJSON(ctx, "/api/pizzas/"+url.PathEscape(pizzaID), nil, &pizza); err != nil {
		return nil, err
	}
	return &pizza, nil
}

// GetToppings lists toppings, optionally filtered by category.
func (c *Client) GetToppings(ctx context.Context, category string) ([]Topping, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}

	var toppings []Topping
	if err := c.getJSON(ctx, "/api/toppings", query, &toppings); err != nil {
		return nil, err
	}
	return toppings, nil
}

// GetToppingCategories lists the topping category names.
func (c *Client) GetToppingCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "/api/toppings/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetOrders lists the user's orders, optionally filtered by status
// (pending, ready, completed) and a time window such as "60m" or "2h".
func (c *Client) GetOrders(ctx context.Context, status, last string) ([]Order, error) {
	query := url.Values{}
	query.Set("userId", c.userID)
	if status != "" {
		query.Set("status", status)
	}
	if last != "" {
		query.Set("last", last)
	}

	var orders []Order
	if err := c.getJSON(ctx, "/api/orders", query, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderByID fetches a single remote order.
func (c *Client) GetOrderByID(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.getJSON(ctx, "/api/orders/"+url.PathEscape(orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// PlaceOrder submits a new order for the configured user.
func (c *Client) PlaceOrder(ctx context.Context, items []placeOrderItem) (*Order, error) {
	body, err := json.Marshal(placeOrderRequest{UserID: c.userID, Items: items})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pizza API request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &order, nil
}

// CancelOrder cancels an order that has not started preparation.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	u := fmt.Sprintf("%s/api/orders/%s?userId=%s", c.baseURL, url.PathEscape(orderID), url.QueryEscape(c.userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("pizza API request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}
