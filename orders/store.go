// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

// Package orders implements the in-memory order registry used by the
// order-taking tools. Orders are keyed by a process-local sequential ID and
// hold a flat, duplicated-per-unit item list plus an incrementally
// accumulated total. There is no persistence and no deletion; completing an
// order only changes how it is presented.
package orders

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// IDPrefix is prepended to the sequential order counter.
const IDPrefix = "ORD-"

// Tagged error values for the three failure modes. Callers branch on these
// with errors.Is and render user-facing prose at the presentation layer.
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrItemNotFound    = errors.New("item not in price table")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// PriceTable is the fixed menu pricing, keyed by lowercase item name.
// It is distinct from the remote pizza API's own pricing.
var PriceTable = map[string]float64{
	"margherita":    10.99,
	"pepperoni":     12.99,
	"vegetarian":    11.99,
	"hawaiian":      13.99,
	"supreme":       14.99,
	"garlic bread":  4.99,
	"caesar salad":  5.99,
	"chicken wings": 8.99,
	"soda":          1.99,
	"water":         1.49,
	"beer":          5.99,
}

// Order is an in-memory record of a customer's selected items.
// Items holds one entry per unit, in insertion order, with the caller's
// original spelling. Total accumulates as items are added and is never
// recomputed from scratch.
type Order struct {
	ID           string
	CustomerName string
	Items        []string
	Total        float64
}

// AddItemResult describes a successful item addition.
type AddItemResult struct {
	OrderID   string
	ItemName  string
	Quantity  int
	UnitPrice float64
	Total     float64 // running order total after the addition
}

// LineItem is an aggregated (name, count) pair in an order summary.
type LineItem struct {
	Name  string
	Count int
}

// OrderStatus is a point-in-time summary of an order. Items preserves the
// first-seen order of distinct names.
type OrderStatus struct {
	OrderID      string
	CustomerName string
	Items        []LineItem
	Total        float64
}

// Completion is the terminal rendering of an order. The order itself stays
// in the store and remains retrievable.
type Completion struct {
	OrderID      string
	CustomerName string
	Total        float64
}

// Store is an in-process order registry. All operations take the store lock
// for the duration of their read-modify-write, so a Store is safe to share
// behind a concurrent server.
type Store struct {
	mu      sync.Mutex
	orders  map[string]*Order
	counter int
}

// NewStore creates an empty order store.
func NewStore() *Store {
	return &Store{orders: make(map[string]*Order)}
}

// Create allocates the next sequential order ID and registers an empty order
// for the given customer. It always succeeds; the customer name is not
// validated and may be empty.
func (s *Store) Create(customerName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	id := fmt.Sprintf("%s%d", IDPrefix, s.counter)
	s.orders[id] = &Order{
		ID:           id,
		CustomerName: customerName,
	}
	return id
}

// AddItem appends quantity units of itemName to the order and bumps the
// running total by unit price times quantity. The item lookup is
// case-insensitive against PriceTable; the stored entries keep the caller's
// spelling. Quantity below 1 is rejected.
func (s *Store) AddItem(orderID, itemName string, quantity int) (*AddItemResult, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("add %d of %q: %w", quantity, itemName, ErrInvalidQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %q: %w", orderID, ErrOrderNotFound)
	}

	price, ok := PriceTable[strings.ToLower(itemName)]
	if !ok {
		return nil, fmt.Errorf("item %q: %w", itemName, ErrItemNotFound)
	}

	for i := 0; i < quantity; i++ {
		order.Items = append(order.Items, itemName)
	}
	order.Total += price * float64(quantity)

	return &AddItemResult{
		OrderID:   orderID,
		ItemName:  itemName,
		Quantity:  quantity,
		UnitPrice: price,
		Total:     order.Total,
	}, nil
}

// Status summarizes an order, aggregating the flat item list into
// (name, count) pairs in first-seen order.
func (s *Store) Status(orderID string) (*OrderStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %q: %w", orderID, ErrOrderNotFound)
	}

	counts := make(map[string]int)
	var items []LineItem
	for _, name := range order.Items {
		if _, seen := counts[name]; !seen {
			items = append(items, LineItem{Name: name})
		}
		counts[name]++
	}
	for i := range items {
		items[i].Count = counts[items[i].Name]
	}

	return &OrderStatus{
		OrderID:      orderID,
		CustomerName: order.CustomerName,
		Items:        items,
		Total:        order.Total,
	}, nil
}

// Complete returns the completion view of an order. The order is not removed
// and has no stored status field; every order stays "open" for the lifetime
// of the process.
func (s *Store) Complete(orderID string) (*Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %q: %w", orderID, ErrOrderNotFound)
	}

	return &Completion{
		OrderID:      orderID,
		CustomerName: order.CustomerName,
		Total:        order.Total,
	}, nil
}

// Reset drops all orders and restarts the counter. Intended for test
// isolation; IDs handed out before a Reset may be reused after it.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = make(map[string]*Order)
	s.counter = 0
}
