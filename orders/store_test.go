// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package orders

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"testing"
)

func TestCreateIDsAreSequential(t *testing.T) {
	s := NewStore()

	var prev int
	for i := 0; i < 10; i++ {
		id := s.Create("Alice")
		if !strings.HasPrefix(id, IDPrefix) {
			t.Fatalf("expected prefix %q, got %q", IDPrefix, id)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, IDPrefix))
		if err != nil {
			t.Fatalf("non-numeric counter in %q: %v", id, err)
		}
		if n <= prev {
			t.Errorf("expected monotonically increasing IDs, got %d after %d", n, prev)
		}
		prev = n
	}
}

func TestCreateThenStatusIsEmpty(t *testing.T) {
	s := NewStore()
	id := s.Create("Alice")

	st, err := s.Status(id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.CustomerName != "Alice" {
		t.Errorf("expected customer Alice, got %q", st.CustomerName)
	}
	if len(st.Items) != 0 {
		t.Errorf("expected empty item summary, got %v", st.Items)
	}
	if st.Total != 0 {
		t.Errorf("expected total 0.00, got %.2f", st.Total)
	}
}

func TestAddItemAccumulatesTotal(t *testing.T) {
	tests := []struct {
		name      string
		adds      []struct {
			item string
			qty  int
		}
		wantTotal float64
		wantItems []LineItem
	}{
		{
			name: "two pepperoni",
			adds: []struct {
				item string
				qty  int
			}{{"Pepperoni", 2}},
			wantTotal: 25.98,
			wantItems: []LineItem{{Name: "Pepperoni", Count: 2}},
		},
		{
			name: "soda twice accumulates",
			adds: []struct {
				item string
				qty  int
			}{{"Soda", 1}, {"Soda", 1}},
			wantTotal: 3.98,
			wantItems: []LineItem{{Name: "Soda", Count: 2}},
		},
		{
			name: "mixed order preserves first-seen order",
			adds: []struct {
				item string
				qty  int
			}{{"Margherita", 1}, {"Garlic Bread", 2}, {"Margherita", 1}},
			wantTotal: 10.99*2 + 4.99*2,
			wantItems: []LineItem{{Name: "Margherita", Count: 2}, {Name: "Garlic Bread", Count: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			id := s.Create("Bob")

			for _, add := range tt.adds {
				if _, err := s.AddItem(id, add.item, add.qty); err != nil {
					t.Fatalf("AddItem(%s, %d): %v", add.item, add.qty, err)
				}
			}

			st, err := s.Status(id)
			if err != nil {
				t.Fatalf("Status: %v", err)
			}
			if math.Abs(st.Total-tt.wantTotal) > 1e-9 {
				t.Errorf("expected total %.2f, got %.2f", tt.wantTotal, st.Total)
			}
			if len(st.Items) != len(tt.wantItems) {
				t.Fatalf("expected %d line items, got %v", len(tt.wantItems), st.Items)
			}
			for i, want := range tt.wantItems {
				if st.Items[i] != want {
					t.Errorf("line %d: expected %+v, got %+v", i, want, st.Items[i])
				}
			}
		})
	}
}

func TestAddItemCaseInsensitiveLookup(t *testing.T) {
	s := NewStore()
	id := s.Create("Carol")

	res, err := s.AddItem(id, "CHICKEN wings", 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if res.UnitPrice != 8.99 {
		t.Errorf("expected unit price 8.99, got %.2f", res.UnitPrice)
	}
	// Stored entries keep the caller's spelling.
	st, _ := s.Status(id)
	if st.Items[0].Name != "CHICKEN wings" {
		t.Errorf("expected original spelling preserved, got %q", st.Items[0].Name)
	}
}

func TestAddItemUnknownOrder(t *testing.T) {
	s := NewStore()

	_, err := s.AddItem("ORD-99", "Pepperoni", 1)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	// No entry may appear as a side effect.
	if _, err := s.Status("ORD-99"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected store to remain without ORD-99, got %v", err)
	}
}

func TestAddItemUnknownItem(t *testing.T) {
	s := NewStore()
	id := s.Create("Dave")
	if _, err := s.AddItem(id, "Pepperoni", 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	_, err := s.AddItem(id, "Calzone", 1)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	// Total and item list must be untouched.
	st, _ := s.Status(id)
	if math.Abs(st.Total-12.99) > 1e-9 {
		t.Errorf("expected total unchanged at 12.99, got %.2f", st.Total)
	}
	if len(st.Items) != 1 {
		t.Errorf("expected item list unchanged, got %v", st.Items)
	}
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	s := NewStore()
	id := s.Create("Eve")

	for _, qty := range []int{0, -1, -3} {
		_, err := s.AddItem(id, "Soda", qty)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}

	st, _ := s.Status(id)
	if st.Total != 0 || len(st.Items) != 0 {
		t.Errorf("rejected adds must not mutate the order, got %+v", st)
	}
}

func TestCompleteKeepsOrderRetrievable(t *testing.T) {
	s := NewStore()
	id := s.Create("Alice")
	if _, err := s.AddItem(id, "Hawaiian", 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	c, err := s.Complete(id)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c.CustomerName != "Alice" {
		t.Errorf("expected customer Alice, got %q", c.CustomerName)
	}
	if math.Abs(c.Total-13.99) > 1e-9 {
		t.Errorf("expected total 13.99, got %.2f", c.Total)
	}

	// The order stays in the store after completion.
	if _, err := s.Status(id); err != nil {
		t.Errorf("expected order to remain retrievable, got %v", err)
	}
	if _, err := s.Complete(id); err != nil {
		t.Errorf("expected repeat completion to succeed, got %v", err)
	}
}

func TestStatusAndCompleteUnknownOrder(t *testing.T) {
	s := NewStore()

	if _, err := s.Status("ORD-1"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("Status: expected ErrOrderNotFound, got %v", err)
	}
	if _, err := s.Complete("ORD-1"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("Complete: expected ErrOrderNotFound, got %v", err)
	}
}

func TestReset(t *testing.T) {
	s := NewStore()
	id := s.Create("Alice")
	s.Reset()

	if _, err := s.Status(id); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected orders cleared after Reset, got %v", err)
	}
	if got := s.Create("Bob"); got != IDPrefix+"1" {
		t.Errorf("expected counter restart at %s1, got %s", IDPrefix, got)
	}
}

func TestConcurrentAddItem(t *testing.T) {
	s := NewStore()
	id := s.Create("Load")

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := s.AddItem(id, "Water", 1); err != nil {
					t.Errorf("AddItem: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	st, err := s.Status(id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	wantTotal := 1.49 * workers * perWorker
	if math.Abs(st.Total-wantTotal) > 1e-6 {
		t.Errorf("expected total %.2f, got %.2f (lost update?)", wantTotal, st.Total)
	}
	if st.Items[0].Count != workers*perWorker {
		t.Errorf("expected %d units, got %d", workers*perWorker, st.Items[0].Count)
	}
}

func TestRenderAddItemFormatsTotals(t *testing.T) {
	s := NewStore()
	id := s.Create("Alice")
	res, err := s.AddItem(id, "Pepperoni", 2)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	msg := RenderAddItem(res)
	want := fmt.Sprintf("Added 2x Pepperoni ($12.99 each) to order %s. Current order total: $25.98", id)
	if msg != want {
		t.Errorf("unexpected confirmation:\n got: %s\nwant: %s", msg, want)
	}
}

func TestRenderStatusAggregates(t *testing.T) {
	s := NewStore()
	id := s.Create("Bob")
	if _, err := s.AddItem(id, "Soda", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	st, _ := s.Status(id)
	msg := RenderStatus(st)
	if !strings.Contains(msg, "2x Soda") {
		t.Errorf("expected aggregated '2x Soda' in status, got:\n%s", msg)
	}
	if !strings.Contains(msg, "Total: $3.98") {
		t.Errorf("expected total line in status, got:\n%s", msg)
	}
}

func TestRenderCompletionMentionsCustomerAndTotal(t *testing.T) {
	s := NewStore()
	id := s.Create("Carol")
	if _, err := s.AddItem(id, "Supreme", 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	c, _ := s.Complete(id)
	msg := RenderCompletion(c)
	for _, want := range []string{"Carol", id, "$14.99", DeliveryEstimate} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in completion message, got:\n%s", want, msg)
		}
	}
}
