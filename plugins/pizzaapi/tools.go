// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package pizzaapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sliceline/assistant/plugins"
)

// Plugin exposes the remote pizza API as assistant tools. API failures are
// reported to the model as formatted replies rather than errors so the agent
// can relay them conversationally.
type Plugin struct {
	client *Client
}

// NewPlugin creates the pizza API plugin.
func NewPlugin(client *Client) *Plugin {
	return &Plugin{client: client}
}

// Name implements plugins.Plugin.
func (p *Plugin) Name() string {
	return "pizzaapi"
}

// Tools implements plugins.Plugin.
func (p *Plugin) Tools() []plugins.Tool {
	return []plugins.Tool{
		{
			Name:        "get_pizzas",
			Description: "Get a list of all available pizzas from the menu.",
			Parameters:  plugins.ObjectSchema(map[string]any{}),
			Handler:     p.getPizzas,
		},
		{
			Name:        "get_pizza_by_id",
			Description: "Get a specific pizza by its ID.",
			Parameters: plugins.ObjectSchema(map[string]any{
				"pizza_id": plugins.StringProp("The ID of the pizza to retrieve."),
			}, "pizza_id"),
			Handler: p.getPizzaByID,
		},
		{
			Name:        "get_toppings",
			Description: "Get a list of all available toppings, optionally filtered by category.",
			Parameters: plugins.ObjectSchema(map[string]any{
				"category": plugins.StringProp("Optional category to filter toppings."),
			}),
			Handler: p.getToppings,
		},
		{
			Name:        "get_topping_categories",
			Description: "Get a list of all topping categories.",
			Parameters:  plugins.ObjectSchema(map[string]any{}),
			Handler:     p.getToppingCategories,
		},
		{
			Name:        "get_orders",
			Description: "Get a list of orders, optionally filtered by status (pending, ready, completed) and time window (e.g. '60m', '2h').",
			Parameters: plugins.ObjectSchema(map[string]any{
				"status": plugins.StringProp("Optional status to filter orders."),
				"last":   plugins.StringProp("Optional time constraint (e.g. '60m', '2h')."),
			}),
			Handler: p.getOrders,
		},
		{
			Name:        "get_order_by_id",
			Description: "Get a specific order by its ID.",
			Parameters: plugins.ObjectSchema(map[string]any{
				"order_id": plugins.StringProp("The ID of the order to retrieve."),
			}, "order_id"),
			Handler: p.getOrderByID,
		},
		{
			Name:        "place_order",
			Description: "Place a new pizza order.",
			Parameters: plugins.ObjectSchema(map[string]any{
				"pizza_ids":      plugins.StringProp("Comma-separated list of pizza IDs to order."),
				"quantities":     plugins.StringProp("Comma-separated list of quantities for each pizza."),
				"extra_toppings": plugins.StringProp("Optional extra topping IDs per pizza: comma-separated IDs within a pizza, ';' between pizzas."),
			}, "pizza_ids", "quantities"),
			Handler: p.placeOrder,
		},
		{
			Name:        "cancel_order",
			Description: "Cancel an order by its ID if it has not yet started preparation.",
			Parameters: plugins.ObjectSchema(map[string]any{
				"order_id": plugins.StringProp("The ID of the order to cancel."),
			}, "order_id"),
			Handler: p.cancelOrder,
		},
	}
}

func (p *Plugin) getPizzas(ctx context.Context, args map[string]any) (string, error) {
	pizzas, err := p.client.GetPizzas(ctx)
	if err != nil {
		return fmt.Sprintf("Error retrieving pizzas: %v", err), nil
	}

	entries := make([]string, 0, len(pizzas))
	for _, pizza := range pizzas {
		entries = append(entries, fmt.Sprintf("- %s ($%.2f): %s\n  Toppings: %s",
			pizza.Name, pizza.Price, pizza.Description, toppingNames(pizza.Toppings)))
	}
	return "Available Pizzas:\n" + strings.Join(entries, "\n\n"), nil
}

func (p *Plugin) getPizzaByID(ctx context.Context, args map[string]any) (string, error) {
	pizzaID := plugins.StringArg(args, "pizza_id")

	pizza, err := p.client.GetPizzaByID(ctx, pizzaID)
	if err != nil {
		return fmt.Sprintf("Error retrieving pizza with ID %s: %v", pizzaID, err), nil
	}
	return fmt.Sprintf("Pizza: %s\nPrice: $%.2f\nDescription: %s\nToppings: %s",
		pizza.Name, pizza.Price, pizza.Description, toppingNames(pizza.Toppings)), nil
}

func (p *Plugin) getToppings(ctx context.Context, args map[string]any) (string, error) {
	toppings, err := p.client.GetToppings(ctx, plugins.StringArg(args, "category"))
	if err != nil {
		return fmt.Sprintf("Error retrieving toppings: %v", err), nil
	}

	// Group by category, preserving first-seen category order.
	var categories []string
	grouped := make(map[string][]string)
	for _, topping := range toppings {
		cat := topping.Category
		if cat == "" {
			cat = "Other"
		}
		if _, seen := grouped[cat]; !seen {
			categories = append(categories, cat)
		}
		grouped[cat] = append(grouped[cat], fmt.Sprintf("%s ($%.2f)", topping.Name, topping.Price))
	}

	var b strings.Builder
	b.WriteString("Available Toppings:\n")
	for _, cat := range categories {
		fmt.Fprintf(&b, "\n%s:\n", cat)
		for _, item := range grouped[cat] {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	return b.String(), nil
}

func (p *Plugin) getToppingCategories(ctx context.Context, args map[string]any) (string, error) {
	categories, err := p.client.GetToppingCategories(ctx)
	if err != nil {
		return fmt.Sprintf("Error retrieving topping categories: %v", err), nil
	}
	return "Topping Categories:\n- " + strings.Join(categories, "\n- "), nil
}

func (p *Plugin) getOrders(ctx context.Context, args map[string]any) (string, error) {
	orders, err := p.client.GetOrders(ctx, plugins.StringArg(args, "status"), plugins.StringArg(args, "last"))
	if err != nil {
		return fmt.Sprintf("Error retrieving orders: %v", err), nil
	}
	if len(orders) == 0 {
		return "No orders found matching the criteria.", nil
	}

	entries := make([]string, 0, len(orders))
	for i := range orders {
		entries = append(entries, renderOrder(&orders[i], false))
	}
	return "Your Orders:\n\n" + strings.Join(entries, "\n\n"), nil
}

func (p *Plugin) getOrderByID(ctx context.Context, args map[string]any) (string, error) {
	orderID := plugins.StringArg(args, "order_id")

	order, err := p.client.GetOrderByID(ctx, orderID)
	if err != nil {
		return fmt.Sprintf("Error retrieving order with ID %s: %v", orderID, err), nil
	}
	return renderOrder(order, true), nil
}

func (p *Plugin) placeOrder(ctx context.Context, args map[string]any) (string, error) {
	items, err := parseOrderItems(
		plugins.StringArg(args, "pizza_ids"),
		plugins.StringArg(args, "quantities"),
		plugins.StringArg(args, "extra_toppings"),
	)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}

	order, err := p.client.PlaceOrder(ctx, items)
	if err != nil {
		return fmt.Sprintf("Error placing order: %v", err), nil
	}
	return "Order successfully placed!\n\n" + renderOrder(order, false), nil
}

func (p *Plugin) cancelOrder(ctx context.Context, args map[string]any) (string, error) {
	orderID := plugins.StringArg(args, "order_id")

	err := p.client.CancelOrder(ctx, orderID)
	var apiErr *APIError
	switch {
	case err == nil:
		return fmt.Sprintf("Order %s has been successfully canceled.", orderID), nil
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest:
		return "Error: The order cannot be canceled. It may have already started preparation.", nil
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		return "Error: Order not found. Please check the order ID.", nil
	default:
		return fmt.Sprintf("Error canceling order: %v", err), nil
	}
}

// parseOrderItems builds the order lines from the comma-separated tool
// arguments. The counts of IDs, quantities, and extra-topping sets must line
// up.
func parseOrderItems(pizzaIDs, quantities, extraToppings string) ([]placeOrderItem, error) {
	ids := splitTrimmed(pizzaIDs, ",")
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one pizza ID is required")
	}

	qtyParts := splitTrimmed(quantities, ",")
	if len(ids) != len(qtyParts) {
		return nil, fmt.Errorf("the number of pizza IDs must match the number of quantities")
	}

	var toppingSets [][]string
	if extraToppings != "" {
		for _, set := range strings.Split(extraToppings, ";") {
			toppingSets = append(toppingSets, splitTrimmed(set, ","))
		}
		if len(toppingSets) != len(ids) {
			return nil, fmt.Errorf("the number of extra topping sets must match the number of pizzas")
		}
	}

	items := make([]placeOrderItem, 0, len(ids))
	for i, id := range ids {
		qty, err := strconv.Atoi(qtyParts[i])
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q", qtyParts[i])
		}

		item := placeOrderItem{PizzaID: id, Quantity: qty}
		if toppingSets != nil {
			item.ExtraToppingIDs = toppingSets[i]
		}
		items = append(items, item)
	}
	return items, nil
}

// splitTrimmed splits on sep and trims whitespace, dropping empty parts.
func splitTrimmed(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// renderOrder formats a remote order. When detailed is true the creation
// timestamp is included.
func renderOrder(order *Order, detailed bool) string {
	items := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		line := fmt.Sprintf("%dx %s", item.Quantity, item.Pizza.Name)
		if len(item.ExtraToppings) > 0 {
			line += " with extra " + toppingNames(item.ExtraToppings)
		}
		items = append(items, line)
	}

	eta := order.EstimatedCompletionTime
	if eta == "" {
		eta = "N/A"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order ID: %s\n", order.ID)
	fmt.Fprintf(&b, "Status: %s\n", order.Status)
	fmt.Fprintf(&b, "Items: %s\n", strings.Join(items, ", "))
	fmt.Fprintf(&b, "Total: $%.2f\n", order.Total)
	if detailed {
		createdAt := order.CreatedAt
		if createdAt == "" {
			createdAt = "N/A"
		}
		fmt.Fprintf(&b, "Created At: %s\n", createdAt)
	}
	fmt.Fprintf(&b, "Estimated Completion: %s", eta)
	return b.String()
}

func toppingNames(toppings []Topping) string {
	names := make([]string, 0, len(toppings))
	for _, t := range toppings {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}
