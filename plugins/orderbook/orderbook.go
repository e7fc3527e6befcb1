// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

// Package orderbook exposes the in-memory order store as assistant tools.
// The store reports failures as tagged errors; this layer renders them into
// the prose replies the agents hand back to customers.
package orderbook

import (
	"context"
	"errors"
	"fmt"

	"sliceline/assistant/orders"
	"sliceline/assistant/plugins"
)

// Plugin wires an orders.Store into the tool surface.
type Plugin struct {
	store *orders.Store
}

// New creates the orderbook plugin around the given store. The store is
// shared by reference; all tool calls mutate the same registry.
func New(store *orders.Store) *Plugin {
	return &Plugin{store: store}
}

// Name implements plugins.Plugin.
func (p *Plugin) Name() string {
	return "orderbook"
}

// Tools implements plugins.Plugin.
func (p *Plugin) Tools() []plugins.Tool {
	return []plugins.Tool{
		{
			Name:        "create_order",
			Description: "Creates a new pizza order for a customer.",
			Parameters: plugins.ObjectSchema(map[string]any{
				"customer_name": plugins.StringProp("The name of the customer placing the order."),
			}, "customer_name"),
			Handler: p.createOrder,
		},
		{
			Name:        "add_item_to_order",
			Description: "Adds a menu item to an existing order.",
			Parameters: plugins.ObjectSchema(map[string]any{
				"order_id":  plugins.StringProp("The ID of the order to add the item to."),
				"item_name": plugins.StringProp("The name of the item to add."),
				"quantity":  plugins.IntProp("The quantity of the item to add. Defaults to 1."),
			}, "order_id", "item_name"),
			Handler: p.addItemToOrder,
		},
		{
			Name:        "get_order_status",
			Description: "Gets the current status of an order.",
			Parameters: plugins.ObjectSchema(map[string]any{
				"order_id": plugins.StringProp("The ID of the order to check."),
			}, "order_id"),
			Handler: p.getOrderStatus,
		},
		{
			Name:        "complete_order",
			Description: "Completes an order and prepares it for delivery.",
			Parameters: plugins.ObjectSchema(map[string]any{
				"order_id": plugins.StringProp("The ID of the order to complete."),
			}, "order_id"),
			Handler: p.completeOrder,
		},
	}
}

func (p *Plugin) createOrder(ctx context.Context, args map[string]any) (string, error) {
	customerName := plugins.StringArg(args, "customer_name")
	orderID := p.store.Create(customerName)
	return orders.RenderCreated(customerName, orderID), nil
}

func (p *Plugin) addItemToOrder(ctx context.Context, args map[string]any) (string, error) {
	orderID := plugins.StringArg(args, "order_id")
	itemName := plugins.StringArg(args, "item_name")
	quantity := plugins.IntArg(args, "quantity", 1)

	res, err := p.store.AddItem(orderID, itemName, quantity)
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		return fmt.Sprintf("Order ID %s not found. Please create an order first.", orderID), nil
	case errors.Is(err, orders.ErrInvalidQuantity):
		return fmt.Sprintf("Quantity %d is not valid. Please use a quantity of at least 1.", quantity), nil
	case errors.Is(err, orders.ErrItemNotFound):
		return fmt.Sprintf("Item '%s' not found in our menu. Please check the menu for available items.", itemName), nil
	case err != nil:
		return "", err
	}
	return orders.RenderAddItem(res), nil
}

func (p *Plugin) getOrderStatus(ctx context.Context, args map[string]any) (string, error) {
	orderID := plugins.StringArg(args, "order_id")

	st, err := p.store.Status(orderID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		return notFound(orderID), nil
	}
	if err != nil {
		return "", err
	}
	return orders.RenderStatus(st), nil
}

func (p *Plugin) completeOrder(ctx context.Context, args map[string]any) (string, error) {
	orderID := plugins.StringArg(args, "order_id")

	c, err := p.store.Complete(orderID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		return notFound(orderID), nil
	}
	if err != nil {
		return "", err
	}
	return orders.RenderCompletion(c), nil
}

func notFound(orderID string) string {
	return fmt.Sprintf("Order ID %s not found. Please check your order ID.", orderID)
}
