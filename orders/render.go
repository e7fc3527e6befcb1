// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package orders

import (
	"fmt"
	"strings"
)

// DeliveryEstimate is the fixed delivery-time wording embedded in the
// completion message.
const DeliveryEstimate = "25-30 minutes"

// RenderCreated renders the confirmation returned after creating an order.
func RenderCreated(customerName, orderID string) string {
	return fmt.Sprintf("Order created for %s with order ID: %s. You can now add items to this order.", customerName, orderID)
}

// RenderAddItem renders the confirmation for an item addition, including the
// new running total to two decimal places.
func RenderAddItem(res *AddItemResult) string {
	return fmt.Sprintf("Added %dx %s ($%.2f each) to order %s. Current order total: $%.2f",
		res.Quantity, res.ItemName, res.UnitPrice, res.OrderID, res.Total)
}

// RenderStatus renders an order summary with aggregated line items.
func RenderStatus(st *OrderStatus) string {
	parts := make([]string, 0, len(st.Items))
	for _, item := range st.Items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Count, item.Name))
	}

	return fmt.Sprintf("Order ID: %s\nCustomer: %s\nItems: %s\nTotal: $%.2f",
		st.OrderID, st.CustomerName, strings.Join(parts, ", "), st.Total)
}

// RenderCompletion renders the thank-you message for a completed order.
func RenderCompletion(c *Completion) string {
	return fmt.Sprintf("Thank you, %s!\n\nYour order (ID: %s) has been confirmed and is being prepared.\nTotal: $%.2f\n\nYour delicious pizza will be ready in approximately %s.",
		c.CustomerName, c.OrderID, c.Total, DeliveryEstimate)
}
