// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

// Package menu exposes the static restaurant menu as assistant tools.
// The data is a fixed lookup table; pricing for live orders comes from the
// remote pizza API, not from here.
package menu

import (
	"context"
	"fmt"
	"strings"

	"sliceline/assistant/plugins"
)

// menuText is the full menu shown to customers browsing options.
const menuText = `Pizza Menu:
- Margherita ($10.99): Classic tomato sauce and mozzarella cheese
- Pepperoni ($12.99): Tomato sauce, mozzarella, and pepperoni
- Vegetarian ($11.99): Tomato sauce, mozzarella, bell peppers, onions, and mushrooms
- Hawaiian ($13.99): Tomato sauce, mozzarella, ham, and pineapple
- Supreme ($14.99): Tomato sauce, mozzarella, pepperoni, sausage, bell peppers, onions, and olives

Sides:
- Garlic Bread ($4.99)
- Caesar Salad ($5.99)
- Chicken Wings ($8.99)

Drinks:
- Soda ($1.99): Coke, Sprite, Dr. Pepper
- Bottled Water ($1.49)
- Craft Beer ($5.99)`

// itemDetail holds the per-item information served by get_item_info.
type itemDetail struct {
	Description       string
	Price             float64
	Ingredients       string
	Vegetarian        bool
	Vegan             bool
	GlutenFreeOption  bool
}

// itemDetails is keyed by lowercase item name.
var itemDetails = map[string]itemDetail{
	"margherita": {
		Description:      "Classic tomato sauce and mozzarella cheese. A traditional Italian pizza.",
		Price:            10.99,
		Ingredients:      "Tomato sauce, mozzarella cheese, fresh basil, olive oil, salt",
		Vegetarian:       true,
		GlutenFreeOption: true,
	},
	"pepperoni": {
		Description:      "Tomato sauce, mozzarella, and pepperoni. Our most popular pizza.",
		Price:            12.99,
		Ingredients:      "Tomato sauce, mozzarella cheese, pepperoni slices",
		GlutenFreeOption: true,
	},
	"vegetarian": {
		Description:      "Tomato sauce, mozzarella, bell peppers, onions, and mushrooms.",
		Price:            11.99,
		Ingredients:      "Tomato sauce, mozzarella cheese, bell peppers, red onions, mushrooms, olive oil",
		Vegetarian:       true,
		GlutenFreeOption: true,
	},
	"hawaiian": {
		Description:      "Tomato sauce, mozzarella, ham, and pineapple. A sweet and savory combination.",
		Price:            13.99,
		Ingredients:      "Tomato sauce, mozzarella cheese, ham, pineapple chunks",
		GlutenFreeOption: true,
	},
	"supreme": {
		Description:      "Tomato sauce, mozzarella, pepperoni, sausage, bell peppers, onions, and olives. Loaded with toppings.",
		Price:            14.99,
		Ingredients:      "Tomato sauce, mozzarella cheese, pepperoni, Italian sausage, bell peppers, red onions, black olives",
		GlutenFreeOption: true,
	},
	"garlic bread": {
		Description: "Toasted bread with garlic butter and herbs.",
		Price:       4.99,
		Ingredients: "Baguette, garlic butter, Italian herbs, parmesan cheese",
		Vegetarian:  true,
	},
	"caesar salad": {
		Description:      "Romaine lettuce, croutons, parmesan cheese, and Caesar dressing.",
		Price:            5.99,
		Ingredients:      "Romaine lettuce, croutons, parmesan cheese, Caesar dressing",
		Vegetarian:       true,
		GlutenFreeOption: true,
	},
	"chicken wings": {
		Description:      "Crispy chicken wings with your choice of Buffalo, BBQ, or Garlic Parmesan sauce.",
		Price:            8.99,
		Ingredients:      "Chicken wings, choice of sauce, celery sticks, blue cheese or ranch dressing",
		GlutenFreeOption: true,
	},
}

// Plugin serves the static menu tools.
type Plugin struct{}

// New creates the menu plugin.
func New() *Plugin {
	return &Plugin{}
}

// Name implements plugins.Plugin.
func (p *Plugin) Name() string {
	return "menu"
}

// Tools implements plugins.Plugin.
func (p *Plugin) Tools() []plugins.Tool {
	return []plugins.Tool{
		{
			Name:        "get_menu",
			Description: "Provides the available pizza menu options with prices.",
			Parameters:  plugins.ObjectSchema(map[string]any{}),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				return menuText, nil
			},
		},
		{
			Name:        "get_item_info",
			Description: "Gets detailed information about a specific menu item.",
			Parameters: plugins.ObjectSchema(map[string]any{
				"item_name": plugins.StringProp("The name of the menu item to get information about."),
			}, "item_name"),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				return ItemInfo(plugins.StringArg(args, "item_name")), nil
			},
		},
	}
}

// ItemInfo renders the detail card for a menu item, or a not-found message
// pointing the customer back at the menu.
func ItemInfo(itemName string) string {
	detail, ok := itemDetails[strings.ToLower(itemName)]
	if !ok {
		return fmt.Sprintf("Sorry, I couldn't find information about '%s'. Please check the menu for available items.", itemName)
	}

	return fmt.Sprintf("%s:\nDescription: %s\nPrice: $%.2f\nIngredients: %s\nVegetarian: %s\nVegan: %s\nGluten-free Option: %s",
		titleCase(itemName),
		detail.Description,
		detail.Price,
		detail.Ingredients,
		yesNo(detail.Vegetarian),
		yesNo(detail.Vegan),
		yesNo(detail.GlutenFreeOption),
	)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// titleCase capitalizes each word, matching the menu's display names.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
