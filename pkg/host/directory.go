// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package host

import "strings"

// Directory maps human-readable restaurant and dish names to the
// numeric identifiers the restaurant agent understands. End users speak
// in names; identifiers stay internal. Lookups are case-insensitive.
type Directory struct {
	restaurants map[string]int
	items       map[int]map[string]int
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		restaurants: make(map[string]int),
		items:       make(map[int]map[string]int),
	}
}

// DefaultDirectory returns the directory for the seeded reference data.
func DefaultDirectory() *Directory {
	d := NewDirectory()
	d.AddRestaurant("Spice Hub", 1)
	d.AddItem(1, "Paneer Tikka", 1)
	d.AddItem(1, "Butter Naan", 2)
	d.AddItem(1, "Veg Biryani", 3)
	d.AddRestaurant("Pizza Planet", 2)
	d.AddRestaurant("Burger Corner", 3)
	return d
}

// AddRestaurant registers a restaurant name.
func (d *Directory) AddRestaurant(name string, id int) {
	d.restaurants[normalizeName(name)] = id
}

// AddItem registers a dish name under a restaurant.
func (d *Directory) AddItem(restaurantID int, name string, itemID int) {
	menu, ok := d.items[restaurantID]
	if !ok {
		menu = make(map[string]int)
		d.items[restaurantID] = menu
	}
	menu[normalizeName(name)] = itemID
}

// RestaurantID looks up a restaurant by name.
func (d *Directory) RestaurantID(name string) (int, bool) {
	id, ok := d.restaurants[normalizeName(name)]
	return id, ok
}

// ItemID looks up a dish by name within a restaurant's menu.
func (d *Directory) ItemID(restaurantID int, name string) (int, bool) {
	menu, ok := d.items[restaurantID]
	if !ok {
		return 0, false
	}
	id, ok := menu[normalizeName(name)]
	return id, ok
}

// ItemIDs maps a sequence of dish names to ids, preserving order.
// Unknown names are returned separately so the caller can decide how to
// surface them.
func (d *Directory) ItemIDs(restaurantID int, names []string) (ids []int, unknown []string) {
	for _, name := range names {
		if id, ok := d.ItemID(restaurantID, name); ok {
			ids = append(ids, id)
		} else {
			unknown = append(unknown, name)
		}
	}
	return ids, unknown
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
