// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package host

import "testing"

func TestDefaultDirectoryLookups(t *testing.T) {
	d := DefaultDirectory()

	id, ok := d.RestaurantID("Spice Hub")
	if !ok || id != 1 {
		t.Errorf("Spice Hub should map to 1, got %d (%v)", id, ok)
	}

	// Case and whitespace insensitive
	if id, ok := d.RestaurantID("  spice hub "); !ok || id != 1 {
		t.Errorf("lookup should be case-insensitive, got %d (%v)", id, ok)
	}

	tests := []struct {
		name string
		want int
	}{
		{"Paneer Tikka", 1},
		{"Butter Naan", 2},
		{"Veg Biryani", 3},
	}
	for _, tt := range tests {
		if id, ok := d.ItemID(1, tt.name); !ok || id != tt.want {
			t.Errorf("ItemID(1, %q) = %d (%v), want %d", tt.name, id, ok, tt.want)
		}
	}

	if _, ok := d.RestaurantID("Sushi Spot"); ok {
		t.Error("unknown restaurant must not resolve")
	}
	if _, ok := d.ItemID(2, "Paneer Tikka"); ok {
		t.Error("dish names are scoped per restaurant")
	}
}

func TestItemIDsSplitsUnknowns(t *testing.T) {
	d := DefaultDirectory()

	ids, unknown := d.ItemIDs(1, []string{"Butter Naan", "Sushi Roll", "Paneer Tikka"})
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 1 {
		t.Errorf("expected [2 1], got %v", ids)
	}
	if len(unknown) != 1 || unknown[0] != "Sushi Roll" {
		t.Errorf("expected unknown [Sushi Roll], got %v", unknown)
	}
}
