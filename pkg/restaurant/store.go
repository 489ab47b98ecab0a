// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package restaurant implements the restaurant agent: a SQLite-backed
// reference store, the deterministic estimation engine and the tool
// surfaces (A2A executor, MCP) built on them.
package restaurant

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jllopis/mealmesh/pkg/errors"
)

// Restaurant is a reference-store row. AvgPrepMinutes is nullable in the
// schema; the estimator treats null as 0.
type Restaurant struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	Cuisine        string `json:"cuisine"`
	AvgPrepMinutes *int   `json:"avg_prep_minutes"`
	IsOpen         bool   `json:"is_open"`
}

// MenuItem is a menu row. Identity is the composite (ID, RestaurantID).
type MenuItem struct {
	ID             int     `json:"id"`
	RestaurantID   int     `json:"restaurant_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	IsAvailable    bool    `json:"is_available"`
	AvgPrepMinutes *int    `json:"avg_prep_minutes"`
}

// SearchHit is one row of a free-text menu search.
type SearchHit struct {
	RestaurantID   int     `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	ItemID         int     `json:"item_id"`
	ItemName       string  `json:"item_name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
}

// Store gives read access to the reference data. The pool is bounded;
// every query releases its connection on all exit paths.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the SQLite reference store at path.
func OpenStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New(errors.CodeConfiguration, "reference store path is required", nil)
	}
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, errors.New(errors.CodeConfiguration, "failed to open reference store", err).
			WithContext("path", path)
	}
	db.SetMaxOpenConns(5)
	return &Store{db: db}, nil
}

// DSN appends the pragmas every pooled connection must carry.
// foreign_keys is per connection in SQLite; executing it once through
// the pool would leave it off on the other connections. busy_timeout and
// immediate transactions let concurrent writers queue instead of failing
// with SQLITE_BUSY.
func DSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
}

// NewStore wraps an existing database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying pool so other schemas (the task store) can
// share the same database file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS restaurants (
	id                  INTEGER PRIMARY KEY,
	name                TEXT NOT NULL,
	address             TEXT,
	cuisine             TEXT,
	avg_prep_minutes    INTEGER DEFAULT 20,
	is_open             BOOLEAN DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS menu_item (
	id                  INTEGER,
	restaurant_id       INTEGER NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	name                TEXT NOT NULL,
	description         TEXT,
	price               NUMERIC(10,2) NOT NULL,
	is_available        BOOLEAN DEFAULT TRUE,
	avg_prep_minutes    INTEGER DEFAULT 15,
	PRIMARY KEY (id, restaurant_id)
);
`

// Init creates the schema and seeds the reference rows when the tables
// are empty. Seeding is deterministic so tests and demos always see the
// same data.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM restaurants").Scan(&count); err != nil {
		return fmt.Errorf("count restaurants: %w", err)
	}
	if count > 0 {
		return nil
	}
	return s.seed(ctx)
}

func (s *Store) seed(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	restaurants := []struct {
		id      int
		name    string
		address string
		cuisine string
		prep    int
	}{
		{1, "Spice Hub", "MG Road, Bengaluru", "Indian", 25},
		{2, "Pizza Planet", "Indiranagar, Bengaluru", "Italian", 20},
		{3, "Burger Corner", "Brigade Road, Bengaluru", "Fast Food", 18},
	}
	for _, r := range restaurants {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO restaurants (id, name, address, cuisine, avg_prep_minutes, is_open)
			 VALUES (?, ?, ?, ?, ?, TRUE)`,
			r.id, r.name, r.address, r.cuisine, r.prep); err != nil {
			return fmt.Errorf("seed restaurant %d: %w", r.id, err)
		}
	}

	items := []struct {
		id           int
		restaurantID int
		name         string
		description  string
		price        float64
		prep         int
	}{
		{1, 1, "Paneer Tikka", "Grilled cottage cheese with spices", 280.00, 18},
		{2, 1, "Butter Naan", "Soft tandoori naan with butter", 60.00, 8},
		{3, 1, "Veg Biryani", "Aromatic rice with veggies and spices", 260.00, 25},
		{1, 2, "Margherita Pizza", "Classic cheese and tomato pizza", 350.00, 20},
		{2, 2, "Farmhouse Pizza", "Loaded with veggies and cheese", 420.00, 22},
		{3, 2, "Garlic Bread", "Toasted bread with garlic and herbs", 150.00, 10},
		{1, 3, "Veggie Burger", "Crispy patty with fresh veggies", 180.00, 12},
		{2, 3, "French Fries", "Crispy golden fries", 120.00, 8},
		{3, 3, "Cold Coffee", "Chilled coffee with ice cream", 160.00, 5},
	}
	for _, m := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO menu_item (id, restaurant_id, name, description, price, is_available, avg_prep_minutes)
			 VALUES (?, ?, ?, ?, ?, TRUE, ?)`,
			m.id, m.restaurantID, m.name, m.description, m.price, m.prep); err != nil {
			return fmt.Errorf("seed menu item (%d,%d): %w", m.id, m.restaurantID, err)
		}
	}

	return tx.Commit()
}

// ListRestaurants returns restaurants with an optional case-insensitive
// cuisine filter.
func (s *Store) ListRestaurants(ctx context.Context, cuisineFilter string, onlyOpen bool, limit int) ([]Restaurant, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT id, name, address, cuisine, avg_prep_minutes, is_open FROM restaurants WHERE 1=1`
	args := []any{}
	if cuisineFilter != "" {
		query += ` AND cuisine LIKE ? COLLATE NOCASE`
		args = append(args, "%"+cuisineFilter+"%")
	}
	if onlyOpen {
		query += ` AND is_open = TRUE`
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	var out []Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRestaurant returns a single restaurant, or nil when absent.
func (s *Store) GetRestaurant(ctx context.Context, restaurantID int) (*Restaurant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, cuisine, avg_prep_minutes, is_open FROM restaurants WHERE id = ?`,
		restaurantID)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	r, err := scanRestaurant(rows)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetMenu returns the menu of a restaurant ordered by item id.
func (s *Store) GetMenu(ctx context.Context, restaurantID int, onlyAvailable bool) ([]MenuItem, error) {
	query := `SELECT id, restaurant_id, name, description, price, is_available, avg_prep_minutes
		FROM menu_item WHERE restaurant_id = ?`
	if onlyAvailable {
		query += ` AND is_available = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}
	defer rows.Close()

	var out []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MenuItemsByIDs returns the menu items of a restaurant matching the
// given ids. Unknown ids simply produce no row.
func (s *Store) MenuItemsByIDs(ctx context.Context, restaurantID int, itemIDs []int) ([]MenuItem, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(itemIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(itemIDs)+1)
	args = append(args, restaurantID)
	for _, id := range itemIDs {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, restaurant_id, name, description, price, is_available, avg_prep_minutes
		 FROM menu_item WHERE restaurant_id = ? AND id IN (`+placeholders+`) ORDER BY id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("menu items by ids: %w", err)
	}
	defer rows.Close()

	var out []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SearchMenuItems searches available items of open restaurants by name
// and description.
func (s *Store) SearchMenuItems(ctx context.Context, text string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + text + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.name, m.id, m.name, COALESCE(m.description, ''), m.price
		 FROM menu_item m
		 JOIN restaurants r ON r.id = m.restaurant_id
		 WHERE (m.name LIKE ? COLLATE NOCASE OR m.description LIKE ? COLLATE NOCASE)
		   AND m.is_available = TRUE
		   AND r.is_open = TRUE
		 ORDER BY r.id, m.id
		 LIMIT ?`,
		pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search menu items: %w", err)
	}
	defer rows.Close()

	var out []SearchHit
	for rows.Next() {
		var hit SearchHit
		if err := rows.Scan(&hit.RestaurantID, &hit.RestaurantName, &hit.ItemID, &hit.ItemName, &hit.Description, &hit.Price); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		out = append(out, hit)
	}
	return out, rows.Err()
}

func scanRestaurant(rows *sql.Rows) (Restaurant, error) {
	var r Restaurant
	var address, cuisine sql.NullString
	var prep sql.NullInt64
	if err := rows.Scan(&r.ID, &r.Name, &address, &cuisine, &prep, &r.IsOpen); err != nil {
		return r, fmt.Errorf("scan restaurant: %w", err)
	}
	r.Address = address.String
	r.Cuisine = cuisine.String
	if prep.Valid {
		value := int(prep.Int64)
		r.AvgPrepMinutes = &value
	}
	return r, nil
}

func scanMenuItem(rows *sql.Rows) (MenuItem, error) {
	var m MenuItem
	var description sql.NullString
	var prep sql.NullInt64
	if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &description, &m.Price, &m.IsAvailable, &prep); err != nil {
		return m, fmt.Errorf("scan menu item: %w", err)
	}
	m.Description = description.String
	if prep.Valid {
		value := int(prep.Int64)
		m.AvgPrepMinutes = &value
	}
	return m, nil
}
