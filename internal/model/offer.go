package model

import "time"

// Offer is a promotional deal attached to a restaurant. The placement
// flags decide where the storefront surfaces it; one offer can appear
// in several placements at once.
type Offer struct {
	ID           int       `json:"id"`
	RestaurantID int       `json:"restaurant_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DiscountPct  int       `json:"discount_pct"`
	Featured     bool      `json:"featured"`
	Banner       bool      `json:"banner"`
	Homepage     bool      `json:"homepage"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	CreatedAt    time.Time `json:"created_at"`
}
