package model

import "time"

type Restaurant struct {
	ID        int       `json:"id"`
	OwnerID   int       `json:"owner_id"`
	Name      string    `json:"name"`
	Cuisine   string    `json:"cuisine"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Capacity  int       `json:"capacity"`
	OpenTime  string    `json:"open_time"`
	CloseTime string    `json:"close_time"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
