package model

import "time"

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	RestaurantID int       `json:"restaurant_id"`
	PartySize    int       `json:"party_size"`
	BookedFor    time.Time `json:"booked_for"`
	Status       string    `json:"status"`
	Code         string    `json:"code"`
	CreatedAt    time.Time `json:"created_at"`
}
