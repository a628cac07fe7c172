package mq

import "time"

// BookingConfirmedPayload is published when a booking is created and
// drives the notification fanout.
type BookingConfirmedPayload struct {
	BookingID      int       `json:"booking_id"`
	UserID         int       `json:"user_id"`
	RestaurantID   int       `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	PartySize      int       `json:"party_size"`
	BookedFor      time.Time `json:"booked_for"`
	Code           string    `json:"code"`
	CreatedAt      time.Time `json:"created_at"`
}

// Routing keys on the events exchange.
const (
	RoutingKeyBookingConfirmed = "booking.confirmed"
)
