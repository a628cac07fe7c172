package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tableease/internal/model"
)

type BookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// InsertTx inserts a booking inside the caller's transaction so the
// confirmation event lands in the outbox atomically with the row.
func (r *BookingRepository) InsertTx(ctx context.Context, tx pgx.Tx, b *model.Booking) error {
	query := `
        INSERT INTO bookings (user_id, restaurant_id, party_size, booked_for, status, code, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, created_at
    `
	return tx.QueryRow(ctx, query,
		b.UserID, b.RestaurantID, b.PartySize, b.BookedFor, b.Status, b.Code,
	).Scan(&b.ID, &b.CreatedAt)
}

func (r *BookingRepository) GetByID(ctx context.Context, id int) (*model.Booking, error) {
	query := `
        SELECT id, user_id, restaurant_id, party_size, booked_for, status, code, created_at
        FROM bookings
        WHERE id = $1
    `
	var b model.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.RestaurantID, &b.PartySize, &b.BookedFor, &b.Status, &b.Code, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID int) ([]model.Booking, error) {
	query := `
        SELECT id, user_id, restaurant_id, party_size, booked_for, status, code, created_at
        FROM bookings
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

// ListByRestaurant returns bookings for an owner's restaurant.
func (r *BookingRepository) ListByRestaurant(ctx context.Context, restaurantID int) ([]model.Booking, error) {
	query := `
        SELECT id, user_id, restaurant_id, party_size, booked_for, status, code, created_at
        FROM bookings
        WHERE restaurant_id = $1
        ORDER BY booked_for DESC
    `
	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.db.Exec(ctx, `UPDATE bookings SET status = $1 WHERE id = $2`, status, id)
	return err
}

func scanBookings(rows pgx.Rows) ([]model.Booking, error) {
	var items []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.RestaurantID, &b.PartySize, &b.BookedFor, &b.Status, &b.Code, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
