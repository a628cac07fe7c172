package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepository backs the display-only admin dashboard counters.
type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

type PlatformStats struct {
	Users         int `json:"users"`
	Restaurants   int `json:"restaurants"`
	Offers        int `json:"offers"`
	Bookings      int `json:"bookings"`
	Notifications int `json:"notifications"`
}

func (r *StatsRepository) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	query := `
        SELECT
            (SELECT COUNT(*) FROM users),
            (SELECT COUNT(*) FROM restaurants),
            (SELECT COUNT(*) FROM offers),
            (SELECT COUNT(*) FROM bookings),
            (SELECT COUNT(*) FROM notifications)
    `
	var s PlatformStats
	err := r.db.QueryRow(ctx, query).Scan(
		&s.Users, &s.Restaurants, &s.Offers, &s.Bookings, &s.Notifications,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
