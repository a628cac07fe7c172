package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tableease/internal/model"
)

type OfferRepository struct {
	db *pgxpool.Pool
}

func NewOfferRepository(db *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerColumns = `id, restaurant_id, title, description, discount_pct,
       featured, banner, homepage, starts_at, ends_at, created_at`

func (r *OfferRepository) Create(ctx context.Context, o *model.Offer) error {
	query := `
        INSERT INTO offers (restaurant_id, title, description, discount_pct,
            featured, banner, homepage, starts_at, ends_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRow(ctx, query,
		o.RestaurantID, o.Title, o.Description, o.DiscountPct,
		o.Featured, o.Banner, o.Homepage, o.StartsAt, o.EndsAt,
	).Scan(&o.ID, &o.CreatedAt)
}

// ListActive returns offers whose window covers now, optionally
// narrowed to a single placement flag.
func (r *OfferRepository) ListActive(ctx context.Context, placement string) ([]model.Offer, error) {
	query := `
        SELECT ` + offerColumns + `
        FROM offers
        WHERE starts_at <= NOW() AND ends_at >= NOW()
        AND ($1 = ''
            OR ($1 = 'featured' AND featured)
            OR ($1 = 'banner' AND banner)
            OR ($1 = 'homepage' AND homepage))
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, placement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOffers(rows)
}

// ListByRestaurant returns every offer for one restaurant, used by the
// owner dashboard.
func (r *OfferRepository) ListByRestaurant(ctx context.Context, restaurantID int) ([]model.Offer, error) {
	query := `
        SELECT ` + offerColumns + `
        FROM offers
        WHERE restaurant_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOffers(rows)
}

func (r *OfferRepository) GetByID(ctx context.Context, id int) (*model.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	var o model.Offer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.RestaurantID, &o.Title, &o.Description, &o.DiscountPct,
		&o.Featured, &o.Banner, &o.Homepage, &o.StartsAt, &o.EndsAt, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OfferRepository) Update(ctx context.Context, o *model.Offer) error {
	query := `
        UPDATE offers
        SET title = $1, description = $2, discount_pct = $3,
            featured = $4, banner = $5, homepage = $6, starts_at = $7, ends_at = $8
        WHERE id = $9
    `
	_, err := r.db.Exec(ctx, query,
		o.Title, o.Description, o.DiscountPct,
		o.Featured, o.Banner, o.Homepage, o.StartsAt, o.EndsAt, o.ID,
	)
	return err
}

func (r *OfferRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	return err
}

func scanOffers(rows pgx.Rows) ([]model.Offer, error) {
	var items []model.Offer
	for rows.Next() {
		var o model.Offer
		if err := rows.Scan(
			&o.ID, &o.RestaurantID, &o.Title, &o.Description, &o.DiscountPct,
			&o.Featured, &o.Banner, &o.Homepage, &o.StartsAt, &o.EndsAt, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}
