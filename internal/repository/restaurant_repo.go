package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"tableease/internal/model"
)

type RestaurantRepository struct {
	db *pgxpool.Pool
}

func NewRestaurantRepository(db *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

func (r *RestaurantRepository) Create(ctx context.Context, rest *model.Restaurant) error {
	query := `
        INSERT INTO restaurants (owner_id, name, cuisine, address, city, capacity, open_time, close_time, active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRow(ctx, query,
		rest.OwnerID, rest.Name, rest.Cuisine, rest.Address, rest.City,
		rest.Capacity, rest.OpenTime, rest.CloseTime, rest.Active,
	).Scan(&rest.ID, &rest.CreatedAt)
}

// List returns active restaurants, optionally filtered by city.
func (r *RestaurantRepository) List(ctx context.Context, city string) ([]model.Restaurant, error) {
	query := `
        SELECT id, owner_id, name, cuisine, address, city, capacity, open_time, close_time, active, created_at
        FROM restaurants
        WHERE active = TRUE AND ($1 = '' OR city = $1)
        ORDER BY name ASC
    `
	rows, err := r.db.Query(ctx, query, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Restaurant
	for rows.Next() {
		var rest model.Restaurant
		if err := rows.Scan(
			&rest.ID, &rest.OwnerID, &rest.Name, &rest.Cuisine, &rest.Address, &rest.City,
			&rest.Capacity, &rest.OpenTime, &rest.CloseTime, &rest.Active, &rest.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, rest)
	}
	return items, rows.Err()
}

func (r *RestaurantRepository) GetByID(ctx context.Context, id int) (*model.Restaurant, error) {
	query := `
        SELECT id, owner_id, name, cuisine, address, city, capacity, open_time, close_time, active, created_at
        FROM restaurants
        WHERE id = $1
    `
	var rest model.Restaurant
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rest.ID, &rest.OwnerID, &rest.Name, &rest.Cuisine, &rest.Address, &rest.City,
		&rest.Capacity, &rest.OpenTime, &rest.CloseTime, &rest.Active, &rest.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *RestaurantRepository) Update(ctx context.Context, rest *model.Restaurant) error {
	query := `
        UPDATE restaurants
        SET name = $1, cuisine = $2, address = $3, city = $4, capacity = $5,
            open_time = $6, close_time = $7, active = $8
        WHERE id = $9
    `
	_, err := r.db.Exec(ctx, query,
		rest.Name, rest.Cuisine, rest.Address, rest.City, rest.Capacity,
		rest.OpenTime, rest.CloseTime, rest.Active, rest.ID,
	)
	return err
}

func (r *RestaurantRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
	return err
}
