// repository/cart/repo.go
package cartrepo

import (
	"context"
	"time"

	"github.com/Rizwanwaseer11/homerental/util/database"
)

type Row struct {
	PropertyID int64     `json:"property_id"`
	Title      string    `json:"title"`
	Price      float64   `json:"price"`
	City       string    `json:"city"`
	Status     string    `json:"status"`
	AddedAt    time.Time `json:"added_at"`
}

type Repo interface {
	// Add returns false when the property was already in the cart.
	Add(ctx context.Context, renterID, propertyID int64) (bool, error)
	Remove(ctx context.Context, renterID, propertyID int64) error
	ListByRenter(ctx context.Context, renterID int64) ([]Row, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Add(ctx context.Context, renterID, propertyID int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO cart_items (renter_id, property_id)
		VALUES ($1,$2)
		ON CONFLICT (renter_id, property_id) DO NOTHING`,
		renterID, propertyID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) Remove(ctx context.Context, renterID, propertyID int64) error {
	_, err := r.db.Pool.Exec(ctx, `
		DELETE FROM cart_items WHERE renter_id = $1 AND property_id = $2`,
		renterID, propertyID)
	return err
}

func (r *repo) ListByRenter(ctx context.Context, renterID int64) ([]Row, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT c.property_id, p.title, p.price, p.city, p.status, c.added_at
		FROM cart_items c
		JOIN properties p ON p.id = c.property_id
		WHERE c.renter_id = $1
		ORDER BY c.added_at DESC`,
		renterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.PropertyID, &row.Title, &row.Price, &row.City, &row.Status, &row.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
