// repository/property/repo.go
package propertyrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rizwanwaseer11/homerental/model"
	"github.com/Rizwanwaseer11/homerental/util/database"
)

// Filter narrows List. Zero values mean "no constraint".
type Filter struct {
	Q              string
	City           string
	Category       string
	MinPrice       float64
	MaxPrice       float64
	OwnerID        int64
	Status         model.PropertyStatus
	ExcludePending bool
	Page           int
	Limit          int
}

type Repo interface {
	Create(ctx context.Context, p *model.Property) error
	ByID(ctx context.Context, id int64) (*model.Property, error)
	Update(ctx context.Context, p *model.Property) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]model.Property, int64, error)
	AddImages(ctx context.Context, id int64, paths []string) error

	// UpdateStatusIf sets status to next only while the row still holds
	// expected. Returns false when the conditional write lost.
	UpdateStatusIf(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error)
	FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]model.Property, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const propertyCols = `id, owner_id, title, description, category, price, rent_type,
	bedrooms, bathrooms, amenities, city, state, address, full_location,
	images, featured, status, created_at`

func scanProperty(row interface{ Scan(...any) error }) (*model.Property, error) {
	p := &model.Property{}
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Category, &p.Price, &p.RentType,
		&p.Bedrooms, &p.Bathrooms, &p.Amenities,
		&p.Location.City, &p.Location.State, &p.Location.Address, &p.Location.FullLocation,
		&p.Images, &p.Featured, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repo) Create(ctx context.Context, p *model.Property) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO properties
			(owner_id, title, description, category, price, rent_type,
			 bedrooms, bathrooms, amenities, city, state, address, full_location,
			 images, featured, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,'pending')
		RETURNING id, status, created_at`,
		p.OwnerID, p.Title, p.Description, p.Category, p.Price, p.RentType,
		p.Bedrooms, p.Bathrooms, p.Amenities,
		p.Location.City, p.Location.State, p.Location.Address, p.Location.FullLocation,
		p.Images, p.Featured,
	).Scan(&p.ID, &p.Status, &p.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Property, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+propertyCols+` FROM properties WHERE id = $1`, id)
	return scanProperty(row)
}

func (r *repo) Update(ctx context.Context, p *model.Property) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE properties SET
			title=$2, description=$3, category=$4, price=$5, rent_type=$6,
			bedrooms=$7, bathrooms=$8, amenities=$9,
			city=$10, state=$11, address=$12, full_location=$13,
			images=$14, featured=$15
		WHERE id=$1`,
		p.ID, p.Title, p.Description, p.Category, p.Price, p.RentType,
		p.Bedrooms, p.Bathrooms, p.Amenities,
		p.Location.City, p.Location.State, p.Location.Address, p.Location.FullLocation,
		p.Images, p.Featured,
	)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	return err
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.Property, int64, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.OwnerID > 0 {
		add("owner_id = $%d", f.OwnerID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.ExcludePending {
		conds = append(conds, "status <> 'pending'")
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.City != "" {
		add("city = $%d", f.City)
	}
	if f.MinPrice > 0 {
		add("price >= $%d", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		add("price <= $%d", f.MaxPrice)
	}
	if f.Q != "" {
		add("to_tsvector('english', title || ' ' || description) @@ plainto_tsquery('english', $%d)", f.Q)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM properties`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 12
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	q := `SELECT ` + propertyCols + ` FROM properties` + where +
		fmt.Sprintf(` ORDER BY featured DESC, created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *repo) AddImages(ctx context.Context, id int64, paths []string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE properties SET images = images || $2 WHERE id = $1`, id, paths)
	return err
}

func (r *repo) UpdateStatusIf(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE properties SET status = $3 WHERE id = $1 AND status = $2`,
		id, expected, next)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]model.Property, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+propertyCols+` FROM properties
		 WHERE status = 'pending' AND created_at <= $1
		 ORDER BY created_at`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
