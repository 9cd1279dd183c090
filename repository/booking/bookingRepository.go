// repository/booking/repo.go
package bookingrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Rizwanwaseer11/homerental/model"
	"github.com/Rizwanwaseer11/homerental/util/database"
)

// HistoryRow is a booking joined with display fields for list endpoints.
type HistoryRow struct {
	BookingID     int64               `json:"booking_id"`
	PropertyID    int64               `json:"property_id"`
	PropertyTitle string              `json:"property_title"`
	RenterID      int64               `json:"renter_id"`
	OwnerID       int64               `json:"owner_id"`
	Status        model.BookingStatus `json:"status"`
	Amount        float64             `json:"amount"`
	CreatedAt     time.Time           `json:"created_at"`
}

type Repo interface {
	Insert(ctx context.Context, b *model.Booking) error
	ByID(ctx context.Context, id int64) (*model.Booking, error)

	// FindActive returns the renter's pending or confirmed booking on the
	// property, or nil when there is none.
	FindActive(ctx context.Context, renterID, propertyID int64) (*model.Booking, error)

	// UpdateStatusIf is the atomic conditional transition; false means the
	// row no longer held the expected status at write time.
	UpdateStatusIf(ctx context.Context, id int64, expected, next model.BookingStatus) (bool, error)

	ListByRenter(ctx context.Context, renterID int64) ([]HistoryRow, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]HistoryRow, error)
	ListAll(ctx context.Context) ([]HistoryRow, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const bookingCols = `id, property_id, renter_id, owner_id, status,
	payment_amount, payment_method, payment_status, created_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	b := &model.Booking{}
	err := row.Scan(
		&b.ID, &b.PropertyID, &b.RenterID, &b.OwnerID, &b.Status,
		&b.Payment.Amount, &b.Payment.Method, &b.Payment.Status, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) Insert(ctx context.Context, b *model.Booking) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO bookings
			(property_id, renter_id, owner_id, status,
			 payment_amount, payment_method, payment_status)
		VALUES ($1,$2,$3,'pending',$4,$5,'unpaid')
		RETURNING id, status, payment_status, created_at`,
		b.PropertyID, b.RenterID, b.OwnerID, b.Payment.Amount, b.Payment.Method,
	).Scan(&b.ID, &b.Status, &b.Payment.Status, &b.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Booking, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

func (r *repo) FindActive(ctx context.Context, renterID, propertyID int64) (*model.Booking, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+bookingCols+`
		FROM bookings
		WHERE renter_id = $1 AND property_id = $2
		  AND status IN ('pending','confirmed')`,
		renterID, propertyID)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *repo) UpdateStatusIf(ctx context.Context, id int64, expected, next model.BookingStatus) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE bookings SET status = $3 WHERE id = $1 AND status = $2`,
		id, expected, next)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const historyQuery = `
	SELECT b.id, b.property_id, COALESCE(p.title, ''), b.renter_id, b.owner_id,
	       b.status, b.payment_amount, b.created_at
	FROM bookings b
	LEFT JOIN properties p ON p.id = b.property_id`

func (r *repo) ListByRenter(ctx context.Context, renterID int64) ([]HistoryRow, error) {
	return r.history(ctx, historyQuery+`
		WHERE b.renter_id = $1
		ORDER BY b.created_at DESC, b.id DESC`, renterID)
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64) ([]HistoryRow, error) {
	return r.history(ctx, historyQuery+`
		WHERE b.owner_id = $1
		ORDER BY b.created_at DESC, b.id DESC`, ownerID)
}

func (r *repo) ListAll(ctx context.Context) ([]HistoryRow, error) {
	return r.history(ctx, historyQuery+` ORDER BY b.created_at DESC, b.id DESC`)
}

func (r *repo) history(ctx context.Context, q string, args ...any) ([]HistoryRow, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(
			&h.BookingID, &h.PropertyID, &h.PropertyTitle, &h.RenterID, &h.OwnerID,
			&h.Status, &h.Amount, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
