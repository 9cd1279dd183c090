// repository/notification/repo.go
package notificationrepo

import (
	"context"
	"time"

	"github.com/Rizwanwaseer11/homerental/model"
	"github.com/Rizwanwaseer11/homerental/util/database"
)

// Row is a notification with its referenced property and booking resolved
// for display. Either reference may have been deleted since the
// notification was written, in which case the resolved fields stay nil.
type Row struct {
	ID            int64                    `json:"id"`
	Message       string                   `json:"message"`
	Status        model.NotificationStatus `json:"status"`
	PropertyID    *int64                   `json:"property_id,omitempty"`
	PropertyTitle *string                  `json:"property_title,omitempty"`
	BookingID     *int64                   `json:"booking_id,omitempty"`
	BookingStatus *model.BookingStatus     `json:"booking_status,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

type Repo interface {
	Insert(ctx context.Context, n *model.Notification) error
	ListByReceiver(ctx context.Context, receiverID int64) ([]Row, error)
	CountUnread(ctx context.Context, receiverID int64) (int64, error)

	// MarkRead and Delete are scoped to the receiver; false means no row
	// belonged to them with that id.
	MarkRead(ctx context.Context, receiverID, id int64) (bool, error)
	MarkAllRead(ctx context.Context, receiverID int64) (int64, error)
	Delete(ctx context.Context, receiverID, id int64) (bool, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, n *model.Notification) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO notifications (receiver_id, property_id, booking_id, message, status)
		VALUES ($1,$2,$3,$4,'unread')
		RETURNING id, status, created_at`,
		n.ReceiverID, n.PropertyID, n.BookingID, n.Message,
	).Scan(&n.ID, &n.Status, &n.CreatedAt)
}

func (r *repo) ListByReceiver(ctx context.Context, receiverID int64) ([]Row, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT n.id, n.message, n.status,
		       p.id, p.title,
		       b.id, b.status,
		       n.created_at
		FROM notifications n
		LEFT JOIN properties p ON p.id = n.property_id
		LEFT JOIN bookings  b ON b.id = n.booking_id
		WHERE n.receiver_id = $1
		ORDER BY n.created_at DESC, n.id DESC`,
		receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.ID, &row.Message, &row.Status,
			&row.PropertyID, &row.PropertyTitle,
			&row.BookingID, &row.BookingStatus,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) CountUnread(ctx context.Context, receiverID int64) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*) FROM notifications
		WHERE receiver_id = $1 AND status = 'unread'`,
		receiverID,
	).Scan(&n)
	return n, err
}

func (r *repo) MarkRead(ctx context.Context, receiverID, id int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE notifications SET status = 'read'
		WHERE id = $1 AND receiver_id = $2`,
		id, receiverID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) MarkAllRead(ctx context.Context, receiverID int64) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE notifications SET status = 'read'
		WHERE receiver_id = $1 AND status = 'unread'`,
		receiverID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repo) Delete(ctx context.Context, receiverID, id int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM notifications WHERE id = $1 AND receiver_id = $2`,
		id, receiverID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
