// Package notificationsvc is the notification fan-out. Writes happen exactly
// once per lifecycle event; afterwards a notification only ever flips from
// unread to read, or is deleted by its receiver.
package notificationsvc

import (
	"context"
	"errors"

	"github.com/Rizwanwaseer11/homerental/model"
	notificationrepo "github.com/Rizwanwaseer11/homerental/repository/notification"
)

type ErrCode string

const ErrNotFound ErrCode = "NOT_FOUND"

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Row = repository shape
type Row = notificationrepo.Row

type Repo interface {
	Insert(ctx context.Context, n *model.Notification) error
	ListByReceiver(ctx context.Context, receiverID int64) ([]Row, error)
	CountUnread(ctx context.Context, receiverID int64) (int64, error)
	MarkRead(ctx context.Context, receiverID, id int64) (bool, error)
	MarkAllRead(ctx context.Context, receiverID int64) (int64, error)
	Delete(ctx context.Context, receiverID, id int64) (bool, error)
}

type Service interface {
	Emit(ctx context.Context, receiverID int64, propertyID, bookingID *int64, message string) error
	ListForUser(ctx context.Context, userID int64) ([]Row, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)

	// MarkRead is idempotent: re-reading an already-read notification is a
	// no-op, not an error.
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, userID, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Emit(ctx context.Context, receiverID int64, propertyID, bookingID *int64, message string) error {
	n := &model.Notification{
		ReceiverID: receiverID,
		PropertyID: propertyID,
		BookingID:  bookingID,
		Message:    message,
	}
	return s.r.Insert(ctx, n)
}

func (s *service) ListForUser(ctx context.Context, userID int64) ([]Row, error) {
	return s.r.ListByReceiver(ctx, userID)
}

func (s *service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.r.CountUnread(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, userID, id int64) error {
	ok, err := s.r.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return codedError{code: ErrNotFound}
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.r.MarkAllRead(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.r.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return codedError{code: ErrNotFound}
	}
	return nil
}
