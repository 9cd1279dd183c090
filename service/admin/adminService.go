// Package adminsvc backs the admin moderation surface: the dashboard and
// manual approve/reject of pending listings. Decisions use the same atomic
// conditional update the sweeper uses, so a racing sweep cannot double-apply.
package adminsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/Rizwanwaseer11/homerental/mail"
	"github.com/Rizwanwaseer11/homerental/model"
	bookingrepo "github.com/Rizwanwaseer11/homerental/repository/booking"
	propertyrepo "github.com/Rizwanwaseer11/homerental/repository/property"
)

type ErrCode string

const (
	ErrNotFound   ErrCode = "NOT_FOUND"
	ErrNotPending ErrCode = "NOT_PENDING"
)

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

type Properties interface {
	ByID(ctx context.Context, id int64) (*model.Property, error)
	List(ctx context.Context, f propertyrepo.Filter) ([]model.Property, int64, error)
	UpdateStatusIf(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type Bookings interface {
	ListAll(ctx context.Context) ([]bookingrepo.HistoryRow, error)
}

type Notifier interface {
	Emit(ctx context.Context, receiverID int64, propertyID, bookingID *int64, message string) error
}

type Dashboard struct {
	PendingProperties []model.Property         `json:"pending_properties"`
	Users             []model.User             `json:"users"`
	Bookings          []bookingrepo.HistoryRow `json:"bookings"`
}

type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	ApproveProperty(ctx context.Context, id int64) error
	RejectProperty(ctx context.Context, id int64) error
}

type service struct {
	properties Properties
	users      Users
	bookings   Bookings
	notifier   Notifier
	mailer     mail.Sender
	log        *slog.Logger
}

func New(p Properties, u Users, b Bookings, n Notifier, m mail.Sender, log *slog.Logger) Service {
	return &service{properties: p, users: u, bookings: b, notifier: n, mailer: m, log: log}
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	pending, _, err := s.properties.List(ctx, propertyrepo.Filter{Status: model.PropertyPending, Limit: 100})
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{PendingProperties: pending, Users: users, Bookings: bookings}, nil
}

func (s *service) ApproveProperty(ctx context.Context, id int64) error {
	prop, err := s.decide(ctx, id, model.PropertyAvailable)
	if err != nil {
		return err
	}

	s.notify(ctx, prop,
		fmt.Sprintf("Your property %q has been approved and is now listed.", prop.Title))
	s.email(ctx, prop, "Property Approved - Home Rental", fmt.Sprintf(
		"<h2>Hello %%s,</h2><p>Good news! Your property <b>%s</b> has been approved by the admin.</p><p><b>Property ID:</b> %d</p><p>Your listing is now live and visible to renters.</p><p>— Home Rental Admin Team</p>",
		prop.Title, prop.ID))
	return nil
}

func (s *service) RejectProperty(ctx context.Context, id int64) error {
	prop, err := s.decide(ctx, id, model.PropertyRejected)
	if err != nil {
		return err
	}

	s.notify(ctx, prop,
		fmt.Sprintf("Your property %q has been rejected by the admin.", prop.Title))
	s.email(ctx, prop, "Property Rejected - Home Rental", fmt.Sprintf(
		"<h2>Hello %%s,</h2><p>We're sorry to inform you that your property <b>%s</b> has been rejected by the admin.</p><p><b>Property ID:</b> %d</p><p>Please review your listing and ensure all details meet our platform's requirements.</p><p>— Home Rental Admin Team</p>",
		prop.Title, prop.ID))
	return nil
}

func (s *service) decide(ctx context.Context, id int64, next model.PropertyStatus) (*model.Property, error) {
	prop, err := s.properties.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, codedError{code: ErrNotFound}
		}
		return nil, err
	}
	ok, err := s.properties.UpdateStatusIf(ctx, id, model.PropertyPending, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The sweeper or another admin already decided.
		return nil, codedError{code: ErrNotPending}
	}
	return prop, nil
}

func (s *service) notify(ctx context.Context, prop *model.Property, msg string) {
	if err := s.notifier.Emit(ctx, prop.OwnerID, &prop.ID, nil, msg); err != nil {
		s.log.Warn("admin notification failed", "property_id", prop.ID, "err", err)
	}
}

func (s *service) email(ctx context.Context, prop *model.Property, subject, bodyTmpl string) {
	owner, err := s.users.ByID(ctx, prop.OwnerID)
	if err != nil || owner.Email == "" {
		return
	}
	if err := s.mailer.Send(owner.Email, subject, fmt.Sprintf(bodyTmpl, owner.Name)); err != nil {
		s.log.Warn("admin email failed", "to", owner.Email, "err", err)
	}
}
