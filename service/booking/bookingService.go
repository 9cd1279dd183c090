// Package bookingsvc is the booking lifecycle engine. It is the only writer
// of Booking.status and the only component that moves a property between
// available and rented. Every transition is an atomic conditional update;
// a lost race is retried once against re-read state before it surfaces as a
// transition error.
package bookingsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Rizwanwaseer11/homerental/mail"
	"github.com/Rizwanwaseer11/homerental/model"
	"github.com/Rizwanwaseer11/homerental/queue"
	bookingrepo "github.com/Rizwanwaseer11/homerental/repository/booking"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound            ErrCode = "NOT_FOUND"
	ErrNotOwner            ErrCode = "NOT_OWNER"
	ErrNotRenter           ErrCode = "NOT_RENTER"
	ErrNotPending          ErrCode = "NOT_PENDING"
	ErrPropertyUnavailable ErrCode = "PROPERTY_UNAVAILABLE"
	ErrDuplicateBooking    ErrCode = "DUPLICATE_BOOKING"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the error code, or "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// DuplicateError carries the renter's existing active booking so the caller
// can surface it instead of a bare error.
type DuplicateError struct{ Existing *model.Booking }

func (e *DuplicateError) Error() string { return string(ErrDuplicateBooking) }
func (e *DuplicateError) Code() ErrCode { return ErrDuplicateBooking }

// HistoryRow = repository shape
type HistoryRow = bookingrepo.HistoryRow

type Bookings interface {
	Insert(ctx context.Context, b *model.Booking) error
	ByID(ctx context.Context, id int64) (*model.Booking, error)
	FindActive(ctx context.Context, renterID, propertyID int64) (*model.Booking, error)
	UpdateStatusIf(ctx context.Context, id int64, expected, next model.BookingStatus) (bool, error)
	ListByRenter(ctx context.Context, renterID int64) ([]HistoryRow, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]HistoryRow, error)
}

type Properties interface {
	ByID(ctx context.Context, id int64) (*model.Property, error)
	UpdateStatusIf(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

// Notifier records a user-facing notification. Failures are logged by this
// service and never fail the lifecycle operation.
type Notifier interface {
	Emit(ctx context.Context, receiverID int64, propertyID, bookingID *int64, message string) error
}

type Service interface {
	// Request creates a pending booking on an available property. The
	// property stays available until the owner decides.
	Request(ctx context.Context, renterID, propertyID int64, method string) (*model.Booking, error)

	// Approve confirms a pending booking and marks the property rented.
	Approve(ctx context.Context, ownerID, bookingID int64) (*model.Booking, error)

	// Reject declines a pending booking and leaves the property available.
	Reject(ctx context.Context, ownerID, bookingID int64) (*model.Booking, error)

	// Cancel lets the renter withdraw a booking that is still pending.
	Cancel(ctx context.Context, renterID, bookingID int64) (*model.Booking, error)

	Detail(ctx context.Context, userID, bookingID int64) (*model.Booking, error)
	ListForRenter(ctx context.Context, renterID int64) ([]HistoryRow, error)
	ListForOwner(ctx context.Context, ownerID int64) ([]HistoryRow, error)
}

// ----- Service implementation -----

type service struct {
	bookings   Bookings
	properties Properties
	users      Users
	notifier   Notifier
	mailer     mail.Sender
	events     queue.Publisher
	log        *slog.Logger
}

func New(b Bookings, p Properties, u Users, n Notifier, m mail.Sender, ev queue.Publisher, log *slog.Logger) Service {
	return &service{bookings: b, properties: p, users: u, notifier: n, mailer: m, events: ev, log: log}
}

func (s *service) Request(ctx context.Context, renterID, propertyID int64, method string) (*model.Booking, error) {
	prop, err := s.properties.ByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if prop.Status != model.PropertyAvailable {
		return nil, makeErr(ErrPropertyUnavailable)
	}

	existing, err := s.bookings.FindActive(ctx, renterID, propertyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateError{Existing: existing}
	}

	if method == "" {
		method = "offline"
	}
	b := &model.Booking{
		PropertyID: propertyID,
		RenterID:   renterID,
		OwnerID:    prop.OwnerID,
		Payment:    model.Payment{Amount: prop.Price, Method: method},
	}
	if err := s.bookings.Insert(ctx, b); err != nil {
		// Two concurrent requests for the same pair: the partial unique
		// index rejects the loser, who then surfaces the winner's booking.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if existing, ferr := s.bookings.FindActive(ctx, renterID, propertyID); ferr == nil && existing != nil {
				return nil, &DuplicateError{Existing: existing}
			}
		}
		return nil, err
	}

	s.notify(ctx, prop.OwnerID, &prop.ID, &b.ID,
		fmt.Sprintf("New booking request for your property: %s", prop.Title))
	if owner, err := s.users.ByID(ctx, prop.OwnerID); err == nil {
		s.email(owner.Email, "New Booking Request Received", fmt.Sprintf(
			"<h2>Hello %s,</h2><p>You have received a new booking request for your property: <b>%s</b>.</p><p><b>Booking ID:</b> %d</p><p>Visit your dashboard to review and approve or reject the booking.</p><p>— Home Rental System</p>",
			owner.Name, prop.Title, b.ID))
	}
	s.publish(ctx, queue.BookingRequested, b)

	return b, nil
}

func (s *service) Approve(ctx context.Context, ownerID, bookingID int64) (*model.Booking, error) {
	b, prop, err := s.loadForDecision(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.casBooking(ctx, b.ID, model.BookingPending, model.BookingConfirmed); err != nil {
		return nil, err
	}
	b.Status = model.BookingConfirmed

	if err := s.casProperty(ctx, prop.ID, model.PropertyAvailable, model.PropertyRented); err != nil {
		return nil, err
	}

	s.notify(ctx, b.RenterID, &prop.ID, &b.ID,
		fmt.Sprintf("Your booking for %s has been approved!", prop.Title))
	s.emailDecision(ctx, b, "Booking Approved", fmt.Sprintf(
		"<h2>Good news, %%s!</h2><p>Your booking for <b>%s</b> has been approved by the owner.</p><p><b>Booking ID:</b> %d</p><p>Please contact the owner to proceed further.</p><p>— Home Rental System</p>",
		prop.Title, b.ID))
	s.publish(ctx, queue.BookingApproved, b)

	return b, nil
}

func (s *service) Reject(ctx context.Context, ownerID, bookingID int64) (*model.Booking, error) {
	b, prop, err := s.loadForDecision(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.casBooking(ctx, b.ID, model.BookingPending, model.BookingRejected); err != nil {
		return nil, err
	}
	b.Status = model.BookingRejected

	// A property only becomes rented at approval, so this is a defensive
	// reset and a no-op for a still-available property.
	if _, err := s.properties.UpdateStatusIf(ctx, prop.ID, model.PropertyRented, model.PropertyAvailable); err != nil {
		s.log.Warn("property reset after reject failed", "property_id", prop.ID, "err", err)
	}

	s.notify(ctx, b.RenterID, &prop.ID, &b.ID,
		fmt.Sprintf("Your booking for %s has been rejected.", prop.Title))
	s.emailDecision(ctx, b, "Booking Rejected", fmt.Sprintf(
		"<h2>Hello %%s,</h2><p>Unfortunately, your booking for <b>%s</b> has been rejected by the owner.</p><p><b>Booking ID:</b> %d</p><p>We encourage you to explore other available properties on our platform.</p><p>— Home Rental System</p>",
		prop.Title, b.ID))
	s.publish(ctx, queue.BookingRejected, b)

	return b, nil
}

func (s *service) Cancel(ctx context.Context, renterID, bookingID int64) (*model.Booking, error) {
	b, err := s.bookings.ByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if b.RenterID != renterID {
		return nil, makeErr(ErrNotRenter)
	}

	if err := s.casBooking(ctx, b.ID, model.BookingPending, model.BookingCancelled); err != nil {
		return nil, err
	}
	b.Status = model.BookingCancelled
	s.publish(ctx, queue.BookingCancelled, b)

	return b, nil
}

func (s *service) Detail(ctx context.Context, userID, bookingID int64) (*model.Booking, error) {
	b, err := s.bookings.ByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if b.RenterID != userID && b.OwnerID != userID {
		return nil, makeErr(ErrNotOwner)
	}
	return b, nil
}

func (s *service) ListForRenter(ctx context.Context, renterID int64) ([]HistoryRow, error) {
	return s.bookings.ListByRenter(ctx, renterID)
}

func (s *service) ListForOwner(ctx context.Context, ownerID int64) ([]HistoryRow, error) {
	return s.bookings.ListByOwner(ctx, ownerID)
}

// loadForDecision fetches the booking and its property and checks the caller
// owns the property.
func (s *service) loadForDecision(ctx context.Context, ownerID, bookingID int64) (*model.Booking, *model.Property, error) {
	b, err := s.bookings.ByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, makeErr(ErrNotFound)
		}
		return nil, nil, err
	}
	prop, err := s.properties.ByID(ctx, b.PropertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, makeErr(ErrNotFound)
		}
		return nil, nil, err
	}
	if prop.OwnerID != ownerID {
		return nil, nil, makeErr(ErrNotOwner)
	}
	return b, prop, nil
}

// casBooking moves the booking expected→next. A conditional write that
// loses is retried once against re-read state; a second loss means the
// booking genuinely left the expected status.
func (s *service) casBooking(ctx context.Context, id int64, expected, next model.BookingStatus) error {
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.bookings.UpdateStatusIf(ctx, id, expected, next)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		cur, err := s.bookings.ByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		if cur.Status != expected {
			return makeErr(ErrNotPending)
		}
	}
	return makeErr(ErrNotPending)
}

func (s *service) casProperty(ctx context.Context, id int64, expected, next model.PropertyStatus) error {
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.properties.UpdateStatusIf(ctx, id, expected, next)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		cur, err := s.properties.ByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		if cur.Status == next {
			// Already in the target state, nothing left to do.
			return nil
		}
		if cur.Status != expected {
			return makeErr(ErrPropertyUnavailable)
		}
	}
	return makeErr(ErrPropertyUnavailable)
}

func (s *service) notify(ctx context.Context, receiverID int64, propertyID, bookingID *int64, msg string) {
	if err := s.notifier.Emit(ctx, receiverID, propertyID, bookingID, msg); err != nil {
		s.log.Warn("notification emit failed", "receiver_id", receiverID, "err", err)
	}
}

func (s *service) email(to, subject, html string) {
	if to == "" {
		return
	}
	if err := s.mailer.Send(to, subject, html); err != nil {
		s.log.Warn("email send failed", "to", to, "subject", subject, "err", err)
	}
}

// emailDecision mails the renter; the body template has one %s left for the
// renter's name.
func (s *service) emailDecision(ctx context.Context, b *model.Booking, subject, bodyTmpl string) {
	renter, err := s.users.ByID(ctx, b.RenterID)
	if err != nil {
		s.log.Warn("renter lookup for email failed", "renter_id", b.RenterID, "err", err)
		return
	}
	s.email(renter.Email, subject, fmt.Sprintf(bodyTmpl, renter.Name))
}

func (s *service) publish(ctx context.Context, kind string, b *model.Booking) {
	ev := queue.BookingEvent{
		Kind:       kind,
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		RenterID:   b.RenterID,
		OwnerID:    b.OwnerID,
		Amount:     b.Payment.Amount,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishBooking(ctx, ev); err != nil {
		s.log.Warn("event publish failed", "kind", kind, "booking_id", b.ID, "err", err)
	}
}
