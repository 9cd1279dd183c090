package bookingsvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/Rizwanwaseer11/homerental/model"
	"github.com/Rizwanwaseer11/homerental/queue"
)

// --- mocks ---

type mockBookings struct {
	insertFn       func(ctx context.Context, b *model.Booking) error
	byIDFn         func(ctx context.Context, id int64) (*model.Booking, error)
	findActiveFn   func(ctx context.Context, renterID, propertyID int64) (*model.Booking, error)
	updateStatusFn func(ctx context.Context, id int64, expected, next model.BookingStatus) (bool, error)
	listRenterFn   func(ctx context.Context, renterID int64) ([]HistoryRow, error)
	listOwnerFn    func(ctx context.Context, ownerID int64) ([]HistoryRow, error)
}

var _ Bookings = (*mockBookings)(nil)

func (m *mockBookings) Insert(ctx context.Context, b *model.Booking) error {
	if m.insertFn == nil {
		b.ID = 1
		b.Status = model.BookingPending
		return nil
	}
	return m.insertFn(ctx, b)
}

func (m *mockBookings) ByID(ctx context.Context, id int64) (*model.Booking, error) {
	if m.byIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.byIDFn(ctx, id)
}

func (m *mockBookings) FindActive(ctx context.Context, renterID, propertyID int64) (*model.Booking, error) {
	if m.findActiveFn == nil {
		return nil, nil
	}
	return m.findActiveFn(ctx, renterID, propertyID)
}

func (m *mockBookings) UpdateStatusIf(ctx context.Context, id int64, expected, next model.BookingStatus) (bool, error) {
	if m.updateStatusFn == nil {
		return true, nil
	}
	return m.updateStatusFn(ctx, id, expected, next)
}

func (m *mockBookings) ListByRenter(ctx context.Context, renterID int64) ([]HistoryRow, error) {
	if m.listRenterFn == nil {
		return nil, nil
	}
	return m.listRenterFn(ctx, renterID)
}

func (m *mockBookings) ListByOwner(ctx context.Context, ownerID int64) ([]HistoryRow, error) {
	if m.listOwnerFn == nil {
		return nil, nil
	}
	return m.listOwnerFn(ctx, ownerID)
}

type mockProperties struct {
	byIDFn         func(ctx context.Context, id int64) (*model.Property, error)
	updateStatusFn func(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error)
}

var _ Properties = (*mockProperties)(nil)

func (m *mockProperties) ByID(ctx context.Context, id int64) (*model.Property, error) {
	if m.byIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.byIDFn(ctx, id)
}

func (m *mockProperties) UpdateStatusIf(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error) {
	if m.updateStatusFn == nil {
		return true, nil
	}
	return m.updateStatusFn(ctx, id, expected, next)
}

type mockUsers struct {
	byIDFn func(ctx context.Context, id int64) (*model.User, error)
}

var _ Users = (*mockUsers)(nil)

func (m *mockUsers) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return &model.User{ID: id, Name: "Someone", Email: "someone@example.com"}, nil
	}
	return m.byIDFn(ctx, id)
}

type recordedNotice struct {
	receiverID int64
	message    string
}

type mockNotifier struct {
	emitErr error
	notices []recordedNotice
}

var _ Notifier = (*mockNotifier)(nil)

func (m *mockNotifier) Emit(ctx context.Context, receiverID int64, propertyID, bookingID *int64, message string) error {
	if m.emitErr != nil {
		return m.emitErr
	}
	m.notices = append(m.notices, recordedNotice{receiverID: receiverID, message: message})
	return nil
}

type recordingMailer struct {
	sent []string // "to|subject"
}

func (m *recordingMailer) Send(to, subject, html string) error {
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

type recordingPublisher struct {
	events []queue.BookingEvent
}

func (p *recordingPublisher) PublishBooking(_ context.Context, ev queue.BookingEvent) error {
	p.events = append(p.events, ev)
	return nil
}

type deps struct {
	bookings   *mockBookings
	properties *mockProperties
	users      *mockUsers
	notifier   *mockNotifier
	mailer     *recordingMailer
	events     *recordingPublisher
}

func newService(d *deps) Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(d.bookings, d.properties, d.users, d.notifier, d.mailer, d.events, log)
}

func defaultDeps() *deps {
	return &deps{
		bookings:   &mockBookings{},
		properties: &mockProperties{},
		users:      &mockUsers{},
		notifier:   &mockNotifier{},
		mailer:     &recordingMailer{},
		events:     &recordingPublisher{},
	}
}

func availableProperty() *model.Property {
	return &model.Property{
		ID:      10,
		OwnerID: 2,
		Title:   "Cozy Cottage",
		Price:   1200,
		Status:  model.PropertyAvailable,
	}
}

// --- Request ---

func TestRequest_Success(t *testing.T) {
	ctx := context.Background()
	d := defaultDeps()
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		require.Equal(t, int64(10), id)
		return availableProperty(), nil
	}
	d.bookings.insertFn = func(ctx context.Context, b *model.Booking) error {
		b.ID = 77
		b.Status = model.BookingPending
		return nil
	}
	svc := newService(d)

	b, err := svc.Request(ctx, 1, 10, "card")
	require.NoError(t, err)
	require.Equal(t, int64(77), b.ID)
	require.Equal(t, model.BookingPending, b.Status)
	require.Equal(t, int64(1), b.RenterID)
	require.Equal(t, int64(2), b.OwnerID)
	require.Equal(t, float64(1200), b.Payment.Amount)
	require.Equal(t, "card", b.Payment.Method)

	require.Len(t, d.notifier.notices, 1)
	require.Equal(t, int64(2), d.notifier.notices[0].receiverID)
	require.Contains(t, d.notifier.notices[0].message, "Cozy Cottage")

	require.Len(t, d.events.events, 1)
	require.Equal(t, queue.BookingRequested, d.events.events[0].Kind)

	require.Len(t, d.mailer.sent, 1)
}

func TestRequest_DefaultsMethodOffline(t *testing.T) {
	d := defaultDeps()
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		return availableProperty(), nil
	}
	svc := newService(d)

	b, err := svc.Request(context.Background(), 1, 10, "")
	require.NoError(t, err)
	require.Equal(t, "offline", b.Payment.Method)
}

func TestRequest_PropertyNotFound(t *testing.T) {
	d := defaultDeps()
	svc := newService(d)

	_, err := svc.Request(context.Background(), 1, 999, "")
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestRequest_PropertyNotAvailable(t *testing.T) {
	d := defaultDeps()
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		p := availableProperty()
		p.Status = model.PropertyRented
		return p, nil
	}
	svc := newService(d)

	_, err := svc.Request(context.Background(), 1, 10, "")
	require.Error(t, err)
	require.Equal(t, ErrPropertyUnavailable, Code(err))
	require.Empty(t, d.notifier.notices)
	require.Empty(t, d.events.events)
}

func TestRequest_DuplicateSurfacesExisting(t *testing.T) {
	d := defaultDeps()
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		return availableProperty(), nil
	}
	existing := &model.Booking{ID: 5, RenterID: 1, PropertyID: 10, Status: model.BookingPending}
	d.bookings.findActiveFn = func(ctx context.Context, renterID, propertyID int64) (*model.Booking, error) {
		return existing, nil
	}
	svc := newService(d)

	_, err := svc.Request(context.Background(), 1, 10, "")
	require.Error(t, err)
	require.Equal(t, ErrDuplicateBooking, Code(err))

	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, int64(5), dup.Existing.ID)
}

func TestRequest_InsertRaceRecoversWinner(t *testing.T) {
	// Two concurrent requests: the loser hits the partial unique index and
	// must surface the winner's booking, not a raw constraint error.
	d := defaultDeps()
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		return availableProperty(), nil
	}
	winner := &model.Booking{ID: 8, RenterID: 1, PropertyID: 10, Status: model.BookingPending}
	calls := 0
	d.bookings.findActiveFn = func(ctx context.Context, renterID, propertyID int64) (*model.Booking, error) {
		calls++
		if calls == 1 {
			return nil, nil // pre-check passes
		}
		return winner, nil // post-violation re-read finds the winner
	}
	d.bookings.insertFn = func(ctx context.Context, b *model.Booking) error {
		return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	}
	svc := newService(d)

	_, err := svc.Request(context.Background(), 1, 10, "")
	require.Error(t, err)

	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, int64(8), dup.Existing.ID)
}

// --- Approve ---

func pendingBooking() *model.Booking {
	return &model.Booking{
		ID:         77,
		PropertyID: 10,
		RenterID:   1,
		OwnerID:    2,
		Status:     model.BookingPending,
		Payment:    model.Payment{Amount: 1200, Method: "offline"},
	}
}

func TestApprove_Success(t *testing.T) {
	d := defaultDeps()
	d.bookings.byIDFn = func(ctx context.Context, id int64) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		return availableProperty(), nil
	}
	var propTransition [2]model.PropertyStatus
	d.properties.updateStatusFn = func(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error) {
		propTransition = [2]model.PropertyStatus{expected, next}
		return true, nil
	}
	svc := newService(d)

	b, err := svc.Approve(context.Background(), 2, 77)
	require.NoError(t, err)
	require.Equal(t, model.BookingConfirmed, b.Status)
	require.Equal(t, model.PropertyAvailable, propTransition[0])
	require.Equal(t, model.PropertyRented, propTransition[1])

	// renter is told, not the owner
	require.Len(t, d.notifier.notices, 1)
	require.Equal(t, int64(1), d.notifier.notices[0].receiverID)
	require.Contains(t, d.notifier.notices[0].message, "approved")

	require.Len(t, d.events.events, 1)
	require.Equal(t, queue.BookingApproved, d.events.events[0].Kind)
}

func TestApprove_NotOwner(t *testing.T) {
	d := defaultDeps()
	d.bookings.byIDFn = func(ctx context.Context, id int64) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		return availableProperty(), nil
	}
	svc := newService(d)

	_, err := svc.Approve(context.Background(), 999, 77)
	require.Error(t, err)
	require.Equal(t, ErrNotOwner, Code(err))
}

func TestApprove_BookingNotFound(t *testing.T) {
	d := defaultDeps()
	svc := newService(d)

	_, err := svc.Approve(context.Background(), 2, 77)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestApprove_AlreadyDecided(t *testing.T) {
	d := defaultDeps()
	b := pendingBooking()
	d.bookings.byIDFn = func(ctx context.Context, id int64) (*model.Booking, error) {
		return b, nil
	}
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		return availableProperty(), nil
	}
	d.bookings.updateStatusFn = func(ctx context.Context, id int64, expected, next model.BookingStatus) (bool, error) {
		b.Status = model.BookingRejected // someone else got there first
		return false, nil
	}
	svc := newService(d)

	_, err := svc.Approve(context.Background(), 2, 77)
	require.Error(t, err)
	require.Equal(t, ErrNotPending, Code(err))
	require.Empty(t, d.events.events)
}

func TestApprove_RetriesLostWrite(t *testing.T) {
	// First conditional write loses but the re-read still shows pending, so
	// the second attempt goes through.
	d := defaultDeps()
	d.bookings.byIDFn = func(ctx context.Context, id int64) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		return availableProperty(), nil
	}
	attempts := 0
	d.bookings.updateStatusFn = func(ctx context.Context, id int64, expected, next model.BookingStatus) (bool, error) {
		attempts++
		return attempts > 1, nil
	}
	svc := newService(d)

	b, err := svc.Approve(context.Background(), 2, 77)
	require.NoError(t, err)
	require.Equal(t, model.BookingConfirmed, b.Status)
	require.Equal(t, 2, attempts)
}

func TestApprove_PropertyAlreadyRentedIsIdempotent(t *testing.T) {
	// The booking write wins but the property is already rented (a previous
	// attempt got the property half way). Target state reached, no error.
	d := defaultDeps()
	d.bookings.byIDFn = func(ctx context.Context, id int64) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	prop := availableProperty()
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		return prop, nil
	}
	d.properties.updateStatusFn = func(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error) {
		prop.Status = model.PropertyRented
		return false, nil
	}
	svc := newService(d)

	b, err := svc.Approve(context.Background(), 2, 77)
	require.NoError(t, err)
	require.Equal(t, model.BookingConfirmed, b.Status)
}

func TestApprove_NotifierFailureIsNonFatal(t *testing.T) {
	d := defaultDeps()
	d.bookings.byIDFn = func(ctx context.Context, id int64) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		return availableProperty(), nil
	}
	d.notifier.emitErr = errors.New("notifications down")
	svc := newService(d)

	b, err := svc.Approve(context.Background(), 2, 77)
	require.NoError(t, err)
	require.Equal(t, model.BookingConfirmed, b.Status)
}

// --- Reject ---

func TestReject_Success(t *testing.T) {
	d := defaultDeps()
	d.bookings.byIDFn = func(ctx context.Context, id int64) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		return availableProperty(), nil
	}
	var resetTried bool
	d.properties.updateStatusFn = func(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error) {
		resetTried = expected == model.PropertyRented && next == model.PropertyAvailable
		return false, nil // property was never rented, nothing to reset
	}
	svc := newService(d)

	b, err := svc.Reject(context.Background(), 2, 77)
	require.NoError(t, err)
	require.Equal(t, model.BookingRejected, b.Status)
	require.True(t, resetTried)

	require.Len(t, d.notifier.notices, 1)
	require.Equal(t, int64(1), d.notifier.notices[0].receiverID)
	require.Len(t, d.events.events, 1)
	require.Equal(t, queue.BookingRejected, d.events.events[0].Kind)
}

func TestReject_AfterApproveFails(t *testing.T) {
	d := defaultDeps()
	b := pendingBooking()
	b.Status = model.BookingConfirmed
	d.bookings.byIDFn = func(ctx context.Context, id int64) (*model.Booking, error) {
		return b, nil
	}
	d.properties.byIDFn = func(ctx context.Context, id int64) (*model.Property, error) {
		return availableProperty(), nil
	}
	d.bookings.updateStatusFn = func(ctx context.Context, id int64, expected, next model.BookingStatus) (bool, error) {
		return false, nil
	}
	svc := newService(d)

	_, err := svc.Reject(context.Background(), 2, 77)
	require.Error(t, err)
	require.Equal(t, ErrNotPending, Code(err))
}

// --- Cancel ---

func TestCancel_Success(t *testing.T) {
	d := defaultDeps()
	d.bookings.byIDFn = func(ctx context.Context, id int64) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	svc := newService(d)

	b, err := svc.Cancel(context.Background(), 1, 77)
	require.NoError(t, err)
	require.Equal(t, model.BookingCancelled, b.Status)
	require.Len(t, d.events.events, 1)
	require.Equal(t, queue.BookingCancelled, d.events.events[0].Kind)
}

func TestCancel_NotRenter(t *testing.T) {
	d := defaultDeps()
	d.bookings.byIDFn = func(ctx context.Context, id int64) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	svc := newService(d)

	_, err := svc.Cancel(context.Background(), 2, 77)
	require.Error(t, err)
	require.Equal(t, ErrNotRenter, Code(err))
}

func TestCancel_ConfirmedFails(t *testing.T) {
	d := defaultDeps()
	b := pendingBooking()
	b.Status = model.BookingConfirmed
	d.bookings.byIDFn = func(ctx context.Context, id int64) (*model.Booking, error) {
		return b, nil
	}
	d.bookings.updateStatusFn = func(ctx context.Context, id int64, expected, next model.BookingStatus) (bool, error) {
		return false, nil
	}
	svc := newService(d)

	_, err := svc.Cancel(context.Background(), 1, 77)
	require.Error(t, err)
	require.Equal(t, ErrNotPending, Code(err))
}

// --- Detail ---

func TestDetail_OnlyParties(t *testing.T) {
	d := defaultDeps()
	d.bookings.byIDFn = func(ctx context.Context, id int64) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	svc := newService(d)

	_, err := svc.Detail(context.Background(), 1, 77) // renter
	require.NoError(t, err)
	_, err = svc.Detail(context.Background(), 2, 77) // owner
	require.NoError(t, err)
	_, err = svc.Detail(context.Background(), 3, 77) // stranger
	require.Error(t, err)
	require.Equal(t, ErrNotOwner, Code(err))
}
