package adminsvc

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/Rizwanwaseer11/homerental/mail"
	"github.com/Rizwanwaseer11/homerental/model"
	bookingrepo "github.com/Rizwanwaseer11/homerental/repository/booking"
	propertyrepo "github.com/Rizwanwaseer11/homerental/repository/property"
)

type mockProperties struct {
	byIDFn         func(ctx context.Context, id int64) (*model.Property, error)
	listFn         func(ctx context.Context, f propertyrepo.Filter) ([]model.Property, int64, error)
	updateStatusFn func(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error)
}

var _ Properties = (*mockProperties)(nil)

func (m *mockProperties) ByID(ctx context.Context, id int64) (*model.Property, error) {
	if m.byIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.byIDFn(ctx, id)
}

func (m *mockProperties) List(ctx context.Context, f propertyrepo.Filter) ([]model.Property, int64, error) {
	if m.listFn == nil {
		return nil, 0, nil
	}
	return m.listFn(ctx, f)
}

func (m *mockProperties) UpdateStatusIf(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error) {
	if m.updateStatusFn == nil {
		return true, nil
	}
	return m.updateStatusFn(ctx, id, expected, next)
}

type mockUsers struct{}

func (mockUsers) ByID(ctx context.Context, id int64) (*model.User, error) {
	return &model.User{ID: id, Name: "Owner", Email: ""}, nil
}

func (mockUsers) List(ctx context.Context) ([]model.User, error) {
	return []model.User{{ID: 1}}, nil
}

type mockBookings struct{}

func (mockBookings) ListAll(ctx context.Context) ([]bookingrepo.HistoryRow, error) {
	return nil, nil
}

type mockNotifier struct {
	messages map[int64]string
}

func (m *mockNotifier) Emit(ctx context.Context, receiverID int64, propertyID, bookingID *int64, message string) error {
	if m.messages == nil {
		m.messages = map[int64]string{}
	}
	m.messages[receiverID] = message
	return nil
}

func newService(p *mockProperties, n *mockNotifier) Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(p, mockUsers{}, mockBookings{}, n, mail.Noop{}, log)
}

func pendingProperty() *model.Property {
	return &model.Property{ID: 5, OwnerID: 2, Title: "Pending Villa", Status: model.PropertyPending}
}

func TestApproveProperty_Success(t *testing.T) {
	var transition [2]model.PropertyStatus
	p := &mockProperties{
		byIDFn: func(ctx context.Context, id int64) (*model.Property, error) {
			return pendingProperty(), nil
		},
		updateStatusFn: func(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error) {
			transition = [2]model.PropertyStatus{expected, next}
			return true, nil
		},
	}
	n := &mockNotifier{}
	svc := newService(p, n)

	require.NoError(t, svc.ApproveProperty(context.Background(), 5))
	require.Equal(t, model.PropertyPending, transition[0])
	require.Equal(t, model.PropertyAvailable, transition[1])
	require.Contains(t, n.messages[2], "approved")
}

func TestRejectProperty_Success(t *testing.T) {
	var next model.PropertyStatus
	p := &mockProperties{
		byIDFn: func(ctx context.Context, id int64) (*model.Property, error) {
			return pendingProperty(), nil
		},
		updateStatusFn: func(ctx context.Context, id int64, expected, n model.PropertyStatus) (bool, error) {
			next = n
			return true, nil
		},
	}
	n := &mockNotifier{}
	svc := newService(p, n)

	require.NoError(t, svc.RejectProperty(context.Background(), 5))
	require.Equal(t, model.PropertyRejected, next)
	require.Contains(t, n.messages[2], "rejected")
}

func TestApproveProperty_NotFound(t *testing.T) {
	svc := newService(&mockProperties{}, &mockNotifier{})

	err := svc.ApproveProperty(context.Background(), 999)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestApproveProperty_AlreadyDecided(t *testing.T) {
	// The sweeper approved it between the read and the write. No
	// notification must go out for the lost decision.
	p := &mockProperties{
		byIDFn: func(ctx context.Context, id int64) (*model.Property, error) {
			return pendingProperty(), nil
		},
		updateStatusFn: func(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error) {
			return false, nil
		},
	}
	n := &mockNotifier{}
	svc := newService(p, n)

	err := svc.ApproveProperty(context.Background(), 5)
	require.Error(t, err)
	require.Equal(t, ErrNotPending, Code(err))
	require.Empty(t, n.messages)
}

func TestDashboard_CollectsPending(t *testing.T) {
	var gotFilter propertyrepo.Filter
	p := &mockProperties{
		listFn: func(ctx context.Context, f propertyrepo.Filter) ([]model.Property, int64, error) {
			gotFilter = f
			return []model.Property{*pendingProperty()}, 1, nil
		},
	}
	svc := newService(p, &mockNotifier{})

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.PropertyPending, gotFilter.Status)
	require.Len(t, d.PendingProperties, 1)
	require.Len(t, d.Users, 1)
}
