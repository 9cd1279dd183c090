package propertysvc

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/Rizwanwaseer11/homerental/model"
)

type mockRepo struct {
	createFn    func(ctx context.Context, p *model.Property) error
	byIDFn      func(ctx context.Context, id int64) (*model.Property, error)
	updateFn    func(ctx context.Context, p *model.Property) error
	deleteFn    func(ctx context.Context, id int64) error
	listFn      func(ctx context.Context, f Filter) ([]model.Property, int64, error)
	addImagesFn func(ctx context.Context, id int64, paths []string) error
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, p *model.Property) error {
	if m.createFn == nil {
		p.ID = 1
		return nil
	}
	return m.createFn(ctx, p)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.Property, error) {
	if m.byIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) Update(ctx context.Context, p *model.Property) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, p)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

func (m *mockRepo) List(ctx context.Context, f Filter) ([]model.Property, int64, error) {
	if m.listFn == nil {
		return nil, 0, nil
	}
	return m.listFn(ctx, f)
}

func (m *mockRepo) AddImages(ctx context.Context, id int64, paths []string) error {
	if m.addImagesFn == nil {
		return nil
	}
	return m.addImagesFn(ctx, id, paths)
}

func TestCreate_AppliesDefaults(t *testing.T) {
	var saved *model.Property
	m := &mockRepo{createFn: func(ctx context.Context, p *model.Property) error {
		saved = p
		return nil
	}}
	svc := New(m)

	err := svc.Create(context.Background(), &model.Property{
		Title:       "Loft",
		Description: "Bright loft downtown",
		Price:       900,
	})
	require.NoError(t, err)
	require.Equal(t, "House", saved.Category)
	require.Equal(t, "perMonth", saved.RentType)
	require.Equal(t, 1, saved.Bedrooms)
	require.Equal(t, 1, saved.Bathrooms)
	require.NotNil(t, saved.Amenities)
	require.NotNil(t, saved.Images)
}

func TestCreate_BadInput(t *testing.T) {
	svc := New(&mockRepo{})

	err := svc.Create(context.Background(), &model.Property{Title: "No price"})
	require.Error(t, err)
	require.Equal(t, ErrBadInput, Code(err))
}

func TestList_VisibilityByViewer(t *testing.T) {
	cases := []struct {
		name string
		q    ListQuery
		want Filter
	}{
		{
			name: "owner sees own listings",
			q:    ListQuery{ViewerID: 7, ViewerRole: model.RoleOwner},
			want: Filter{OwnerID: 7, Limit: pageSize},
		},
		{
			name: "owner browsing the whole catalogue",
			q:    ListQuery{ViewerID: 7, ViewerRole: model.RoleOwner, ViewAll: true},
			want: Filter{ExcludePending: true, Limit: pageSize},
		},
		{
			name: "renter only sees available",
			q:    ListQuery{ViewerID: 3, ViewerRole: model.RoleRenter},
			want: Filter{Status: model.PropertyAvailable, Limit: pageSize},
		},
		{
			name: "admin sees everything",
			q:    ListQuery{ViewerID: 1, ViewerRole: model.RoleAdmin},
			want: Filter{Limit: pageSize},
		},
		{
			name: "anonymous excludes pending",
			q:    ListQuery{},
			want: Filter{ExcludePending: true, Limit: pageSize},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got Filter
			m := &mockRepo{listFn: func(ctx context.Context, f Filter) ([]model.Property, int64, error) {
				got = f
				return nil, 0, nil
			}}
			svc := New(m)

			_, err := svc.List(context.Background(), tc.q)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestUpdate_NotOwner(t *testing.T) {
	m := &mockRepo{byIDFn: func(ctx context.Context, id int64) (*model.Property, error) {
		return &model.Property{ID: id, OwnerID: 2}, nil
	}}
	svc := New(m)

	err := svc.Update(context.Background(), 99, &model.Property{
		ID: 5, Title: "T", Description: "D", Price: 10,
	})
	require.Error(t, err)
	require.Equal(t, ErrNotOwner, Code(err))
}

func TestUpdate_KeepsExistingImagesWhenOmitted(t *testing.T) {
	existing := []string{"/uploads/a.jpg"}
	var saved *model.Property
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Property, error) {
			return &model.Property{ID: id, OwnerID: 2, Images: existing}, nil
		},
		updateFn: func(ctx context.Context, p *model.Property) error {
			saved = p
			return nil
		},
	}
	svc := New(m)

	err := svc.Update(context.Background(), 2, &model.Property{
		ID: 5, Title: "T", Description: "D", Price: 10,
	})
	require.NoError(t, err)
	require.Equal(t, existing, saved.Images)
}

func TestDelete_NotFound(t *testing.T) {
	svc := New(&mockRepo{})

	err := svc.Delete(context.Background(), 2, 5)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}
