package propertysvc

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Rizwanwaseer11/homerental/model"
	propertyrepo "github.com/Rizwanwaseer11/homerental/repository/property"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrNotOwner ErrCode = "NOT_OWNER"
	ErrBadInput ErrCode = "BAD_INPUT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Filter = repository shape
type Filter = propertyrepo.Filter

// ListQuery is a search request plus the viewer's identity, which decides
// what is visible: owners see their own listings, renters only available
// ones, anonymous visitors everything that cleared moderation.
type ListQuery struct {
	Q        string
	City     string
	Category string
	MinPrice float64
	MaxPrice float64
	Page     int

	ViewerID   int64
	ViewerRole model.Role
	ViewAll    bool
}

type Page struct {
	Properties []model.Property `json:"properties"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

type Repo interface {
	Create(ctx context.Context, p *model.Property) error
	ByID(ctx context.Context, id int64) (*model.Property, error)
	Update(ctx context.Context, p *model.Property) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]model.Property, int64, error)
	AddImages(ctx context.Context, id int64, paths []string) error
}

type Service interface {
	// Create inserts a listing in pending state; it only becomes visible to
	// renters once the admin or the auto-approval sweep clears it.
	Create(ctx context.Context, p *model.Property) error
	Detail(ctx context.Context, id int64) (*model.Property, error)
	Update(ctx context.Context, ownerID int64, p *model.Property) error
	Delete(ctx context.Context, ownerID, id int64) error
	List(ctx context.Context, q ListQuery) (*Page, error)
	AddImages(ctx context.Context, ownerID, id int64, paths []string) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

const pageSize = 12

func (s *service) Create(ctx context.Context, p *model.Property) error {
	if p.Title == "" || p.Description == "" || p.Price <= 0 {
		return makeErr(ErrBadInput)
	}
	if p.Category == "" {
		p.Category = "House"
	}
	if p.RentType == "" {
		p.RentType = "perMonth"
	}
	if p.Bedrooms <= 0 {
		p.Bedrooms = 1
	}
	if p.Bathrooms <= 0 {
		p.Bathrooms = 1
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return s.r.Create(ctx, p)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Property, error) {
	p, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, ownerID int64, p *model.Property) error {
	cur, err := s.owned(ctx, ownerID, p.ID)
	if err != nil {
		return err
	}
	if p.Title == "" || p.Description == "" || p.Price <= 0 {
		return makeErr(ErrBadInput)
	}
	if len(p.Images) == 0 {
		p.Images = cur.Images
	}
	return s.r.Update(ctx, p)
}

func (s *service) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.r.Delete(ctx, id)
}

func (s *service) AddImages(ctx context.Context, ownerID, id int64, paths []string) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.r.AddImages(ctx, id, paths)
}

func (s *service) List(ctx context.Context, q ListQuery) (*Page, error) {
	f := Filter{
		Q:        q.Q,
		City:     q.City,
		Category: q.Category,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Page:     q.Page,
		Limit:    pageSize,
	}
	switch {
	case q.ViewerRole == model.RoleOwner && !q.ViewAll:
		f.OwnerID = q.ViewerID
	case q.ViewerRole == model.RoleRenter:
		f.Status = model.PropertyAvailable
	case q.ViewerRole == model.RoleAdmin:
		// admins see everything
	default:
		f.ExcludePending = true
	}

	props, total, err := s.r.List(ctx, f)
	if err != nil {
		return nil, err
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	return &Page{Properties: props, Total: total, Page: page, Limit: pageSize}, nil
}

func (s *service) owned(ctx context.Context, ownerID, id int64) (*model.Property, error) {
	p, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, makeErr(ErrNotOwner)
	}
	return p, nil
}
