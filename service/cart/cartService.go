package cartsvc

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Rizwanwaseer11/homerental/model"
	cartrepo "github.com/Rizwanwaseer11/homerental/repository/cart"
)

type ErrCode string

const (
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrNotAvailable  ErrCode = "NOT_AVAILABLE"
	ErrAlreadyInCart ErrCode = "ALREADY_IN_CART"
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

// Row = repository shape
type Row = cartrepo.Row

type Properties interface {
	ByID(ctx context.Context, id int64) (*model.Property, error)
}

type Service interface {
	Add(ctx context.Context, renterID, propertyID int64) error
	Remove(ctx context.Context, renterID, propertyID int64) error
	List(ctx context.Context, renterID int64) ([]Row, error)
}

type service struct {
	r          cartrepo.Repo
	properties Properties
}

func New(r cartrepo.Repo, p Properties) Service { return &service{r: r, properties: p} }

func (s *service) Add(ctx context.Context, renterID, propertyID int64) error {
	p, err := s.properties.ByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return codedError{code: ErrNotFound}
		}
		return err
	}
	if p.Status != model.PropertyAvailable {
		return codedError{code: ErrNotAvailable}
	}
	added, err := s.r.Add(ctx, renterID, propertyID)
	if err != nil {
		return err
	}
	if !added {
		return codedError{code: ErrAlreadyInCart}
	}
	return nil
}

func (s *service) Remove(ctx context.Context, renterID, propertyID int64) error {
	return s.r.Remove(ctx, renterID, propertyID)
}

func (s *service) List(ctx context.Context, renterID int64) ([]Row, error) {
	return s.r.ListByRenter(ctx, renterID)
}
