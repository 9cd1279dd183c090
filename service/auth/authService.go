package authsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Rizwanwaseer11/homerental/model"
	userrepo "github.com/Rizwanwaseer11/homerental/repository/user"
	"github.com/Rizwanwaseer11/homerental/util/hash"
	jwtutil "github.com/Rizwanwaseer11/homerental/util/jwt"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrBadInput     = errors.New("bad input")
	ErrInvalidCreds = errors.New("invalid credentials")
)

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
}

type service struct {
	ur     userrepo.Repo
	secret string
}

func New(ur userrepo.Repo, secret string) Service { return &service{ur: ur, secret: secret} }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || email == "" || len(req.Password) < 6 {
		return nil, "", ErrBadInput
	}

	// Admins are provisioned out of band, never through registration.
	role := model.Role(req.Role)
	if role != model.RoleOwner {
		role = model.RoleRenter
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := s.ur.Create(ctx, u); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	u, err := s.ur.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", ErrInvalidCreds
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}
	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
