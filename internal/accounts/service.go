package accounts

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/utils"
)

type Service struct {
	db   *gorm.DB
	repo Repository
	keys *auth.Keys
	log  *zap.Logger
}

func NewService(db *gorm.DB, keys *auth.Keys, log *zap.Logger) *Service {
	return &Service{db: db, repo: NewRepository(), keys: keys, log: log}
}

// Login checks the credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Account, error) {
	a, err := s.repo.FindByEmail(s.db.WithContext(ctx), email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return "", nil, err
	}
	if !utils.CheckPassword(a.PasswordHash, password) {
		return "", nil, apperr.Unauthorized("invalid credentials")
	}
	tok, err := s.keys.GenerateAccessToken(a.ID, a.Role)
	if err != nil {
		return "", nil, err
	}
	return tok, a, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*Account, error) {
	a, err := s.repo.FindByID(s.db.WithContext(ctx), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("account")
	}
	return a, err
}

type CreateInput struct {
	Email    string
	Name     string
	Role     auth.Role
	Password string
}

// Create stores a new account. When no password is given a temporary one is
// generated, returned, and the account is flagged for reset.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Account, string, error) {
	if in.Email == "" {
		return nil, "", apperr.Validation("email is required")
	}
	if _, ok := auth.ParseRole(string(in.Role)); !ok {
		return nil, "", apperr.Validation("unknown role")
	}
	password, mustReset := in.Password, false
	if password == "" {
		tmp, err := utils.TemporaryPassword()
		if err != nil {
			return nil, "", err
		}
		password, mustReset = tmp, true
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	a := &Account{
		Email:             in.Email,
		Name:              in.Name,
		Role:              in.Role,
		PasswordHash:      hash,
		MustResetPassword: mustReset,
	}
	if err := s.repo.Create(s.db.WithContext(ctx), a); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperr.Conflict("email already registered")
		}
		return nil, "", err
	}
	if !mustReset {
		password = ""
	}
	return a, password, nil
}

// PromoteToGuardian turns a public account into a guardian. It reports false
// when the account had another role already.
func (s *Service) PromoteToGuardian(ctx context.Context, id uint) (bool, error) {
	ok, err := s.repo.SetRoleIf(s.db.WithContext(ctx), id, auth.RolePublic, auth.RoleGuardian)
	if err != nil {
		return false, err
	}
	if ok {
		s.log.Info("account promoted to guardian", zap.Uint("account_id", id))
	}
	return ok, nil
}
