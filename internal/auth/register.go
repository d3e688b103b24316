package auth

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/vigneshnair/bazaarly-backend/internal/users"
	"github.com/vigneshnair/bazaarly-backend/pkg/db"
	pkgerrors "github.com/vigneshnair/bazaarly-backend/pkg/errors"
	"github.com/vigneshnair/bazaarly-backend/pkg/security"
)

const passwordSpecials = "@$!%*?&"

// RegisterService handles the signup transaction.
type RegisterService interface {
	Signup(ctx context.Context, req SignupRequest) (*users.AccountDTO, error)
}

// RegisterServiceParams packages the dependencies for the signup flow.
type RegisterServiceParams struct {
	DB *db.Client
}

type registerService struct {
	db *db.Client
}

// NewRegisterService builds a signup service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{db: params.DB}, nil
}

func (s *registerService) Signup(ctx context.Context, req SignupRequest) (*users.AccountDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	email := normalizeEmail(req.Email)
	phone := normalizePhone(req.Phone)
	if email == nil && phone == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email or phone is required")
	}

	if err := ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}
	if req.Password != req.PasswordConfirm {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}

	passwordHash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.AccountDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)

		if email != nil {
			if _, err := repo.FindByEmail(ctx, *email); err == nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check account email")
			}
		}
		if phone != nil {
			if _, err := repo.FindByPhone(ctx, *phone); err == nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check account phone")
			}
		}

		account, err := repo.Create(ctx, users.CreateAccountDTO{
			Name:         name,
			Email:        email,
			Phone:        phone,
			PasswordHash: passwordHash,
			Address:      req.Address,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "identifier already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
		}

		created = users.FromModel(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ValidatePasswordStrength enforces the minimum password policy:
// 8+ chars with upper, lower, digit, and one of @$!%*?&.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return pkgerrors.New(pkgerrors.CodeValidation,
			"password must include upper, lower, number, and special character")
	}
	return nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	value := strings.ToLower(strings.TrimSpace(*email))
	if value == "" {
		return nil
	}
	return &value
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	value := strings.TrimSpace(*phone)
	if value == "" {
		return nil
	}
	return &value
}
