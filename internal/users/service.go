package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vigneshnair/bazaarly-backend/pkg/db"
	pkgerrors "github.com/vigneshnair/bazaarly-backend/pkg/errors"
)

// Service resolves account profiles.
type Service interface {
	Me(ctx context.Context, accountID uuid.UUID) (*AccountDTO, error)
}

type service struct {
	db *db.Client
}

func NewService(client *db.Client) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("database client required")
	}
	return &service{db: client}, nil
}

func (s *service) Me(ctx context.Context, accountID uuid.UUID) (*AccountDTO, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}
	account, err := NewRepository(s.db.DB()).FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load account")
	}
	return FromModel(account), nil
}
