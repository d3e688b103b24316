package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vigneshnair/bazaarly-backend/internal/notifications"
	"github.com/vigneshnair/bazaarly-backend/internal/users"
	pkgAuth "github.com/vigneshnair/bazaarly-backend/pkg/auth"
	"github.com/vigneshnair/bazaarly-backend/pkg/config"
	"github.com/vigneshnair/bazaarly-backend/pkg/db"
	"github.com/vigneshnair/bazaarly-backend/pkg/db/models"
	"github.com/vigneshnair/bazaarly-backend/pkg/enums"
	pkgerrors "github.com/vigneshnair/bazaarly-backend/pkg/errors"
	"github.com/vigneshnair/bazaarly-backend/pkg/pagination"
)

// Service drives the vendor application lifecycle:
// none -> pending -> approved | rejected. Approved is terminal; a
// rejected applicant may file a fresh application.
type Service interface {
	Apply(ctx context.Context, accountID uuid.UUID, req ApplyRequest) (*ApplicationDTO, error)
	List(ctx context.Context, status *enums.VendorStatus, params pagination.Params) (*pagination.Page[ApplicationDTO], error)
	Approve(ctx context.Context, applicationID uuid.UUID) (*DecisionResult, error)
	Reject(ctx context.Context, applicationID uuid.UUID) (*DecisionResult, error)
}

type service struct {
	db           *db.Client
	notifier     notifications.Notifier
	jwtCfg       config.JWTConfig
	adminContact string
}

// ServiceParams bundles the dependencies for the vendor approval flow.
type ServiceParams struct {
	DB           *db.Client
	Notifier     notifications.Notifier
	JWTConfig    config.JWTConfig
	AdminContact string
}

// NewService constructs the vendor application service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.Notifier == nil {
		params.Notifier = notifications.Noop{}
	}
	return &service{
		db:           params.DB,
		notifier:     params.Notifier,
		jwtCfg:       params.JWTConfig,
		adminContact: params.AdminContact,
	}, nil
}

func (s *service) Apply(ctx context.Context, accountID uuid.UUID, req ApplyRequest) (*ApplicationDTO, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}
	shopName := strings.TrimSpace(req.ShopName)
	if shopName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name is required")
	}

	var (
		created   *models.VendorApplication
		applicant *models.Account
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		accountRepo := users.NewRepository(tx)
		appRepo := NewRepository(tx)

		account, err := accountRepo.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeUnauthorized, "account not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load account")
		}
		if account.Role == enums.RoleVendor {
			return pkgerrors.New(pkgerrors.CodeConflict, "account is already a vendor")
		}
		applicant = account

		if _, err := appRepo.FindActiveByAccount(ctx, accountID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "an application is already pending or approved")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing application")
		}

		app, err := appRepo.Create(ctx, &models.VendorApplication{
			AccountID:   accountID,
			ShopName:    shopName,
			Description: req.Description,
			Contact:     req.Contact,
			Status:      enums.VendorStatusPending,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create application")
		}
		created = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Enqueue(ctx, notifications.Message{
		Kind: notifications.KindApplicationReceived,
		To:   s.adminContact,
		Body: fmt.Sprintf("New vendor application from %s for shop %q.", applicant.Name, shopName),
	})
	s.notifier.Enqueue(ctx, notifications.Message{
		Kind: notifications.KindApplicationReceived,
		To:   contactNumber(applicant, created),
		Body: fmt.Sprintf("Your vendor application for %q was received and is under review.", shopName),
	})

	return fromModel(created), nil
}

func (s *service) List(ctx context.Context, status *enums.VendorStatus, params pagination.Params) (*pagination.Page[ApplicationDTO], error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	repo := NewRepository(s.db.DB())
	rows, err := repo.List(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list applications")
	}

	dtos := make([]ApplicationDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, *fromModel(&row))
	}
	page := pagination.BuildPage(dtos, params.Limit, func(a ApplicationDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: a.CreatedAt, ID: a.ID}
	})
	return &page, nil
}

func (s *service) Approve(ctx context.Context, applicationID uuid.UUID) (*DecisionResult, error) {
	var (
		app       *models.VendorApplication
		applicant *models.Account
	)
	err := s.decide(ctx, applicationID, enums.VendorStatusApproved, func(tx *gorm.DB, loaded *models.VendorApplication, account *models.Account) error {
		// Role elevation rides the same transaction as the status flip
		// so a crash cannot approve without elevating or vice versa.
		if err := users.NewRepository(tx).UpdateRole(ctx, account.ID, enums.RoleVendor); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "elevate account role")
		}
		account.Role = enums.RoleVendor
		app = loaded
		applicant = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		AccountID: applicant.ID,
		Role:      enums.RoleVendor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint vendor token")
	}

	notified := s.notifier.Enqueue(ctx, notifications.Message{
		Kind: notifications.KindVendorApproved,
		To:   contactNumber(applicant, app),
		Body: fmt.Sprintf("Congratulations! Your shop %q has been approved. You can now list products.", app.ShopName),
	})

	return &DecisionResult{
		Application: fromModel(app),
		AccessToken: accessToken,
		Notified:    notified,
	}, nil
}

func (s *service) Reject(ctx context.Context, applicationID uuid.UUID) (*DecisionResult, error) {
	var (
		app       *models.VendorApplication
		applicant *models.Account
	)
	err := s.decide(ctx, applicationID, enums.VendorStatusRejected, func(tx *gorm.DB, loaded *models.VendorApplication, account *models.Account) error {
		app = loaded
		applicant = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	notified := s.notifier.Enqueue(ctx, notifications.Message{
		Kind: notifications.KindVendorRejected,
		To:   contactNumber(applicant, app),
		Body: fmt.Sprintf("Your vendor application for %q was not approved. You may apply again.", app.ShopName),
	})

	return &DecisionResult{
		Application: fromModel(app),
		Notified:    notified,
	}, nil
}

func (s *service) decide(
	ctx context.Context,
	applicationID uuid.UUID,
	target enums.VendorStatus,
	apply func(tx *gorm.DB, app *models.VendorApplication, account *models.Account) error,
) error {
	if applicationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "application id required")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		appRepo := NewRepository(tx)
		accountRepo := users.NewRepository(tx)

		app, err := appRepo.FindByID(ctx, applicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load application")
		}
		if app.Status != enums.VendorStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("application already %s", app.Status))
		}

		account, err := accountRepo.FindByID(ctx, app.AccountID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load applicant")
		}

		if err := appRepo.UpdateStatus(ctx, app.ID, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update application status")
		}
		app.Status = target

		return apply(tx, app, account)
	})
}

func contactNumber(account *models.Account, app *models.VendorApplication) string {
	if app != nil && app.Contact != nil && strings.TrimSpace(*app.Contact) != "" {
		return *app.Contact
	}
	if account != nil && account.Phone != nil {
		return *account.Phone
	}
	return ""
}
