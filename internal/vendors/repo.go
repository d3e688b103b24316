package vendors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vigneshnair/bazaarly-backend/pkg/db/models"
	"github.com/vigneshnair/bazaarly-backend/pkg/enums"
	"github.com/vigneshnair/bazaarly-backend/pkg/pagination"
)

// Repository exposes vendor application persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a vendor applications repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new pending application.
func (r *Repository) Create(ctx context.Context, app *models.VendorApplication) (*models.VendorApplication, error) {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

// FindByID loads an application by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.VendorApplication, error) {
	var app models.VendorApplication
	if err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// FindActiveByAccount returns the account's pending or approved
// application, if any. Rejected applications do not block a reapply.
func (r *Repository) FindActiveByAccount(ctx context.Context, accountID uuid.UUID) (*models.VendorApplication, error) {
	var app models.VendorApplication
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND status IN ?", accountID,
			[]enums.VendorStatus{enums.VendorStatusPending, enums.VendorStatusApproved}).
		Order("created_at DESC").
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// List returns applications newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status *enums.VendorStatus, params pagination.Params) ([]models.VendorApplication, error) {
	query := r.db.WithContext(ctx).Model(&models.VendorApplication{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if cursor, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, err
	} else if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var apps []models.VendorApplication
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// UpdateStatus moves the application into a terminal state.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VendorStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.VendorApplication{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}
