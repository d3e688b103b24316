package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vigneshnair/bazaarly-backend/pkg/db/models"
	"github.com/vigneshnair/bazaarly-backend/pkg/enums"
)

// Repository exposes payment intent persistence operations.
type Repository struct {
	db *gorm.DB
}

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

// Create inserts a new pending intent for an order.
func (r *Repository) Create(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error) {
	if err := r.db.WithContext(ctx).Create(intent).Error; err != nil {
		return nil, err
	}
	return intent, nil
}

// FindByOrderID loads the companion intent for an order.
func (r *Repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	if err := r.db.WithContext(ctx).First(&intent, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &intent, nil
}

// MarkPaid flips the intent to paid and records the settlement details.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID, transactionRef string, paidAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          enums.PaymentStatusPaid,
			"transaction_ref": transactionRef,
			"paid_at":         paidAt,
		}).Error
}
