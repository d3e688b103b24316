package vendors

import (
	"time"

	"github.com/google/uuid"

	"github.com/vigneshnair/bazaarly-backend/pkg/db/models"
	"github.com/vigneshnair/bazaarly-backend/pkg/enums"
)

// ApplyRequest captures a customer's request to become a vendor.
type ApplyRequest struct {
	ShopName    string  `json:"shop_name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Contact     *string `json:"contact,omitempty"`
}

// ApplicationDTO is the transport shape of a vendor application.
type ApplicationDTO struct {
	ID          uuid.UUID          `json:"id"`
	AccountID   uuid.UUID          `json:"account_id"`
	ShopName    string             `json:"shop_name"`
	Description *string            `json:"description,omitempty"`
	Contact     *string            `json:"contact,omitempty"`
	Status      enums.VendorStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// DecisionResult is returned by approve: the updated application plus a
// fresh token carrying the applicant's new role. Without the reissue the
// applicant's old token would present a stale customer role forever.
type DecisionResult struct {
	Application *ApplicationDTO `json:"application"`
	AccessToken string          `json:"access_token,omitempty"`
	Notified    bool            `json:"notified"`
}

func fromModel(v *models.VendorApplication) *ApplicationDTO {
	if v == nil {
		return nil
	}
	return &ApplicationDTO{
		ID:          v.ID,
		AccountID:   v.AccountID,
		ShopName:    v.ShopName,
		Description: v.Description,
		Contact:     v.Contact,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}
