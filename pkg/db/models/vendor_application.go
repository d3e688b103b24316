package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vigneshnair/bazaarly-backend/pkg/enums"
)

// VendorApplication is an account's request to sell on the marketplace.
// At most one application per account may sit in pending or approved; a
// rejected applicant may file a fresh one.
type VendorApplication struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID   uuid.UUID          `gorm:"column:account_id;type:uuid;not null;index"`
	ShopName    string             `gorm:"column:shop_name;not null"`
	Description *string            `gorm:"column:description"`
	Contact     *string            `gorm:"column:contact"`
	Status      enums.VendorStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (VendorApplication) TableName() string { return "vendor_applications" }

func (v *VendorApplication) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
