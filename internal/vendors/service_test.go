package vendors

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vigneshnair/bazaarly-backend/internal/notifications"
	pkgAuth "github.com/vigneshnair/bazaarly-backend/pkg/auth"
	"github.com/vigneshnair/bazaarly-backend/pkg/config"
	"github.com/vigneshnair/bazaarly-backend/pkg/db"
	"github.com/vigneshnair/bazaarly-backend/pkg/db/models"
	"github.com/vigneshnair/bazaarly-backend/pkg/enums"
	pkgerrors "github.com/vigneshnair/bazaarly-backend/pkg/errors"
	"github.com/vigneshnair/bazaarly-backend/pkg/pagination"
)

type recordingNotifier struct {
	messages []notifications.Message
}

func (r *recordingNotifier) Enqueue(_ context.Context, msg notifications.Message) bool {
	r.messages = append(r.messages, msg)
	return true
}

func setupVendorsTestDB(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:vendors_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schema := []string{`
CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT UNIQUE,
  phone TEXT UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'customer',
  address TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS vendor_applications (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  shop_name TEXT NOT NULL,
  description TEXT,
  contact TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db.FromGorm(conn)
}

func mustCreateAccount(t *testing.T, client *db.Client, role enums.Role) *models.Account {
	t.Helper()
	phone := "+91" + uuid.NewString()[:10]
	account := &models.Account{
		Name:         "Ravi",
		Phone:        &phone,
		PasswordHash: "hash",
		Role:         role,
	}
	if err := client.DB().Create(account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

func testVendorService(t *testing.T, client *db.Client, notifier notifications.Notifier) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		DB:           client,
		Notifier:     notifier,
		JWTConfig:    config.JWTConfig{Secret: "test-secret", Issuer: "bazaarly"},
		AdminContact: "+15550009999",
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestApplyCreatesPendingAndNotifies(t *testing.T) {
	client := setupVendorsTestDB(t)
	notifier := &recordingNotifier{}
	svc := testVendorService(t, client, notifier)
	account := mustCreateAccount(t, client, enums.RoleCustomer)

	app, err := svc.Apply(context.Background(), account.ID, ApplyRequest{ShopName: "Asha Spices"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if app.Status != enums.VendorStatusPending {
		t.Fatalf("expected pending application, got %s", app.Status)
	}
	if app.AccountID != account.ID {
		t.Fatalf("application bound to wrong account")
	}
	if len(notifier.messages) != 2 {
		t.Fatalf("expected admin and applicant notifications, got %d", len(notifier.messages))
	}
	if notifier.messages[0].To != "+15550009999" {
		t.Fatalf("first message should target admin contact, got %s", notifier.messages[0].To)
	}
}

func TestApplyConflictsWhileActiveApplicationExists(t *testing.T) {
	client := setupVendorsTestDB(t)
	svc := testVendorService(t, client, &recordingNotifier{})
	account := mustCreateAccount(t, client, enums.RoleCustomer)

	if _, err := svc.Apply(context.Background(), account.ID, ApplyRequest{ShopName: "Shop"}); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	_, err := svc.Apply(context.Background(), account.ID, ApplyRequest{ShopName: "Shop Again"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestApplyConflictsForExistingVendor(t *testing.T) {
	client := setupVendorsTestDB(t)
	svc := testVendorService(t, client, &recordingNotifier{})
	account := mustCreateAccount(t, client, enums.RoleVendor)

	_, err := svc.Apply(context.Background(), account.ID, ApplyRequest{ShopName: "Shop"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for existing vendor, got %v", err)
	}
}

func TestApproveElevatesRoleAndMintsToken(t *testing.T) {
	client := setupVendorsTestDB(t)
	notifier := &recordingNotifier{}
	svc := testVendorService(t, client, notifier)
	account := mustCreateAccount(t, client, enums.RoleCustomer)

	app, err := svc.Apply(context.Background(), account.ID, ApplyRequest{ShopName: "Shop"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	result, err := svc.Approve(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if result.Application.Status != enums.VendorStatusApproved {
		t.Fatalf("expected approved status, got %s", result.Application.Status)
	}
	if !result.Notified {
		t.Fatalf("expected informational notified flag")
	}

	var role string
	if err := client.DB().Raw("SELECT role FROM accounts WHERE id = ?", account.ID).Scan(&role).Error; err != nil {
		t.Fatalf("load role: %v", err)
	}
	if role != "vendor" {
		t.Fatalf("account role must be elevated, got %s", role)
	}

	claims, err := pkgAuth.ParseAccessToken(config.JWTConfig{Secret: "test-secret", Issuer: "bazaarly"}, result.AccessToken)
	if err != nil {
		t.Fatalf("parse reissued token: %v", err)
	}
	if claims.Role != enums.RoleVendor {
		t.Fatalf("fresh token must carry vendor role, got %s", claims.Role)
	}
	accountID, err := claims.AccountID()
	if err != nil || accountID != account.ID {
		t.Fatalf("token subject mismatch: %v %s", err, accountID)
	}
}

func TestDoubleApproveIsStateConflict(t *testing.T) {
	client := setupVendorsTestDB(t)
	svc := testVendorService(t, client, &recordingNotifier{})
	account := mustCreateAccount(t, client, enums.RoleCustomer)

	app, err := svc.Apply(context.Background(), account.ID, ApplyRequest{ShopName: "Shop"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := svc.Approve(context.Background(), app.ID); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	_, err = svc.Approve(context.Background(), app.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRejectAllowsReapply(t *testing.T) {
	client := setupVendorsTestDB(t)
	svc := testVendorService(t, client, &recordingNotifier{})
	account := mustCreateAccount(t, client, enums.RoleCustomer)

	app, err := svc.Apply(context.Background(), account.ID, ApplyRequest{ShopName: "Shop"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	result, err := svc.Reject(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if result.Application.Status != enums.VendorStatusRejected {
		t.Fatalf("expected rejected status, got %s", result.Application.Status)
	}
	if result.AccessToken != "" {
		t.Fatalf("reject must not mint a token")
	}

	var role string
	if err := client.DB().Raw("SELECT role FROM accounts WHERE id = ?", account.ID).Scan(&role).Error; err != nil {
		t.Fatalf("load role: %v", err)
	}
	if role != "customer" {
		t.Fatalf("reject must not change the role, got %s", role)
	}

	if _, err := svc.Apply(context.Background(), account.ID, ApplyRequest{ShopName: "Second Try"}); err != nil {
		t.Fatalf("reapply after rejection should succeed: %v", err)
	}
}

func TestApproveUnknownApplication(t *testing.T) {
	client := setupVendorsTestDB(t)
	svc := testVendorService(t, client, &recordingNotifier{})

	_, err := svc.Approve(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	client := setupVendorsTestDB(t)
	svc := testVendorService(t, client, &recordingNotifier{})

	first := mustCreateAccount(t, client, enums.RoleCustomer)
	second := mustCreateAccount(t, client, enums.RoleCustomer)
	app, err := svc.Apply(context.Background(), first.ID, ApplyRequest{ShopName: "One"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := svc.Apply(context.Background(), second.ID, ApplyRequest{ShopName: "Two"}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := svc.Approve(context.Background(), app.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	pending := enums.VendorStatusPending
	page, err := svc.List(context.Background(), &pending, pagination.Params{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected one pending application, got %d", len(page.Items))
	}
	if page.Items[0].ShopName != "Two" {
		t.Fatalf("unexpected pending application %q", page.Items[0].ShopName)
	}

	all, err := svc.List(context.Background(), nil, pagination.Params{})
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all.Items) != 2 {
		t.Fatalf("expected two applications, got %d", len(all.Items))
	}
}
