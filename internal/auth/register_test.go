package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vigneshnair/bazaarly-backend/pkg/db"
	pkgerrors "github.com/vigneshnair/bazaarly-backend/pkg/errors"
	"github.com/vigneshnair/bazaarly-backend/pkg/security"
)

func setupAuthTestDB(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	accounts := `
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
);`
	if err := conn.Exec(accounts).Error; err != nil {
		t.Fatalf("create accounts table: %v", err)
	}
	return db.FromGorm(conn)
}

func TestSignupCreatesCustomer(t *testing.T) {
	client := setupAuthTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}

	account, err := svc.Signup(context.Background(), SignupRequest{
		Name:            "Asha",
		Email:           strPtr("Asha@Example.com"),
		Password:        "Str0ng@pass",
		PasswordConfirm: "Str0ng@pass",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if account.ID == uuid.Nil {
		t.Fatalf("expected generated account id")
	}
	if account.Email == nil || *account.Email != "asha@example.com" {
		t.Fatalf("email should be lowercased, got %v", account.Email)
	}
	if account.Role.String() != "customer" {
		t.Fatalf("new accounts must start as customer, got %s", account.Role)
	}

	var hash string
	if err := client.DB().Raw("SELECT password_hash FROM accounts WHERE id = ?", account.ID).Scan(&hash).Error; err != nil {
		t.Fatalf("load hash: %v", err)
	}
	if hash == "Str0ng@pass" || hash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if !security.VerifyPassword("Str0ng@pass", hash) {
		t.Fatalf("stored hash should verify original password")
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	client := setupAuthTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}

	req := SignupRequest{
		Name:            "Asha",
		Email:           strPtr("asha@example.com"),
		Password:        "Str0ng@pass",
		PasswordConfirm: "Str0ng@pass",
	}
	if _, err := svc.Signup(context.Background(), req); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	_, err = svc.Signup(context.Background(), req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSignupDuplicatePhoneConflicts(t *testing.T) {
	client := setupAuthTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}

	req := SignupRequest{
		Name:            "Ravi",
		Phone:           strPtr("+919900012345"),
		Password:        "Str0ng@pass",
		PasswordConfirm: "Str0ng@pass",
	}
	if _, err := svc.Signup(context.Background(), req); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	_, err = svc.Signup(context.Background(), req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	client := setupAuthTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}

	cases := []struct {
		name string
		req  SignupRequest
	}{
		{"missing identifier", SignupRequest{Name: "A", Password: "Str0ng@pass", PasswordConfirm: "Str0ng@pass"}},
		{"missing name", SignupRequest{Email: strPtr("a@b.com"), Password: "Str0ng@pass", PasswordConfirm: "Str0ng@pass"}},
		{"short password", SignupRequest{Name: "A", Email: strPtr("a@b.com"), Password: "S0@a", PasswordConfirm: "S0@a"}},
		{"no uppercase", SignupRequest{Name: "A", Email: strPtr("a@b.com"), Password: "str0ng@pass", PasswordConfirm: "str0ng@pass"}},
		{"no special", SignupRequest{Name: "A", Email: strPtr("a@b.com"), Password: "Str0ngpass", PasswordConfirm: "Str0ngpass"}},
		{"mismatch", SignupRequest{Name: "A", Email: strPtr("a@b.com"), Password: "Str0ng@pass", PasswordConfirm: "Str0ng@other"}},
	}
	for _, tc := range cases {
		_, err := svc.Signup(context.Background(), tc.req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}
