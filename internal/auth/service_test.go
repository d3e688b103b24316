package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/vigneshnair/bazaarly-backend/pkg/auth"
	"github.com/vigneshnair/bazaarly-backend/pkg/config"
	"github.com/vigneshnair/bazaarly-backend/pkg/db/models"
	"github.com/vigneshnair/bazaarly-backend/pkg/enums"
	pkgerrors "github.com/vigneshnair/bazaarly-backend/pkg/errors"
	"github.com/vigneshnair/bazaarly-backend/pkg/security"
)

type stubAccountRepo struct {
	byEmail map[string]*models.Account
	byPhone map[string]*models.Account
}

func (s *stubAccountRepo) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	if a, ok := s.byEmail[email]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAccountRepo) FindByPhone(_ context.Context, phone string) (*models.Account, error) {
	if a, ok := s.byPhone[phone]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "bazaarly"}
}

func strPtr(v string) *string { return &v }

func testAccount(t *testing.T, email, phone, password string) *models.Account {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	account := &models.Account{
		ID:           uuid.New(),
		Name:         "Asha",
		PasswordHash: hash,
		Role:         enums.RoleCustomer,
	}
	if email != "" {
		account.Email = strPtr(email)
	}
	if phone != "" {
		account.Phone = strPtr(phone)
	}
	return account
}

func TestLoginByEmail(t *testing.T) {
	account := testAccount(t, "asha@example.com", "", "Str0ng@pass")
	repo := &stubAccountRepo{byEmail: map[string]*models.Account{"asha@example.com": account}}
	svc, err := NewService(ServiceParams{AccountRepo: repo, JWTConfig: testJWTConfig()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    strPtr("  ASHA@example.com "),
		Password: "Str0ng@pass",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatalf("expected access token")
	}
	if resp.TokenType != "bearer" {
		t.Fatalf("expected bearer token type, got %q", resp.TokenType)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.Role != enums.RoleCustomer {
		t.Fatalf("expected customer role claim, got %s", claims.Role)
	}
	subject, err := claims.AccountID()
	if err != nil {
		t.Fatalf("parse subject: %v", err)
	}
	if subject != account.ID {
		t.Fatalf("expected subject %s, got %s", account.ID, subject)
	}
}

func TestLoginByPhone(t *testing.T) {
	account := testAccount(t, "", "+919900012345", "Str0ng@pass")
	repo := &stubAccountRepo{byPhone: map[string]*models.Account{"+919900012345": account}}
	svc, err := NewService(ServiceParams{AccountRepo: repo, JWTConfig: testJWTConfig()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Phone:    strPtr("+919900012345"),
		Password: "Str0ng@pass",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Account == nil || resp.Account.Phone == nil || *resp.Account.Phone != "+919900012345" {
		t.Fatalf("expected account in response")
	}
}

func TestLoginFailuresCollapseToUnauthorized(t *testing.T) {
	account := testAccount(t, "asha@example.com", "", "Str0ng@pass")
	repo := &stubAccountRepo{byEmail: map[string]*models.Account{"asha@example.com": account}}
	svc, err := NewService(ServiceParams{AccountRepo: repo, JWTConfig: testJWTConfig()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cases := []struct {
		name string
		req  LoginRequest
	}{
		{"unknown email", LoginRequest{Email: strPtr("other@example.com"), Password: "Str0ng@pass"}},
		{"wrong password", LoginRequest{Email: strPtr("asha@example.com"), Password: "wrong"}},
	}
	for _, tc := range cases {
		_, err := svc.Login(context.Background(), tc.req)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("%s: expected unauthorized, got %v", tc.name, err)
		}
		if typed.Message() != invalidCredentialsMessage {
			t.Fatalf("%s: message must not leak account existence, got %q", tc.name, typed.Message())
		}
	}
}

func TestLoginRequiresIdentifier(t *testing.T) {
	svc, err := NewService(ServiceParams{AccountRepo: &stubAccountRepo{}, JWTConfig: testJWTConfig()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.Login(context.Background(), LoginRequest{Password: "Str0ng@pass"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
