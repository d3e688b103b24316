package whatsapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vigneshnair/bazaarly-backend/pkg/config"
	pkgerrors "github.com/vigneshnair/bazaarly-backend/pkg/errors"
)

func testConfig(baseURL string) config.WhatsAppConfig {
	return config.WhatsAppConfig{
		AccountSID:  "AC123",
		AuthToken:   "secret",
		FromNumber:  "+15550001111",
		BaseURL:     baseURL,
		SendTimeout: 2 * time.Second,
	}
}

func TestSendSuccess(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Errorf("missing or wrong basic auth")
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"From": r.PostFormValue("From"),
			"To":   r.PostFormValue("To"),
			"Body": r.PostFormValue("Body"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM42"}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	sid, err := client.Send(context.Background(), "+919900012345", "order confirmed")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if sid != "SM42" {
		t.Fatalf("expected provider sid, got %q", sid)
	}
	if gotForm["From"] != "whatsapp:+15550001111" || gotForm["To"] != "whatsapp:+919900012345" {
		t.Fatalf("channel prefix missing: %+v", gotForm)
	}
	if gotForm["Body"] != "order confirmed" {
		t.Fatalf("unexpected body %q", gotForm["Body"])
	}
}

func TestSendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"invalid 'To' phone number"}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Send(context.Background(), "+bad", "hi")
	if err == nil {
		t.Fatalf("expected provider error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected domain error, got %T", err)
	}
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", typed.Code())
	}
}

func TestSendValidation(t *testing.T) {
	client, err := NewClient(testConfig("http://unused"), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Send(context.Background(), "", "hi"); err == nil {
		t.Fatalf("expected error for missing recipient")
	}
	if _, err := client.Send(context.Background(), "+1555", "  "); err == nil {
		t.Fatalf("expected error for empty body")
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.AuthToken = ""
	if _, err := NewClient(cfg, nil); err == nil {
		t.Fatalf("expected auth token requirement")
	}
	cfg = testConfig("http://unused")
	cfg.AccountSID = " "
	if _, err := NewClient(cfg, nil); err == nil {
		t.Fatalf("expected account sid requirement")
	}
	cfg = testConfig("http://unused")
	cfg.FromNumber = ""
	if _, err := NewClient(cfg, nil); err == nil {
		t.Fatalf("expected from number requirement")
	}
}

func TestDomainCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeUnauthorized},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		if got := domainCodeForStatus(tt.status); got != tt.code {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.code, got)
		}
	}
}
