package config

import "testing"

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BAZAARLY_APP_ENV", "dev")
	t.Setenv("BAZAARLY_APP_PORT", "8080")
	t.Setenv("BAZAARLY_JWT_SECRET", "test-secret-test-secret")
}

func TestLoadAssemblesPostgresDSN(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BAZAARLY_DB_HOST", "localhost")
	t.Setenv("BAZAARLY_DB_USER", "bazaarly")
	t.Setenv("BAZAARLY_DB_PASSWORD", "secret")
	t.Setenv("BAZAARLY_DB_NAME", "bazaarly")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DB.Driver != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		t.Fatalf("expected assembled DSN")
	}
}

func TestLoadSQLiteFlagOverridesDriver(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BAZAARLY_USE_SQLITE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		t.Fatalf("expected a default sqlite DSN")
	}
}

func TestLoadSQLiteFlagKeepsExplicitDSN(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BAZAARLY_USE_SQLITE", "true")
	t.Setenv("BAZAARLY_DB_DSN", "file:custom.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN != "file:custom.db" {
		t.Fatalf("explicit DSN must win, got %q", cfg.DB.DSN)
	}
}

func TestLoadFailsWithoutDatabaseSettings(t *testing.T) {
	setBaseEnv(t)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when no DSN and no connection parts are set")
	}
}
