package migrate

import "testing"

func TestSetDriverPicksDialect(t *testing.T) {
	t.Cleanup(func() { SetDriver("postgres") })

	SetDriver("sqlite")
	if dialect != "sqlite3" {
		t.Fatalf("expected sqlite3 dialect, got %q", dialect)
	}

	SetDriver("postgres")
	if dialect != "postgres" {
		t.Fatalf("expected postgres dialect, got %q", dialect)
	}

	SetDriver("")
	if dialect != "postgres" {
		t.Fatalf("unknown drivers must fall back to postgres, got %q", dialect)
	}
}
