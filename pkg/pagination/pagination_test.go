package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := NormalizeLimit(-5); got != DefaultLimit {
		t.Fatalf("negative limit should fall back to default, got %d", got)
	}
	if got := NormalizeLimit(MaxLimit + 50); got != MaxLimit {
		t.Fatalf("expected max cap, got %d", got)
	}
	if got := NormalizeLimit(7); got != 7 {
		t.Fatalf("in-range limit should pass through, got %d", got)
	}
	if got := LimitWithBuffer(7); got != 8 {
		t.Fatalf("expected buffered limit 8, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{
		CreatedAt: time.Date(2025, 6, 1, 12, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}
	encoded := EncodeCursor(want)
	got, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got == nil {
		t.Fatalf("expected cursor, got nil")
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || got.ID != want.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, want)
	}
}

func TestParseCursorInvalid(t *testing.T) {
	if c, err := ParseCursor("   "); err != nil || c != nil {
		t.Fatalf("blank cursor should be nil without error, got %v %v", c, err)
	}
	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := ParseCursor("bm8tcGlwZQ=="); err == nil {
		t.Fatalf("expected format error for cursor without separator")
	}
}

func TestBuildPage(t *testing.T) {
	type row struct {
		id        uuid.UUID
		createdAt time.Time
	}
	rows := make([]row, 4)
	for i := range rows {
		rows[i] = row{id: uuid.New(), createdAt: time.Now().Add(-time.Duration(i) * time.Minute)}
	}
	cursorOf := func(r row) Cursor { return Cursor{CreatedAt: r.createdAt, ID: r.id} }

	page := BuildPage(rows, 3, cursorOf)
	if len(page.Items) != 3 {
		t.Fatalf("expected trimmed page of 3, got %d", len(page.Items))
	}
	if page.NextCursor == "" {
		t.Fatalf("expected next cursor for over-fetched page")
	}
	next, err := ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("next cursor should parse: %v", err)
	}
	if next.ID != rows[2].id {
		t.Fatalf("next cursor should point at last retained row")
	}

	page = BuildPage(rows[:2], 3, cursorOf)
	if len(page.Items) != 2 || page.NextCursor != "" {
		t.Fatalf("final page should keep all rows and omit cursor")
	}
}
