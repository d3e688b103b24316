package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil error", nil, "", false},
		{"sqlite duplicate", errors.New("UNIQUE constraint failed: accounts.email"), "", true},
		{"postgres duplicate", errors.New(`duplicate key value violates unique constraint "accounts_email_key"`), "", true},
		{"named constraint match", errors.New(`duplicate key value violates unique constraint "accounts_phone_key"`), "accounts_phone_key", true},
		{"named constraint mismatch", errors.New(`duplicate key value violates unique constraint "accounts_email_key"`), "accounts_phone_key", false},
		{"unrelated error", errors.New("connection refused"), "", false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
