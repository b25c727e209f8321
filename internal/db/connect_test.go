package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mind-engage/examhall/internal/db"
	"github.com/mind-engage/examhall/internal/db/dbtest"
)

func TestParseDriver(t *testing.T) {
	cases := map[string]db.Driver{
		"":         db.DriverSQLite,
		"sqlite3":  db.DriverSQLite,
		"PGX":      db.DriverPostgres,
		"postgres": db.DriverPostgres,
	}
	for in, want := range cases {
		got, err := db.ParseDriver(in)
		if err != nil || got != want {
			t.Fatalf("ParseDriver(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := db.ParseDriver("oracle"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestAttemptUniquenessIsEnforcedByStorage(t *testing.T) {
	dbh := dbtest.Open(t)
	ctx := context.Background()
	insert := `INSERT INTO attempts (id, quiz_id, student_id, answers_json, started_at) VALUES ($1,$2,$3,'{}',$4)`

	if _, err := dbh.ExecContext(ctx, insert, "a1", "q1", "s1", 1); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := dbh.ExecContext(ctx, insert, "a2", "q1", "s1", 2)
	if err == nil {
		t.Fatalf("expected unique violation for duplicate (quiz, student)")
	}
	if !db.IsUniqueViolation(err) {
		t.Fatalf("IsUniqueViolation(%v) = false", err)
	}
	if _, err := dbh.ExecContext(ctx, insert, "a3", "q1", "s2", 3); err != nil {
		t.Fatalf("different student should insert: %v", err)
	}
}

func TestIsUniqueViolationNil(t *testing.T) {
	if db.IsUniqueViolation(nil) || db.IsUniqueViolation(errors.New("nope")) {
		t.Fatalf("unexpected positive")
	}
}
