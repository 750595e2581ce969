package state

import (
	"database/sql"
	"errors"
	"testing"
)

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM probe`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestWithTx(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.Exec(`CREATE TABLE probe (v INTEGER)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := withTx(db, func(tx *sql.Tx) error {
		for i := range 3 {
			if _, err := tx.Exec(`INSERT INTO probe (v) VALUES (?)`, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withTx() error: %v", err)
	}
	if n := countRows(t, db); n != 3 {
		t.Errorf("rows after commit = %d, want 3", n)
	}

	boom := errors.New("boom")
	err = withTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO probe (v) VALUES (9)`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("withTx() error = %v, want %v", err, boom)
	}
	if n := countRows(t, db); n != 3 {
		t.Errorf("rows after rollback = %d, want 3", n)
	}
}

func TestNullString(t *testing.T) {
	if got := nullString(sql.NullString{}); got != "" {
		t.Errorf("invalid = %q, want empty", got)
	}
	if got := nullString(sql.NullString{String: "x", Valid: true}); got != "x" {
		t.Errorf("valid = %q, want %q", got, "x")
	}
}
