// Package testutil opens throwaway SQLite databases and seeds rows for tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/db"
)

var seq atomic.Int64

// Today is the fixed "now" used by service tests.
var Today = time.Date(2025, 10, 15, 10, 30, 0, 0, time.UTC)

func Clock() clock.Fixed { return clock.Fixed{T: Today} }

// Date formats Today shifted by days as YYYY-MM-DD.
func Date(days int) string { return Today.AddDate(0, 0, days).Format("2006-01-02") }

// TempDB returns a migrated SQLite database that is removed with the test.
func TempDB(t *testing.T) *db.DB {
	t.Helper()
	conn, err := db.Connect(db.DatabaseConfig{
		Driver: db.DialectSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn))
	return conn
}

func exec(t *testing.T, d *db.DB, q string, args ...any) int64 {
	t.Helper()
	res, err := d.Exec(q, args...)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func SeedAuthor(t *testing.T, d *db.DB, email string) int64 {
	t.Helper()
	return exec(t, d,
		`INSERT INTO authors (first_name, last_name, email, birth_date) VALUES (?, ?, ?, ?)`,
		"Gabriel", "Garcia", email, time.Date(1927, 3, 6, 0, 0, 0, 0, time.UTC))
}

func SeedBook(t *testing.T, d *db.DB, authorID int64, title string) int64 {
	t.Helper()
	return exec(t, d,
		`INSERT INTO books (title, genre, editorial, publication_date, author_id) VALUES (?, ?, ?, ?, ?)`,
		title, "Novela", "Sudamericana", time.Date(1967, 5, 30, 0, 0, 0, 0, time.UTC), authorID)
}

func SeedStudent(t *testing.T, d *db.DB, code, email, phone string) int64 {
	t.Helper()
	return exec(t, d,
		`INSERT INTO students (first_name, last_name, email, phone, career, code) VALUES (?, ?, ?, ?, ?, ?)`,
		"Ana", "Lopez", email, phone, "Ingenieria", code)
}

func SeedInventory(t *testing.T, d *db.DB, bookID int64, total, available, borrowed int) int64 {
	t.Helper()
	return exec(t, d, `
		INSERT INTO inventories (book_id, total_copies, available_copies, borrowed_copies, last_updated)
		VALUES (?, ?, ?, ?, ?)`,
		bookID, total, available, borrowed, Today)
}

// SeedLoan inserts a loan row directly, bypassing the inventory ledger.
func SeedLoan(t *testing.T, d *db.DB, studentID, bookID int64, state string) int64 {
	t.Helper()
	day := time.Date(Today.Year(), Today.Month(), Today.Day(), 0, 0, 0, 0, time.UTC)
	return exec(t, d, `
		INSERT INTO loans (loan_ulid, student_id, book_id, date_loan, due_date, amount, state)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fmt.Sprintf("S%025d", seq.Add(1)), studentID, bookID, day, day.AddDate(0, 0, 7), "0", state)
}

// Counts reads (total, available, borrowed) of a book's inventory.
func Counts(t *testing.T, d *db.DB, bookID int64) [3]int {
	t.Helper()
	var c struct {
		Total     int `db:"total_copies"`
		Available int `db:"available_copies"`
		Borrowed  int `db:"borrowed_copies"`
	}
	require.NoError(t, d.Get(&c,
		`SELECT total_copies, available_copies, borrowed_copies FROM inventories WHERE book_id = ?`, bookID))
	return [3]int{c.Total, c.Available, c.Borrowed}
}

// StaticIDs hands out predictable references.
type StaticIDs struct{ n int }

func (s *StaticIDs) New() (string, error) {
	s.n++
	return fmt.Sprintf("T%025d", s.n), nil
}
