package inventories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"library-backend/internal/library_mgmt/rules"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

type Store struct {
	db *db.DB
}

func NewStore(d *db.DB) *Store { return &Store{db: d} }

const selectInventory = `
	SELECT i.inventory_id, i.book_id, b.title AS book_title,
	       i.total_copies, i.available_copies, i.borrowed_copies,
	       i.observations, i.last_updated
	FROM inventories i
	JOIN books b ON b.book_id = i.book_id`

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*Inventory, error) {
	var inv Inventory
	if err := q.GetContext(ctx, &inv, selectInventory+` WHERE i.inventory_id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound(fmt.Sprintf("inventory not found with id %d", id))
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Store) GetByBook(ctx context.Context, q db.DBTX, bookID int64) (*Inventory, error) {
	var inv Inventory
	if err := q.GetContext(ctx, &inv, selectInventory+` WHERE i.book_id = ?`, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound(fmt.Sprintf("inventory not found for book %d", bookID))
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Store) List(ctx context.Context) ([]Inventory, error) {
	out := []Inventory{}
	if err := s.db.SelectContext(ctx, &out, selectInventory+` ORDER BY i.inventory_id`); err != nil {
		return nil, err
	}
	return out, nil
}

// lockByBook は在庫行を FOR UPDATE で取る（書名は埋めない）
func (s *Store) lockByBook(ctx context.Context, tx *sqlx.Tx, bookID int64) (*Inventory, error) {
	q := `SELECT inventory_id, book_id, total_copies, available_copies, borrowed_copies, observations, last_updated
		FROM inventories WHERE book_id = ? LIMIT 1` + s.db.LockSuffix()
	var inv Inventory
	if err := tx.GetContext(ctx, &inv, q, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound(fmt.Sprintf("inventory not found for book %d", bookID))
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Store) insert(ctx context.Context, tx *sqlx.Tx, inv *Inventory) error {
	const q = `
	INSERT INTO inventories
	(book_id, total_copies, available_copies, borrowed_copies, observations, last_updated)
	VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		inv.BookID, inv.TotalCopies, inv.AvailableCopies, inv.BorrowedCopies,
		inv.Observations, inv.LastUpdated)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return apierr.ErrConflict(fmt.Sprintf("book %d already has an inventory", inv.BookID))
		}
		if db.IsForeignKey(err) {
			return apierr.ErrNotFound(fmt.Sprintf("book not found with id %d", inv.BookID))
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	inv.InventoryID = id
	return nil
}

func (s *Store) update(ctx context.Context, tx *sqlx.Tx, inv *Inventory) error {
	const q = `
	UPDATE inventories
	SET total_copies = ?, available_copies = ?, borrowed_copies = ?, observations = ?, last_updated = ?
	WHERE inventory_id = ?`
	res, err := tx.ExecContext(ctx, q,
		inv.TotalCopies, inv.AvailableCopies, inv.BorrowedCopies,
		inv.Observations, inv.LastUpdated, inv.InventoryID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff != 1 {
		return apierr.ErrInternal("failed to update inventories")
	}
	return nil
}

func (s *Store) delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM inventories WHERE inventory_id = ?`, id)
	return err
}

// CountActiveLoans は book の ACTIVE/OVERDUE な貸出件数
func CountActiveLoans(ctx context.Context, q db.DBTX, bookID int64) (int, error) {
	ph, args := rules.ActivePlaceholders()
	var n int
	err := q.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM loans WHERE book_id = ? AND state IN (`+ph+`)`,
		append([]any{bookID}, args...)...)
	return n, err
}

func bookExists(ctx context.Context, q db.DBTX, bookID int64) (bool, error) {
	var n int
	if err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM books WHERE book_id = ?`, bookID); err != nil {
		return false, err
	}
	return n > 0, nil
}
