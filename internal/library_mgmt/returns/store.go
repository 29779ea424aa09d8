package returns

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"library-backend/internal/library_mgmt/rules"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

type Store struct {
	db *db.DB
}

func NewStore(d *db.DB) *Store { return &Store{db: d} }

func (s *Store) selectReturns() *goqu.SelectDataset {
	return s.db.Builder().
		From(goqu.T("returns").As("r")).
		Join(goqu.T("loans").As("l"), goqu.On(goqu.I("l.loan_id").Eq(goqu.I("r.loan_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.book_id").Eq(goqu.I("l.book_id")))).
		Select(
			"r.return_id", "r.return_ulid", "r.loan_id", "r.date_return", "r.observations", "r.penalty",
			"l.student_id", "l.book_id",
			goqu.I("b.title").As("book_title"),
		)
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*Return, error) {
	query, args, err := s.selectReturns().Where(goqu.I("r.return_id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var r Return
	if err := q.GetContext(ctx, &r, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound(fmt.Sprintf("return not found with id %d", id))
		}
		return nil, err
	}
	return &r, nil
}

func (s *Store) List(ctx context.Context, f ReturnFilter) ([]Return, error) {
	ds := s.selectReturns().Order(goqu.I("r.return_id").Asc())
	if f.LoanID != nil {
		ds = ds.Where(goqu.I("r.loan_id").Eq(*f.LoanID))
	}
	if f.StudentID != nil {
		ds = ds.Where(goqu.I("l.student_id").Eq(*f.StudentID))
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	out := []Return{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// lockLoan は返却対象の貸出行を FOR UPDATE で取る
func (s *Store) lockLoan(ctx context.Context, tx *sqlx.Tx, loanID int64) (*loanRow, error) {
	q := `SELECT loan_id, book_id, state, date_loan FROM loans WHERE loan_id = ?` + s.db.LockSuffix()
	var l loanRow
	if err := tx.GetContext(ctx, &l, q, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound(fmt.Sprintf("loan not found with id %d", loanID))
		}
		return nil, err
	}
	return &l, nil
}

func (s *Store) lockReturn(ctx context.Context, tx *sqlx.Tx, id int64) (*Return, error) {
	q := `SELECT return_id, return_ulid, loan_id, date_return, observations, penalty
		FROM returns WHERE return_id = ?` + s.db.LockSuffix()
	var r Return
	if err := tx.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound(fmt.Sprintf("return not found with id %d", id))
		}
		return nil, err
	}
	return &r, nil
}

func (s *Store) hasReturn(ctx context.Context, tx *sqlx.Tx, loanID int64) (bool, error) {
	var n int
	err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM returns WHERE loan_id = ?`, loanID)
	return n > 0, err
}

func (s *Store) insert(ctx context.Context, tx *sqlx.Tx, r *Return) error {
	const q = `
	INSERT INTO returns (return_ulid, loan_id, date_return, observations, penalty)
	VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, r.ReturnULID, r.LoanID, r.DateReturn, r.Observations, r.Penalty)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return apierr.ErrConflict(fmt.Sprintf("loan %d already has a return", r.LoanID))
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ReturnID = id
	return nil
}

func (s *Store) markLoanReturned(ctx context.Context, tx *sqlx.Tx, loanID int64) error {
	res, err := tx.ExecContext(ctx, `UPDATE loans SET state = ? WHERE loan_id = ?`, rules.StateReturned, loanID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff != 1 {
		return apierr.ErrInternal("failed to update loans.state")
	}
	return nil
}

func (s *Store) update(ctx context.Context, tx *sqlx.Tx, r *Return) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE returns SET date_return = ?, observations = ?, penalty = ? WHERE return_id = ?`,
		r.DateReturn, r.Observations, r.Penalty, r.ReturnID)
	return err
}

func (s *Store) delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM returns WHERE return_id = ?`, id)
	return err
}
