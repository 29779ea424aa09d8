package loans

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

func (s *Store) selectLoans() *goqu.SelectDataset {
	return s.db.Builder().
		From(goqu.T("loans").As("l")).
		Join(goqu.T("students").As("s"), goqu.On(goqu.I("s.student_id").Eq(goqu.I("l.student_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.book_id").Eq(goqu.I("l.book_id")))).
		LeftJoin(goqu.T("returns").As("r"), goqu.On(goqu.I("r.loan_id").Eq(goqu.I("l.loan_id")))).
		Select(
			"l.loan_id", "l.loan_ulid", "l.student_id", "l.book_id",
			"l.date_loan", "l.due_date", "l.amount", "l.state", "l.observations",
			goqu.I("s.first_name").As("student_first_name"),
			goqu.I("s.last_name").As("student_last_name"),
			goqu.I("b.title").As("book_title"),
			goqu.I("r.return_id").As("return_id"),
		)
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*Loan, error) {
	query, args, err := s.selectLoans().Where(goqu.I("l.loan_id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var l Loan
	if err := q.GetContext(ctx, &l, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound(fmt.Sprintf("loan not found with id %d", id))
		}
		return nil, err
	}
	return &l, nil
}

func (s *Store) List(ctx context.Context, f LoanFilter) ([]Loan, error) {
	ds := s.selectLoans().Order(goqu.I("l.loan_id").Asc())
	if f.State != nil {
		ds = ds.Where(goqu.I("l.state").Eq(*f.State))
	}
	if f.StudentID != nil {
		ds = ds.Where(goqu.I("l.student_id").Eq(*f.StudentID))
	}
	if f.BookID != nil {
		ds = ds.Where(goqu.I("l.book_id").Eq(*f.BookID))
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	out := []Loan{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// lockByID は貸出行を FOR UPDATE で取り、返却IDも添える
func (s *Store) lockByID(ctx context.Context, tx *sqlx.Tx, id int64) (*Loan, error) {
	q := `SELECT loan_id, loan_ulid, student_id, book_id, date_loan, due_date, amount, state, observations
		FROM loans WHERE loan_id = ?` + s.db.LockSuffix()
	var l Loan
	if err := tx.GetContext(ctx, &l, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound(fmt.Sprintf("loan not found with id %d", id))
		}
		return nil, err
	}
	if err := tx.GetContext(ctx, &l.ReturnID, `SELECT return_id FROM returns WHERE loan_id = ?`, id); err != nil &&
		!errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return &l, nil
}

func (s *Store) exists(ctx context.Context, table, idColumn string, id int64) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+table+` WHERE `+idColumn+` = ?`, id)
	return n > 0, err
}

// countActive は同じ学生・同じ本の ACTIVE/OVERDUE 件数
func (s *Store) countActive(ctx context.Context, tx *sqlx.Tx, studentID, bookID int64) (int, error) {
	ph, args := rules.ActivePlaceholders()
	var n int
	err := tx.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM loans WHERE student_id = ? AND book_id = ? AND state IN (`+ph+`)`,
		append([]any{studentID, bookID}, args...)...)
	return n, err
}

func (s *Store) insert(ctx context.Context, tx *sqlx.Tx, l *Loan) error {
	const q = `
	INSERT INTO loans
	(loan_ulid, student_id, book_id, date_loan, due_date, amount, state, observations)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		l.LoanULID, l.StudentID, l.BookID, l.DateLoan, l.DueDate, l.Amount, l.State, l.Observations)
	if err != nil {
		if db.IsForeignKey(err) {
			return apierr.ErrIntegrity("loan references a missing student or book")
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.LoanID = id
	return nil
}

func (s *Store) update(ctx context.Context, tx *sqlx.Tx, l *Loan) error {
	const q = `UPDATE loans SET state = ?, amount = ?, observations = ? WHERE loan_id = ?`
	res, err := tx.ExecContext(ctx, q, l.State, l.Amount, l.Observations, l.LoanID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff != 1 {
		return apierr.ErrInternal("failed to update loans")
	}
	return nil
}

// deleteWithReturn は返却を先に消してから貸出を消す。在庫は触らない
func (s *Store) deleteWithReturn(ctx context.Context, tx *sqlx.Tx, loanID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM returns WHERE loan_id = ?`, loanID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE loan_id = ?`, loanID)
	return err
}
