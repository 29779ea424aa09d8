package authors

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

const selectAuthor = `SELECT author_id, first_name, last_name, email, birth_date FROM authors`

func (s *Store) GetByID(ctx context.Context, id int64) (*Author, error) {
	var a Author
	if err := s.db.GetContext(ctx, &a, selectAuthor+` WHERE author_id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound(fmt.Sprintf("author not found with id %d", id))
		}
		return nil, err
	}
	return &a, nil
}

func (s *Store) List(ctx context.Context) ([]Author, error) {
	out := []Author{}
	if err := s.db.SelectContext(ctx, &out, selectAuthor+` ORDER BY author_id`); err != nil {
		return nil, err
	}
	return out, nil
}

// BookIDs は著者ごとの本IDを引く
func (s *Store) BookIDs(ctx context.Context, authorIDs ...int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}
	q, args, err := s.db.Builder().
		From("books").
		Select("author_id", "book_id").
		Where(goqu.C("author_id").In(authorIDs)).
		Order(goqu.C("book_id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}
	var rows []struct {
		AuthorID int64 `db:"author_id"`
		BookID   int64 `db:"book_id"`
	}
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.AuthorID] = append(out[r.AuthorID], r.BookID)
	}
	return out, nil
}

// EmailTaken は自分以外に同じメールの著者がいるか
func (s *Store) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM authors WHERE email = ? AND author_id <> ?`, email, exceptID)
	return n > 0, err
}

func (s *Store) Insert(ctx context.Context, a *Author) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO authors (first_name, last_name, email, birth_date) VALUES (?, ?, ?, ?)`,
		a.FirstName, a.LastName, a.Email, a.BirthDate)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return apierr.ErrIntegrity("an author with that email already exists")
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.AuthorID = id
	return nil
}

func (s *Store) Update(ctx context.Context, a *Author) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE authors SET first_name = ?, last_name = ?, email = ?, birth_date = ? WHERE author_id = ?`,
		a.FirstName, a.LastName, a.Email, a.BirthDate, a.AuthorID)
	if err != nil && db.IsDuplicateKey(err) {
		return apierr.ErrIntegrity("an author with that email already exists")
	}
	return err
}

// lockByID は著者の行を FOR UPDATE で取る。本の登録の外部キー確認はこの行を待つ
func (s *Store) lockByID(ctx context.Context, tx *sqlx.Tx, id int64) error {
	var got int64
	err := tx.GetContext(ctx, &got, `SELECT author_id FROM authors WHERE author_id = ?`+s.db.LockSuffix(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return apierr.ErrNotFound(fmt.Sprintf("author not found with id %d", id))
	}
	return err
}

func (s *Store) delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM authors WHERE author_id = ?`, id)
	if err != nil && db.IsForeignKey(err) {
		return apierr.ErrIntegrity("author is still referenced by books")
	}
	return err
}

// CountActiveLoans は著者の本に対する ACTIVE/OVERDUE の貸出件数
func (s *Store) CountActiveLoans(ctx context.Context, q db.DBTX, authorID int64) (int, error) {
	ph, args := rules.ActivePlaceholders()
	var n int
	err := q.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM loans l
		JOIN books b ON b.book_id = l.book_id
		WHERE b.author_id = ? AND l.state IN (`+ph+`)`,
		append([]any{authorID}, args...)...)
	return n, err
}

func (s *Store) CountBooks(ctx context.Context, q db.DBTX, authorID int64) (int, error) {
	var n int
	err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM books WHERE author_id = ?`, authorID)
	return n, err
}
