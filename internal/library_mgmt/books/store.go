package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

// BookFilter は一覧の絞り込み条件
type BookFilter struct {
	AuthorID *int64
	Genre    *string
}

func (s *Store) selectBooks() *goqu.SelectDataset {
	return s.db.Builder().
		From(goqu.T("books").As("b")).
		Join(goqu.T("authors").As("a"), goqu.On(goqu.I("a.author_id").Eq(goqu.I("b.author_id")))).
		Select(
			"b.book_id", "b.title", "b.genre", "b.editorial", "b.publication_date", "b.author_id",
			goqu.I("a.first_name").As("author_first_name"),
			goqu.I("a.last_name").As("author_last_name"),
		)
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Book, error) {
	q, args, err := s.selectBooks().Where(goqu.I("b.book_id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var b Book
	if err := s.db.GetContext(ctx, &b, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound(fmt.Sprintf("book not found with id %d", id))
		}
		return nil, err
	}
	return &b, nil
}

func (s *Store) List(ctx context.Context, f BookFilter) ([]Book, error) {
	ds := s.selectBooks().Order(goqu.I("b.book_id").Asc())
	if f.AuthorID != nil {
		ds = ds.Where(goqu.I("b.author_id").Eq(*f.AuthorID))
	}
	if f.Genre != nil {
		ds = ds.Where(goqu.I("b.genre").Eq(*f.Genre))
	}
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	out := []Book{}
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// AuthorBirthDate は著者の生年月日。著者がいなければ NOT_FOUND
func (s *Store) AuthorBirthDate(ctx context.Context, authorID int64) (time.Time, error) {
	var t time.Time
	if err := s.db.GetContext(ctx, &t, `SELECT birth_date FROM authors WHERE author_id = ?`, authorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, apierr.ErrNotFound(fmt.Sprintf("author not found with id %d", authorID))
		}
		return time.Time{}, err
	}
	return t, nil
}

// TitleTaken は同じ著者に同じ題名の本が（自分以外に）あるか
func (s *Store) TitleTaken(ctx context.Context, authorID int64, title string, exceptID int64) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM books WHERE author_id = ? AND title = ? AND book_id <> ?`,
		authorID, title, exceptID)
	return n > 0, err
}

func (s *Store) Insert(ctx context.Context, b *Book) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO books (title, genre, editorial, publication_date, author_id)
		VALUES (?, ?, ?, ?, ?)`,
		b.Title, b.Genre, b.Editorial, b.PublicationDate, b.AuthorID)
	if err != nil {
		return mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.BookID = id
	return nil
}

func (s *Store) Update(ctx context.Context, b *Book) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE books SET title = ?, genre = ?, editorial = ?, publication_date = ?
		WHERE book_id = ?`,
		b.Title, b.Genre, b.Editorial, b.PublicationDate, b.BookID)
	if err != nil {
		return mapWriteErr(err)
	}
	return nil
}

// lockByID は本の行を FOR UPDATE で取る。貸出登録の外部キー確認はこの行を待つ
func (s *Store) lockByID(ctx context.Context, tx *sqlx.Tx, id int64) error {
	var got int64
	err := tx.GetContext(ctx, &got, `SELECT book_id FROM books WHERE book_id = ?`+s.db.LockSuffix(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return apierr.ErrNotFound(fmt.Sprintf("book not found with id %d", id))
	}
	return err
}

func (s *Store) CountActiveLoans(ctx context.Context, q db.DBTX, bookID int64) (int, error) {
	ph, args := rules.ActivePlaceholders()
	var n int
	err := q.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM loans WHERE book_id = ? AND state IN (`+ph+`)`,
		append([]any{bookID}, args...)...)
	return n, err
}

// deleteCascade は返却 → 貸出 → 在庫 → 本 の順で消す
func (s *Store) deleteCascade(ctx context.Context, tx *sqlx.Tx, bookID int64) error {
	steps := []string{
		`DELETE FROM returns WHERE loan_id IN (SELECT loan_id FROM loans WHERE book_id = ?)`,
		`DELETE FROM loans WHERE book_id = ?`,
		`DELETE FROM inventories WHERE book_id = ?`,
		`DELETE FROM books WHERE book_id = ?`,
	}
	for _, q := range steps {
		if _, err := tx.ExecContext(ctx, q, bookID); err != nil {
			return err
		}
	}
	return nil
}

func mapWriteErr(err error) error {
	switch {
	case db.IsDuplicateKey(err):
		return apierr.ErrIntegrity("a book with that title already exists for this author")
	case db.IsForeignKey(err):
		return apierr.ErrIntegrity("referenced author does not exist")
	default:
		return err
	}
}
