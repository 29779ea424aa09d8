package labels

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

type Store struct {
	db *db.DB
}

func NewStore(d *db.DB) *Store { return &Store{db: d} }

type bookLabel struct {
	BookID          int64         `db:"book_id"`
	Title           string        `db:"title"`
	Genre           string        `db:"genre"`
	AuthorFirstName string        `db:"first_name"`
	AuthorLastName  string        `db:"last_name"`
	TotalCopies     sql.NullInt64 `db:"total_copies"`
}

// Rows は指定の本のラベル行を ID 順に返す。1冊でも無ければ NOT_FOUND
func (s *Store) Rows(ctx context.Context, bookIDs []int64) ([]LabelRow, error) {
	ds := s.db.Builder().
		From(goqu.T("books").As("b")).
		Join(goqu.T("authors").As("a"), goqu.On(goqu.I("a.author_id").Eq(goqu.I("b.author_id")))).
		LeftJoin(goqu.T("inventories").As("i"), goqu.On(goqu.I("i.book_id").Eq(goqu.I("b.book_id")))).
		Select("b.book_id", "b.title", "b.genre", "a.first_name", "a.last_name", "i.total_copies").
		Order(goqu.I("b.book_id").Asc())
	if len(bookIDs) > 0 {
		ds = ds.Where(goqu.I("b.book_id").In(bookIDs))
	}
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var found []bookLabel
	err = db.ReadOnly(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &found, q, args...)
	})
	if err != nil {
		return nil, err
	}
	if err := checkAllFound(bookIDs, found); err != nil {
		return nil, err
	}

	rows := make([]LabelRow, 0, len(found))
	for _, f := range found {
		rows = append(rows, LabelRow{
			Title:       f.Title,
			Author:      f.AuthorFirstName + " " + f.AuthorLastName,
			Genre:       f.Genre,
			Barcode:     barcode(f.BookID),
			TotalCopies: int(f.TotalCopies.Int64),
		})
	}
	return rows, nil
}

func checkAllFound(want []int64, got []bookLabel) error {
	seen := make(map[int64]bool, len(got))
	for _, g := range got {
		seen[g.BookID] = true
	}
	for _, id := range want {
		if !seen[id] {
			return apierr.ErrNotFound(fmt.Sprintf("book not found with id %d", id))
		}
	}
	return nil
}
