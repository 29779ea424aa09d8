package genres

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"library-backend/internal/platform/db"
)

type Store struct{ db *db.DB }

func NewStore(d *db.DB) *Store { return &Store{db: d} }

// 在庫の無い本も数えるので inventories は LEFT JOIN
func (s *Store) summary() *goqu.SelectDataset {
	return s.db.Builder().
		From(goqu.T("books").As("b")).
		LeftJoin(goqu.T("inventories").As("i"), goqu.On(goqu.I("i.book_id").Eq(goqu.I("b.book_id")))).
		Select(
			goqu.I("b.genre"),
			goqu.COUNT("b.book_id").As("book_count"),
			goqu.COALESCE(goqu.SUM("i.total_copies"), 0).As("total_copies"),
			goqu.COALESCE(goqu.SUM("i.available_copies"), 0).As("available_copies"),
		).
		GroupBy(goqu.I("b.genre"))
}

func (s *Store) List(ctx context.Context) ([]Genre, error) {
	q, args, err := s.summary().Order(goqu.I("b.genre").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	out := []Genre{}
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Get は見つからなければ nil
func (s *Store) Get(ctx context.Context, name string) (*Genre, error) {
	q, args, err := s.summary().Where(goqu.I("b.genre").Eq(name)).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var rows []Genre
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
