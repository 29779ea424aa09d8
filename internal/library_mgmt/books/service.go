package books

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"library-backend/internal/library_mgmt/rules"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/db"
)

// 出版日の下限
var earliestPublication = time.Date(868, 1, 1, 0, 0, 0, 0, time.UTC)

type Service struct {
	db    *db.DB
	store *Store
	clock clock.Clock
}

func NewService(d *db.DB, c clock.Clock) *Service {
	return &Service{db: d, store: NewStore(d), clock: c}
}

func (s *Service) Create(ctx context.Context, req BookRequest) (*BookResponse, error) {
	b, err := s.fromRequest(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, b); err != nil {
		return nil, err
	}
	return s.Get(ctx, b.BookID)
}

// 本の更新。著者は変更できない
func (s *Service) Update(ctx context.Context, id int64, req BookRequest) (*BookResponse, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.AuthorID != current.AuthorID {
		return nil, apierr.ErrBusiness("the author of a book cannot be changed")
	}
	b, err := s.fromRequest(ctx, req, id)
	if err != nil {
		return nil, err
	}
	b.BookID = id
	if err := s.store.Update(ctx, b); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*BookResponse, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := toResponse(b)
	return &res, nil
}

func (s *Service) List(ctx context.Context, f BookFilter) ([]BookResponse, error) {
	rows, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]BookResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return out, nil
}

// 本の削除。貸出中があれば不可。返却済みの履歴と在庫は一緒に消す。
// 本の行をロックしてから数えるので、同時の貸出登録とは直列になる
func (s *Service) Delete(ctx context.Context, id int64) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.store.lockByID(ctx, tx, id); err != nil {
			return err
		}
		active, err := s.store.CountActiveLoans(ctx, tx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return apierr.ErrBusiness(fmt.Sprintf("cannot delete book: it has %d active loans", active))
		}
		return s.store.deleteCascade(ctx, tx, id)
	})
}

func (s *Service) fromRequest(ctx context.Context, req BookRequest, exceptID int64) (*Book, error) {
	pub, err := rules.ParseDate("publication_date", req.PublicationDate)
	if err != nil {
		return nil, err
	}
	if pub.Before(earliestPublication) {
		return nil, apierr.ErrField("publication_date", "publication date cannot be before the year 868")
	}
	if pub.After(rules.Today(s.clock)) {
		return nil, apierr.ErrField("publication_date", "publication date cannot be in the future")
	}

	birth, err := s.store.AuthorBirthDate(ctx, req.AuthorID)
	if err != nil {
		return nil, err
	}
	if pub.Before(rules.DateOnly(birth)) {
		return nil, apierr.ErrField("publication_date", "publication date cannot be before the author's birth date")
	}

	title := strings.TrimSpace(req.Title)
	taken, err := s.store.TitleTaken(ctx, req.AuthorID, title, exceptID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apierr.ErrBusiness("this author already has a book with that title")
	}

	return &Book{
		Title:           title,
		Genre:           strings.TrimSpace(req.Genre),
		Editorial:       strings.TrimSpace(req.Editorial),
		PublicationDate: pub,
		AuthorID:        req.AuthorID,
	}, nil
}
