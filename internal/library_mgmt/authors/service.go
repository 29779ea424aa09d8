package authors

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"library-backend/internal/library_mgmt/rules"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/db"
)

var earliestBirth = time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC)

// 著者として登録できる最低年齢
const minAuthorAge = 5

type Service struct {
	db    *db.DB
	store *Store
	clock clock.Clock
}

func NewService(d *db.DB, c clock.Clock) *Service {
	return &Service{db: d, store: NewStore(d), clock: c}
}

func (s *Service) Create(ctx context.Context, req AuthorRequest) (*AuthorResponse, error) {
	a, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmail(ctx, a.Email, 0); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, a); err != nil {
		return nil, err
	}
	res := toResponse(a, nil)
	return &res, nil
}

func (s *Service) Update(ctx context.Context, id int64, req AuthorRequest) (*AuthorResponse, error) {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}
	a, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	a.AuthorID = id
	if err := s.checkEmail(ctx, a.Email, id); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*AuthorResponse, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	books, err := s.store.BookIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	res := toResponse(a, books[id])
	return &res, nil
}

func (s *Service) List(ctx context.Context) ([]AuthorResponse, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, a := range rows {
		ids = append(ids, a.AuthorID)
	}
	books, err := s.store.BookIDs(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]AuthorResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i], books[rows[i].AuthorID]))
	}
	return out, nil
}

// 著者削除。貸出中の本がある、または本が残っている場合は不可
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
			return apierr.ErrBusiness("cannot delete author: some of the author's books have active loans")
		}
		books, err := s.store.CountBooks(ctx, tx, id)
		if err != nil {
			return err
		}
		if books > 0 {
			return apierr.ErrBusiness("cannot delete author with associated books; delete the books first")
		}
		return s.store.delete(ctx, tx, id)
	})
}

func (s *Service) fromRequest(req AuthorRequest) (*Author, error) {
	birth, err := rules.ParseDate("birth_date", req.BirthDate)
	if err != nil {
		return nil, err
	}
	today := rules.Today(s.clock)
	switch {
	case birth.After(today):
		return nil, apierr.ErrField("birth_date", "birth date cannot be in the future")
	case birth.Before(earliestBirth):
		return nil, apierr.ErrField("birth_date", "birth date cannot be before 1500-01-01")
	case birth.After(today.AddDate(-minAuthorAge, 0, 0)):
		return nil, apierr.ErrField("birth_date", "author must be at least 5 years old")
	}
	return &Author{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		BirthDate: birth,
	}, nil
}

func (s *Service) checkEmail(ctx context.Context, email string, exceptID int64) error {
	taken, err := s.store.EmailTaken(ctx, email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apierr.ErrBusiness("an author with that email already exists")
	}
	return nil
}
