package students

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

type Service struct {
	db    *db.DB
	store *Store
}

func NewService(d *db.DB) *Service {
	return &Service{db: d, store: NewStore(d)}
}

func (s *Service) Create(ctx context.Context, req StudentRequest) (*StudentResponse, error) {
	st := fromRequest(req)
	if err := s.checkUnique(ctx, st, 0); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, st); err != nil {
		return nil, err
	}
	res := toResponse(st)
	return &res, nil
}

func (s *Service) Update(ctx context.Context, id int64, req StudentRequest) (*StudentResponse, error) {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}
	st := fromRequest(req)
	st.StudentID = id
	if err := s.checkUnique(ctx, st, id); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, st); err != nil {
		return nil, err
	}
	res := toResponse(st)
	return &res, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*StudentResponse, error) {
	st, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := toResponse(st)
	return &res, nil
}

func (s *Service) List(ctx context.Context) ([]StudentResponse, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StudentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return out, nil
}

// 学生削除。貸出中があれば不可。返却済みの履歴は一緒に消す
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
			return apierr.ErrBusiness(fmt.Sprintf("cannot delete student: they have %d active loans", active))
		}
		return s.store.deleteCascade(ctx, tx, id)
	})
}

func (s *Service) checkUnique(ctx context.Context, st *Student, exceptID int64) error {
	checks := []struct {
		column, value, msg string
	}{
		{"email", st.Email, "a student with that email already exists"},
		{"code", st.Code, "a student with that code already exists"},
		{"phone", st.Phone, "a student with that phone already exists"},
	}
	for _, c := range checks {
		taken, err := s.store.taken(ctx, c.column, c.value, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return apierr.ErrBusiness(c.msg)
		}
	}
	return nil
}

func fromRequest(req StudentRequest) *Student {
	return &Student{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     req.Phone,
		Career:    strings.TrimSpace(req.Career),
		Code:      strings.ToUpper(req.Code),
	}
}
