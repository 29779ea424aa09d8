package loans

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"library-backend/internal/library_mgmt/inventories"
	"library-backend/internal/library_mgmt/rules"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/db"
)

// 金額が変わったとみなす差
var amountTolerance = decimal.New(1, -2)

type Service struct {
	db     *db.DB
	store  *Store
	ledger *inventories.Ledger
	clock  clock.Clock
	id     clock.IDGen
}

func NewService(d *db.DB, ledger *inventories.Ledger, c clock.Clock, ids clock.IDGen) *Service {
	return &Service{
		db:     d,
		store:  NewStore(d),
		ledger: ledger,
		clock:  c,
		id:     ids,
	}
}

// 貸出登録。在庫行をロックしたまま在庫確認 → 重複確認 → 登録 → 在庫更新
func (s *Service) Create(ctx context.Context, req CreateLoanRequest) (*LoanResponse, error) {
	if req.State != nil && normalizeState(*req.State) != rules.StateActive {
		return nil, apierr.ErrField("state", "a new loan must be ACTIVE")
	}
	amount := decimal.Zero
	if req.Amount != nil {
		amount = *req.Amount
	}
	if err := rules.CheckMoney("amount", amount); err != nil {
		return nil, err
	}
	if err := rules.CheckObservations(req.Observations); err != nil {
		return nil, err
	}

	dateLoan, err := rules.ParseDate("date_loan", req.DateLoan)
	if err != nil {
		return nil, err
	}
	dueDate, err := rules.ParseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	if !dateLoan.Equal(rules.Today(s.clock)) {
		return nil, apierr.ErrField("date_loan", "loan date must be today")
	}
	if dueDate.Before(dateLoan) {
		return nil, apierr.ErrField("due_date", "due date cannot be before the loan date")
	}
	if dueDate.After(dateLoan.AddDate(0, 0, rules.MaxLoanDays)) {
		return nil, apierr.ErrField("due_date",
			fmt.Sprintf("due date cannot be more than %d days after the loan date", rules.MaxLoanDays))
	}

	if ok, err := s.store.exists(ctx, "students", "student_id", req.StudentID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apierr.ErrNotFound(fmt.Sprintf("student not found with id %d", req.StudentID))
	}
	if ok, err := s.store.exists(ctx, "books", "book_id", req.BookID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apierr.ErrNotFound(fmt.Sprintf("book not found with id %d", req.BookID))
	}

	ref, err := s.id.New()
	if err != nil {
		return nil, err
	}
	loan := &Loan{
		LoanULID:     ref,
		StudentID:    req.StudentID,
		BookID:       req.BookID,
		DateLoan:     dateLoan,
		DueDate:      dueDate,
		Amount:       amount,
		State:        rules.StateActive,
		Observations: db.NullString(req.Observations),
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		inv, err := s.ledger.Lock(ctx, tx, req.BookID)
		if err != nil {
			if apierr.CodeOf(err) == apierr.CodeNotFound {
				return apierr.ErrBusiness(fmt.Sprintf("book %d has no inventory registered", req.BookID))
			}
			return err
		}
		if inv.AvailableCopies <= 0 {
			return apierr.ErrBusiness(fmt.Sprintf("no copies available for book %d", req.BookID))
		}
		n, err := s.store.countActive(ctx, tx, req.StudentID, req.BookID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apierr.ErrBusiness("the student already has an active loan for this book")
		}
		if err := s.store.insert(ctx, tx, loan); err != nil {
			return err
		}
		_, err = s.ledger.Adjust(ctx, tx, req.BookID, -1, +1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, loan.LoanID)
}

// 貸出更新。ACTIVE → RETURNED は返却登録でのみ行う
func (s *Service) Update(ctx context.Context, id int64, req UpdateLoanRequest) (*LoanResponse, error) {
	if err := rules.CheckObservations(req.Observations); err != nil {
		return nil, err
	}

	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		loan, err := s.store.lockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkImmutable(loan, req); err != nil {
			return err
		}

		returned := loan.ReturnID.Valid || loan.State == rules.StateReturned

		if req.State != nil {
			next := normalizeState(*req.State)
			if next != rules.StateActive && next != rules.StateReturned {
				return apierr.ErrField("state", "state must be ACTIVE or RETURNED")
			}
			if next != loan.State {
				switch {
				case loan.ReturnID.Valid:
					return apierr.ErrBusiness("the state of a loan with a return cannot be changed")
				case loan.State == rules.StateReturned:
					return apierr.ErrBusiness("a returned loan cannot be reactivated")
				case next == rules.StateReturned:
					return apierr.ErrBusiness("register a return to mark a loan as returned")
				}
				loan.State = next
			}
		}

		if req.Amount != nil && req.Amount.Sub(loan.Amount).Abs().GreaterThanOrEqual(amountTolerance) {
			if returned {
				return apierr.ErrBusiness("the amount of a returned loan cannot be changed")
			}
			if err := rules.CheckMoney("amount", *req.Amount); err != nil {
				return err
			}
			loan.Amount = *req.Amount
		}

		if req.Observations != nil {
			loan.Observations = db.NullString(req.Observations)
		}
		return s.store.update(ctx, tx, loan)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*LoanResponse, error) {
	l, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	res := toResponse(l)
	return &res, nil
}

func (s *Service) List(ctx context.Context, f LoanFilter) ([]LoanResponse, error) {
	if f.State != nil {
		st := normalizeState(*f.State)
		f.State = &st
	}
	rows, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]LoanResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return out, nil
}

// 貸出削除。返却済みのみ可。返却を先に消す。在庫は戻さない
func (s *Service) Delete(ctx context.Context, id int64) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		loan, err := s.store.lockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if loan.State != rules.StateReturned {
			return apierr.ErrBusiness(fmt.Sprintf("cannot delete a loan in state %s; return it first", loan.State))
		}
		return s.store.deleteWithReturn(ctx, tx, id)
	})
}

func checkImmutable(loan *Loan, req UpdateLoanRequest) error {
	if req.StudentID != nil && *req.StudentID != loan.StudentID {
		return apierr.ErrBusiness("the student of a loan cannot be changed")
	}
	if req.BookID != nil && *req.BookID != loan.BookID {
		return apierr.ErrBusiness("the book of a loan cannot be changed")
	}
	if req.DateLoan != nil {
		d, err := rules.ParseDate("date_loan", *req.DateLoan)
		if err != nil {
			return err
		}
		if !d.Equal(rules.DateOnly(loan.DateLoan)) {
			return apierr.ErrBusiness("the loan date cannot be changed")
		}
	}
	if req.DueDate != nil {
		d, err := rules.ParseDate("due_date", *req.DueDate)
		if err != nil {
			return err
		}
		if !d.Equal(rules.DateOnly(loan.DueDate)) {
			return apierr.ErrBusiness("the due date cannot be changed")
		}
	}
	return nil
}

func normalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
