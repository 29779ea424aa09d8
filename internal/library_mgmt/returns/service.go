package returns

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"library-backend/internal/library_mgmt/inventories"
	"library-backend/internal/library_mgmt/rules"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/db"
)

// ImmutableMessage は PUT /returns/:id に返す固定文言
const ImmutableMessage = "Returns are immutable once created."

type Service struct {
	db     *db.DB
	store  *Store
	ledger *inventories.Ledger
	clock  clock.Clock
	id     clock.IDGen
	log    *zap.Logger
}

func NewService(d *db.DB, ledger *inventories.Ledger, c clock.Clock, ids clock.IDGen, log *zap.Logger) *Service {
	return &Service{
		db:     d,
		store:  NewStore(d),
		ledger: ledger,
		clock:  c,
		id:     ids,
		log:    log,
	}
}

// 返却登録。返却の登録・貸出の RETURNED 化・在庫の戻しを1つの Tx で行う
func (s *Service) Create(ctx context.Context, req CreateReturnRequest) (*ReturnResponse, error) {
	penalty := decimal.Zero
	if req.Penalty != nil {
		penalty = *req.Penalty
	}
	if err := rules.CheckMoney("penalty", penalty); err != nil {
		return nil, err
	}
	if err := rules.CheckObservations(req.Observations); err != nil {
		return nil, err
	}
	dateReturn := rules.Today(s.clock)
	if req.DateReturn != nil {
		d, err := s.parseReturnDate(*req.DateReturn)
		if err != nil {
			return nil, err
		}
		dateReturn = d
	}

	ref, err := s.id.New()
	if err != nil {
		return nil, err
	}
	ret := &Return{
		ReturnULID:   ref,
		LoanID:       req.LoanID,
		DateReturn:   dateReturn,
		Observations: db.NullString(req.Observations),
		Penalty:      penalty,
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		loan, err := s.store.lockLoan(ctx, tx, req.LoanID)
		if err != nil {
			return err
		}
		exists, err := s.store.hasReturn(ctx, tx, loan.LoanID)
		if err != nil {
			return err
		}
		if exists {
			return apierr.ErrConflict(fmt.Sprintf("loan %d already has a return", loan.LoanID))
		}
		if dateReturn.Before(rules.DateOnly(loan.DateLoan)) {
			return apierr.ErrField("date_return", "return date cannot be before the loan date")
		}
		if err := s.store.insert(ctx, tx, ret); err != nil {
			return err
		}

		if !slices.Contains(rules.ActiveStates, loan.State) {
			// 返却を消したあとの再登録。コピーはすでに在庫に戻っている
			s.log.Warn("loan already returned, inventory not credited again",
				zap.Int64("loan_id", loan.LoanID),
				zap.Int64("book_id", loan.BookID))
			return nil
		}
		if err := s.store.markLoanReturned(ctx, tx, loan.LoanID); err != nil {
			return err
		}
		_, err = s.ledger.Adjust(ctx, tx, loan.BookID, +1, -1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, ret.ReturnID)
}

// Update は返却日・備考・延滞金の修正。対象の貸出は変えられない
func (s *Service) Update(ctx context.Context, id int64, req UpdateReturnRequest) (*ReturnResponse, error) {
	if err := rules.CheckObservations(req.Observations); err != nil {
		return nil, err
	}
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		ret, err := s.store.lockReturn(ctx, tx, id)
		if err != nil {
			return err
		}
		if req.LoanID != nil && *req.LoanID != ret.LoanID {
			return apierr.ErrBusiness("the loan of a return cannot be changed")
		}
		if req.DateReturn != nil {
			d, err := s.parseReturnDate(*req.DateReturn)
			if err != nil {
				return err
			}
			loan, err := s.store.lockLoan(ctx, tx, ret.LoanID)
			if err != nil {
				return err
			}
			if d.Before(rules.DateOnly(loan.DateLoan)) {
				return apierr.ErrField("date_return", "return date cannot be before the loan date")
			}
			ret.DateReturn = d
		}
		if req.Penalty != nil {
			if err := rules.CheckMoney("penalty", *req.Penalty); err != nil {
				return err
			}
			ret.Penalty = *req.Penalty
		}
		if req.Observations != nil {
			ret.Observations = db.NullString(req.Observations)
		}
		return s.store.update(ctx, tx, ret)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*ReturnResponse, error) {
	r, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	res := toResponse(r)
	return &res, nil
}

func (s *Service) List(ctx context.Context, f ReturnFilter) ([]ReturnResponse, error) {
	rows, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]ReturnResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return out, nil
}

// 返却削除。在庫も貸出の状態も戻さない
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.GetByID(ctx, s.db, id); err != nil {
		return err
	}
	return s.store.delete(ctx, id)
}

func (s *Service) parseReturnDate(v string) (time.Time, error) {
	d, err := rules.ParseDate("date_return", v)
	if err != nil {
		return time.Time{}, err
	}
	if d.After(rules.Today(s.clock)) {
		return time.Time{}, apierr.ErrField("date_return", "return date cannot be in the future")
	}
	return d, nil
}
