package inventories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"library-backend/internal/library_mgmt/rules"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/db"
)

type Service struct {
	db    *db.DB
	store *Store
	clock clock.Clock
}

func NewService(d *db.DB, c clock.Clock) *Service {
	return &Service{db: d, store: NewStore(d), clock: c}
}

// 在庫登録
func (s *Service) Create(ctx context.Context, req CreateInventoryRequest) (*InventoryResponse, error) {
	total := *req.TotalCopies
	if err := checkTotal(total); err != nil {
		return nil, err
	}
	if req.BorrowedCopies != nil && *req.BorrowedCopies != 0 {
		return nil, apierr.ErrField("borrowed_copies", "borrowed copies must be 0 when creating an inventory")
	}
	available := total
	if req.AvailableCopies != nil {
		available = *req.AvailableCopies
	}
	switch {
	case available < 0:
		return nil, apierr.ErrField("available_copies", "available copies cannot be negative")
	case available > total:
		return nil, apierr.ErrField("available_copies", "available copies cannot exceed total copies")
	case available != total:
		// 貸出 0 件なので available == total でないと available + borrowed == total が崩れる
		return nil, apierr.ErrField("available_copies", "available copies must equal total copies when nothing is borrowed")
	}
	if err := rules.CheckObservations(req.Observations); err != nil {
		return nil, err
	}

	inv := &Inventory{
		BookID:          req.BookID,
		TotalCopies:     total,
		AvailableCopies: available,
		BorrowedCopies:  0,
		Observations:    db.NullString(req.Observations),
		LastUpdated:     s.clock.Now().UTC(),
	}

	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		ok, err := bookExists(ctx, tx, req.BookID)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.ErrNotFound(fmt.Sprintf("book not found with id %d", req.BookID))
		}
		if _, err := s.store.GetByBook(ctx, tx, req.BookID); err == nil {
			return apierr.ErrConflict(fmt.Sprintf("book %d already has an inventory", req.BookID))
		} else if apierr.CodeOf(err) != apierr.CodeNotFound {
			return err
		}
		return s.store.insert(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, inv.InventoryID)
}

// 在庫更新。borrowed は常に実際の貸出件数から再計算する
func (s *Service) Update(ctx context.Context, id int64, req UpdateInventoryRequest) (*InventoryResponse, error) {
	current, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if req.BookID != nil && *req.BookID != current.BookID {
		return nil, apierr.ErrBusiness("the book of an inventory cannot be changed")
	}
	if err := rules.CheckObservations(req.Observations); err != nil {
		return nil, err
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		inv, err := s.store.lockByBook(ctx, tx, current.BookID)
		if err != nil {
			return err
		}
		live, err := CountActiveLoans(ctx, tx, inv.BookID)
		if err != nil {
			return err
		}

		total := inv.TotalCopies
		if req.TotalCopies != nil {
			total = *req.TotalCopies
		}
		if err := checkTotal(total); err != nil {
			return err
		}
		if req.BorrowedCopies != nil {
			if *req.BorrowedCopies < 0 {
				return apierr.ErrField("borrowed_copies", "borrowed copies cannot be negative")
			}
			if *req.BorrowedCopies > live {
				return apierr.ErrField("borrowed_copies",
					fmt.Sprintf("borrowed copies cannot exceed the %d active loans", live))
			}
		}
		if total < live {
			return apierr.ErrField("total_copies",
				fmt.Sprintf("total copies cannot be lower than the %d borrowed copies", live))
		}

		available := total - live
		if req.AvailableCopies != nil {
			switch a := *req.AvailableCopies; {
			case a < 0:
				return apierr.ErrField("available_copies", "available copies cannot be negative")
			case a > total:
				return apierr.ErrField("available_copies", "available copies cannot exceed total copies")
			case a != available:
				return apierr.ErrField("available_copies",
					fmt.Sprintf("available copies must be %d (total minus borrowed)", available))
			}
		}

		inv.TotalCopies = total
		inv.AvailableCopies = available
		inv.BorrowedCopies = live
		if req.Observations != nil {
			inv.Observations = db.NullString(req.Observations)
		}
		inv.LastUpdated = s.clock.Now().UTC()
		return s.store.update(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*InventoryResponse, error) {
	inv, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	res := toResponse(inv)
	return &res, nil
}

func (s *Service) GetByBook(ctx context.Context, bookID int64) (*InventoryResponse, error) {
	inv, err := s.store.GetByBook(ctx, s.db, bookID)
	if err != nil {
		return nil, err
	}
	res := toResponse(inv)
	return &res, nil
}

func (s *Service) List(ctx context.Context) ([]InventoryResponse, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]InventoryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return out, nil
}

// 在庫削除。貸出中の本があれば不可
func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		inv, err := s.store.lockByBook(ctx, tx, current.BookID)
		if err != nil {
			return err
		}
		live, err := CountActiveLoans(ctx, tx, inv.BookID)
		if err != nil {
			return err
		}
		if live > 0 || inv.BorrowedCopies > 0 {
			return apierr.ErrConflict(fmt.Sprintf(
				"cannot delete inventory: book %d has %d active loans", inv.BookID, max(live, inv.BorrowedCopies)))
		}
		return s.store.delete(ctx, tx, inv.InventoryID)
	})
}

func checkTotal(total int) error {
	if total < 0 {
		return apierr.ErrField("total_copies", "total copies cannot be negative")
	}
	if total > MaxTotalCopies {
		return apierr.ErrField("total_copies", fmt.Sprintf("total copies cannot exceed %d", MaxTotalCopies))
	}
	return nil
}
