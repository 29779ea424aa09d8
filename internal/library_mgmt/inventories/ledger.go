package inventories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/db"
)

// Ledger は貸出・返却のトランザクションから在庫数を動かす入口。
// 呼び出し側の Tx の中でだけ使う
type Ledger struct {
	store *Store
	clock clock.Clock
	log   *zap.Logger
}

func NewLedger(d *db.DB, c clock.Clock, log *zap.Logger) *Ledger {
	return &Ledger{store: NewStore(d), clock: c, log: log}
}

// Lock は本の在庫行をロックして返す。在庫が無ければ NOT_FOUND
func (l *Ledger) Lock(ctx context.Context, tx *sqlx.Tx, bookID int64) (*Inventory, error) {
	return l.store.lockByBook(ctx, tx, bookID)
}

// Adjust は available/borrowed に差分を足す。borrowed は 0 未満にしない。
// 最後に borrowed を実際の ACTIVE/OVERDUE 件数で確定させる
func (l *Ledger) Adjust(ctx context.Context, tx *sqlx.Tx, bookID int64, dAvailable, dBorrowed int) (*Inventory, error) {
	inv, err := l.store.lockByBook(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}

	available := inv.AvailableCopies + dAvailable
	if available < 0 {
		return nil, apierr.ErrBusiness("no copies available for this book")
	}
	borrowed := max(inv.BorrowedCopies+dBorrowed, 0)

	live, err := CountActiveLoans(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if live != borrowed {
		l.log.Warn("borrowed copies out of sync with active loans",
			zap.Int64("book_id", bookID),
			zap.Int("cached", borrowed),
			zap.Int("active_loans", live))
		borrowed = live
	}
	if available+borrowed > inv.TotalCopies {
		l.log.Warn("available copies exceed stock, capping",
			zap.Int64("book_id", bookID),
			zap.Int("available", available),
			zap.Int("borrowed", borrowed),
			zap.Int("total", inv.TotalCopies))
		available = max(inv.TotalCopies-borrowed, 0)
	}

	inv.AvailableCopies = available
	inv.BorrowedCopies = borrowed
	inv.LastUpdated = l.clock.Now().UTC()
	if err := l.store.update(ctx, tx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}
