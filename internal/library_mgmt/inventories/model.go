package inventories

import (
	"database/sql"
	"time"
)

// Inventory は inventories テーブルの1行（books.title を結合）
type Inventory struct {
	InventoryID     int64          `db:"inventory_id"`
	BookID          int64          `db:"book_id"`
	BookTitle       string         `db:"book_title"`
	TotalCopies     int            `db:"total_copies"`
	AvailableCopies int            `db:"available_copies"`
	BorrowedCopies  int            `db:"borrowed_copies"`
	Observations    sql.NullString `db:"observations"`
	LastUpdated     time.Time      `db:"last_updated"`
}

const (
	MaxTotalCopies = 999
)
