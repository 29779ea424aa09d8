package inventories

import (
	"time"

	"library-backend/internal/platform/db"
)

// 在庫登録リクエスト
// borrowed_copies は受け取るが 0 以外は拒否する
type CreateInventoryRequest struct {
	BookID          int64   `json:"book_id" binding:"required,gt=0"`
	TotalCopies     *int    `json:"total_copies" binding:"required"`
	AvailableCopies *int    `json:"available_copies"`
	BorrowedCopies  *int    `json:"borrowed_copies"`
	Observations    *string `json:"observations"`
}

// 在庫更新リクエスト。book_id は変更不可（送るなら同じ値）
type UpdateInventoryRequest struct {
	BookID          *int64  `json:"book_id"`
	TotalCopies     *int    `json:"total_copies"`
	AvailableCopies *int    `json:"available_copies"`
	BorrowedCopies  *int    `json:"borrowed_copies"`
	Observations    *string `json:"observations"`
}

type InventoryResponse struct {
	InventoryID     int64     `json:"inventory_id"`
	BookID          int64     `json:"book_id"`
	BookTitle       string    `json:"book_title"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	BorrowedCopies  int       `json:"borrowed_copies"`
	Observations    *string   `json:"observations,omitempty"`
	LastUpdated     time.Time `json:"last_updated"`
}

func toResponse(inv *Inventory) InventoryResponse {
	return InventoryResponse{
		InventoryID:     inv.InventoryID,
		BookID:          inv.BookID,
		BookTitle:       inv.BookTitle,
		TotalCopies:     inv.TotalCopies,
		AvailableCopies: inv.AvailableCopies,
		BorrowedCopies:  inv.BorrowedCopies,
		Observations:    db.StringPtr(inv.Observations),
		LastUpdated:     inv.LastUpdated,
	}
}
