package returns

import (
	"github.com/shopspring/decimal"

	"library-backend/internal/library_mgmt/rules"
	"library-backend/internal/platform/db"
)

// 返却登録リクエスト。date_return を省略すると当日
type CreateReturnRequest struct {
	LoanID       int64            `json:"loan_id" binding:"required,gt=0"`
	DateReturn   *string          `json:"date_return" binding:"omitempty,ymd"`
	Observations *string          `json:"observations"`
	Penalty      *decimal.Decimal `json:"penalty"`
}

// 返却の項目修正（内部用。HTTP では受け付けない）
type UpdateReturnRequest struct {
	LoanID       *int64           `json:"loan_id"`
	DateReturn   *string          `json:"date_return"`
	Observations *string          `json:"observations"`
	Penalty      *decimal.Decimal `json:"penalty"`
}

type ReturnResponse struct {
	ReturnID     int64           `json:"return_id"`
	Reference    string          `json:"reference"`
	LoanID       int64           `json:"loan_id"`
	StudentID    int64           `json:"student_id"`
	BookID       int64           `json:"book_id"`
	BookTitle    string          `json:"book_title"`
	DateReturn   string          `json:"date_return"`
	Observations *string         `json:"observations,omitempty"`
	Penalty      decimal.Decimal `json:"penalty"`
}

func toResponse(r *Return) ReturnResponse {
	return ReturnResponse{
		ReturnID:     r.ReturnID,
		Reference:    r.ReturnULID,
		LoanID:       r.LoanID,
		StudentID:    r.StudentID,
		BookID:       r.BookID,
		BookTitle:    r.BookTitle,
		DateReturn:   rules.FormatDate(r.DateReturn),
		Observations: db.StringPtr(r.Observations),
		Penalty:      r.Penalty,
	}
}
