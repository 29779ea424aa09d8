package loans

import (
	"strings"

	"github.com/shopspring/decimal"

	"library-backend/internal/library_mgmt/rules"
	"library-backend/internal/platform/db"
)

// 貸出登録リクエスト
// date_loan は当日、due_date は date_loan から 7 日以内
type CreateLoanRequest struct {
	StudentID    int64            `json:"student_id" binding:"required,gt=0"`
	BookID       int64            `json:"book_id" binding:"required,gt=0"`
	DateLoan     string           `json:"date_loan" binding:"required,ymd"`
	DueDate      string           `json:"due_date" binding:"required,ymd"`
	Amount       *decimal.Decimal `json:"amount"`
	State        *string          `json:"state"`
	Observations *string          `json:"observations"`
}

// 貸出更新リクエスト
// 変更できるのは state / amount / observations だけ。他は送るなら現在値と同じであること
type UpdateLoanRequest struct {
	StudentID    *int64           `json:"student_id"`
	BookID       *int64           `json:"book_id"`
	DateLoan     *string          `json:"date_loan"`
	DueDate      *string          `json:"due_date"`
	State        *string          `json:"state"`
	Amount       *decimal.Decimal `json:"amount"`
	Observations *string          `json:"observations"`
}

type LoanResponse struct {
	LoanID       int64           `json:"loan_id"`
	Reference    string          `json:"reference"`
	StudentID    int64           `json:"student_id"`
	StudentName  string          `json:"student_name"`
	BookID       int64           `json:"book_id"`
	BookTitle    string          `json:"book_title"`
	DateLoan     string          `json:"date_loan"`
	DueDate      string          `json:"due_date"`
	Amount       decimal.Decimal `json:"amount"`
	State        string          `json:"state"`
	Observations *string         `json:"observations,omitempty"`
	ReturnID     *int64          `json:"return_id,omitempty"`
}

func toResponse(l *Loan) LoanResponse {
	res := LoanResponse{
		LoanID:       l.LoanID,
		Reference:    l.LoanULID,
		StudentID:    l.StudentID,
		StudentName:  strings.TrimSpace(l.StudentFirstName + " " + l.StudentLastName),
		BookID:       l.BookID,
		BookTitle:    l.BookTitle,
		DateLoan:     rules.FormatDate(l.DateLoan),
		DueDate:      rules.FormatDate(l.DueDate),
		Amount:       l.Amount,
		State:        l.State,
		Observations: db.StringPtr(l.Observations),
	}
	if l.ReturnID.Valid {
		v := l.ReturnID.Int64
		res.ReturnID = &v
	}
	return res
}
