package returns

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Return は returns テーブルの1行（貸出・書名を結合）
type Return struct {
	ReturnID     int64           `db:"return_id"`
	ReturnULID   string          `db:"return_ulid"`
	LoanID       int64           `db:"loan_id"`
	DateReturn   time.Time       `db:"date_return"`
	Observations sql.NullString  `db:"observations"`
	Penalty      decimal.Decimal `db:"penalty"`
	StudentID    int64           `db:"student_id"`
	BookID       int64           `db:"book_id"`
	BookTitle    string          `db:"book_title"`
}

// loanRow は返却処理でロックする貸出の最小限の列
type loanRow struct {
	LoanID   int64     `db:"loan_id"`
	BookID   int64     `db:"book_id"`
	State    string    `db:"state"`
	DateLoan time.Time `db:"date_loan"`
}

// 返却一覧の検索条件
type ReturnFilter struct {
	LoanID    *int64
	StudentID *int64
}
