package loans

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Loan は loans テーブルの1行（学生名・書名・返却IDを結合）
type Loan struct {
	LoanID           int64           `db:"loan_id"`
	LoanULID         string          `db:"loan_ulid"`
	StudentID        int64           `db:"student_id"`
	StudentFirstName string          `db:"student_first_name"`
	StudentLastName  string          `db:"student_last_name"`
	BookID           int64           `db:"book_id"`
	BookTitle        string          `db:"book_title"`
	DateLoan         time.Time       `db:"date_loan"`
	DueDate          time.Time       `db:"due_date"`
	Amount           decimal.Decimal `db:"amount"`
	State            string          `db:"state"`
	Observations     sql.NullString  `db:"observations"`
	ReturnID         sql.NullInt64   `db:"return_id"`
}

// 貸出一覧の検索条件
type LoanFilter struct {
	State     *string
	StudentID *int64
	BookID    *int64
}
