package students

// Student は students テーブルの1行
type Student struct {
	StudentID int64  `db:"student_id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	Career    string `db:"career"`
	Code      string `db:"code"`
}
