package authors

import "time"

// Author は authors テーブルの1行
type Author struct {
	AuthorID  int64     `db:"author_id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	BirthDate time.Time `db:"birth_date"`
}
