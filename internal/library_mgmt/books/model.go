package books

import "time"

// Book は books テーブルの1行（著者名を結合）
type Book struct {
	BookID          int64     `db:"book_id"`
	Title           string    `db:"title"`
	Genre           string    `db:"genre"`
	Editorial       string    `db:"editorial"`
	PublicationDate time.Time `db:"publication_date"`
	AuthorID        int64     `db:"author_id"`
	AuthorFirstName string    `db:"author_first_name"`
	AuthorLastName  string    `db:"author_last_name"`
}
