package genres

// Genre は books.genre ごとの集計1行
type Genre struct {
	Name            string `db:"genre" json:"genre"`
	BookCount       int    `db:"book_count" json:"book_count"`
	TotalCopies     int    `db:"total_copies" json:"total_copies"`
	AvailableCopies int    `db:"available_copies" json:"available_copies"`
}
