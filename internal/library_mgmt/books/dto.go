package books

import (
	"strings"

	"library-backend/internal/library_mgmt/rules"
)

// 本の登録・更新リクエスト。author_id は更新時に変更不可
type BookRequest struct {
	Title           string `json:"title" binding:"required,max=20,letters"`
	Genre           string `json:"genre" binding:"required,max=20,letters"`
	Editorial       string `json:"editorial" binding:"required,max=20,letters"`
	PublicationDate string `json:"publication_date" binding:"required,ymd"`
	AuthorID        int64  `json:"author_id" binding:"required,gt=0"`
}

type BookResponse struct {
	BookID          int64  `json:"book_id"`
	Title           string `json:"title"`
	Genre           string `json:"genre"`
	Editorial       string `json:"editorial"`
	PublicationDate string `json:"publication_date"`
	AuthorID        int64  `json:"author_id"`
	AuthorName      string `json:"author_name"`
}

func toResponse(b *Book) BookResponse {
	return BookResponse{
		BookID:          b.BookID,
		Title:           b.Title,
		Genre:           b.Genre,
		Editorial:       b.Editorial,
		PublicationDate: rules.FormatDate(b.PublicationDate),
		AuthorID:        b.AuthorID,
		AuthorName:      strings.TrimSpace(b.AuthorFirstName + " " + b.AuthorLastName),
	}
}
