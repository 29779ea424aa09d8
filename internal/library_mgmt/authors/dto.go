package authors

import "library-backend/internal/library_mgmt/rules"

// 著者の登録・更新リクエスト（共通）
type AuthorRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2,max=25,letters"`
	LastName  string `json:"last_name" binding:"required,max=20,letters"`
	Email     string `json:"email" binding:"required,email_shape"`
	// "2006-01-02"
	BirthDate string `json:"birth_date" binding:"required,ymd"`
}

type AuthorResponse struct {
	AuthorID  int64   `json:"author_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	BirthDate string  `json:"birth_date"`
	BookIDs   []int64 `json:"book_ids"`
}

func toResponse(a *Author, bookIDs []int64) AuthorResponse {
	if bookIDs == nil {
		bookIDs = []int64{}
	}
	return AuthorResponse{
		AuthorID:  a.AuthorID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		BirthDate: rules.FormatDate(a.BirthDate),
		BookIDs:   bookIDs,
	}
}
