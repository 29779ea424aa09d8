package students

// 学生の登録・更新リクエスト（共通）
type StudentRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2,max=25,letters"`
	LastName  string `json:"last_name" binding:"required,max=20,letters"`
	Email     string `json:"email" binding:"required,email_shape"`
	Phone     string `json:"phone" binding:"required,len=8,digits"`
	Career    string `json:"career" binding:"required,max=65,letters"`
	// 英字3文字 + 数字7桁（例: ABC1234567）
	Code string `json:"code" binding:"required,student_code"`
}

type StudentResponse struct {
	StudentID int64  `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Career    string `json:"career"`
	Code      string `json:"code"`
}

func toResponse(s *Student) StudentResponse {
	return StudentResponse(*s)
}
