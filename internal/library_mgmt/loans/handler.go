package loans

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/respond"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/loans", h.Create)
	r.GET("/loans", h.List)
	r.GET("/loans/:id", h.Get)
	r.PUT("/loans/:id", h.Update)
	r.DELETE("/loans/:id", h.Delete)
}

// Create godoc
// @Summary  Lend a book to a student
// @Tags     loans
// @Accept   json
// @Produce  json
// @Param    body body CreateLoanRequest true "loan"
// @Success  200 {object} respond.Envelope
// @Failure  400,404,409 {object} respond.Envelope
// @Router   /loans [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Header("Location", "/api/loans/"+strconv.FormatInt(res.LoanID, 10))
	respond.OK(c, http.StatusOK, "Loan created successfully", res)
}

// GET /loans?state=&student_id=&book_id=
func (h *Handler) List(c *gin.Context) {
	var f LoanFilter
	if v := c.Query("state"); v != "" {
		f.State = &v
	}
	for _, p := range []struct {
		name string
		dst  **int64
	}{{"student_id", &f.StudentID}, {"book_id", &f.BookID}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respond.Fail(c, apierr.ErrField(p.name, p.name+" must be an integer"))
			return
		}
		*p.dst = &id
	}
	res, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Loans retrieved successfully", res)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := respond.ParamID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Loan retrieved successfully", res)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := respond.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Loan updated successfully", res)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := respond.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Loan deleted successfully", nil)
}
