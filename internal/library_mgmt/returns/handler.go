package returns

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
	r.POST("/returns", h.Create)
	r.GET("/returns", h.List)
	r.GET("/returns/:id", h.Get)
	r.PUT("/returns/:id", h.Update)
	r.DELETE("/returns/:id", h.Delete)
}

// Create godoc
// @Summary  Register the return of a loan
// @Tags     returns
// @Accept   json
// @Produce  json
// @Param    body body CreateReturnRequest true "return"
// @Success  200 {object} respond.Envelope
// @Failure  400,404,409 {object} respond.Envelope
// @Router   /returns [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Header("Location", "/api/returns/"+strconv.FormatInt(res.ReturnID, 10))
	respond.OK(c, http.StatusOK, "Return created successfully", res)
}

// GET /returns?loan_id=&student_id=
func (h *Handler) List(c *gin.Context) {
	var f ReturnFilter
	for _, p := range []struct {
		name string
		dst  **int64
	}{{"loan_id", &f.LoanID}, {"student_id", &f.StudentID}} {
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
	respond.OK(c, http.StatusOK, "Returns retrieved successfully", res)
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
	respond.OK(c, http.StatusOK, "Return retrieved successfully", res)
}

// PUT /returns/:id は常に 405
func (h *Handler) Update(c *gin.Context) {
	respond.Fail(c, apierr.ErrMethodNotAllowed(ImmutableMessage))
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
	respond.OK(c, http.StatusOK, "Return deleted successfully", nil)
}
