package books

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
	r.POST("/books", h.Create)
	r.GET("/books", h.List)
	r.GET("/books/:id", h.Get)
	r.PUT("/books/:id", h.Update)
	r.DELETE("/books/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Book created successfully", res)
}

// GET /books?author_id=&genre=
func (h *Handler) List(c *gin.Context) {
	var f BookFilter
	if v := c.Query("author_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respond.Fail(c, apierr.ErrField("author_id", "author_id must be an integer"))
			return
		}
		f.AuthorID = &id
	}
	if v := c.Query("genre"); v != "" {
		f.Genre = &v
	}
	res, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Books retrieved successfully", res)
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
	respond.OK(c, http.StatusOK, "Book retrieved successfully", res)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := respond.ParamID(c, "id")
	if !ok {
		return
	}
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Book updated successfully", res)
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
	respond.OK(c, http.StatusOK, "Book deleted successfully", nil)
}
