package authors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/respond"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/authors", h.Create)
	r.GET("/authors", h.List)
	r.GET("/authors/:id", h.Get)
	r.PUT("/authors/:id", h.Update)
	r.DELETE("/authors/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Author created successfully", res)
}

func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Authors retrieved successfully", res)
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
	respond.OK(c, http.StatusOK, "Author retrieved successfully", res)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := respond.ParamID(c, "id")
	if !ok {
		return
	}
	var req AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Author updated successfully", res)
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
	respond.OK(c, http.StatusOK, "Author deleted successfully", nil)
}
