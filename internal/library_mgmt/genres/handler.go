package genres

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/respond"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/genres", h.List)
	r.GET("/genres/:name", h.Get)
}

// List godoc
// @Summary  Genres with book and copy counts
// @Tags     genres
// @Produce  json
// @Success  200 {object} respond.Envelope
// @Router   /genres [get]
func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Genres retrieved successfully", res)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Genre retrieved successfully", res)
}
