package inventories

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/respond"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/inventories", h.Create)
	r.GET("/inventories", h.List)
	r.GET("/inventories/:id", h.Get)
	r.PUT("/inventories/:id", h.Update)
	r.DELETE("/inventories/:id", h.Delete)

	// 本から在庫を引く
	r.GET("/books/:id/inventory", h.GetByBook)
}

// Create godoc
// @Summary  Register the inventory of a book
// @Tags     inventories
// @Accept   json
// @Produce  json
// @Param    body body CreateInventoryRequest true "inventory"
// @Success  200 {object} respond.Envelope
// @Failure  400,404,409 {object} respond.Envelope
// @Router   /inventories [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Inventory created successfully", res)
}

func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Inventories retrieved successfully", res)
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
	respond.OK(c, http.StatusOK, "Inventory retrieved successfully", res)
}

func (h *Handler) GetByBook(c *gin.Context) {
	id, ok := respond.ParamID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.GetByBook(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Inventory retrieved successfully", res)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := respond.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, http.StatusOK, "Inventory updated successfully", res)
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
	respond.OK(c, http.StatusOK, "Inventory deleted successfully", nil)
}
