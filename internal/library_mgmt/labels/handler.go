package labels

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/respond"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/labels/books", h.ExportBooks)
}

// GET /labels/books?ids=1,2&encoding=sjis
func (h *Handler) ExportBooks(c *gin.Context) {
	req := ExportRequest{Encoding: Encoding(strings.ToLower(c.Query("encoding")))}
	if v := c.Query("ids"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil || id <= 0 {
				respond.Fail(c, apierr.ErrField("ids", "ids must be a comma separated list of positive integers"))
				return
			}
			req.BookIDs = append(req.BookIDs, id)
		}
	}

	body, err := h.svc.ExportBooks(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	charset := "Shift_JIS"
	if req.Encoding == EncodingUTF8 {
		charset = "utf-8"
	}
	c.Header("Content-Disposition", `attachment; filename="book_labels.csv"`)
	c.Data(http.StatusOK, "text/csv; charset="+charset, body)
}
