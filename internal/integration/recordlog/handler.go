package recordlog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghostshell/pathflow/pkg/pagination"
)

type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/records", h.ListRecords)
}

func (h *Handler) ListRecords(c echo.Context) error {
	sorts, err := ParseSort(c.QueryParam("sort"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	pg := pagination.FromContext(c)
	filter := &Filter{
		PatientID: c.QueryParam("patient_id"),
		Status:    c.QueryParam("status"),
	}

	recs := h.client.Query(c.Request().Context(), filter, sorts)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Page(recs, pg), len(recs), pg.Limit, pg.Offset))
}
