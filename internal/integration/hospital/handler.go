package hospital

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghostshell/pathflow/internal/platform/apperr"
)

type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/patients/:patientId/appointments")
	g.GET("", h.ListAppointments)
	g.POST("", h.CreateAppointment)
	g.POST("/:id/reschedule", h.RescheduleAppointment)
	g.POST("/:id/cancel", h.CancelAppointment)
}

type createRequest struct {
	Date       string `json:"date"`
	Doctor     string `json:"doctor"`
	Department string `json:"department"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func errorStatus(err error) int {
	if errors.Is(err, apperr.ErrInvalidInput) || errors.Is(err, apperr.ErrNotFound) {
		return apperr.HTTPStatus(err)
	}
	return http.StatusInternalServerError
}

func (h *Handler) ListAppointments(c echo.Context) error {
	appts, err := h.client.ListAppointments(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return c.JSON(errorStatus(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	appt, err := h.client.Create(c.Request().Context(), c.Param("patientId"), req.Date, req.Doctor, req.Department)
	if err != nil {
		return c.JSON(errorStatus(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) RescheduleAppointment(c echo.Context) error {
	var req reasonRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	res := h.client.Reschedule(c.Request().Context(), c.Param("patientId"), c.Param("id"), req.Reason)
	if !res.Success {
		return c.JSON(errorStatus(res.Err()), res)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	var req reasonRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	appt, err := h.client.Cancel(c.Request().Context(), c.Param("patientId"), c.Param("id"), req.Reason)
	if err != nil {
		return c.JSON(errorStatus(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, appt)
}
