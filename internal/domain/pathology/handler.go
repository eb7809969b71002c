package pathology

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ghostshell/pathflow/internal/platform/apperr"
)

type Handler struct {
	src *Source
}

func NewHandler(src *Source) *Handler {
	return &Handler{src: src}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/report/:patientId", h.GetReport)
	api.GET("/pathology/report/:patientId", h.GetReport)
}

func (h *Handler) GetReport(c echo.Context) error {
	patientID := c.Param("patientId")
	// Echo routes on RawPath when the request carried one, leaving params
	// escaped. Otherwise URL.Path is already decoded.
	if c.Request().URL.RawPath != "" {
		if decoded, err := url.PathUnescape(patientID); err == nil {
			patientID = decoded
		}
	}
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Patient ID is required"})
	}
	c.Set("patient_id", patientID)

	report, err := h.src.Get(c.Request().Context(), patientID)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, report)
}
