package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ghostshell/pathflow/internal/domain/pathology"
	"github.com/ghostshell/pathflow/internal/platform/apperr"
)

type Handler struct {
	orch *Orchestrator
	src  *pathology.Source
}

func NewHandler(orch *Orchestrator, src *pathology.Source) *Handler {
	return &Handler{orch: orch, src: src}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/workflow/trigger", h.Trigger)
	api.GET("/workflow/status", h.Status)
	api.GET("/workflow/executions/:id", h.GetExecution)
}

type triggerRequest struct {
	PatientID      string `json:"patientId"`
	PatientIDSnake string `json:"patient_id"`
}

func (r triggerRequest) patientID() string {
	if id := strings.TrimSpace(r.PatientID); id != "" {
		return id
	}
	return strings.TrimSpace(r.PatientIDSnake)
}

func (h *Handler) Trigger(c echo.Context) error {
	var req triggerRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return c.JSON(he.Code, map[string]string{"error": fmt.Sprint(he.Message)})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	patientID := req.patientID()
	if patientID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Patient ID is required"})
	}
	if err := pathology.ValidatePatientID(patientID); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	c.Set("patient_id", patientID)

	ctx := c.Request().Context()
	report, err := h.src.Get(ctx, patientID)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
	}
	exec, err := h.orch.Run(ctx, report)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, exec)
}

func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.orch.History().List())
}

func (h *Handler) GetExecution(c echo.Context) error {
	exec, ok := h.orch.History().Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "execution not found"})
	}
	return c.JSON(http.StatusOK, exec)
}
