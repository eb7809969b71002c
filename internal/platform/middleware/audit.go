package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AuditEntry records one access to patient data.
type AuditEntry struct {
	PatientID  string
	Action     string // read, create, update
	Route      string
	Method     string
	IPAddress  string
	UserAgent  string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// Audit logs every request that names a patient through a "patient_id"
// value set by the handler, the :patientId route parameter, or the
// patient_id query parameter. The handler value wins since it is the id the
// handler actually served. Requests without a patient are passed through
// untouched.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			patientID, _ := c.Get("patient_id").(string)
			if patientID == "" {
				patientID = c.Param("patientId")
			}
			if patientID == "" {
				patientID = c.QueryParam("patient_id")
			}
			if patientID == "" {
				return err
			}

			req := c.Request()
			entry := AuditEntry{
				PatientID:  patientID,
				Action:     httpMethodToAction(req.Method),
				Route:      c.Path(),
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: c.Response().Status,
				Timestamp:  time.Now().UTC(),
			}
			entry.RequestID, _ = c.Get("request_id").(string)

			logger.Info().
				Str("type", "patient_audit").
				Str("request_id", entry.RequestID).
				Str("patient_id", entry.PatientID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("route", entry.Route).
				Str("remote_ip", entry.IPAddress).
				Str("user_agent", entry.UserAgent).
				Int("status", entry.StatusCode).
				Time("accessed_at", entry.Timestamp).
				Msg("patient_data_access")

			return err
		}
	}
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	default:
		return "read"
	}
}
