package http

import (
	"encoding/json"
	"net/http"

	"github.com/km-arc/go-extkit/framework/validation"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps http.ResponseWriter with JSON envelope helpers.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// ── JSON responses ────────────────────────────────────────────────────────────

// JSON sends a JSON response.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// Success sends 200 JSON: {"data": v}
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Error sends a JSON error response: {"message": message}
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// BadRequest sends 400.
func (res *Response) BadRequest(message ...string) {
	res.Error(http.StatusBadRequest, first(message, "Bad request."))
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

// ServerError sends 500.
func (res *Response) ServerError(message ...string) {
	res.Error(http.StatusInternalServerError, first(message, "Server Error."))
}

// ValidationError sends 422 with the error bag: {"errors": {"field": ["msg"]}}
func (res *Response) ValidationError(errors *validation.Errors) {
	res.JSON(http.StatusUnprocessableEntity, errors)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
