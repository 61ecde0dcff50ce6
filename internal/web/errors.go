package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to get a user-friendly message
//  4. The status code is derived from the error kind
//  5. Technical error + context is logged with request ID for correlation
//  6. User message is rendered as JSON for the API, HTML for pages

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/slightcsv/internal/core"
	"github.com/JonMunkholm/slightcsv/internal/export"
	"github.com/JonMunkholm/slightcsv/internal/logging"
	"github.com/JonMunkholm/slightcsv/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusMatches is checked in order before the parser error kinds.
var statusMatches = []struct {
	target error
	status int
}{
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
	{context.Canceled, http.StatusRequestTimeout},
	{core.ErrTooManyLoads, http.StatusServiceUnavailable},
	{core.ErrDatasetNotFound, http.StatusNotFound},
	{core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{core.ErrInvalidPath, http.StatusBadRequest},
	{core.ErrNoRows, http.StatusUnprocessableEntity},
	{core.ErrValueType, http.StatusBadRequest},
	{core.ErrBadRequest, http.StatusBadRequest},
	{core.ErrExportUnavailable, http.StatusNotImplemented},
	{export.ErrInvalidTable, http.StatusBadRequest},
	{export.ErrInvalidType, http.StatusBadRequest},
	{export.ErrNoData, http.StatusUnprocessableEntity},
}

// statusFor returns the HTTP status for err.
func statusFor(err error) int {
	for _, m := range statusMatches {
		if errors.Is(err, m.target) {
			return m.status
		}
	}
	switch core.KindOf(err) {
	case core.KindFilename, core.KindSeparator, core.KindEscape, core.KindStrip, core.KindReplace:
		return http.StatusBadRequest
	case core.KindEncoding, core.KindFormatCellCount, core.KindFormatHeader:
		return http.StatusUnprocessableEntity
	case core.KindData:
		return http.StatusConflict
	case core.KindIndex:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error server-side and returns a
// user-friendly response: JSON for API routes, HTML for pages.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	status := statusFor(err)

	logger := logging.With(r.Context(), s.logger)
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if wantsJSON(r) {
		s.writeJSON(w, status, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorPage(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w); err != nil {
		logger.Error("render error page", "error", err)
	}
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
