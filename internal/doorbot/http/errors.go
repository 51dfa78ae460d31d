package http

import (
	"errors"
	"net/http"

	"github.com/tinkerhall/doorbot/internal/doorbot/service"
	"github.com/tinkerhall/doorbot/pkg/httpx"
	"github.com/tinkerhall/doorbot/pkg/slogx"
)

// writeServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognised is a storage failure: logged in full, reported as a bare
// 500 so infrastructure breakage never reads as a business denial.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error: "invalid_request",
		})
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorResponse{
			Error: "unauthorized",
		})
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteJSON(w, http.StatusForbidden, httpx.ErrorResponse{
			Error: "forbidden",
		})
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorResponse{
			Error: "not_found",
		})
	case errors.Is(err, service.ErrConflict):
		httpx.WriteJSON(w, http.StatusConflict, httpx.ErrorResponse{
			Error: "conflict",
		})
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, httpx.ErrorResponse{
			Error: "server_error",
		})
	}
}
