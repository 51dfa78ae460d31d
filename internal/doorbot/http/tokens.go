package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tinkerhall/doorbot/internal/doorbot/service"
	"github.com/tinkerhall/doorbot/pkg/httpx"
)

// TokensHandler lets an authenticated member manage their own bearer
// tokens.
type TokensHandler struct {
	TokensService *service.TokensService
}

type createTokenRequest struct {
	Name     string `json:"name"`
	TTLHours int    `json:"ttl_hours"`
}

type tokenResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// HandleCreate handles POST /v1/token. The token value appears in this
// response and never again.
func (h *TokensHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	m, ok := MemberFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrUnauthorized)
		return
	}

	var req createTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, r, service.ErrInvalidInput)
		return
	}

	t, err := h.TokensService.Create(r.Context(), m.RFID, req.Name,
		time.Duration(req.TTLHours)*time.Hour)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tokenResponse{
		ID:        t.ID,
		Name:      t.Name,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	})
}

// HandleList handles GET /v1/tokens. Token values are omitted; only
// names and expiries are shown.
func (h *TokensHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	m, ok := MemberFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrUnauthorized)
		return
	}

	tokens, err := h.TokensService.List(r.Context(), m.RFID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tokenResponse, len(tokens))
	for i, t := range tokens {
		out[i] = tokenResponse{
			ID:        t.ID,
			Name:      t.Name,
			ExpiresAt: t.ExpiresAt,
			CreatedAt: t.CreatedAt,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"tokens": out})
}

// HandleDelete handles DELETE /v1/token/{id}. Only the caller's own
// tokens are deletable.
func (h *TokensHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	m, ok := MemberFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrUnauthorized)
		return
	}

	if err := h.TokensService.Delete(r.Context(), m.RFID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
