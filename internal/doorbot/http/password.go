package http

import (
	"encoding/json"
	"net/http"

	"github.com/tinkerhall/doorbot/internal/doorbot/service"
	"github.com/tinkerhall/doorbot/pkg/httpx"
)

// PasswordHandler lets an authenticated member rotate their own
// password.
type PasswordHandler struct {
	AuthService *service.AuthService
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// HandleChange handles POST /v1/change_password. The current password
// is required even though the caller already authenticated, so a
// hijacked session cannot silently take the account over.
func (h *PasswordHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	m, ok := MemberFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, r, service.ErrInvalidInput)
		return
	}

	err := h.AuthService.ChangePassword(r.Context(),
		m.RFID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
