package http

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/service"
	"github.com/tinkerhall/doorbot/internal/doorbot/store"
	"github.com/tinkerhall/doorbot/pkg/httpx"
)

// MembersHandler serves roster management endpoints.
type MembersHandler struct {
	MembersService *service.MembersService
}

type createMemberRequest struct {
	RFID      string `json:"rfid"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	MMSID     string `json:"mms_id"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	EntryType string `json:"entry_type"`
	Notes     string `json:"notes"`
}

type memberResponse struct {
	RFID     string    `json:"rfid"`
	Username string    `json:"username,omitempty"`
	FullName string    `json:"full_name"`
	Active   bool      `json:"active"`
	MMSID    string    `json:"mms_id,omitempty"`
	JoinDate time.Time `json:"join_date"`
}

func toMemberResponse(m domain.Member) memberResponse {
	return memberResponse{
		RFID:     m.RFID,
		Username: m.Username,
		FullName: m.FullName,
		Active:   m.Active,
		MMSID:    m.MMSID,
		JoinDate: m.JoinDate,
	}
}

// HandleCreate handles PUT /v1/new_tag.
func (h *MembersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, r, service.ErrInvalidInput)
		return
	}

	m, err := h.MembersService.Create(r.Context(), service.NewMember{
		RFID:      req.RFID,
		Username:  req.Username,
		FullName:  req.FullName,
		MMSID:     req.MMSID,
		Phone:     req.Phone,
		Email:     req.Email,
		EntryType: req.EntryType,
		Notes:     req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toMemberResponse(m))
}

// HandleDeactivate handles POST /v1/deactivate_tag/{tag}.
func (h *MembersHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.MembersService.Deactivate(r.Context(), r.PathValue("tag")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReactivate handles POST /v1/reactivate_tag/{tag}.
func (h *MembersHandler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.MembersService.Reactivate(r.Context(), r.PathValue("tag")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type editTagRequest struct {
	RFID    string `json:"rfid"`
	NewRFID string `json:"new_rfid"`
}

// HandleEditTag handles POST /v1/edit_tag.
func (h *MembersHandler) HandleEditTag(w http.ResponseWriter, r *http.Request) {
	var req editTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, r, service.ErrInvalidInput)
		return
	}
	if err := h.MembersService.ChangeTag(r.Context(), req.RFID, req.NewRFID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type editNameRequest struct {
	RFID    string `json:"rfid"`
	NewName string `json:"new_name"`
}

// HandleEditName handles POST /v1/edit_name.
func (h *MembersHandler) HandleEditName(w http.ResponseWriter, r *http.Request) {
	var req editNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, r, service.ErrInvalidInput)
		return
	}
	if err := h.MembersService.Rename(r.Context(), req.RFID, req.NewName); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleSearch handles GET /v1/search_tags. Results come back as CSV,
// one member per row, for easy spreadsheet import: rfid, full name,
// active as 1/0, membership system id.
func (h *MembersHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := store.MemberSearch{
		Name:   r.URL.Query().Get("name"),
		RFID:   r.URL.Query().Get("rfid"),
		Offset: queryInt(r, "offset", 0),
		Limit:  queryInt(r, "limit", 0),
	}

	members, err := h.MembersService.Search(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	cw := csv.NewWriter(w)
	for _, m := range members {
		active := "0"
		if m.Active {
			active = "1"
		}
		_ = cw.Write([]string{m.RFID, m.FullName, active, m.MMSID})
	}
	cw.Flush()
}
