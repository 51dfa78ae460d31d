package http

import (
	"net/http"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/service"
	"github.com/tinkerhall/doorbot/pkg/httpx"
)

// ScanHandler serves the tag-check and door-entry endpoints.
type ScanHandler struct {
	EntryService *service.EntryService
}

type scanResponse struct {
	Allowed bool   `json:"allowed"`
	Member  string `json:"member,omitempty"`
}

// HandleCheck handles GET /v1/check_tag/{tag} and
// GET /v1/check_tag/{tag}/{permission}. It is read-only: nothing is
// written to the entry log.
func (h *ScanHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	permission := r.PathValue("permission")

	d, err := h.EntryService.CheckTag(r.Context(), tag, permission)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeDecision(w, d)
}

// HandleEntry handles GET /v1/entry/{tag}/{location}: the scan a door
// controller fires when a tag is presented. The location doubles as the
// permission name, so a door only opens for members granted it. Every
// scan lands in the entry log, denials included.
func (h *ScanHandler) HandleEntry(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	location := r.PathValue("location")

	d, err := h.EntryService.RecordEntry(r.Context(), tag, location, location)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeDecision(w, d)
}

// writeDecision maps a decision to its transport status. The outcome is
// carried by the status code; the body names the member for display on
// the door unit.
func writeDecision(w http.ResponseWriter, d domain.EntryDecision) {
	code := http.StatusOK
	switch d.Outcome {
	case domain.DecisionNotFound:
		code = http.StatusNotFound
	case domain.DecisionInactive, domain.DecisionUnauthorized:
		code = http.StatusForbidden
	}
	httpx.WriteJSON(w, code, scanResponse{
		Allowed: d.Allowed(),
		Member:  d.MemberName,
	})
}
