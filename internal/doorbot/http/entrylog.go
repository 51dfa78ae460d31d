package http

import (
	"encoding/csv"
	"net/http"
	"time"

	"github.com/tinkerhall/doorbot/internal/doorbot/service"
	"github.com/tinkerhall/doorbot/internal/doorbot/store"
	"github.com/tinkerhall/doorbot/pkg/httpx"
)

// EntryLogHandler serves the audit log.
type EntryLogHandler struct {
	EntryService *service.EntryService
}

// HandleSearch handles GET /v1/search_entry_log. Rows come back as CSV,
// newest first: member name, rfid, location, timestamp, active and
// found as 1/0. Absent name or location is an empty field; downstream
// reporting scripts depend on this exact order.
func (h *EntryLogHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := store.EntrySearch{
		RFID:   r.URL.Query().Get("rfid"),
		Offset: queryInt(r, "offset", 0),
		Limit:  queryInt(r, "limit", 0),
	}

	entries, err := h.EntryService.SearchEntries(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	cw := csv.NewWriter(w)
	for _, e := range entries {
		_ = cw.Write([]string{
			e.FullName,
			e.RFID,
			e.Location,
			e.EntryTime.UTC().Format(time.RFC3339),
			boolFlag(e.IsActiveTag),
			boolFlag(e.IsFoundTag),
		})
	}
	cw.Flush()
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// HandleAddLocation handles PUT /v1/location/{name}.
func (h *EntryLogHandler) HandleAddLocation(w http.ResponseWriter, r *http.Request) {
	if _, err := h.EntryService.AddLocation(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// HandleListLocations handles GET /v1/locations.
func (h *EntryLogHandler) HandleListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.EntryService.ListLocations(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	names := make([]string, len(locations))
	for i, l := range locations {
		names[i] = l.Name
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"locations": names})
}
