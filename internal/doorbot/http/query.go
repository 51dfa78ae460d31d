package http

import (
	"net/http"
	"strconv"
)

// queryInt parses an integer query parameter, falling back to def when
// absent or malformed. Out-of-range values are the service layer's
// problem; it clamps pagination itself.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
