package http

import (
	"net/http"

	"github.com/tinkerhall/doorbot/internal/doorbot/service"
	"github.com/tinkerhall/doorbot/pkg/httpx"
)

// AccessHandler serves role/permission graph management and the tag
// dumps consumed by door controllers.
type AccessHandler struct {
	AccessService  *service.AccessService
	MembersService *service.MembersService
}

// HandleGrant handles PUT /v1/permission/{role}/{permission}. Role and
// permission are created on first reference.
func (h *AccessHandler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	role := r.PathValue("role")
	permission := r.PathValue("permission")

	if err := h.AccessService.Grant(r.Context(), role, permission); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// HandleRevoke handles DELETE /v1/permission/{role}/{permission}.
func (h *AccessHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	role := r.PathValue("role")
	permission := r.PathValue("permission")

	if err := h.AccessService.Revoke(r.Context(), role, permission); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleAddRole handles PUT /v1/role/{tag}/{role}.
func (h *AccessHandler) HandleAddRole(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	role := r.PathValue("role")

	if err := h.AccessService.AddRoleToMember(r.Context(), tag, role); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// HandleRemoveRole handles DELETE /v1/role/{tag}/{role}.
func (h *AccessHandler) HandleRemoveRole(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	role := r.PathValue("role")

	if err := h.AccessService.RemoveRoleFromMember(r.Context(), tag, role); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleDumpActive handles GET /v1/dump_active_tags: every active tag
// as a JSON object keyed by tag, for controllers that cache the whole
// set and check membership locally.
func (h *AccessHandler) HandleDumpActive(w http.ResponseWriter, r *http.Request) {
	tags, err := h.MembersService.DumpActiveTags(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tags)
}

// HandleDumpActiveWithPermission handles
// GET /v1/dump_active_tags/{permission}. Inactive members are excluded
// unless include_inactive=true is passed explicitly.
func (h *AccessHandler) HandleDumpActiveWithPermission(w http.ResponseWriter, r *http.Request) {
	permission := r.PathValue("permission")
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	tags, err := h.AccessService.TagsWithPermission(r.Context(), permission, includeInactive)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tags)
}
