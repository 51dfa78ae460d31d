package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tinkerhall/doorbot/internal/doorbot/service"
	"github.com/tinkerhall/doorbot/internal/doorbot/store"
	"github.com/tinkerhall/doorbot/pkg/httpx"
	"github.com/tinkerhall/doorbot/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService    *service.AuthService
	MembersService *service.MembersService
	AccessService  *service.AccessService
	EntryService   *service.EntryService
	TokensService  *service.TokensService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerScan()
	r.registerMembers()
	r.registerAccess()
	r.registerEntryLog()
	r.registerCredentials()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerScan() {
	h := &ScanHandler{EntryService: r.EntryService}

	// Door controllers poll these, so the limit is generous. Both routes
	// still authenticate: a stolen reader must not enumerate tags.
	r.Mux.Handle("GET /v1/check_tag/{tag}",
		httpx.Chain(http.HandlerFunc(h.HandleCheck),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ScanLimit),
		),
	)
	r.Mux.Handle("GET /v1/check_tag/{tag}/{permission}",
		httpx.Chain(http.HandlerFunc(h.HandleCheck),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ScanLimit),
		),
	)
	r.Mux.Handle("GET /v1/entry/{tag}/{location}",
		httpx.Chain(http.HandlerFunc(h.HandleEntry),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ScanLimit),
		),
	)
}

func (r *Router) registerMembers() {
	h := &MembersHandler{MembersService: r.MembersService}

	r.Mux.Handle("PUT /v1/new_tag",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/deactivate_tag/{tag}",
		httpx.Chain(http.HandlerFunc(h.HandleDeactivate),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/reactivate_tag/{tag}",
		httpx.Chain(http.HandlerFunc(h.HandleReactivate),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/edit_tag",
		httpx.Chain(http.HandlerFunc(h.HandleEditTag),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/edit_name",
		httpx.Chain(http.HandlerFunc(h.HandleEditName),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/search_tags",
		httpx.Chain(http.HandlerFunc(h.HandleSearch),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAccess() {
	h := &AccessHandler{
		AccessService:  r.AccessService,
		MembersService: r.MembersService,
	}

	r.Mux.Handle("PUT /v1/permission/{role}/{permission}",
		httpx.Chain(http.HandlerFunc(h.HandleGrant),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/permission/{role}/{permission}",
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/role/{tag}/{role}",
		httpx.Chain(http.HandlerFunc(h.HandleAddRole),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/role/{tag}/{role}",
		httpx.Chain(http.HandlerFunc(h.HandleRemoveRole),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/dump_active_tags",
		httpx.Chain(http.HandlerFunc(h.HandleDumpActive),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ScanLimit),
		),
	)
	r.Mux.Handle("GET /v1/dump_active_tags/{permission}",
		httpx.Chain(http.HandlerFunc(h.HandleDumpActiveWithPermission),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ScanLimit),
		),
	)
}

func (r *Router) registerEntryLog() {
	h := &EntryLogHandler{EntryService: r.EntryService}

	r.Mux.Handle("GET /v1/search_entry_log",
		httpx.Chain(http.HandlerFunc(h.HandleSearch),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/location/{name}",
		httpx.Chain(http.HandlerFunc(h.HandleAddLocation),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/locations",
		httpx.Chain(http.HandlerFunc(h.HandleListLocations),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerCredentials() {
	passwordHandler := &PasswordHandler{AuthService: r.AuthService}
	tokensHandler := &TokensHandler{TokensService: r.TokensService}

	// Credential endpoints take the strict limit: they are the brute
	// force surface.
	r.Mux.Handle("POST /v1/change_password",
		httpx.Chain(http.HandlerFunc(passwordHandler.HandleChange),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/token",
		httpx.Chain(http.HandlerFunc(tokensHandler.HandleCreate),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /v1/tokens",
		httpx.Chain(http.HandlerFunc(tokensHandler.HandleList),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/token/{id}",
		httpx.Chain(http.HandlerFunc(tokensHandler.HandleDelete),
			r.requireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}
