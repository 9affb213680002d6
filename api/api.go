// Package api exposes the HTTP surface: the access gate, the request
// tracker, and the route handlers fronting the lifecycle, backup, and space
// components.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/jmcleod/graphgate/auth"
	"github.com/jmcleod/graphgate/backup"
	"github.com/jmcleod/graphgate/lifecycle"
	"github.com/jmcleod/graphgate/space"
)

//go:embed openapi.yaml
var openapiSpec []byte

// API holds the dependencies needed by the REST handlers.
type API struct {
	users     *auth.Registry
	sessions  *auth.Sessions
	lifecycle *lifecycle.Manager
	archiver  *backup.Archiver
	space     *space.Accountant
	tracker   *RequestTracker
	access    *accessLog
	audit     *auditLogger

	authEnabled   bool
	adminUser     string
	instancesRoot string
	backupsRoot   string
	logsRoot      string
}

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// WithAuthDisabled turns the access gate off: every request is admitted
// without identity.
func WithAuthDisabled() Option {
	return func(a *API) {
		a.authEnabled = false
	}
}

// WithAdminUser names the account granted lifecycle and introspection
// routes. Defaults to "admin".
func WithAdminUser(username string) Option {
	return func(a *API) {
		a.adminUser = username
	}
}

// WithRoots sets the instances, backups, and logs directories used by the
// introspection endpoints and the per-user access log.
func WithRoots(instances, backups, logs string) Option {
	return func(a *API) {
		a.instancesRoot = instances
		a.backupsRoot = backups
		a.logsRoot = logs
	}
}

// New creates a new API instance.
func New(users *auth.Registry, sessions *auth.Sessions, lc *lifecycle.Manager,
	archiver *backup.Archiver, accountant *space.Accountant, opts ...Option) *API {
	a := &API{
		users:       users,
		sessions:    sessions,
		lifecycle:   lc,
		archiver:    archiver,
		space:       accountant,
		tracker:     NewRequestTracker(),
		authEnabled: true,
		adminUser:   "admin",
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	a.access = newAccessLog(a.logsRoot, a.audit.logger)
	return a
}

// Router returns a chi.Router with all routes mounted behind the request
// tracker and the access gate.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(a.TrackingMiddleware)
	r.Use(a.GateMiddleware)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/openapi.yaml",
		Path:    "docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/openapi.yaml",
		Path:    "redoc",
	}, nil))

	r.Post("/user/login", a.Login)
	r.Post("/user/logout", a.Logout)
	r.Post("/user/register", a.Register)
	r.Get("/user/logs", a.UserLogs)
	r.With(a.requireSelf).Get("/user/{username}/status", a.UserStatus)
	r.With(a.requireSelf).Post("/user/{username}/password", a.ChangePassword)

	r.Route("/db/data/database", func(r chi.Router) {
		r.Use(a.requireAdmin)
		r.Post("/", a.ShutdownDatabase)
		r.Post("/{name}/create", a.CreateDatabase)
		r.Post("/{name}/start", a.StartDatabase)
		r.Delete("/{name}", a.DeleteDatabase)
		r.Post("/{name}/backup", a.BackupDatabase)
		r.Post("/{name}/restore", a.RestoreDatabase)
	})

	r.Get("/databases/{name}/space", a.DatabaseSpace)
	r.With(a.requireAdmin).Get("/system/resources", a.SystemResources)
	r.With(a.requireAdmin).Get("/admin/active-requests", a.ActiveRequests)

	return r
}
