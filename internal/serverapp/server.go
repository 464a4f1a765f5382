package serverapp

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	prom "github.com/prometheus/client_golang/prometheus"

	"taskpad/internal/auth"
	"taskpad/internal/config"
	"taskpad/internal/httpmw"
	"taskpad/internal/kvstore"
	"taskpad/internal/metrics"
	"taskpad/internal/model"
	"taskpad/internal/remote"
	"taskpad/internal/roster"
	"taskpad/internal/tasks"
	staticfiles "taskpad/static"
)

type Options struct {
	Config   *config.Config
	DataDir  string
	Logger   *log.Logger
	Registry *prom.Registry
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if strings.TrimSpace(opts.DataDir) == "" {
		opts.DataDir = opts.Config.DataDir
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	rec := metrics.NewRecorder(opts.Registry)

	store, err := kvstore.Open(opts.DataDir)
	if err != nil {
		return nil, err
	}

	authService, err := auth.NewService(store, opts.Logger)
	if err != nil {
		return nil, err
	}
	authService.SetMetrics(rec)
	authHandler := auth.NewHandler(authService)

	rosterService, err := roster.NewService(store)
	if err != nil {
		return nil, err
	}
	rosterHandler := roster.NewHandler(rosterService)

	remoteClient := remote.NewClient(opts.Config.Remote.URL, opts.Config.Remote.Limit)
	taskStore := tasks.NewStore(remoteClient, opts.Logger)
	taskStore.SetMetrics(rec)
	taskHandler := tasks.NewHandler(taskStore, opts.Config.View.PageSize)

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskpad",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := kvstore.Open(opts.DataDir); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskpad",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.Get("/metrics", rec.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/session", authHandler.Session)
		r.Method(http.MethodPut, "/auth/profile", authService.RequireAPI(http.HandlerFunc(authHandler.Profile)))

		r.Get("/tasks", taskHandler.List)
		r.Post("/tasks", taskHandler.Create)
		r.Get("/tasks/{id}", taskHandler.Detail)
		r.Patch("/tasks/{id}", taskHandler.Patch)
		r.Delete("/tasks/{id}", taskHandler.Delete)

		r.Route("/users", func(r chi.Router) {
			admin := func(h http.HandlerFunc) http.Handler {
				return authService.RequireRoleAPI(model.RoleAdmin, h)
			}
			r.Method(http.MethodGet, "/", admin(rosterHandler.List))
			r.Method(http.MethodPost, "/", admin(rosterHandler.Create))
			r.Method(http.MethodDelete, "/{id}", admin(rosterHandler.Delete))
			r.Method(http.MethodPut, "/{id}/role", admin(rosterHandler.SetRole))
		})
	})

	pages := staticfiles.EmbeddedFS()
	r.Get("/", servePage(pages, "index.html"))
	r.Get("/login", servePage(pages, "login.html"))
	r.Method(http.MethodGet, "/profile", authService.RequirePage(servePage(pages, "profile.html")))
	r.Method(http.MethodGet, "/admin", authService.RequireRolePage(model.RoleAdmin, servePage(pages, "admin.html")))

	return httpmw.Chain(
		r,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
		httpmw.WithMetrics(rec),
	), nil
}

func servePage(pages fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := fs.ReadFile(pages, name)
		if err != nil {
			http.Error(w, "page unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(b)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
