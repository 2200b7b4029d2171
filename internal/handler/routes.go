package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger reports whether the task store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Routes wires every endpoint behind the logging and session middleware.
func Routes(h *TodoHandler, rpc *RPCHandler, auth *Authenticator, db Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(LoggerMW)
	r.Use(middleware.Recoverer)
	r.Use(auth.LoadSession)

	r.Get("/healthz", healthHandler(db))

	//sign in / sign out
	r.Get("/login", h.LoginHandler)
	r.Get("/auth/{provider}", auth.BeginAuth)
	r.Get("/auth/{provider}/callback", auth.AuthCallbackHandler)
	r.Get("/logout", auth.LogoutHandler)
	r.Post("/logout", auth.LogoutHandler)

	//pages - only a signed in user gets past here
	r.Group(func(r chi.Router) {
		r.Use(RequireSession)
		r.Get("/", h.HomeHandler)
		r.Get("/todos", h.ListHandler)
		r.Post("/todos", h.CreateHandler)
		r.Post("/todos/{id}/active", h.ToggleHandler)
		r.Post("/todos/{id}/rename", h.RenameHandler)
		r.Post("/todos/{id}/delete", h.DeleteHandler)
	})

	//rpc - the operations check the session themselves
	r.Method(http.MethodGet, "/api/{procedure}", rpc)
	r.Method(http.MethodPost, "/api/{procedure}", rpc)

	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.Error("health_check_failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}
}
