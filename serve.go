package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chetan-code/todoly/internal/config"
	"github.com/chetan-code/todoly/internal/handler"
	"github.com/chetan-code/todoly/internal/service"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return runServe(cmd, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ADDR)")
	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	db, repo, err := initDB(cmd, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	//athentication
	providers := setupGothic(cfg)
	auth := handler.NewAuthenticator(cfg.JWTSecret, cfg.SessionTTL, cfg.CookieSecure)

	tasks := service.NewTaskService(repo)
	h, err := handler.NewTodoHandler(tasks, providers)
	if err != nil {
		return err
	}
	rpc, err := handler.NewRPCHandler(tasks)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Routes(h, rpc, auth, repo),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return startServer(ctx, srv)
}

func startServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		slog.Error("server_start_failed", "error", err)
		return err
	case <-ctx.Done():
	}

	slog.Info("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

/*
gothic will create temp cookie using key it will store it for sometime
and when user complete login it will compare it to make sure login
process was completed from this app only
Protection from cross site request forgery
*/
func setupGothic(cfg *config.Config) []string {
	var providers []string

	//GOTH google setup
	if cfg.Google.Enabled() {
		goth.UseProviders(
			google.New(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.CallbackURL, "email", "profile"),
		)
		providers = append(providers, "google")
	} else {
		slog.Warn("google_provider_disabled", "reason", "GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set")
	}

	//short lived, it only has to outlast the oauth round trip
	store := sessions.NewCookieStore([]byte(cfg.JWTSecret))
	store.MaxAge(int((10 * time.Minute).Seconds()))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.CookieSecure

	gothic.Store = store
	return providers
}
