package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/chetan-code/todoly/internal/config"
	"github.com/chetan-code/todoly/internal/repository"
	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	envFile    string
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "todoly",
		Short:         "todoly - a personal to-do list server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command_failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads config and installs the structured logger.
func loadConfig() (*config.Config, error) {
	//logger goes up first so config warnings are structured too
	setupSlog(slog.LevelDebug)

	cfg, err := config.Load(envFile, configFile)
	if err != nil {
		return nil, err
	}
	setupSlog(cfg.SlogLevel())
	return cfg, nil
}

func setupSlog(level slog.Level) {
	//Json handler that writes to standard out
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: true, //adds file name and line number
	})

	//Intialise new logger and set it as default for the server
	slog.SetDefault(slog.New(handler))
}

func initDB(cmd *cobra.Command, cfg *config.Config) (*sql.DB, *repository.TodoRepo, error) {
	db, dialect, err := repository.Open(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("database_connection_ping_failed", "error", err)
		return nil, nil, err
	}
	slog.Info("database_intialisation_success", "driver", string(dialect))

	repo, err := repository.NewTodoRepo(db, dialect)
	if err != nil {
		db.Close()
		slog.Error("repository_creation_failed", "error", err)
		return nil, nil, err
	}
	return db, repo, nil
}
