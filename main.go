package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	stdlibTransactor "github.com/Thiht/transactor/stdlib"

	"github.com/chetan-code/tasktracker/internal/config"
	"github.com/chetan-code/tasktracker/internal/handler"
	"github.com/chetan-code/tasktracker/internal/logging"
	"github.com/chetan-code/tasktracker/internal/repository"
	"github.com/chetan-code/tasktracker/internal/service"
)

func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failure", "error", err)
		os.Exit(1)
	}
	return cfg
}

func setupSlog(cfg config.Config) {
	//Intialise new logger and set it as default for the server
	slog.SetDefault(logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}))
}

func initDB(cfg config.Config) (*sql.DB, repository.Dialect) {
	if err := repository.Migrate(cfg.DBDriver, cfg.DBURL); err != nil {
		slog.Error("database_migration_failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, dialect, err := repository.Open(ctx, cfg.DBDriver, cfg.DBURL)
	if err != nil {
		slog.Error("database_intialization_failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	slog.Info("database_intialisation_success", "driver", cfg.DBDriver, "dialect", dialect.Name)
	return db, dialect
}

func startServer(addr string, h http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server_start", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server_start_failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server_shutdown_failed", "error", err)
	}
	slog.Info("server_stopped")
}

func main() {
	cfg := loadConfig()

	//structure logging
	setupSlog(cfg)

	db, dialect := initDB(cfg)
	defer db.Close()

	tx, dbGetter := stdlibTransactor.NewTransactor(db, stdlibTransactor.NestedTransactionsSavepoints)
	users := repository.NewUserRepo(dbGetter, dialect)
	todos := repository.NewTodoRepo(dbGetter, dialect)

	auth := service.NewAuth(users, tx, cfg.BcryptCost)
	tasks := service.NewTasks(todos, tx, cfg.TimeZone)

	//authentication
	sessions := handler.NewSessions(cfg.SecretKey, cfg.SessionTTL, cfg.SecureCookie)

	views := handler.NewViews(cfg.TimeZone)
	router := handler.NewRouter(
		handler.NewAuthHandler(auth, sessions, views),
		handler.NewTodoHandler(tasks, views),
		db,
	)

	startServer(cfg.Addr, router)
}
