package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

func NewRouter(auth *AuthHandler, todos *TodoHandler, db Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMW)
	r.Use(middleware.Recoverer)

	r.Get("/", auth.Home)
	r.Get("/healthz", Health(db))
	r.Get("/register", auth.RegisterHandler)
	r.Post("/register", auth.RegisterHandler)
	r.Get("/login", auth.LoginHandler)
	r.Post("/login", auth.LoginHandler)

	//only user with a valid session can access these routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Get("/logout", auth.LogoutHandler)
		r.Post("/logout", auth.LogoutHandler)
		r.Get("/dashboard", todos.Dashboard)
		r.Get("/add", todos.AddHandler)
		r.Post("/add", todos.AddHandler)
		r.Get("/edit/{id}", todos.EditHandler)
		r.Post("/edit/{id}", todos.EditHandler)
		r.Get("/update/{id}", todos.ToggleHandler)
		r.Post("/update/{id}", todos.ToggleHandler)
		r.Get("/delete/{id}", todos.DeleteHandler)
		r.Post("/delete/{id}", todos.DeleteHandler)
		r.Get("/status/{status}", todos.StatusHandler)
		r.Get("/sort", todos.SortHandler)
	})

	return r
}

func LoggerMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		//logging completion of a request
		slog.Info("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"ip", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
			//imp : how long does it take a req to complete
			"duration", time.Since(start).String(),
		)
	})
}

func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			slog.Error("health_check_failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok")) //nolint:errcheck
	}
}
