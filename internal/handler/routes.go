package handler

import (
	"net/http"

	"github.com/msomdec/movie-library/internal/service"
)

// Dependencies holds everything the routes need.
type Dependencies struct {
	Auth     *service.AuthService
	Movies   *service.MovieService
	Limiter  *service.RateLimiter
	Sessions *SessionStore
	DB       Pinger
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Auth, deps.Limiter, deps.Sessions)
	movieHandler := NewMovieHandler(deps.Movies, deps.Sessions)
	themeHandler := NewThemeHandler(deps.Sessions)

	// Every page route loads the session and checks CSRF tokens on POST.
	page := func(h http.HandlerFunc) http.Handler {
		return deps.Sessions.Load(VerifyCSRF(h))
	}
	guarded := func(h http.HandlerFunc) http.Handler {
		return deps.Sessions.Load(VerifyCSRF(RequireAuth(h)))
	}

	mux.HandleFunc("GET /healthz", HandleHealthz(deps.DB))

	// Public routes.
	mux.Handle("GET /login", page(authHandler.HandleLoginPage))
	mux.Handle("POST /login", page(authHandler.HandleLogin))
	mux.Handle("GET /register", page(authHandler.HandleRegisterPage))
	mux.Handle("POST /register", page(authHandler.HandleRegister))
	mux.Handle("GET /movie/{id}", page(movieHandler.HandleDetail))
	mux.Handle("GET /toggle-theme", page(themeHandler.HandleToggle))

	// Authenticated routes.
	mux.Handle("GET /{$}", guarded(movieHandler.HandleIndex))
	mux.Handle("GET /logout", guarded(authHandler.HandleLogout))
	mux.Handle("GET /add", guarded(movieHandler.HandleAddPage))
	mux.Handle("POST /add", guarded(movieHandler.HandleAdd))
	mux.Handle("GET /edit/{id}", guarded(movieHandler.HandleEditPage))
	mux.Handle("POST /edit/{id}", guarded(movieHandler.HandleEdit))
	mux.Handle("GET /movie/{id}/rate", guarded(movieHandler.HandleRate))
	mux.Handle("GET /movie/{id}/watch", guarded(movieHandler.HandleWatch))
}
