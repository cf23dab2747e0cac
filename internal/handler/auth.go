package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/msomdec/movie-library/internal/domain"
	"github.com/msomdec/movie-library/internal/service"
	"github.com/msomdec/movie-library/internal/validation"
	"github.com/msomdec/movie-library/internal/view"
)

const (
	loginFailedMessage    = "Login credentials are not correct"
	registeredMessage     = "User registered successfully."
	duplicateEmailMessage = "An account with that email already exists."
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	auth     *service.AuthService
	limiter  *service.RateLimiter
	sessions *SessionStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, limiter *service.RateLimiter, sessions *SessionStore) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, sessions: sessions}
}

// HandleLoginPage renders the login form.
// GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if SessionFromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, view.LoginValues{}, nil)
}

// HandleLogin checks credentials and logs the user in.
// POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if !h.limiter.Allow(clientIP(r)) {
		http.Error(w, "Too many login attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}

	form := parseLoginForm(r)
	if errs := validation.Struct(&form); errs != nil {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, view.LoginValues{Email: form.Email}, view.FieldErrors(errs))
		return
	}

	user, err := h.auth.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			sess.AddFlash(domain.FlashDanger, loginFailedMessage)
			h.sessions.Redirect(w, r, "/login")
			return
		}
		slog.Error("login user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sess.Login(user)
	h.sessions.Redirect(w, r, "/")
}

// HandleRegisterPage renders the registration form.
// GET /register
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if SessionFromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderRegister(w, r, http.StatusOK, view.RegisterValues{}, nil)
}

// HandleRegister creates an account and sends the user to the login page.
// POST /register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	form := parseRegisterForm(r)
	values := view.RegisterValues{Email: form.Email}
	if errs := validation.Struct(&form); errs != nil {
		h.renderRegister(w, r, http.StatusUnprocessableEntity, values, view.FieldErrors(errs))
		return
	}

	if _, err := h.auth.Register(r.Context(), form.Email, form.Password); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			h.renderRegister(w, r, http.StatusUnprocessableEntity, values, view.FieldErrors{"email": duplicateEmailMessage})
			return
		}
		slog.Error("register user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sess.AddFlash(domain.FlashSuccess, registeredMessage)
	h.sessions.Redirect(w, r, "/login")
}

// HandleLogout drops everything from the session but the theme.
// GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	SessionFromContext(r.Context()).Clear()
	h.sessions.Redirect(w, r, "/login")
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, v view.LoginValues, errs view.FieldErrors) {
	h.sessions.Render(w, r, status, "Movies Watchlist - Login", func(p view.Page) templ.Component {
		return view.LoginPage(p, v, errs)
	})
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, status int, v view.RegisterValues, errs view.FieldErrors) {
	h.sessions.Render(w, r, status, "Movies Watchlist - Register", func(p view.Page) templ.Component {
		return view.RegisterPage(p, v, errs)
	})
}
