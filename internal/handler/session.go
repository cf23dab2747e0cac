package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/msomdec/movie-library/internal/domain"
	"github.com/msomdec/movie-library/internal/service"
	"github.com/msomdec/movie-library/internal/view"
)

const sessionCookieName = "session"

type contextKey string

const sessionContextKey contextKey = "session"

// SessionStore reads the session cookie into the request context and writes
// it back before a response is sent.
type SessionStore struct {
	codec  *service.SessionCodec
	secure bool
}

// NewSessionStore creates a SessionStore. secure sets the cookie's Secure flag.
func NewSessionStore(codec *service.SessionCodec, secure bool) *SessionStore {
	return &SessionStore{codec: codec, secure: secure}
}

// Load is middleware that decodes the session cookie and injects the session
// into the request context. Missing, tampered or expired cookies start an
// empty session. Every session gets a CSRF token.
func (s *SessionStore) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := &domain.Session{}
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if decoded, err := s.codec.Decode(cookie.Value); err == nil {
				sess = decoded
			}
		}

		if sess.CSRFToken == "" {
			token, err := service.NewCSRFToken()
			if err != nil {
				slog.Error("generate csrf token", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			sess.CSRFToken = token
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the request's session. Outside of Load it
// returns an empty session so callers never see nil.
func SessionFromContext(ctx context.Context) *domain.Session {
	if sess, ok := ctx.Value(sessionContextKey).(*domain.Session); ok {
		return sess
	}
	return &domain.Session{}
}

// Save writes sess to the session cookie. It must run before the response
// body is written.
func (s *SessionStore) Save(w http.ResponseWriter, sess *domain.Session) error {
	token, err := s.codec.Encode(sess)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.codec.MaxAge().Seconds()),
	})
	return nil
}

// Redirect saves the session and sends a 303 to target.
func (s *SessionStore) Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if err := s.Save(w, SessionFromContext(r.Context())); err != nil {
		slog.Error("save session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Render consumes the session's flashes, saves the session and writes the
// page built by page with the given status.
func (s *SessionStore) Render(w http.ResponseWriter, r *http.Request, status int, title string, page func(p view.Page) templ.Component) {
	sess := SessionFromContext(r.Context())
	p := view.Page{
		Title:         title,
		Theme:         sess.CurrentTheme(),
		Authenticated: sess.Authenticated(),
		CurrentPath:   r.URL.RequestURI(),
		CSRFToken:     sess.CSRFToken,
		Flashes:       sess.TakeFlashes(),
	}

	if err := s.Save(w, sess); err != nil {
		slog.Error("save session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page(p).Render(r.Context(), w); err != nil {
		slog.Error("render page", "title", title, "error", err)
	}
}
