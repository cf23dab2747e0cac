package handler

import (
	"net/http"
	"strings"
)

// ThemeHandler flips the session's colour theme.
type ThemeHandler struct {
	sessions *SessionStore
}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler(sessions *SessionStore) *ThemeHandler {
	return &ThemeHandler{sessions: sessions}
}

// HandleToggle switches between dark and light and returns to current_page.
// GET /toggle-theme?current_page=<path>
func (h *ThemeHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	SessionFromContext(r.Context()).ToggleTheme()
	h.sessions.Redirect(w, r, safeRedirectPath(r.URL.Query().Get("current_page")))
}

// safeRedirectPath returns target when it is a path on this site and "/"
// otherwise.
func safeRedirectPath(target string) string {
	if !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") ||
		strings.ContainsAny(target, "\\\r\n\t") {
		return "/"
	}
	return target
}
