package domain

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Session is the per-request state carried in the signed session cookie.
// Handlers receive it explicitly through the request context.
type Session struct {
	UserID    string
	Email     string
	Theme     string
	CSRFToken string
	Flashes   []Flash
}

// Authenticated reports whether the session belongs to a logged-in user.
func (s *Session) Authenticated() bool {
	return s.Email != ""
}

// Login records the authenticated user on the session and drops the CSRF
// token so the next request is issued a fresh one.
func (s *Session) Login(user *User) {
	s.UserID = user.ID
	s.Email = user.Email
	s.CSRFToken = ""
}

// Clear drops all state except the theme preference.
func (s *Session) Clear() {
	*s = Session{Theme: s.Theme}
}

// CurrentTheme returns the theme, defaulting to light.
func (s *Session) CurrentTheme() string {
	if s.Theme == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// ToggleTheme flips between dark and light. An unset theme counts as light.
func (s *Session) ToggleTheme() {
	if s.Theme == ThemeDark {
		s.Theme = ThemeLight
	} else {
		s.Theme = ThemeDark
	}
}

func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
}

// TakeFlashes returns the pending flashes and removes them from the session.
func (s *Session) TakeFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}
