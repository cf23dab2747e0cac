package domain_test

import (
	"testing"

	"github.com/msomdec/movie-library/internal/domain"
)

func TestSession_ToggleThemeTwice(t *testing.T) {
	for _, start := range []string{"", domain.ThemeLight, domain.ThemeDark} {
		s := &domain.Session{Theme: start}
		before := s.CurrentTheme()
		s.ToggleTheme()
		if s.CurrentTheme() == before {
			t.Fatalf("theme %q did not change after one toggle", start)
		}
		s.ToggleTheme()
		if s.CurrentTheme() != before {
			t.Fatalf("theme %q: expected %q after two toggles, got %q", start, before, s.CurrentTheme())
		}
	}
}

func TestSession_ToggleThemeFromUnset(t *testing.T) {
	s := &domain.Session{}
	s.ToggleTheme()
	if s.Theme != domain.ThemeDark {
		t.Fatalf("expected dark, got %q", s.Theme)
	}
}

func TestSession_LoginDropsCSRFToken(t *testing.T) {
	s := &domain.Session{Theme: domain.ThemeDark, CSRFToken: "anonymous-token"}
	s.Login(&domain.User{ID: "u1", Email: "a@b.com"})

	if !s.Authenticated() || s.UserID != "u1" {
		t.Fatalf("expected user u1 logged in, got %+v", s)
	}
	if s.CSRFToken != "" {
		t.Fatalf("expected CSRF token to be dropped, got %q", s.CSRFToken)
	}
	if s.Theme != domain.ThemeDark {
		t.Fatalf("expected theme kept, got %q", s.Theme)
	}
}

func TestSession_ClearKeepsTheme(t *testing.T) {
	s := &domain.Session{
		UserID:    "abc",
		Email:     "a@b.com",
		Theme:     domain.ThemeDark,
		CSRFToken: "token",
		Flashes:   []domain.Flash{{Category: domain.FlashSuccess, Message: "hi"}},
	}
	s.Clear()

	if s.Authenticated() || s.UserID != "" {
		t.Fatal("expected email and user id to be cleared")
	}
	if s.CSRFToken != "" || len(s.Flashes) != 0 {
		t.Fatal("expected csrf token and flashes to be cleared")
	}
	if s.Theme != domain.ThemeDark {
		t.Fatalf("expected theme to survive, got %q", s.Theme)
	}
}

func TestSession_TakeFlashes(t *testing.T) {
	s := &domain.Session{}
	s.AddFlash(domain.FlashDanger, "first")
	s.AddFlash(domain.FlashSuccess, "second")

	flashes := s.TakeFlashes()
	if len(flashes) != 2 || flashes[0].Message != "first" || flashes[1].Category != domain.FlashSuccess {
		t.Fatalf("unexpected flashes %+v", flashes)
	}
	if len(s.TakeFlashes()) != 0 {
		t.Fatal("expected flashes to be consumed")
	}
}
