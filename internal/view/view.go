// Package view renders the HTML pages and the fragments patched in over SSE.
// Components live in the .templ files; run `templ generate` after editing them.
package view

import (
	"net/url"
	"strconv"

	"github.com/msomdec/movie-library/internal/domain"
)

// MaxStars is the number of rating links offered on the detail page.
const MaxStars = 5

const (
	isoDate     = "2006-01-02"
	displayDate = "02 Jan 2006"
)

// Page carries the per-request state every full page needs.
type Page struct {
	Title         string
	Theme         string
	Authenticated bool
	CurrentPath   string
	CSRFToken     string
	Flashes       []domain.Flash
}

func (p Page) theme() string {
	if p.Theme == domain.ThemeDark {
		return domain.ThemeDark
	}
	return domain.ThemeLight
}

func (p Page) themeLabel() string {
	if p.Theme == domain.ThemeDark {
		return "Light mode"
	}
	return "Dark mode"
}

func (p Page) themeToggleURL() string {
	return "/toggle-theme?current_page=" + url.QueryEscape(p.CurrentPath)
}

// FieldErrors maps form field names to the message shown beneath the field.
type FieldErrors map[string]string

// LoginValues is what the login form redisplays after a failed submit.
type LoginValues struct {
	Email string
}

// RegisterValues is what the register form redisplays after a failed submit.
type RegisterValues struct {
	Email string
}

// MovieValues holds raw form input so invalid submits redisplay what the
// user typed. List fields hold one entry per line.
type MovieValues struct {
	Title       string
	Director    string
	Year        string
	Cast        string
	Series      string
	Tags        string
	Description string
	VideoLink   string
}

// MovieValuesFrom pre-fills the edit form from a stored movie.
func MovieValuesFrom(m *domain.Movie) MovieValues {
	return MovieValues{
		Title:       m.Title,
		Director:    m.Director,
		Year:        strconv.Itoa(m.Year),
		Cast:        domain.FormatStringList(m.Cast),
		Series:      domain.FormatStringList(m.Series),
		Tags:        domain.FormatStringList(m.Tags),
		Description: m.Description,
		VideoLink:   m.VideoLink,
	}
}

func movieURL(id string) string {
	return "/movie/" + id
}

func ratingURL(id string, n int) string {
	return "/movie/" + id + "/rate?rating=" + strconv.Itoa(n)
}

func watchURL(id string) string {
	return "/movie/" + id + "/watch"
}

// datastarGet is the data-on:click action that fetches href over SSE.
func datastarGet(href string) string {
	return "@get('" + href + "')"
}

func isRated(m *domain.Movie, n int) bool {
	return m.Rating != nil && n <= *m.Rating
}

func stars(rating int) string {
	s := ""
	for i := 0; i < rating && i < MaxStars; i++ {
		s += "★"
	}
	return s
}
