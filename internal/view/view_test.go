package view_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/msomdec/movie-library/internal/domain"
	"github.com/msomdec/movie-library/internal/view"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestLayout_EscapesUserContent(t *testing.T) {
	p := view.Page{
		Title:       "Movies",
		CurrentPath: "/movie/abc",
		Flashes:     []domain.Flash{{Category: domain.FlashDanger, Message: "<b>bad</b>"}},
	}
	movies := []domain.Movie{{ID: "m1", Title: `<script>alert("x")</script>`, Director: "D", Year: 2000}}

	html := render(t, view.IndexPage(p, movies))

	if strings.Contains(html, `<script>alert`) {
		t.Fatal("expected movie title to be escaped")
	}
	if !strings.Contains(html, "&lt;b&gt;bad&lt;/b&gt;") {
		t.Fatal("expected flash message to be escaped")
	}
	if !strings.Contains(html, `flash--danger`) {
		t.Fatal("expected flash category class")
	}
	if !strings.Contains(html, "current_page=%2Fmovie%2Fabc") {
		t.Fatal("expected theme toggle link to carry the current page")
	}
}

func TestLayout_Theme(t *testing.T) {
	html := render(t, view.LoginPage(view.Page{Theme: domain.ThemeDark}, view.LoginValues{}, nil))
	if !strings.Contains(html, `data-theme="dark"`) {
		t.Fatal("expected dark theme attribute")
	}

	html = render(t, view.LoginPage(view.Page{}, view.LoginValues{}, nil))
	if !strings.Contains(html, `data-theme="light"`) {
		t.Fatal("expected light theme by default")
	}
}

func TestForms_RenderCSRFAndErrors(t *testing.T) {
	p := view.Page{CSRFToken: "tok123"}
	errs := view.FieldErrors{"email": "Please enter a valid email address."}

	html := render(t, view.RegisterPage(p, view.RegisterValues{Email: "not-an-email"}, errs))

	if !strings.Contains(html, `name="csrf_token" value="tok123"`) {
		t.Fatal("expected hidden csrf field")
	}
	if !strings.Contains(html, "Please enter a valid email address.") {
		t.Fatal("expected inline field error")
	}
	if !strings.Contains(html, `value="not-an-email"`) {
		t.Fatal("expected submitted email to be redisplayed")
	}
	if strings.Count(html, `type="password"`) != 2 {
		t.Fatal("expected password and confirmation fields")
	}
}

func TestEditMoviePage_PrefillsLists(t *testing.T) {
	m := &domain.Movie{
		ID:       "m1",
		Title:    "Dune",
		Director: "Denis Villeneuve",
		Year:     2021,
		Cast:     []string{"Timothée Chalamet", "Zendaya"},
	}

	html := render(t, view.EditMoviePage(view.Page{}, m.ID, view.MovieValuesFrom(m), nil))

	if !strings.Contains(html, `action="/edit/m1"`) {
		t.Fatal("expected form to post to /edit/m1")
	}
	if !strings.Contains(html, "Timothée Chalamet\nZendaya</textarea>") {
		t.Fatal("expected cast rendered one entry per line")
	}
	if !strings.Contains(html, `value="2021"`) {
		t.Fatal("expected year prefilled")
	}
}

func TestMovieDetailPage_Controls(t *testing.T) {
	rating := 4
	watched := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	m := &domain.Movie{ID: "m1", Title: "Dune", Director: "D", Year: 2021, Rating: &rating, LastWatched: &watched}

	public := render(t, view.MovieDetailPage(view.Page{}, m))
	if strings.Contains(public, "/movie/m1/rate") || strings.Contains(public, "/edit/m1") {
		t.Fatal("expected no rate or edit controls for anonymous visitors")
	}
	if !strings.Contains(public, `data-rating="4"`) {
		t.Fatal("expected current rating")
	}
	if !strings.Contains(public, `datetime="2024-03-09"`) {
		t.Fatal("expected last watched date")
	}

	authed := render(t, view.MovieDetailPage(view.Page{Authenticated: true}, m))
	for n := 1; n <= view.MaxStars; n++ {
		if !strings.Contains(authed, "/movie/m1/rate?rating="+string(rune('0'+n))) {
			t.Fatalf("expected rating link %d", n)
		}
	}
	// Attribute values are HTML-escaped; the browser decodes &#39; back to a quote.
	if !strings.Contains(authed, `data-on:click__prevent="@get(&#39;/movie/m1/watch&#39;)"`) {
		t.Fatal("expected datastar watch action")
	}
	if strings.Count(authed, "star star--active") != rating {
		t.Fatalf("expected %d active stars", rating)
	}
}

func TestRatingFragment_Unrated(t *testing.T) {
	html := render(t, view.RatingFragment(&domain.Movie{ID: "m1"}, false))
	if !strings.HasPrefix(html, `<div id="movie-rating"`) {
		t.Fatalf("expected fragment root #movie-rating, got %s", html)
	}
	if !strings.Contains(html, "Not rated") {
		t.Fatal("expected unrated label")
	}
}

func TestMovieDetailPage_UnsafeVideoLink(t *testing.T) {
	m := &domain.Movie{ID: "m1", Title: "Dune", Director: "D", Year: 2021, VideoLink: "javascript:alert(1)"}

	html := render(t, view.MovieDetailPage(view.Page{}, m))
	if strings.Contains(html, "javascript:") {
		t.Fatal("expected unsafe video link to be sanitized")
	}
}
