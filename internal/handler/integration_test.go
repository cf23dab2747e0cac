package handler_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestIntegration_RegisterLoginAddRate(t *testing.T) {
	app := newTestApp(t)

	// 1. Register.
	app.register(t, "a@b.com", "pass")

	_, body := app.get(t, "/login")
	if !strings.Contains(body, "User registered successfully.") {
		t.Fatal("expected registration flash on the login page")
	}
	_, body = app.get(t, "/login")
	if strings.Contains(body, "User registered successfully.") {
		t.Fatal("expected flash to be shown only once")
	}

	// 2. Login populates the session.
	app.login(t, "a@b.com", "pass")
	sess := app.session(t)
	if sess.Email != "a@b.com" || len(sess.UserID) != 32 {
		t.Fatalf("expected logged-in session, got %+v", sess)
	}

	// 3. Add a movie; it shows up in the listing.
	id := app.addMovie(t, "Dune", "Denis Villeneuve", "2021")
	_, body = app.get(t, "/")
	if !strings.Contains(body, "Dune") {
		t.Fatal("expected Dune in the watchlist")
	}

	// 4. Rate it and see the rating on the detail page.
	resp, _ := app.get(t, "/movie/"+id+"/rate?rating=5")
	expectRedirect(t, resp, "/movie/"+id)

	resp, body = app.get(t, "/movie/"+id)
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `data-rating="5"`) {
		t.Fatal("expected rating 5 on the detail page")
	}
}

func TestIntegration_WatchlistKeepsInsertionOrder(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "order@example.com", "pass")
	app.login(t, "order@example.com", "pass")

	first := app.addMovie(t, "Sicario", "Denis Villeneuve", "2015")
	second := app.addMovie(t, "Arrival", "Denis Villeneuve", "2016")

	ids := app.movieIDs(t)
	if len(ids) != 2 || ids[0] != first || ids[1] != second {
		t.Fatalf("expected [%s %s], got %v", first, second, ids)
	}
}

func TestIntegration_LoginFailuresShareMessage(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "known@example.com", "pass")

	attempts := []url.Values{
		{"email": {"known@example.com"}, "password": {"wrong"}},
		{"email": {"unknown@example.com"}, "password": {"pass"}},
	}
	for _, values := range attempts {
		resp, _ := app.postForm(t, "/login", values)
		expectRedirect(t, resp, "/login")

		_, body := app.get(t, "/login")
		if !strings.Contains(body, "Login credentials are not correct") {
			t.Fatalf("expected generic failure flash for %s", values.Get("email"))
		}
		if sess := app.session(t); sess.Authenticated() {
			t.Fatal("expected session to stay anonymous")
		}
	}
}

func TestIntegration_RegisterValidation(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name    string
		values  url.Values
		message string
	}{
		{
			name:    "invalid email",
			values:  url.Values{"email": {"not-an-email"}, "password": {"pass"}, "confirm_password": {"pass"}},
			message: "Please enter a valid email address.",
		},
		{
			name:    "short password",
			values:  url.Values{"email": {"x@example.com"}, "password": {"abc"}, "confirm_password": {"abc"}},
			message: "Your password must be between 4 and 20 characters long.",
		},
		{
			name:    "mismatched confirmation",
			values:  url.Values{"email": {"x@example.com"}, "password": {"pass"}, "confirm_password": {"pasS"}},
			message: "This password did not match the one in the password field.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := app.postForm(t, "/register", tc.values)
			expectStatus(t, resp, http.StatusUnprocessableEntity)
			if !strings.Contains(body, tc.message) {
				t.Fatalf("expected %q in response", tc.message)
			}
		})
	}
}

func TestIntegration_RegisterPasswordOverByteLimit(t *testing.T) {
	app := newTestApp(t)

	// 20 characters pass the length rule but are 80 bytes, past bcrypt's limit.
	password := strings.Repeat("😀", 20)
	resp, body := app.postForm(t, "/register", url.Values{
		"email":            {"emoji@example.com"},
		"password":         {password},
		"confirm_password": {password},
	})
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	if !strings.Contains(body, `id="password-error">Your password must be between 4 and 20 characters long.`) {
		t.Fatal("expected password length error")
	}
	if !strings.Contains(body, `value="emoji@example.com"`) {
		t.Fatal("expected email to be redisplayed")
	}
}

func TestIntegration_LoginRotatesCSRFToken(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "rotate@example.com", "pass")

	app.get(t, "/login")
	before := app.session(t).CSRFToken
	if before == "" {
		t.Fatal("expected an anonymous CSRF token")
	}

	app.login(t, "rotate@example.com", "pass")
	if got := app.session(t).CSRFToken; got != "" {
		t.Fatalf("expected login to drop the CSRF token, got %q", got)
	}

	app.get(t, "/")
	after := app.session(t).CSRFToken
	if after == "" || after == before {
		t.Fatalf("expected a new CSRF token after login, got %q (was %q)", after, before)
	}

	resp, _ := app.postRaw(t, "/add", url.Values{
		"csrf_token": {before},
		"title":      {"T"},
		"director":   {"D"},
		"year":       {"2000"},
	})
	expectStatus(t, resp, http.StatusForbidden)
}

func TestIntegration_RegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "dup@example.com", "pass")

	resp, body := app.postForm(t, "/register", url.Values{
		"email":            {"dup@example.com"},
		"password":         {"other"},
		"confirm_password": {"other"},
	})
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	if !strings.Contains(body, "An account with that email already exists.") {
		t.Fatal("expected duplicate email error")
	}
}

func TestIntegration_AuthenticatedUsersSkipAuthPages(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "skip@example.com", "pass")
	app.login(t, "skip@example.com", "pass")

	for _, path := range []string{"/login", "/register"} {
		resp, _ := app.get(t, path)
		expectRedirect(t, resp, "/")
	}
}

func TestIntegration_GuardedRoutesRedirectToLogin(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/", "/logout", "/add", "/edit/abc", "/movie/abc/rate?rating=1", "/movie/abc/watch"} {
		resp, _ := app.get(t, path)
		expectRedirect(t, resp, "/login")
	}
}

func TestIntegration_AddMovieValidation(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "add@example.com", "pass")
	app.login(t, "add@example.com", "pass")

	tests := []struct {
		name    string
		values  url.Values
		field   string
		message string
	}{
		{"missing title", url.Values{"director": {"D"}, "year": {"2000"}}, "title", "This field is required."},
		{"year too early", url.Values{"title": {"T"}, "director": {"D"}, "year": {"1800"}}, "year", "Please enter a year in the format YYYY."},
		{"year not a number", url.Values{"title": {"T"}, "director": {"D"}, "year": {"soon"}}, "year", "Please enter a year in the format YYYY."},
		{"year zero", url.Values{"title": {"T"}, "director": {"D"}, "year": {"0"}}, "year", "Please enter a year in the format YYYY."},
		{"year negative", url.Values{"title": {"T"}, "director": {"D"}, "year": {"-2000"}}, "year", "Please enter a year in the format YYYY."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := app.postForm(t, "/add", tc.values)
			expectStatus(t, resp, http.StatusUnprocessableEntity)
			if !strings.Contains(body, `id="`+tc.field+`-error">`+tc.message) {
				t.Fatalf("expected %q on field %s", tc.message, tc.field)
			}
		})
	}

	if ids := app.movieIDs(t); len(ids) != 0 {
		t.Fatalf("expected no movies after invalid submits, got %v", ids)
	}
}

func TestIntegration_EditMovie(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "edit@example.com", "pass")
	app.login(t, "edit@example.com", "pass")
	id := app.addMovie(t, "Dune", "Denis Villeneuve", "2021")

	resp, body := app.get(t, "/edit/"+id)
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `value="Denis Villeneuve"`) {
		t.Fatal("expected edit form pre-filled")
	}

	values := url.Values{
		"title":       {"Dune"},
		"director":    {"Denis Villeneuve"},
		"year":        {"2021"},
		"cast":        {"Timothée Chalamet\r\n  Rebecca Ferguson  \n"},
		"tags":        {"sci-fi"},
		"description": {"Spice."},
		"video_link":  {"not a url"},
	}
	resp, body = app.postForm(t, "/edit/"+id, values)
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	if !strings.Contains(body, "Please enter a valid URL.") {
		t.Fatal("expected video link error")
	}

	values.Set("video_link", "https://example.com/dune")
	resp, _ = app.postForm(t, "/edit/"+id, values)
	expectRedirect(t, resp, "/movie/"+id)

	_, body = app.get(t, "/movie/"+id)
	for _, want := range []string{"<li>Timothée Chalamet</li>", "<li>Rebecca Ferguson</li>", "<li>sci-fi</li>", "Spice.", "https://example.com/dune"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q on the detail page", want)
		}
	}
}

func TestIntegration_MissingMovie(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.get(t, "/movie/missing")
	expectStatus(t, resp, http.StatusNotFound)

	app.register(t, "missing@example.com", "pass")
	app.login(t, "missing@example.com", "pass")

	for _, path := range []string{"/edit/missing", "/movie/missing/rate?rating=3", "/movie/missing/watch"} {
		resp, _ := app.get(t, path)
		expectStatus(t, resp, http.StatusNotFound)
	}
}

func TestIntegration_RateRequiresInteger(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "rate@example.com", "pass")
	app.login(t, "rate@example.com", "pass")
	id := app.addMovie(t, "Dune", "Denis Villeneuve", "2021")

	for _, q := range []string{"", "?rating=", "?rating=five", "?rating=4.5"} {
		resp, _ := app.get(t, "/movie/"+id+"/rate"+q)
		expectStatus(t, resp, http.StatusBadRequest)
	}
}

func TestIntegration_DatastarPatches(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "ds@example.com", "pass")
	app.login(t, "ds@example.com", "pass")
	id := app.addMovie(t, "Dune", "Denis Villeneuve", "2021")

	resp, body := app.datastarGet(t, "/movie/"+id+"/rate?rating=3")
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected SSE response, got %s", ct)
	}
	if !strings.Contains(body, "movie-rating") || !strings.Contains(body, `data-rating="3"`) {
		t.Fatalf("expected rating fragment patch, got %s", body)
	}

	resp, body = app.datastarGet(t, "/movie/"+id+"/watch")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "movie-watched") || !strings.Contains(body, "Last watched") {
		t.Fatalf("expected watched fragment patch, got %s", body)
	}
}

func TestIntegration_WatchToday(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "watch@example.com", "pass")
	app.login(t, "watch@example.com", "pass")
	id := app.addMovie(t, "Dune", "Denis Villeneuve", "2021")

	_, body := app.get(t, "/movie/"+id)
	if !strings.Contains(body, "Not watched yet") {
		t.Fatal("expected unwatched movie")
	}

	resp, _ := app.get(t, "/movie/"+id+"/watch")
	expectRedirect(t, resp, "/movie/"+id)

	_, body = app.get(t, "/movie/"+id)
	if !strings.Contains(body, "Last watched") {
		t.Fatal("expected last watched date")
	}
}

func TestIntegration_LogoutKeepsTheme(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "theme@example.com", "pass")
	app.login(t, "theme@example.com", "pass")

	resp, _ := app.get(t, "/toggle-theme?current_page=/")
	expectRedirect(t, resp, "/")

	resp, _ = app.get(t, "/logout")
	expectRedirect(t, resp, "/login")

	sess := app.session(t)
	if sess.Email != "" || sess.UserID != "" {
		t.Fatalf("expected logged-out session, got %+v", sess)
	}
	if sess.Theme != "dark" {
		t.Fatalf("expected theme dark to survive logout, got %q", sess.Theme)
	}

	resp, _ = app.get(t, "/")
	expectRedirect(t, resp, "/login")
}

func TestIntegration_DeletedUserIsLoggedOut(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "gone@example.com", "pass")
	app.login(t, "gone@example.com", "pass")

	if _, err := app.db.SqlDB.Exec(`DELETE FROM users WHERE email = ?`, "gone@example.com"); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	resp, _ := app.get(t, "/")
	expectRedirect(t, resp, "/login")
	if app.session(t).Authenticated() {
		t.Fatal("expected session to be cleared")
	}
}

func TestIntegration_LoginRateLimited(t *testing.T) {
	app := newTestAppWith(t, testOptions{loginRate: 2})

	values := url.Values{"email": {"nobody@example.com"}, "password": {"pass"}}
	for i := 0; i < 2; i++ {
		resp, _ := app.postForm(t, "/login", values)
		expectRedirect(t, resp, "/login")
	}

	resp, _ := app.postForm(t, "/login", values)
	expectStatus(t, resp, http.StatusTooManyRequests)
}
