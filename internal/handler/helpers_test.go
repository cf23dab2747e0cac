package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/movie-library/internal/domain"
	"github.com/msomdec/movie-library/internal/handler"
	"github.com/msomdec/movie-library/internal/repository/sqlite"
	"github.com/msomdec/movie-library/internal/service"
)

const testSessionSecret = "test-secret-for-handler-tests-0123456789"

type testApp struct {
	srv    *httptest.Server
	client *http.Client
	codec  *service.SessionCodec
	db     *sqlite.DB
}

type testOptions struct {
	loginRate int
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWith(t, testOptions{loginRate: 100})
}

func newTestAppWith(t *testing.T, opts testOptions) *testApp {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	codec := service.NewSessionCodec(testSessionSecret, time.Hour)
	limiter := service.NewRateLimiter(opts.loginRate)
	t.Cleanup(limiter.Close)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Dependencies{
		Auth:     service.NewAuthService(db.Users(), 4),
		Movies:   service.NewMovieService(db.Movies(), db.Users()),
		Limiter:  limiter,
		Sessions: handler.NewSessionStore(codec, false),
		DB:       db,
	})

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}

	return &testApp{srv: srv, client: client, codec: codec, db: db}
}

// session decodes the session cookie held by the client's jar. It returns nil
// when there is no cookie.
func (a *testApp) session(t *testing.T) *domain.Session {
	t.Helper()
	u, _ := url.Parse(a.srv.URL)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == "session" {
			sess, err := a.codec.Decode(c.Value)
			if err != nil {
				t.Fatalf("decode session cookie: %v", err)
			}
			return sess
		}
	}
	return nil
}

func (a *testApp) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.srv.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return a.do(t, req)
}

// datastarGet issues the GET a datastar @get action would send.
func (a *testApp) datastarGet(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.srv.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Datastar-Request", "true")
	return a.do(t, req)
}

// postForm submits values with the session's CSRF token, rendering a page
// first if the client has no token yet.
func (a *testApp) postForm(t *testing.T, path string, values url.Values) (*http.Response, string) {
	t.Helper()
	sess := a.session(t)
	if sess == nil || sess.CSRFToken == "" {
		page := "/login"
		if sess != nil && sess.Authenticated() {
			page = "/"
		}
		a.get(t, page)
		if sess = a.session(t); sess == nil || sess.CSRFToken == "" {
			t.Fatalf("expected a CSRF token after GET %s", page)
		}
	}
	values.Set("csrf_token", sess.CSRFToken)
	return a.postRaw(t, path, values)
}

func (a *testApp) postRaw(t *testing.T, path string, values url.Values) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.srv.URL+path, strings.NewReader(values.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req)
}

func (a *testApp) register(t *testing.T, email, password string) {
	t.Helper()
	resp, _ := a.postForm(t, "/register", url.Values{
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	})
	expectRedirect(t, resp, "/login")
}

func (a *testApp) login(t *testing.T, email, password string) {
	t.Helper()
	resp, _ := a.postForm(t, "/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	expectRedirect(t, resp, "/")
}

// addMovie posts the add form and returns the new movie's id.
func (a *testApp) addMovie(t *testing.T, title, director, year string) string {
	t.Helper()
	before := a.movieIDs(t)
	resp, _ := a.postForm(t, "/add", url.Values{
		"title":    {title},
		"director": {director},
		"year":     {year},
	})
	expectRedirect(t, resp, "/")

	after := a.movieIDs(t)
	if len(after) != len(before)+1 {
		t.Fatalf("expected %d movies listed, got %d", len(before)+1, len(after))
	}
	return after[len(after)-1]
}

var movieLinkRe = regexp.MustCompile(`href="/movie/([0-9a-f]{32})"`)

// movieIDs returns the ids linked from the watchlist page, in page order.
func (a *testApp) movieIDs(t *testing.T) []string {
	t.Helper()
	resp, body := a.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /: expected 200, got %d", resp.StatusCode)
	}
	var ids []string
	for _, m := range movieLinkRe.FindAllStringSubmatch(body, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected %d, got %d", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode)
	}
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	expectStatus(t, resp, http.StatusSeeOther)
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("%s %s: expected redirect to %s, got %s", resp.Request.Method, resp.Request.URL.Path, location, got)
	}
}
