package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/movie-library/internal/domain"
	"github.com/msomdec/movie-library/internal/service"
	"github.com/msomdec/movie-library/internal/view"
)

// MovieHandler handles the watchlist and movie pages.
type MovieHandler struct {
	movies   *service.MovieService
	sessions *SessionStore
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(movies *service.MovieService, sessions *SessionStore) *MovieHandler {
	return &MovieHandler{movies: movies, sessions: sessions}
}

// HandleIndex renders the logged-in user's watchlist.
// GET /
func (h *MovieHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	movies, err := h.movies.Watchlist(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The account behind the session is gone.
			sess.Clear()
			h.sessions.Redirect(w, r, "/login")
			return
		}
		slog.Error("load watchlist", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.sessions.Render(w, r, http.StatusOK, "Movies Watchlist", func(p view.Page) templ.Component {
		return view.IndexPage(p, movies)
	})
}

// HandleAddPage renders the add-movie form.
// GET /add
func (h *MovieHandler) HandleAddPage(w http.ResponseWriter, r *http.Request) {
	h.renderAdd(w, r, http.StatusOK, view.MovieValues{}, nil)
}

// HandleAdd creates a movie and appends it to the user's watchlist.
// POST /add
func (h *MovieHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	form, values, errs := parseMovieForm(r, false)
	if errs != nil {
		h.renderAdd(w, r, http.StatusUnprocessableEntity, values, view.FieldErrors(errs))
		return
	}

	movie := &domain.Movie{}
	form.apply(movie)

	if err := h.movies.Add(r.Context(), sess.UserID, movie); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			sess.Clear()
			h.sessions.Redirect(w, r, "/login")
			return
		}
		slog.Error("add movie", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.sessions.Redirect(w, r, "/")
}

// HandleEditPage renders the extended form pre-filled from the movie.
// GET /edit/{id}
func (h *MovieHandler) HandleEditPage(w http.ResponseWriter, r *http.Request) {
	movie, ok := h.loadMovie(w, r)
	if !ok {
		return
	}
	h.renderEdit(w, r, http.StatusOK, movie.ID, view.MovieValuesFrom(movie), nil)
}

// HandleEdit overwrites the movie's editable fields.
// POST /edit/{id}
func (h *MovieHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	movie, ok := h.loadMovie(w, r)
	if !ok {
		return
	}

	form, values, errs := parseMovieForm(r, true)
	if errs != nil {
		h.renderEdit(w, r, http.StatusUnprocessableEntity, movie.ID, values, view.FieldErrors(errs))
		return
	}

	form.apply(movie)
	if err := h.movies.Update(r.Context(), movie); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("update movie", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.sessions.Redirect(w, r, "/movie/"+movie.ID)
}

// HandleDetail renders a single movie.
// GET /movie/{id}
func (h *MovieHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	movie, ok := h.loadMovie(w, r)
	if !ok {
		return
	}
	h.sessions.Render(w, r, http.StatusOK, movie.Title, func(p view.Page) templ.Component {
		return view.MovieDetailPage(p, movie)
	})
}

// HandleRate sets the movie's rating from the rating query parameter.
// GET /movie/{id}/rate?rating=N
func (h *MovieHandler) HandleRate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rating, err := strconv.Atoi(r.URL.Query().Get("rating"))
	if err != nil {
		http.Error(w, "Bad Request: rating must be an integer", http.StatusBadRequest)
		return
	}

	movie, err := h.movies.Rate(r.Context(), id, rating)
	if err != nil {
		h.handleMovieError(w, r, "rate movie", err)
		return
	}

	if isDatastarRequest(r) {
		sse := datastar.NewSSE(w, r)
		if err := sse.PatchElementTempl(view.RatingFragment(movie, true), datastar.WithSelectorID("movie-rating")); err != nil {
			slog.Error("patch rating", "error", err)
		}
		return
	}
	h.sessions.Redirect(w, r, "/movie/"+id)
}

// HandleWatch records that the movie was watched today.
// GET /movie/{id}/watch
func (h *MovieHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	movie, err := h.movies.MarkWatched(r.Context(), id)
	if err != nil {
		h.handleMovieError(w, r, "mark watched", err)
		return
	}

	if isDatastarRequest(r) {
		sse := datastar.NewSSE(w, r)
		if err := sse.PatchElementTempl(view.WatchedFragment(movie, true), datastar.WithSelectorID("movie-watched")); err != nil {
			slog.Error("patch watched", "error", err)
		}
		return
	}
	h.sessions.Redirect(w, r, "/movie/"+id)
}

// loadMovie fetches the movie named by the {id} path value, writing a 404 or
// 500 response and returning false when it cannot.
func (h *MovieHandler) loadMovie(w http.ResponseWriter, r *http.Request) (*domain.Movie, bool) {
	movie, err := h.movies.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleMovieError(w, r, "get movie", err)
		return nil, false
	}
	return movie, true
}

func (h *MovieHandler) handleMovieError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	slog.Error(op, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (h *MovieHandler) renderAdd(w http.ResponseWriter, r *http.Request, status int, v view.MovieValues, errs view.FieldErrors) {
	h.sessions.Render(w, r, status, "Movies Watchlist - Add Movie", func(p view.Page) templ.Component {
		return view.AddMoviePage(p, v, errs)
	})
}

func (h *MovieHandler) renderEdit(w http.ResponseWriter, r *http.Request, status int, id string, v view.MovieValues, errs view.FieldErrors) {
	h.sessions.Render(w, r, status, "Movies Watchlist - Edit Movie", func(p view.Page) templ.Component {
		return view.EditMoviePage(p, id, v, errs)
	})
}
