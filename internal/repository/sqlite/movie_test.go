package sqlite_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/msomdec/movie-library/internal/domain"
	"github.com/msomdec/movie-library/internal/repository/sqlite"
)

func newMovie(id, title string) *domain.Movie {
	return &domain.Movie{ID: id, Title: title, Director: "Denis Villeneuve", Year: 2021}
}

func TestMovieRepository_CreateForUser(t *testing.T) {
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	movies := sqlite.NewMovieRepository(db)
	ctx := context.Background()

	createUser(t, users, "u1", "owner@example.com")

	for _, m := range []*domain.Movie{newMovie("m1", "Dune"), newMovie("m2", "Arrival"), newMovie("m3", "Sicario")} {
		if err := movies.CreateForUser(ctx, "u1", m); err != nil {
			t.Fatalf("CreateForUser %s: %v", m.Title, err)
		}
		if m.CreatedAt.IsZero() {
			t.Fatal("expected CreatedAt to be set")
		}
	}

	user, err := users.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if want := []string{"m1", "m2", "m3"}; !slices.Equal(user.Movies, want) {
		t.Fatalf("expected watchlist %v, got %v", want, user.Movies)
	}
}

func TestMovieRepository_CreateForUser_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	movies := sqlite.NewMovieRepository(db)
	ctx := context.Background()

	err := movies.CreateForUser(ctx, "ghost", newMovie("m1", "Dune"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The movie insert must have been rolled back with the watchlist append.
	if _, err := movies.GetByID(ctx, "m1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected orphan movie to be rolled back, got %v", err)
	}
}

func TestMovieRepository_GetByID_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	movies := sqlite.NewMovieRepository(db)
	ctx := context.Background()

	createUser(t, users, "u1", "owner@example.com")

	m := newMovie("m1", "Dune")
	m.Cast = []string{"Timothée Chalamet", "Zendaya"}
	m.Tags = []string{"sci-fi"}
	m.Description = "Spice must flow."
	m.VideoLink = "https://example.com/trailer"
	if err := movies.CreateForUser(ctx, "u1", m); err != nil {
		t.Fatalf("CreateForUser: %v", err)
	}

	found, err := movies.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !slices.Equal(found.Cast, m.Cast) || !slices.Equal(found.Tags, m.Tags) {
		t.Fatalf("list fields did not round trip: %+v", found)
	}
	if found.Series == nil || len(found.Series) != 0 {
		t.Fatalf("expected empty series, got %v", found.Series)
	}
	if found.Description != m.Description || found.VideoLink != m.VideoLink || found.Year != 2021 {
		t.Fatalf("scalar fields did not round trip: %+v", found)
	}
	if found.Rating != nil || found.LastWatched != nil {
		t.Fatal("expected rating and last watched to be unset")
	}
}

func TestMovieRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	movies := sqlite.NewMovieRepository(db)

	_, err := movies.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMovieRepository_ListByIDs(t *testing.T) {
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	movies := sqlite.NewMovieRepository(db)
	ctx := context.Background()

	createUser(t, users, "u1", "owner@example.com")
	for _, m := range []*domain.Movie{newMovie("m1", "Dune"), newMovie("m2", "Arrival"), newMovie("m3", "Sicario")} {
		if err := movies.CreateForUser(ctx, "u1", m); err != nil {
			t.Fatalf("CreateForUser: %v", err)
		}
	}

	got, err := movies.ListByIDs(ctx, []string{"m3", "m1", "dangling"})
	if err != nil {
		t.Fatalf("ListByIDs: %v", err)
	}
	var titles []string
	for _, m := range got {
		titles = append(titles, m.Title)
	}
	slices.Sort(titles)
	if want := []string{"Dune", "Sicario"}; !slices.Equal(titles, want) {
		t.Fatalf("expected %v, got %v", want, titles)
	}

	empty, err := movies.ListByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("ListByIDs(nil): %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no movies, got %d", len(empty))
	}
}

func TestMovieRepository_Update(t *testing.T) {
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	movies := sqlite.NewMovieRepository(db)
	ctx := context.Background()

	createUser(t, users, "u1", "owner@example.com")
	m := newMovie("m1", "Dune")
	if err := movies.CreateForUser(ctx, "u1", m); err != nil {
		t.Fatalf("CreateForUser: %v", err)
	}

	m.Title = "Dune: Part One"
	m.Series = []string{"Dune"}
	if err := movies.Update(ctx, m); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err := movies.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Title != "Dune: Part One" || !slices.Equal(found.Series, []string{"Dune"}) {
		t.Fatalf("update not persisted: %+v", found)
	}

	if err := movies.Update(ctx, newMovie("missing", "Nope")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing movie, got %v", err)
	}
}

func TestMovieRepository_SetRatingAndLastWatched(t *testing.T) {
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	movies := sqlite.NewMovieRepository(db)
	ctx := context.Background()

	createUser(t, users, "u1", "owner@example.com")
	if err := movies.CreateForUser(ctx, "u1", newMovie("m1", "Dune")); err != nil {
		t.Fatalf("CreateForUser: %v", err)
	}

	if err := movies.SetRating(ctx, "m1", 5); err != nil {
		t.Fatalf("SetRating: %v", err)
	}
	watched := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	if err := movies.SetLastWatched(ctx, "m1", watched); err != nil {
		t.Fatalf("SetLastWatched: %v", err)
	}

	found, err := movies.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Rating == nil || *found.Rating != 5 {
		t.Fatalf("expected rating 5, got %v", found.Rating)
	}
	if found.LastWatched == nil || !found.LastWatched.Equal(watched) {
		t.Fatalf("expected last watched %v, got %v", watched, found.LastWatched)
	}

	if err := movies.SetRating(ctx, "missing", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := movies.SetLastWatched(ctx, "missing", watched); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
