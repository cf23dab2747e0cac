package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/movie-library/internal/domain"
)

// MovieService handles the watchlist and movie mutations.
type MovieService struct {
	movies domain.MovieRepository
	users  domain.UserRepository
	now    func() time.Time
}

// NewMovieService creates a new MovieService.
func NewMovieService(movies domain.MovieRepository, users domain.UserRepository) *MovieService {
	return &MovieService{movies: movies, users: users, now: time.Now}
}

// Watchlist returns the user's movies in the order they were added.
// IDs that no longer resolve to a movie are skipped.
func (s *MovieService) Watchlist(ctx context.Context, userID string) ([]domain.Movie, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	found, err := s.movies.ListByIDs(ctx, user.Movies)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	byID := make(map[string]domain.Movie, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}

	movies := make([]domain.Movie, 0, len(found))
	for _, id := range user.Movies {
		if m, ok := byID[id]; ok {
			movies = append(movies, m)
			delete(byID, id)
		}
	}
	return movies, nil
}

// Add creates the movie and appends it to the user's watchlist.
func (s *MovieService) Add(ctx context.Context, userID string, movie *domain.Movie) error {
	if err := validateMovie(movie); err != nil {
		return err
	}

	movie.ID = newID()
	normalizeLists(movie)

	if err := s.movies.CreateForUser(ctx, userID, movie); err != nil {
		return fmt.Errorf("create movie: %w", err)
	}
	return nil
}

// GetByID retrieves a movie by its ID.
func (s *MovieService) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	return s.movies.GetByID(ctx, id)
}

// Update overwrites the movie's editable fields.
func (s *MovieService) Update(ctx context.Context, movie *domain.Movie) error {
	if err := validateMovie(movie); err != nil {
		return err
	}
	normalizeLists(movie)

	if err := s.movies.Update(ctx, movie); err != nil {
		return fmt.Errorf("update movie: %w", err)
	}
	return nil
}

// Rate sets the movie's rating and returns the updated movie.
func (s *MovieService) Rate(ctx context.Context, id string, rating int) (*domain.Movie, error) {
	if err := s.movies.SetRating(ctx, id, rating); err != nil {
		return nil, fmt.Errorf("set rating: %w", err)
	}
	return s.movies.GetByID(ctx, id)
}

// MarkWatched sets the movie's last-watched time to now and returns the
// updated movie.
func (s *MovieService) MarkWatched(ctx context.Context, id string) (*domain.Movie, error) {
	if err := s.movies.SetLastWatched(ctx, id, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("set last watched: %w", err)
	}
	return s.movies.GetByID(ctx, id)
}

func validateMovie(m *domain.Movie) error {
	m.Title = strings.TrimSpace(m.Title)
	m.Director = strings.TrimSpace(m.Director)

	if m.Title == "" || m.Director == "" {
		return fmt.Errorf("%w: title and director are required", domain.ErrInvalidInput)
	}
	if m.Year < domain.MinMovieYear {
		return fmt.Errorf("%w: year must be %d or later", domain.ErrInvalidInput, domain.MinMovieYear)
	}
	return nil
}

func normalizeLists(m *domain.Movie) {
	for _, list := range []*[]string{&m.Cast, &m.Series, &m.Tags} {
		if *list == nil {
			*list = []string{}
		}
	}
}
