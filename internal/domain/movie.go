package domain

import (
	"context"
	"strings"
	"time"
)

// MinMovieYear is the year of the earliest surviving motion picture.
const MinMovieYear = 1878

// Movie is an entry of the shared movie catalog.
type Movie struct {
	ID          string
	Title       string
	Director    string
	Year        int
	Cast        []string
	Series      []string
	Tags        []string
	Description string
	VideoLink   string
	Rating      *int
	LastWatched *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MovieRepository defines persistence operations for movies.
type MovieRepository interface {
	// CreateForUser inserts the movie and appends its ID to the owner's
	// watchlist. Either both writes happen or neither does.
	CreateForUser(ctx context.Context, userID string, movie *Movie) error
	GetByID(ctx context.Context, id string) (*Movie, error)
	// ListByIDs returns the movies whose IDs are in ids. Unknown IDs are
	// skipped and the result order is unspecified.
	ListByIDs(ctx context.Context, ids []string) ([]Movie, error)
	Update(ctx context.Context, movie *Movie) error
	SetRating(ctx context.Context, id string, rating int) error
	SetLastWatched(ctx context.Context, id string, at time.Time) error
}

// ParseStringList splits newline-delimited text into a list, trimming each
// line. Blank input yields an empty list.
func ParseStringList(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	items := make([]string, len(lines))
	for i, line := range lines {
		items[i] = strings.TrimSpace(line)
	}
	return items
}

// FormatStringList is the inverse of ParseStringList.
func FormatStringList(items []string) string {
	return strings.Join(items, "\n")
}
