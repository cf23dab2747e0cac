package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/msomdec/movie-library/internal/domain"
)

type movieDocument struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Director    string     `bson:"director"`
	Year        int        `bson:"year"`
	Cast        []string   `bson:"cast"`
	Series      []string   `bson:"series"`
	Tags        []string   `bson:"tags"`
	Description string     `bson:"description"`
	VideoLink   string     `bson:"video_link"`
	Rating      *int       `bson:"rating"`
	LastWatched *time.Time `bson:"last_watched"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

func newMovieDocument(m *domain.Movie) movieDocument {
	return movieDocument{
		ID:          m.ID,
		Title:       m.Title,
		Director:    m.Director,
		Year:        m.Year,
		Cast:        nonNil(m.Cast),
		Series:      nonNil(m.Series),
		Tags:        nonNil(m.Tags),
		Description: m.Description,
		VideoLink:   m.VideoLink,
		Rating:      m.Rating,
		LastWatched: m.LastWatched,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (d *movieDocument) toDomain() domain.Movie {
	return domain.Movie{
		ID:          d.ID,
		Title:       d.Title,
		Director:    d.Director,
		Year:        d.Year,
		Cast:        nonNil(d.Cast),
		Series:      nonNil(d.Series),
		Tags:        nonNil(d.Tags),
		Description: d.Description,
		VideoLink:   d.VideoLink,
		Rating:      d.Rating,
		LastWatched: d.LastWatched,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MovieRepository implements domain.MovieRepository on the movie collection.
type MovieRepository struct {
	movies *mongo.Collection
	users  *mongo.Collection
}

// CreateForUser inserts the movie and pushes its ID onto the owner's movies
// array. MongoDB transactions need a replica set, so a failed push is undone
// by deleting the inserted movie instead.
func (r *MovieRepository) CreateForUser(ctx context.Context, userID string, movie *domain.Movie) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	movie.CreatedAt = now
	movie.UpdatedAt = now

	if _, err := r.movies.InsertOne(ctx, newMovieDocument(movie)); err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}

	result, err := r.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"movies": movie.ID}},
	)
	if err == nil && result.MatchedCount == 0 {
		err = domain.ErrNotFound
	}
	if err != nil {
		if _, delErr := r.movies.DeleteOne(ctx, bson.M{"_id": movie.ID}); delErr != nil {
			slog.Error("remove orphaned movie", "movie_id", movie.ID, "error", delErr)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("append to watchlist: %w", err)
	}
	return nil
}

func (r *MovieRepository) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	var doc movieDocument
	if err := r.movies.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find movie: %w", err)
	}
	movie := doc.toDomain()
	return &movie, nil
}

func (r *MovieRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Movie, error) {
	if len(ids) == 0 {
		return []domain.Movie{}, nil
	}

	cursor, err := r.movies.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []movieDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}

	movies := make([]domain.Movie, len(docs))
	for i := range docs {
		movies[i] = docs[i].toDomain()
	}
	return movies, nil
}

func (r *MovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := newMovieDocument(movie)
	err := r.set(ctx, movie.ID, bson.M{
		"title":        doc.Title,
		"director":     doc.Director,
		"year":         doc.Year,
		"cast":         doc.Cast,
		"series":       doc.Series,
		"tags":         doc.Tags,
		"description":  doc.Description,
		"video_link":   doc.VideoLink,
		"rating":       doc.Rating,
		"last_watched": doc.LastWatched,
		"updated_at":   now,
	})
	if err != nil {
		return err
	}
	movie.UpdatedAt = now
	return nil
}

func (r *MovieRepository) SetRating(ctx context.Context, id string, rating int) error {
	return r.set(ctx, id, bson.M{"rating": rating, "updated_at": time.Now().UTC()})
}

func (r *MovieRepository) SetLastWatched(ctx context.Context, id string, at time.Time) error {
	return r.set(ctx, id, bson.M{"last_watched": at.UTC(), "updated_at": time.Now().UTC()})
}

func (r *MovieRepository) set(ctx context.Context, id string, fields bson.M) error {
	result, err := r.movies.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update movie: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
