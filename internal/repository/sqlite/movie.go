package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/movie-library/internal/domain"
)

// MovieRepository implements domain.MovieRepository using SQLite.
// List fields are stored as JSON arrays.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new SQLite-backed MovieRepository.
func NewMovieRepository(db *DB) *MovieRepository {
	return &MovieRepository{db: db.SqlDB}
}

const movieColumns = `id, title, director, year, cast_members, series, tags,
	description, video_link, rating, last_watched, created_at, updated_at`

// CreateForUser inserts the movie and appends it to the user's watchlist in
// one transaction.
func (r *MovieRepository) CreateForUser(ctx context.Context, userID string, movie *domain.Movie) error {
	cast, series, tags, err := encodeLists(movie)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO movies (id, title, director, year, cast_members, series, tags,
			description, video_link, rating, last_watched, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		movie.ID, movie.Title, movie.Director, movie.Year, cast, series, tags,
		movie.Description, movie.VideoLink, nullInt(movie.Rating), nullTime(movie.LastWatched), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_movies (user_id, movie_id, position)
		 SELECT ?, ?, COALESCE(MAX(position), -1) + 1 FROM user_movies WHERE user_id = ?`,
		userID, movie.ID, userID,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("append to watchlist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	movie.CreatedAt = now
	movie.UpdatedAt = now
	return nil
}

func (r *MovieRepository) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	movie, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query movie by id: %w", err)
	}
	return movie, nil
}

func (r *MovieRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Movie, error) {
	if len(ids) == 0 {
		return []domain.Movie{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	movies := []domain.Movie{}
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, *movie)
	}
	return movies, rows.Err()
}

func (r *MovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	cast, series, tags, err := encodeLists(movie)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE movies SET title = ?, director = ?, year = ?, cast_members = ?, series = ?, tags = ?,
			description = ?, video_link = ?, rating = ?, last_watched = ?, updated_at = ?
		 WHERE id = ?`,
		movie.Title, movie.Director, movie.Year, cast, series, tags,
		movie.Description, movie.VideoLink, nullInt(movie.Rating), nullTime(movie.LastWatched), now,
		movie.ID,
	)
	if err := checkAffected(result, err, "update movie"); err != nil {
		return err
	}
	movie.UpdatedAt = now
	return nil
}

func (r *MovieRepository) SetRating(ctx context.Context, id string, rating int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE movies SET rating = ?, updated_at = ? WHERE id = ?`,
		rating, time.Now().UTC(), id,
	)
	return checkAffected(result, err, "set rating")
}

func (r *MovieRepository) SetLastWatched(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE movies SET last_watched = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), id,
	)
	return checkAffected(result, err, "set last watched")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(s scanner) (*domain.Movie, error) {
	var (
		m                  domain.Movie
		cast, series, tags string
		rating             sql.NullInt64
		lastWatched        sql.NullTime
	)
	err := s.Scan(&m.ID, &m.Title, &m.Director, &m.Year, &cast, &series, &tags,
		&m.Description, &m.VideoLink, &rating, &lastWatched, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		raw string
		dst *[]string
	}{{cast, &m.Cast}, {series, &m.Series}, {tags, &m.Tags}} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		if *f.dst == nil {
			*f.dst = []string{}
		}
	}

	if rating.Valid {
		v := int(rating.Int64)
		m.Rating = &v
	}
	if lastWatched.Valid {
		t := lastWatched.Time
		m.LastWatched = &t
	}
	return &m, nil
}

func encodeLists(m *domain.Movie) (cast, series, tags string, err error) {
	out := make([]string, 3)
	for i, list := range [][]string{m.Cast, m.Series, m.Tags} {
		if list == nil {
			list = []string{}
		}
		b, err := json.Marshal(list)
		if err != nil {
			return "", "", "", fmt.Errorf("encode list: %w", err)
		}
		out[i] = string(b)
	}
	return out[0], out[1], out[2], nil
}

func checkAffected(result sql.Result, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
