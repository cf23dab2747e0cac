// Package mongodb stores users and movies as documents in MongoDB, in the
// "user" and "movie" collections.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/msomdec/movie-library/internal/domain"
)

const (
	userCollection  = "user"
	movieCollection = "movie"
)

// DB wraps a connected MongoDB client and database.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB at uri and verifies the connection.
func New(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{client: client, db: client.Database(dbName)}, nil
}

// Migrate ensures the unique index on user email exists.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.Collection(userCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

func (d *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

func (d *DB) Users() domain.UserRepository {
	return &UserRepository{collection: d.db.Collection(userCollection)}
}

func (d *DB) Movies() domain.MovieRepository {
	return &MovieRepository{
		movies: d.db.Collection(movieCollection),
		users:  d.db.Collection(userCollection),
	}
}
