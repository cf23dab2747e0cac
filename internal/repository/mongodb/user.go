package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/msomdec/movie-library/internal/domain"
)

type userDocument struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	Movies    []string  `bson:"movies"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d *userDocument) toDomain() *domain.User {
	movies := d.Movies
	if movies == nil {
		movies = []string{}
	}
	return &domain.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.Password,
		Movies:       movies,
		CreatedAt:    d.CreatedAt,
	}
}

// UserRepository implements domain.UserRepository on the user collection.
type UserRepository struct {
	collection *mongo.Collection
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.Movies == nil {
		// $push needs an array to append to.
		user.Movies = []string{}
	}
	now := time.Now().UTC().Truncate(time.Millisecond)

	_, err := r.collection.InsertOne(ctx, userDocument{
		ID:        user.ID,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Movies:    user.Movies,
		CreatedAt: now,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	user.CreatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}
