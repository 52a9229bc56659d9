package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"CareSync360/models"
)

// Users reads the users collection. It never writes to it.
type Users struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewUsers(coll *mongo.Collection, timeout time.Duration) *Users {
	return &Users{coll: coll, timeout: timeout}
}

// GetByID returns (nil, nil) when no user has this id; absence is a normal
// outcome, not an error.
func (u *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	var user models.User
	err := u.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetching user %s: %v", ErrStoreUnavailable, id, err)
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail resolves a user by exact (case-sensitive) email. When more than
// one user carries the email the lookup fails with ErrAmbiguousMatch rather
// than silently picking one.
func (u *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	cursor, err := u.coll.Find(ctx, bson.M{"email": email}, options.Find().SetLimit(2))
	if err != nil {
		return nil, fmt.Errorf("%w: querying users by email: %v", ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var matches []models.User
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("%w: reading users by email: %v", ErrStoreUnavailable, err)
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		user := matches[0]
		if err := user.Validate(); err != nil {
			return nil, err
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("%w: email %s", ErrAmbiguousMatch, email)
	}
}
