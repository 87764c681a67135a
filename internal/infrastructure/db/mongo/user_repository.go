package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

const collectionUsers = "users"

var userSortKeys = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"username":  "username",
	"email":     "email",
	"lastLogin": "last_login",
	"role":      "role",
}

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if user.ID == "" {
		user.ID = newID()
	}
	user.Email = strings.ToLower(user.Email)
	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.col, bson.M{"_id": id}, domain.ErrUserNotFound)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.col, bson.M{"email": strings.ToLower(email)}, domain.ErrUserNotFound)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.col, bson.M{"username": username}, domain.ErrUserNotFound)
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	set, err := setDoc(user, "refresh_token", "created_at")
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := replaceSet(ctx, r.col, user.ID, set, domain.ErrUserNotFound); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return err
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id, domain.ErrUserNotFound)
}

func (r *UserRepository) List(ctx context.Context, filter ports.UserFilter) ([]*domain.User, int64, error) {
	q := bson.M{}
	if filter.Role != nil {
		q["role"] = *filter.Role
	}
	if filter.IsActive != nil {
		q["is_active"] = *filter.IsActive
	}
	if filter.Search != "" {
		q["$or"] = searchFilter(filter.Search, "username", "email", "first_name", "last_name")
	}
	return findPage[domain.User](ctx, r.col, q, findOptions(filter.ListOptions, userSortKeys))
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return replaceSet(ctx, r.col, id, bson.M{"refresh_token": token}, domain.ErrUserNotFound)
}

// RotateRefreshToken is a compare-and-swap on the stored token.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, id, current, next string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "refresh_token": current},
		bson.M{"$set": bson.M{"refresh_token": next}},
	)
	if err != nil {
		return false, fmt.Errorf("rotate refresh token: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *UserRepository) RecordLogin(ctx context.Context, id, refreshToken string, at time.Time) error {
	return replaceSet(ctx, r.col, id, bson.M{"refresh_token": refreshToken, "last_login": at}, domain.ErrUserNotFound)
}

// EnsureIndexes creates the unique identity indexes.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}}},
	})
}
