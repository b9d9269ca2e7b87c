package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/visioncall/calling-api/internal/core/domain"
)

const usersCollection = "users"

// UserRepository implements ports.UserRepository on MongoDB. The unique
// indexes created by EnsureIndexes make the collection the uniqueness
// authority for email, activation keys and forgot-password keys; consume
// operations are single conditional updates keyed on the token.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Email             string             `bson:"email"`
	PasswordHash      string             `bson:"password_hash"`
	Name              string             `bson:"name"`
	ActivationKey     string             `bson:"activation_key,omitempty"`
	Active            bool               `bson:"active"`
	Role              string             `bson:"role"`
	ForgotPasswordKey string             `bson:"forgot_password_key,omitempty"`
	FCMToken          string             `bson:"fcm_token,omitempty"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                mu.ID.Hex(),
		Email:             mu.Email,
		PasswordHash:      mu.PasswordHash,
		Name:              mu.Name,
		ActivationKey:     mu.ActivationKey,
		Active:            mu.Active,
		Role:              mu.Role,
		ForgotPasswordKey: mu.ForgotPasswordKey,
		FCMToken:          mu.FCMToken,
		CreatedAt:         mu.CreatedAt,
		UpdatedAt:         mu.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Email:             user.Email,
		PasswordHash:      user.PasswordHash,
		Name:              user.Name,
		ActivationKey:     user.ActivationKey,
		Active:            user.Active,
		Role:              user.Role,
		ForgotPasswordKey: user.ForgotPasswordKey,
		FCMToken:          user.FCMToken,
		CreatedAt:         user.CreatedAt,
		UpdatedAt:         user.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The violated index name is the only discriminator the driver gives us.
			if strings.Contains(err.Error(), "email") {
				return nil, domain.ErrEmailTaken
			}
			return nil, domain.ErrDuplicateToken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	out := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		out.ID = oid.Hex()
	}
	return &out, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByForgotPasswordKey(ctx context.Context, key string) (*domain.User, error) {
	if key == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"forgot_password_key": key})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetForgotPasswordKey(ctx context.Context, id string, key string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"forgot_password_key": key, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateToken
		}
		return fmt.Errorf("set forgot-password key: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ConsumeForgotPasswordKey(ctx context.Context, key string, passwordHash string) error {
	if key == "" {
		return domain.ErrUserNotFound
	}

	// One conditional update keyed on the token: losing a race against a
	// concurrent consume or overwrite matches nothing.
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"forgot_password_key": key},
		bson.M{
			"$set":   bson.M{"password_hash": passwordHash, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"forgot_password_key": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("consume forgot-password key: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ConsumeActivationKey(ctx context.Context, key string) (*domain.User, error) {
	if key == "" {
		return nil, domain.ErrUserNotFound
	}

	var mu mongoUser
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"activation_key": key},
		bson.M{
			"$set":   bson.M{"active": true, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"activation_key": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("consume activation key: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) SetFCMToken(ctx context.Context, id string, fcmToken string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"fcm_token": fcmToken, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("set fcm token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// EnsureIndexes creates the uniqueness constraints the credential lifecycle
// relies on. Token indexes are partial so cleared (absent) keys do not
// collide with each other.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email"),
		},
		{
			Keys: bson.D{{Key: "activation_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("activation_key").
				SetPartialFilterExpression(bson.M{"activation_key": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "forgot_password_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("forgot_password_key").
				SetPartialFilterExpression(bson.M{"forgot_password_key": bson.M{"$exists": true}}),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
