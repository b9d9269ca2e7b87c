package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/visioncall/calling-api/internal/core/domain"
)

const notificationsCollection = "notifications"

// NotificationRepository implements ports.NotificationRepository on MongoDB.
type NotificationRepository struct {
	coll *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{coll: db.Collection(notificationsCollection)}
}

func (r *NotificationRepository) Create(ctx context.Context, draft *domain.NotificationDraft) (*domain.NotificationDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, draft); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	out := *draft
	return &out, nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*domain.NotificationDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d domain.NotificationDraft
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return &d, nil
}

// UpdateDeliveryState performs the delivery-state transition as a single
// compare-and-set on the stored state. When the filter matches nothing the
// current document decides the outcome: already in the target state is an
// idempotent no-op, the opposite terminal state is an invalid transition.
func (r *NotificationRepository) UpdateDeliveryState(ctx context.Context, id string, from, to domain.DeliveryState, deliveryError string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"delivery_state": string(to),
		"updated_at":     time.Now().UTC(),
	}}
	if deliveryError != "" {
		update["$set"].(bson.M)["delivery_error"] = deliveryError
	} else {
		update["$unset"] = bson.M{"delivery_error": ""}
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "delivery_state": string(from)},
		update,
	)
	if err != nil {
		return fmt.Errorf("update delivery state: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current.DeliveryState == to {
		return nil
	}
	return domain.ErrInvalidDeliveryTransition
}

// EnsureIndexes creates the lookup indexes for the notifications collection.
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "delivery_state", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
