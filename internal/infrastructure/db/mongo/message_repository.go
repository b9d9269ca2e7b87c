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

const messagesCollection = "messages"

// MessageRepository implements ports.MessageRepository on MongoDB.
type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{coll: db.Collection(messagesCollection)}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	out := *msg
	return &out, nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m domain.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &m, nil
}

// EnsureIndexes creates the conversation lookup index.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
