package database

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/models"
)

// MessageStore archives chat exchanges to the messages collection. It
// satisfies services.MessageArchiver.
type MessageStore struct {
	collection *mongo.Collection
}

func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{
		collection: db.Collection("messages"),
	}
}

// SaveExchange inserts one exchange record.
func (s *MessageStore) SaveExchange(ctx context.Context, record *models.MessageRecord) error {
	_, err := s.collection.InsertOne(ctx, record)
	return err
}
