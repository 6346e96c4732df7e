package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a buyer/seller contact message, optionally scoped to a listing.
type Message struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	ConversationID string              `bson:"conversation_id" json:"conversation_id"`
	SenderID       string              `bson:"sender_id" json:"sender_id"`
	ReceiverID     string              `bson:"receiver_id" json:"receiver_id"`
	Content        string              `bson:"content" json:"content"`
	ListingID      *primitive.ObjectID `bson:"listing_id,omitempty" json:"listing_id,omitempty"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
}

// ConversationKey derives the conversation identity from the unordered pair of
// participant ids, so both directions of a thread share one id.
func ConversationKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s:%s", a, b)
}
