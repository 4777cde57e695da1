package model

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageStatus string

const (
	MessageUnread  MessageStatus = "unread"
	MessageRead    MessageStatus = "read"
	MessageReplied MessageStatus = "replied"
)

func ParseMessageStatus(s string) (MessageStatus, error) {
	switch st := MessageStatus(s); st {
	case MessageUnread, MessageRead, MessageReplied:
		return st, nil
	}
	return "", fmt.Errorf("invalid message status %q", s)
}

type Message struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SenderID   primitive.ObjectID  `bson:"senderId" json:"senderId"`
	ReceiverID primitive.ObjectID  `bson:"receiverId" json:"receiverId"`
	ProjectID  *primitive.ObjectID `bson:"projectId,omitempty" json:"projectId,omitempty"`
	Subject    string              `bson:"subject" json:"subject"`
	Content    string              `bson:"content" json:"content"`
	Status     MessageStatus       `bson:"status" json:"status"`
	ReadAt     *time.Time          `bson:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// MessageView is a Message with its references populated.
type MessageView struct {
	Message
	Sender   *UserSummary    `json:"sender,omitempty"`
	Receiver *UserSummary    `json:"receiver,omitempty"`
	Project  *ProjectSummary `json:"project,omitempty"`
}

type MessageFilter struct {
	// Participant matches messages sent or received by the user.
	Participant *primitive.ObjectID
	ReceiverID  *primitive.ObjectID
	ProjectID   *primitive.ObjectID
	Status      MessageStatus
	Limit       int64
}
