package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is an offering shown on the public site, sorted by Order.
type Service struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Icon        string             `bson:"icon" json:"icon"`
	Features    []string           `bson:"features" json:"features"`
	Color       string             `bson:"color,omitempty" json:"color,omitempty"`
	Popular     bool               `bson:"popular" json:"popular"`
	Order       int                `bson:"order" json:"order"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
