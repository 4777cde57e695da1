package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no document matches.
var ErrNotFound = errors.New("document not found")

const (
	UsersCollection    = "users"
	ProjectsCollection = "projects"
	ServicesCollection = "services"
	MessagesCollection = "messages"
)

// Collections hands out collection handles, connecting on first use.
type Collections interface {
	Collection(ctx context.Context, name string) (*mongo.Collection, error)
}

// EnsureIndexes creates the indexes every repository relies on.
func EnsureIndexes(ctx context.Context, cols Collections) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "clerkId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		ProjectsCollection: {
			{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "updatedAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		ServicesCollection: {
			{Keys: bson.D{{Key: "order", Value: 1}}},
		},
		MessagesCollection: {
			{Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for name, models := range indexes {
		coll, err := cols.Collection(ctx, name)
		if err != nil {
			return err
		}
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

func findOne(ctx context.Context, coll *mongo.Collection, filter any, out any, opts ...*options.FindOneOptions) error {
	err := coll.FindOne(ctx, filter, opts...).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func findOneAndUpdate(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, update any, out any) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func insertedID(res *mongo.InsertOneResult) primitive.ObjectID {
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		return id
	}
	return primitive.NilObjectID
}
