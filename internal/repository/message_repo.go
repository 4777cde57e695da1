package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portfolio/internal/model"
)

type MessageRepository struct {
	cols Collections
}

func NewMessageRepository(cols Collections) *MessageRepository {
	return &MessageRepository{cols: cols}
}

func (r *MessageRepository) coll(ctx context.Context) (*mongo.Collection, error) {
	return r.cols.Collection(ctx, MessagesCollection)
}

// Find returns matching messages, newest first.
func (r *MessageRepository) Find(ctx context.Context, f model.MessageFilter) ([]model.Message, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := coll.Find(ctx, messageQuery(f), opts)
	if err != nil {
		return nil, err
	}
	var messages []model.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Message, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var m model.Message
	if err := findOne(ctx, coll, bson.M{"_id": id}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) Insert(ctx context.Context, m *model.Message) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	res, err := coll.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	m.ID = insertedID(res)
	return nil
}

// MarkRead moves an unread message to read and stamps readAt. A message
// that is no longer unread is left alone; the result reports whether this
// call made the transition.
func (r *MessageRepository) MarkRead(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return false, err
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.MessageUnread},
		bson.M{"$set": bson.M{"status": model.MessageRead, "readAt": at, "updatedAt": at}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// MarkReplied moves a message to replied in one write, stamping readAt
// only when the message was never read.
func (r *MessageRepository) MarkReplied(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, repliedUpdate(at))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func repliedUpdate(at time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "status", Value: model.MessageReplied},
			{Key: "readAt", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$readAt", at}}}},
			{Key: "updatedAt", Value: at},
		}}},
	}
}

func (r *MessageRepository) Count(ctx context.Context, f model.MessageFilter) (int64, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	return coll.CountDocuments(ctx, messageQuery(f))
}

func messageQuery(f model.MessageFilter) bson.M {
	q := bson.M{}
	if f.Participant != nil {
		q["$or"] = bson.A{
			bson.M{"senderId": *f.Participant},
			bson.M{"receiverId": *f.Participant},
		}
	}
	if f.ReceiverID != nil {
		q["receiverId"] = *f.ReceiverID
	}
	if f.ProjectID != nil {
		q["projectId"] = *f.ProjectID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}
