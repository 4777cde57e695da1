package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portfolio/internal/model"
)

type ServiceRepository struct {
	cols Collections
}

func NewServiceRepository(cols Collections) *ServiceRepository {
	return &ServiceRepository{cols: cols}
}

func (r *ServiceRepository) coll(ctx context.Context) (*mongo.Collection, error) {
	return r.cols.Collection(ctx, ServicesCollection)
}

// Find returns services in display order.
func (r *ServiceRepository) Find(ctx context.Context, activeOnly bool) ([]model.Service, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}})
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var services []model.Service
	if err := cur.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *ServiceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Service, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var s model.Service
	if err := findOne(ctx, coll, bson.M{"_id": id}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// MaxOrder returns the highest display order; ok is false when the
// collection is empty.
func (r *ServiceRepository) MaxOrder(ctx context.Context) (int, bool, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return 0, false, err
	}
	var s model.Service
	opts := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})
	err = findOne(ctx, coll, bson.M{}, &s, opts)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return s.Order, true, nil
}

func (r *ServiceRepository) Insert(ctx context.Context, s *model.Service) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	res, err := coll.InsertOne(ctx, s)
	if err != nil {
		return err
	}
	s.ID = insertedID(res)
	return nil
}

// Merge sets every given field on the document as-is.
func (r *ServiceRepository) Merge(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*model.Service, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var s model.Service
	if err := findOneAndUpdate(ctx, coll, id, bson.M{"$set": bson.M(fields)}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	return deleteByID(ctx, coll, id)
}
