package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portfolio/internal/model"
	"portfolio/pkg/rbac"
)

type UserRepository struct {
	cols Collections
}

func NewUserRepository(cols Collections) *UserRepository {
	return &UserRepository{cols: cols}
}

func (r *UserRepository) coll(ctx context.Context) (*mongo.Collection, error) {
	return r.cols.Collection(ctx, UsersCollection)
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := findOne(ctx, coll, bson.M{"_id": id}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) FindByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := findOne(ctx, coll, bson.M{"clerkId": clerkID}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindFirstByRole returns the earliest created user holding role.
func (r *UserRepository) FindFirstByRole(ctx context.Context, role rbac.Role) (*model.User, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var u model.User
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if err := findOne(ctx, coll, bson.M{"role": role}, &u, opts); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertByClerkID writes the profile, inserting the user with role when
// the external id is new. Reports whether a document was inserted.
func (r *UserRepository) UpsertByClerkID(ctx context.Context, clerkID string, p model.UserProfile, role rbac.Role, at time.Time) (bool, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return false, err
	}
	update := bson.M{
		"$set":         profileSet(p, at),
		"$setOnInsert": bson.M{"role": role, "createdAt": at},
	}
	res, err := coll.UpdateOne(ctx, bson.M{"clerkId": clerkID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// UpdateProfileByClerkID overwrites the profile fields. Reports whether a
// user matched.
func (r *UserRepository) UpdateProfileByClerkID(ctx context.Context, clerkID string, p model.UserProfile, at time.Time) (bool, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return false, err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"clerkId": clerkID}, bson.M{"$set": profileSet(p, at)})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *UserRepository) DeleteByClerkID(ctx context.Context, clerkID string) (bool, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return false, err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"clerkId": clerkID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// ListByRole returns users holding role, newest first.
func (r *UserRepository) ListByRole(ctx context.Context, role rbac.Role) ([]model.User, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := coll.Find(ctx, bson.M{"role": role}, opts)
	if err != nil {
		return nil, err
	}
	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role rbac.Role) (int64, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	return coll.CountDocuments(ctx, bson.M{"role": role})
}

func (r *UserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role rbac.Role, at time.Time) (*model.User, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var u model.User
	update := bson.M{"$set": bson.M{"role": role, "updatedAt": at}}
	if err := findOneAndUpdate(ctx, coll, id, update, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func profileSet(p model.UserProfile, at time.Time) bson.M {
	return bson.M{
		"email":     p.Email,
		"firstName": p.FirstName,
		"lastName":  p.LastName,
		"imageUrl":  p.ImageURL,
		"updatedAt": at,
	}
}
