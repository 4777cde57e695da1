package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portfolio/internal/model"
)

type ProjectRepository struct {
	cols Collections
}

func NewProjectRepository(cols Collections) *ProjectRepository {
	return &ProjectRepository{cols: cols}
}

func (r *ProjectRepository) coll(ctx context.Context) (*mongo.Collection, error) {
	return r.cols.Collection(ctx, ProjectsCollection)
}

func (r *ProjectRepository) Find(ctx context.Context, f model.ProjectFilter) ([]model.Project, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	sortField := "updatedAt"
	if f.SortByCreated {
		sortField = "createdAt"
	}
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := coll.Find(ctx, projectQuery(f), opts)
	if err != nil {
		return nil, err
	}
	var projects []model.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Project, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var p model.Project
	if err := findOne(ctx, coll, bson.M{"_id": id}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Project, error) {
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
	var projects []model.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Insert stores p and sets its ID.
func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	res, err := coll.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	p.ID = insertedID(res)
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, id primitive.ObjectID, u model.ProjectUpdate) (*model.Project, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var p model.Project
	if err := findOneAndUpdate(ctx, coll, id, bson.M{"$set": projectSet(u)}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	return deleteByID(ctx, coll, id)
}

func (r *ProjectRepository) Count(ctx context.Context, f model.ProjectFilter) (int64, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	return coll.CountDocuments(ctx, projectQuery(f))
}

func projectQuery(f model.ProjectFilter) bson.M {
	q := bson.M{}
	if f.ClientID != nil {
		q["clientId"] = *f.ClientID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	return q
}

func projectSet(u model.ProjectUpdate) bson.M {
	set := bson.M{"updatedAt": u.UpdatedAt}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.ClientID != nil {
		set["clientId"] = *u.ClientID
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.StatusSource != nil {
		set["statusSource"] = *u.StatusSource
	}
	if u.Priority != nil {
		set["priority"] = *u.Priority
	}
	if u.Progress != nil {
		set["progress"] = *u.Progress
	}
	if u.StartDate != nil {
		set["startDate"] = *u.StartDate
	}
	if u.EstimatedEndDate != nil {
		set["estimatedEndDate"] = *u.EstimatedEndDate
	}
	if u.Technologies != nil {
		set["technologies"] = *u.Technologies
	}
	if u.Milestones != nil {
		set["milestones"] = *u.Milestones
	}
	if u.Features != nil {
		set["features"] = *u.Features
	}
	return set
}
