package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"portfolio/internal/model"
	"portfolio/pkg/apperr"
)

type MilestoneInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Completed   bool   `json:"completed"`
}

type ProjectInput struct {
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	ClientID         string           `json:"clientId"`
	Status           string           `json:"status"`
	Priority         string           `json:"priority"`
	Progress         *int             `json:"progress"`
	StartDate        string           `json:"startDate"`
	EstimatedEndDate string           `json:"estimatedEndDate"`
	Technologies     []string         `json:"technologies"`
	Milestones       []MilestoneInput `json:"milestones"`
	Features         []string         `json:"features"`
}

// ProjectPatch is a partial update; absent fields stay untouched. Only
// these fields can be changed.
type ProjectPatch struct {
	Title            *string           `json:"title"`
	Description      *string           `json:"description"`
	ClientID         *string           `json:"clientId"`
	Status           *string           `json:"status"`
	Priority         *string           `json:"priority"`
	Progress         *int              `json:"progress"`
	StartDate        *string           `json:"startDate"`
	EstimatedEndDate *string           `json:"estimatedEndDate"`
	Technologies     *[]string         `json:"technologies"`
	Milestones       *[]MilestoneInput `json:"milestones"`
	Features         *[]string         `json:"features"`
}

type ProjectService struct {
	projects ProjectStore
	users    UserStore
	now      func() time.Time
}

func NewProjectService(projects ProjectStore, users UserStore) *ProjectService {
	return &ProjectService{projects: projects, users: users, now: time.Now}
}

// ParseProjectFilter builds a list filter from query parameters.
func ParseProjectFilter(status, priority, clientID string) (model.ProjectFilter, error) {
	var f model.ProjectFilter
	if status != "" {
		st, err := model.ParseProjectStatus(status)
		if err != nil {
			return f, apperr.Validation("invalid status")
		}
		f.Status = st
	}
	if priority != "" {
		p, err := model.ParsePriority(priority)
		if err != nil {
			return f, apperr.Validation("invalid priority")
		}
		f.Priority = p
	}
	if clientID != "" {
		id, ok := model.ParseID(clientID)
		if !ok {
			return f, apperr.Validation("invalid clientId")
		}
		f.ClientID = &id
	}
	return f, nil
}

// List returns matching projects, most recently updated first, with
// their clients populated.
func (s *ProjectService) List(ctx context.Context, f model.ProjectFilter) ([]model.ProjectView, error) {
	projects, err := s.projects.Find(ctx, f)
	if err != nil {
		return nil, storeErr(err, "project not found")
	}
	return populateProjects(ctx, s.users, projects)
}

// ListFor scopes List to the caller's own projects unless the caller is
// an admin.
func (s *ProjectService) ListFor(ctx context.Context, caller *model.User, f model.ProjectFilter) ([]model.ProjectView, error) {
	if !caller.IsAdmin() {
		f.ClientID = &caller.ID
	}
	return s.List(ctx, f)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*model.ProjectView, error) {
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	p, err := s.projects.FindByID(ctx, oid)
	if err != nil {
		return nil, storeErr(err, "project not found")
	}
	return s.view(ctx, p)
}

// GetFor returns the project if the caller is an admin or its client.
func (s *ProjectService) GetFor(ctx context.Context, caller *model.User, id string) (*model.ProjectView, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && v.ClientID != caller.ID {
		return nil, apperr.Forbidden("forbidden")
	}
	return v, nil
}

// Create validates in, fills defaults and stores a new project.
func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*model.ProjectView, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" || in.ClientID == "" {
		return nil, apperr.Required("title", "description", "clientId")
	}
	clientID, ok := model.ParseID(in.ClientID)
	if !ok {
		return nil, apperr.Validation("invalid clientId")
	}

	now := s.now().UTC()
	p := &model.Project{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		ClientID:     clientID,
		Status:       model.ProjectPending,
		Priority:     model.PriorityMedium,
		Progress:     0,
		StartDate:    now,
		Technologies: nonNil(in.Technologies),
		Features:     nonNil(in.Features),
		Milestones:   []model.Milestone{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if in.Status != "" {
		st, err := model.ParseProjectStatus(in.Status)
		if err != nil {
			return nil, apperr.Validation("invalid status")
		}
		p.Status = st
		p.StatusSource = in.Status
	}
	if in.Priority != "" {
		pr, err := model.ParsePriority(in.Priority)
		if err != nil {
			return nil, apperr.Validation("invalid priority")
		}
		p.Priority = pr
	}
	if in.Progress != nil {
		if err := checkProgress(*in.Progress); err != nil {
			return nil, err
		}
		p.Progress = *in.Progress
	}
	if in.StartDate != "" {
		d, err := model.ParseDate(in.StartDate)
		if err != nil {
			return nil, apperr.Validation("invalid startDate")
		}
		p.StartDate = d
	}
	if in.EstimatedEndDate != "" {
		d, err := model.ParseDate(in.EstimatedEndDate)
		if err != nil {
			return nil, apperr.Validation("invalid estimatedEndDate")
		}
		p.EstimatedEndDate = &d
	}
	if in.Milestones != nil {
		ms, err := parseMilestones(in.Milestones)
		if err != nil {
			return nil, err
		}
		p.Milestones = ms
	}

	if err := s.projects.Insert(ctx, p); err != nil {
		return nil, storeErr(err, "project not found")
	}
	return s.view(ctx, p)
}

// CreateFor creates a project on behalf of caller. Clients always own
// what they create; admins must name the client.
func (s *ProjectService) CreateFor(ctx context.Context, caller *model.User, in ProjectInput) (*model.ProjectView, error) {
	if !caller.IsAdmin() {
		in.ClientID = caller.ID.Hex()
	}
	return s.Create(ctx, in)
}

// Update applies patch. Status strings go through the same remap as
// Create.
func (s *ProjectService) Update(ctx context.Context, id string, patch ProjectPatch) (*model.ProjectView, error) {
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, apperr.NotFound("project not found")
	}

	u := model.ProjectUpdate{
		Title:        patch.Title,
		Description:  patch.Description,
		Technologies: patch.Technologies,
		Features:     patch.Features,
		UpdatedAt:    s.now().UTC(),
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apperr.Validation("title cannot be empty")
	}
	if patch.ClientID != nil {
		cid, ok := model.ParseID(*patch.ClientID)
		if !ok {
			return nil, apperr.Validation("invalid clientId")
		}
		u.ClientID = &cid
	}
	if patch.Status != nil {
		st, err := model.ParseProjectStatus(*patch.Status)
		if err != nil {
			return nil, apperr.Validation("invalid status")
		}
		u.Status = &st
		u.StatusSource = patch.Status
	}
	if patch.Priority != nil {
		pr, err := model.ParsePriority(*patch.Priority)
		if err != nil {
			return nil, apperr.Validation("invalid priority")
		}
		u.Priority = &pr
	}
	if patch.Progress != nil {
		if err := checkProgress(*patch.Progress); err != nil {
			return nil, err
		}
		u.Progress = patch.Progress
	}
	if patch.StartDate != nil {
		d, err := model.ParseDate(*patch.StartDate)
		if err != nil {
			return nil, apperr.Validation("invalid startDate")
		}
		u.StartDate = &d
	}
	if patch.EstimatedEndDate != nil {
		d, err := model.ParseDate(*patch.EstimatedEndDate)
		if err != nil {
			return nil, apperr.Validation("invalid estimatedEndDate")
		}
		u.EstimatedEndDate = &d
	}
	if patch.Milestones != nil {
		ms, err := parseMilestones(*patch.Milestones)
		if err != nil {
			return nil, err
		}
		u.Milestones = &ms
	}

	p, err := s.projects.Update(ctx, oid, u)
	if err != nil {
		return nil, storeErr(err, "project not found")
	}
	return s.view(ctx, p)
}

// Delete removes the project only; messages referencing it are kept.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	oid, ok := model.ParseID(id)
	if !ok {
		return apperr.NotFound("project not found")
	}
	if err := s.projects.Delete(ctx, oid); err != nil {
		return storeErr(err, "project not found")
	}
	return nil
}

func (s *ProjectService) view(ctx context.Context, p *model.Project) (*model.ProjectView, error) {
	views, err := populateProjects(ctx, s.users, []model.Project{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func checkProgress(n int) error {
	if n < 0 || n > 100 {
		return apperr.Validation("progress must be between 0 and 100")
	}
	return nil
}

func parseMilestones(in []MilestoneInput) ([]model.Milestone, error) {
	out := make([]model.Milestone, 0, len(in))
	for _, m := range in {
		if strings.TrimSpace(m.Title) == "" {
			return nil, apperr.Validation("milestone title is required")
		}
		ms := model.Milestone{Title: m.Title, Description: m.Description, Completed: m.Completed}
		if m.DueDate != "" {
			d, err := model.ParseDate(m.DueDate)
			if err != nil {
				return nil, apperr.Validation("invalid milestone dueDate")
			}
			ms.DueDate = &d
		}
		out = append(out, ms)
	}
	return out, nil
}

// populateProjects attaches client summaries with one batched lookup.
// Clients that no longer exist are left empty.
func populateProjects(ctx context.Context, users UserStore, projects []model.Project) ([]model.ProjectView, error) {
	ids := make([]primitive.ObjectID, 0, len(projects))
	seen := make(map[primitive.ObjectID]bool)
	for _, p := range projects {
		if !seen[p.ClientID] {
			seen[p.ClientID] = true
			ids = append(ids, p.ClientID)
		}
	}

	byID, err := usersByID(ctx, users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]model.ProjectView, 0, len(projects))
	for _, p := range projects {
		v := model.ProjectView{Project: p}
		if u, ok := byID[p.ClientID]; ok {
			v.Client = u.Summary()
		}
		views = append(views, v)
	}
	return views, nil
}

func usersByID(ctx context.Context, users UserStore, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	out := make(map[primitive.ObjectID]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	for i := range found {
		out[found[i].ID] = &found[i]
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
