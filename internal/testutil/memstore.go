// Package testutil holds in-memory stores and request signing helpers for
// tests. The stores follow the ordering and not-found behaviour of the
// collections in internal/repository.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"portfolio/internal/model"
	"portfolio/internal/repository"
	"portfolio/pkg/rbac"
)

type UserStore struct {
	mu    sync.Mutex
	users []model.User
}

func NewUserStore(users ...model.User) *UserStore {
	s := &UserStore{}
	for _, u := range users {
		s.Add(u)
	}
	return s
}

// Add stores u, assigning an id and timestamps when missing, and returns
// the stored copy.
func (s *UserStore) Add(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Add(time.Duration(len(s.users)) * time.Millisecond)
		u.UpdatedAt = u.CreatedAt
	}
	s.users = append(s.users, u)
	return u
}

func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *UserStore) find(match func(*model.User) bool) *model.User {
	for i := range s.users {
		if match(&s.users[i]) {
			return &s.users[i]
		}
	}
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.find(func(u *model.User) bool { return u.ID == id }); u != nil {
		c := *u
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		if u := s.find(func(u *model.User) bool { return u.ID == id }); u != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *UserStore) FindByClerkID(_ context.Context, clerkID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.find(func(u *model.User) bool { return u.ClerkID == clerkID }); u != nil {
		c := *u
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) FindFirstByRole(_ context.Context, role rbac.Role) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first *model.User
	for i := range s.users {
		u := &s.users[i]
		if u.Role == role && (first == nil || u.CreatedAt.Before(first.CreatedAt)) {
			first = u
		}
	}
	if first == nil {
		return nil, repository.ErrNotFound
	}
	c := *first
	return &c, nil
}

func (s *UserStore) UpsertByClerkID(_ context.Context, clerkID string, p model.UserProfile, role rbac.Role, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.find(func(u *model.User) bool { return u.ClerkID == clerkID }); u != nil {
		applyProfile(u, p, at)
		return false, nil
	}
	u := model.User{ID: primitive.NewObjectID(), ClerkID: clerkID, Role: role, CreatedAt: at}
	applyProfile(&u, p, at)
	s.users = append(s.users, u)
	return true, nil
}

func (s *UserStore) UpdateProfileByClerkID(_ context.Context, clerkID string, p model.UserProfile, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.find(func(u *model.User) bool { return u.ClerkID == clerkID }); u != nil {
		applyProfile(u, p, at)
		return true, nil
	}
	return false, nil
}

func (s *UserStore) DeleteByClerkID(_ context.Context, clerkID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ClerkID == clerkID {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) ListByRole(_ context.Context, role rbac.Role) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *UserStore) CountByRole(ctx context.Context, role rbac.Role) (int64, error) {
	us, _ := s.ListByRole(ctx, role)
	return int64(len(us)), nil
}

func (s *UserStore) UpdateRole(_ context.Context, id primitive.ObjectID, role rbac.Role, at time.Time) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.find(func(u *model.User) bool { return u.ID == id }); u != nil {
		u.Role = role
		u.UpdatedAt = at
		c := *u
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func applyProfile(u *model.User, p model.UserProfile, at time.Time) {
	u.Email = p.Email
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.ImageURL = p.ImageURL
	u.UpdatedAt = at
}

type ProjectStore struct {
	mu       sync.Mutex
	projects []model.Project
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{}
}

func (s *ProjectStore) matches(p *model.Project, f model.ProjectFilter) bool {
	if f.ClientID != nil && p.ClientID != *f.ClientID {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Priority != "" && p.Priority != f.Priority {
		return false
	}
	return true
}

func (s *ProjectStore) Find(_ context.Context, f model.ProjectFilter) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Project
	for i := range s.projects {
		if s.matches(&s.projects[i], f) {
			out = append(out, s.projects[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.SortByCreated {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *ProjectStore) FindByID(_ context.Context, id primitive.ObjectID) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *ProjectStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Project
	for _, id := range ids {
		for _, p := range s.projects {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (s *ProjectStore) Insert(_ context.Context, p *model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.projects = append(s.projects, *p)
	return nil
}

func (s *ProjectStore) Update(_ context.Context, id primitive.ObjectID, u model.ProjectUpdate) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		p := &s.projects[i]
		if p.ID != id {
			continue
		}
		if u.Title != nil {
			p.Title = *u.Title
		}
		if u.Description != nil {
			p.Description = *u.Description
		}
		if u.ClientID != nil {
			p.ClientID = *u.ClientID
		}
		if u.Status != nil {
			p.Status = *u.Status
		}
		if u.StatusSource != nil {
			p.StatusSource = *u.StatusSource
		}
		if u.Priority != nil {
			p.Priority = *u.Priority
		}
		if u.Progress != nil {
			p.Progress = *u.Progress
		}
		if u.StartDate != nil {
			p.StartDate = *u.StartDate
		}
		if u.EstimatedEndDate != nil {
			p.EstimatedEndDate = u.EstimatedEndDate
		}
		if u.Technologies != nil {
			p.Technologies = *u.Technologies
		}
		if u.Milestones != nil {
			p.Milestones = *u.Milestones
		}
		if u.Features != nil {
			p.Features = *u.Features
		}
		p.UpdatedAt = u.UpdatedAt
		c := *p
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (s *ProjectStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *ProjectStore) Count(ctx context.Context, f model.ProjectFilter) (int64, error) {
	f.Limit = 0
	ps, _ := s.Find(ctx, f)
	return int64(len(ps)), nil
}

// ServiceStore keeps raw documents so a merge lands before it is decoded,
// as a $set followed by a read-back would.
type ServiceStore struct {
	mu   sync.Mutex
	docs []bson.M
}

func NewServiceStore() *ServiceStore {
	return &ServiceStore{}
}

func decodeService(doc bson.M) (model.Service, error) {
	var svc model.Service
	raw, err := bson.Marshal(doc)
	if err != nil {
		return svc, err
	}
	err = bson.Unmarshal(raw, &svc)
	return svc, err
}

func (s *ServiceStore) indexOf(id primitive.ObjectID) int {
	for i, doc := range s.docs {
		if doc["_id"] == id {
			return i
		}
	}
	return -1
}

func (s *ServiceStore) Find(_ context.Context, activeOnly bool) ([]model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Service
	for _, doc := range s.docs {
		svc, err := decodeService(doc)
		if err != nil {
			return nil, err
		}
		if !activeOnly || svc.Active {
			out = append(out, svc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *ServiceStore) FindByID(_ context.Context, id primitive.ObjectID) (*model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	svc, err := decodeService(s.docs[i])
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *ServiceStore) MaxOrder(ctx context.Context) (int, bool, error) {
	all, err := s.Find(ctx, false)
	if err != nil || len(all) == 0 {
		return 0, false, err
	}
	return all[len(all)-1].Order, true, nil
}

func (s *ServiceStore) Insert(_ context.Context, svc *model.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID.IsZero() {
		svc.ID = primitive.NewObjectID()
	}
	raw, err := bson.Marshal(svc)
	if err != nil {
		return err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return err
	}
	s.docs = append(s.docs, doc)
	return nil
}

// Merge stores the fields first and decodes afterwards, so a value the
// model cannot hold stays in the store and fails every later read.
func (s *ServiceStore) Merge(_ context.Context, id primitive.ObjectID, fields map[string]any) (*model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	for k, v := range fields {
		s.docs[i][k] = v
	}
	svc, err := decodeService(s.docs[i])
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *ServiceStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.docs = append(s.docs[:i], s.docs[i+1:]...)
	return nil
}

type MessageStore struct {
	mu       sync.Mutex
	messages []model.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

func (s *MessageStore) Find(_ context.Context, f model.MessageFilter) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Message
	for _, m := range s.messages {
		if f.Participant != nil && m.SenderID != *f.Participant && m.ReceiverID != *f.Participant {
			continue
		}
		if f.ReceiverID != nil && m.ReceiverID != *f.ReceiverID {
			continue
		}
		if f.ProjectID != nil && (m.ProjectID == nil || *m.ProjectID != *f.ProjectID) {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MessageStore) FindByID(_ context.Context, id primitive.ObjectID) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *MessageStore) Insert(_ context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	s.messages = append(s.messages, *m)
	return nil
}

func (s *MessageStore) MarkRead(_ context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		m := &s.messages[i]
		if m.ID == id && m.Status == model.MessageUnread {
			m.Status = model.MessageRead
			t := at
			m.ReadAt = &t
			m.UpdatedAt = at
			return true, nil
		}
	}
	return false, nil
}

func (s *MessageStore) MarkReplied(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		m := &s.messages[i]
		if m.ID == id {
			m.Status = model.MessageReplied
			if m.ReadAt == nil {
				t := at
				m.ReadAt = &t
			}
			m.UpdatedAt = at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *MessageStore) Count(ctx context.Context, f model.MessageFilter) (int64, error) {
	f.Limit = 0
	ms, _ := s.Find(ctx, f)
	return int64(len(ms)), nil
}
