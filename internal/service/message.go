package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"portfolio/internal/model"
	"portfolio/pkg/apperr"
	"portfolio/pkg/rbac"
)

type MessageInput struct {
	ReceiverID string `json:"receiverId"`
	ProjectID  string `json:"projectId"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
}

// MessagePatch is the only part of a message that can change.
type MessagePatch struct {
	Status *string `json:"status"`
}

type MessageService struct {
	messages MessageStore
	users    UserStore
	projects ProjectStore
	now      func() time.Time
}

func NewMessageService(messages MessageStore, users UserStore, projects ProjectStore) *MessageService {
	return &MessageService{messages: messages, users: users, projects: projects, now: time.Now}
}

// ParseMessageFilter builds a list filter from query parameters.
func ParseMessageFilter(status, projectID string) (model.MessageFilter, error) {
	var f model.MessageFilter
	if status != "" {
		st, err := model.ParseMessageStatus(status)
		if err != nil {
			return f, apperr.Validation("invalid status")
		}
		f.Status = st
	}
	if projectID != "" {
		id, ok := model.ParseID(projectID)
		if !ok {
			return f, apperr.Validation("invalid projectId")
		}
		f.ProjectID = &id
	}
	return f, nil
}

// ListFor returns the messages the caller sent or received, newest first.
func (s *MessageService) ListFor(ctx context.Context, caller *model.User, f model.MessageFilter) ([]model.MessageView, error) {
	f.Participant = &caller.ID
	return s.List(ctx, f)
}

// List returns every message matching f, newest first.
func (s *MessageService) List(ctx context.Context, f model.MessageFilter) ([]model.MessageView, error) {
	msgs, err := s.messages.Find(ctx, f)
	if err != nil {
		return nil, storeErr(err, "message not found")
	}
	return populateMessages(ctx, s.users, s.projects, msgs)
}

// Send stores a message from caller. Clients may omit the receiver, in
// which case the message goes to the site admin. Admins must address a
// client. The receiver must exist.
func (s *MessageService) Send(ctx context.Context, caller *model.User, in MessageInput) (*model.MessageView, error) {
	if caller.IsAdmin() {
		if in.ReceiverID == "" || strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Content) == "" {
			return nil, apperr.Required("receiverId", "subject", "content")
		}
	} else if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Required("subject", "content")
	}

	receiver, err := s.resolveReceiver(ctx, caller, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	if receiver.ID == caller.ID {
		return nil, apperr.Validation("cannot send a message to yourself")
	}
	if caller.IsAdmin() && receiver.Role != rbac.RoleClient {
		return nil, apperr.Validation("receiver must be a client")
	}

	now := s.now().UTC()
	m := &model.Message{
		SenderID:   caller.ID,
		ReceiverID: receiver.ID,
		Subject:    strings.TrimSpace(in.Subject),
		Content:    in.Content,
		Status:     model.MessageUnread,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.ProjectID != "" {
		pid, ok := model.ParseID(in.ProjectID)
		if !ok {
			return nil, apperr.Validation("invalid projectId")
		}
		m.ProjectID = &pid
	}

	if err := s.messages.Insert(ctx, m); err != nil {
		return nil, storeErr(err, "message not found")
	}
	return s.view(ctx, m)
}

func (s *MessageService) resolveReceiver(ctx context.Context, caller *model.User, receiverID string) (*model.User, error) {
	if receiverID == "" {
		u, err := s.users.FindFirstByRole(ctx, rbac.RoleAdmin)
		if err != nil {
			return nil, storeErr(err, "receiver not found")
		}
		return u, nil
	}
	oid, ok := model.ParseID(receiverID)
	if !ok {
		return nil, apperr.NotFound("receiver not found")
	}
	u, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return nil, storeErr(err, "receiver not found")
	}
	return u, nil
}

// UpdateStatus moves a message along unread -> read -> replied. Only the
// receiver or an admin may do so. Marking read twice keeps the first
// readAt, and nothing goes back to unread.
func (s *MessageService) UpdateStatus(ctx context.Context, caller *model.User, id string, patch MessagePatch) (*model.MessageView, error) {
	if patch.Status == nil {
		return nil, apperr.Required("status")
	}
	status, err := model.ParseMessageStatus(*patch.Status)
	if err != nil {
		return nil, apperr.Validation("invalid status")
	}

	oid, ok := model.ParseID(id)
	if !ok {
		return nil, apperr.NotFound("message not found")
	}
	m, err := s.messages.FindByID(ctx, oid)
	if err != nil {
		return nil, storeErr(err, "message not found")
	}
	if !caller.IsAdmin() && m.ReceiverID != caller.ID {
		return nil, apperr.Forbidden("forbidden")
	}

	now := s.now().UTC()
	switch status {
	case model.MessageUnread:
		if m.Status != model.MessageUnread {
			return nil, apperr.Validation("a read message cannot be marked unread")
		}
	case model.MessageRead:
		if _, err := s.messages.MarkRead(ctx, oid, now); err != nil {
			return nil, storeErr(err, "message not found")
		}
	case model.MessageReplied:
		if err := s.messages.MarkReplied(ctx, oid, now); err != nil {
			return nil, storeErr(err, "message not found")
		}
	}

	m, err = s.messages.FindByID(ctx, oid)
	if err != nil {
		return nil, storeErr(err, "message not found")
	}
	return s.view(ctx, m)
}

func (s *MessageService) view(ctx context.Context, m *model.Message) (*model.MessageView, error) {
	views, err := populateMessages(ctx, s.users, s.projects, []model.Message{*m})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// populateMessages attaches sender, receiver and project summaries. The
// user and project lookups are independent and run one after the other.
func populateMessages(ctx context.Context, users UserStore, projects ProjectStore, msgs []model.Message) ([]model.MessageView, error) {
	var userIDs, projectIDs []primitive.ObjectID
	seenUser := make(map[primitive.ObjectID]bool)
	seenProject := make(map[primitive.ObjectID]bool)
	for _, m := range msgs {
		for _, id := range []primitive.ObjectID{m.SenderID, m.ReceiverID} {
			if !seenUser[id] {
				seenUser[id] = true
				userIDs = append(userIDs, id)
			}
		}
		if m.ProjectID != nil && !seenProject[*m.ProjectID] {
			seenProject[*m.ProjectID] = true
			projectIDs = append(projectIDs, *m.ProjectID)
		}
	}

	byUser, err := usersByID(ctx, users, userIDs)
	if err != nil {
		return nil, err
	}
	byProject := make(map[primitive.ObjectID]*model.Project, len(projectIDs))
	if len(projectIDs) > 0 {
		found, err := projects.FindByIDs(ctx, projectIDs)
		if err != nil {
			return nil, storeErr(err, "project not found")
		}
		for i := range found {
			byProject[found[i].ID] = &found[i]
		}
	}

	views := make([]model.MessageView, 0, len(msgs))
	for _, m := range msgs {
		v := model.MessageView{Message: m}
		if u, ok := byUser[m.SenderID]; ok {
			v.Sender = u.Summary()
		}
		if u, ok := byUser[m.ReceiverID]; ok {
			v.Receiver = u.Summary()
		}
		if m.ProjectID != nil {
			if p, ok := byProject[*m.ProjectID]; ok {
				v.Project = p.Summary()
			}
		}
		views = append(views, v)
	}
	return views, nil
}
