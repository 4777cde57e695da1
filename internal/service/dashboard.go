package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"portfolio/internal/model"
	"portfolio/pkg/rbac"
)

const recentLimit = 5

type ProjectCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	OnHold     int64 `json:"onHold"`
	Completed  int64 `json:"completed"`
}

type DashboardStats struct {
	Projects       ProjectCounts       `json:"projects"`
	Clients        int64               `json:"clients"`
	UnreadMessages int64               `json:"unreadMessages"`
	RecentProjects []model.ProjectView `json:"recentProjects"`
	RecentMessages []model.MessageView `json:"recentMessages"`
}

type DashboardService struct {
	projects ProjectStore
	messages MessageStore
	users    UserStore
}

func NewDashboardService(projects ProjectStore, messages MessageStore, users UserStore) *DashboardService {
	return &DashboardService{projects: projects, messages: messages, users: users}
}

// Stats gathers the admin dashboard figures. The reads are independent
// and run concurrently; the first failure cancels the rest.
func (s *DashboardService) Stats(ctx context.Context, admin *model.User) (*DashboardStats, error) {
	var (
		st             DashboardStats
		recentProjects []model.Project
		recentMessages []model.Message
	)

	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int64, f model.ProjectFilter) {
		g.Go(func() error {
			n, err := s.projects.Count(gctx, f)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(&st.Projects.Total, model.ProjectFilter{})
	count(&st.Projects.Pending, model.ProjectFilter{Status: model.ProjectPending})
	count(&st.Projects.InProgress, model.ProjectFilter{Status: model.ProjectInProgress})
	count(&st.Projects.OnHold, model.ProjectFilter{Status: model.ProjectOnHold})
	count(&st.Projects.Completed, model.ProjectFilter{Status: model.ProjectCompleted})

	g.Go(func() error {
		n, err := s.users.CountByRole(gctx, rbac.RoleClient)
		if err != nil {
			return err
		}
		st.Clients = n
		return nil
	})
	g.Go(func() error {
		n, err := s.messages.Count(gctx, model.MessageFilter{ReceiverID: &admin.ID, Status: model.MessageUnread})
		if err != nil {
			return err
		}
		st.UnreadMessages = n
		return nil
	})
	g.Go(func() error {
		ps, err := s.projects.Find(gctx, model.ProjectFilter{SortByCreated: true, Limit: recentLimit})
		if err != nil {
			return err
		}
		recentProjects = ps
		return nil
	})
	g.Go(func() error {
		ms, err := s.messages.Find(gctx, model.MessageFilter{Limit: recentLimit})
		if err != nil {
			return err
		}
		recentMessages = ms
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, storeErr(err, "not found")
	}

	var err error
	if st.RecentProjects, err = populateProjects(ctx, s.users, recentProjects); err != nil {
		return nil, err
	}
	if st.RecentMessages, err = populateMessages(ctx, s.users, s.projects, recentMessages); err != nil {
		return nil, err
	}
	return &st, nil
}
