package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/model"
	"portfolio/internal/testutil"
	"portfolio/pkg/apperr"
	"portfolio/pkg/rbac"
)

type fixture struct {
	users    *testutil.UserStore
	projects *testutil.ProjectStore
	services *testutil.ServiceStore
	messages *testutil.MessageStore
	admin    model.User
	client   model.User
}

func newFixture() *fixture {
	f := &fixture{
		users:    testutil.NewUserStore(),
		projects: testutil.NewProjectStore(),
		services: testutil.NewServiceStore(),
		messages: testutil.NewMessageStore(),
	}
	f.admin = f.users.Add(model.User{ClerkID: "user_admin", Email: "admin@example.com", Role: rbac.RoleAdmin})
	f.client = f.users.Add(model.User{ClerkID: "user_client", Email: "client@example.com", Role: rbac.RoleClient})
	return f
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), err.Error())
}

func TestGuard(t *testing.T) {
	f := newFixture()
	g := NewGuard(f.users)
	ctx := context.Background()

	_, err := g.Resolve(ctx, "")
	assertKind(t, err, apperr.KindUnauthenticated)

	_, err = g.Resolve(ctx, "user_ghost")
	assertKind(t, err, apperr.KindNotFound)

	_, err = g.Authorize(ctx, "user_ghost", rbac.RoleAdmin)
	assertKind(t, err, apperr.KindForbidden)

	_, err = g.Authorize(ctx, "user_client", rbac.RoleAdmin)
	assertKind(t, err, apperr.KindForbidden)
	_, msg := apperr.Public(err)
	assert.Equal(t, "forbidden: admin access required", msg)

	u, err := g.Authorize(ctx, "user_admin", rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, u.ID)

	u, err = g.Authorize(ctx, "user_admin", rbac.RoleClient)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
}

func TestProjectCreateDefaults(t *testing.T) {
	f := newFixture()
	s := NewProjectService(f.projects, f.users)

	p, err := s.Create(context.Background(), ProjectInput{
		Title:       "X",
		Description: "Y",
		ClientID:    f.client.ID.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectPending, p.Status)
	assert.Equal(t, model.PriorityMedium, p.Priority)
	assert.Equal(t, 0, p.Progress)
	assert.False(t, p.StartDate.IsZero())
	assert.NotNil(t, p.Technologies)
	assert.NotNil(t, p.Milestones)
	require.NotNil(t, p.Client)
	assert.Equal(t, "client@example.com", p.Client.Email)
}

func TestProjectCreateValidation(t *testing.T) {
	f := newFixture()
	s := NewProjectService(f.projects, f.users)
	ctx := context.Background()

	_, err := s.Create(ctx, ProjectInput{Title: "X"})
	assertKind(t, err, apperr.KindValidation)
	_, msg := apperr.Public(err)
	assert.Equal(t, "title, description and clientId are required", msg)

	base := ProjectInput{Title: "X", Description: "Y", ClientID: f.client.ID.Hex()}

	bad := base
	bad.ClientID = "nope"
	_, err = s.Create(ctx, bad)
	assertKind(t, err, apperr.KindValidation)

	bad = base
	bad.Status = "archived"
	_, err = s.Create(ctx, bad)
	assertKind(t, err, apperr.KindValidation)

	bad = base
	over := 101
	bad.Progress = &over
	_, err = s.Create(ctx, bad)
	assertKind(t, err, apperr.KindValidation)

	bad = base
	bad.Milestones = []MilestoneInput{{Description: "no title"}}
	_, err = s.Create(ctx, bad)
	assertKind(t, err, apperr.KindValidation)
}

func TestProjectStatusRemap(t *testing.T) {
	f := newFixture()
	s := NewProjectService(f.projects, f.users)
	ctx := context.Background()

	p, err := s.Create(ctx, ProjectInput{Title: "X", Description: "Y", ClientID: f.client.ID.Hex()})
	require.NoError(t, err)

	cases := []struct {
		in   string
		want model.ProjectStatus
	}{
		{"in_progress", model.ProjectInProgress},
		{"completed", model.ProjectCompleted},
		{"cancelled", model.ProjectOnHold},
		{"on_hold", model.ProjectOnHold},
		{"pending", model.ProjectPending},
	}
	for _, tc := range cases {
		in := tc.in
		got, err := s.Update(ctx, p.ID.Hex(), ProjectPatch{Status: &in})
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got.Status, tc.in)
		assert.Equal(t, tc.in, got.StatusSource, tc.in)
	}
}

func TestProjectUpdateLeavesAbsentFields(t *testing.T) {
	f := newFixture()
	s := NewProjectService(f.projects, f.users)
	ctx := context.Background()

	p, err := s.Create(ctx, ProjectInput{Title: "X", Description: "Y", ClientID: f.client.ID.Hex(), Technologies: []string{"go"}})
	require.NoError(t, err)

	progress := 40
	got, err := s.Update(ctx, p.ID.Hex(), ProjectPatch{Progress: &progress})
	require.NoError(t, err)
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, []string{"go"}, got.Technologies)

	_, err = s.Update(ctx, "64b000000000000000000000", ProjectPatch{Progress: &progress})
	assertKind(t, err, apperr.KindNotFound)
}

func TestProjectOwnership(t *testing.T) {
	f := newFixture()
	s := NewProjectService(f.projects, f.users)
	ctx := context.Background()
	other := f.users.Add(model.User{ClerkID: "user_other", Role: rbac.RoleClient})

	// clients always own what they create
	p, err := s.CreateFor(ctx, &f.client, ProjectInput{Title: "Mine", Description: "d", ClientID: other.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, f.client.ID, p.ClientID)

	_, err = s.GetFor(ctx, &f.client, p.ID.Hex())
	require.NoError(t, err)
	_, err = s.GetFor(ctx, &f.admin, p.ID.Hex())
	require.NoError(t, err)
	_, err = s.GetFor(ctx, &other, p.ID.Hex())
	assertKind(t, err, apperr.KindForbidden)

	_, err = s.GetFor(ctx, &f.client, "64b000000000000000000000")
	assertKind(t, err, apperr.KindNotFound)
	_, err = s.GetFor(ctx, &f.client, "garbage")
	assertKind(t, err, apperr.KindNotFound)

	list, err := s.ListFor(ctx, &other, model.ProjectFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = s.ListFor(ctx, &f.admin, model.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProjectDeleteKeepsMessages(t *testing.T) {
	f := newFixture()
	ps := NewProjectService(f.projects, f.users)
	ms := NewMessageService(f.messages, f.users, f.projects)
	ctx := context.Background()

	p, err := ps.Create(ctx, ProjectInput{Title: "X", Description: "Y", ClientID: f.client.ID.Hex()})
	require.NoError(t, err)
	_, err = ms.Send(ctx, &f.client, MessageInput{Subject: "s", Content: "c", ProjectID: p.ID.Hex()})
	require.NoError(t, err)

	require.NoError(t, ps.Delete(ctx, p.ID.Hex()))
	assertKind(t, ps.Delete(ctx, p.ID.Hex()), apperr.KindNotFound)

	msgs, err := ms.ListFor(ctx, &f.client, model.MessageFilter{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Nil(t, msgs[0].Project)
}

func TestCatalogOrder(t *testing.T) {
	f := newFixture()
	s := NewCatalogService(f.services)
	ctx := context.Background()

	first, err := s.Create(ctx, ServiceInput{Title: "Web", Description: "d", Icon: "globe"})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Order)
	assert.True(t, first.Active)
	assert.False(t, first.Popular)

	seven := 7
	_, err = s.Create(ctx, ServiceInput{Title: "Mobile", Description: "d", Icon: "phone", Order: &seven})
	require.NoError(t, err)

	next, err := s.Create(ctx, ServiceInput{Title: "Cloud", Description: "d", Icon: "cloud"})
	require.NoError(t, err)
	assert.Equal(t, 8, next.Order)

	_, err = s.Create(ctx, ServiceInput{Title: "No icon", Description: "d"})
	assertKind(t, err, apperr.KindValidation)
	_, msg := apperr.Public(err)
	assert.Equal(t, "title, description and icon are required", msg)
}

func TestCatalogActiveListing(t *testing.T) {
	f := newFixture()
	s := NewCatalogService(f.services)
	ctx := context.Background()

	off := false
	_, err := s.Create(ctx, ServiceInput{Title: "Hidden", Description: "d", Icon: "x", Active: &off})
	require.NoError(t, err)
	_, err = s.Create(ctx, ServiceInput{Title: "Shown", Description: "d", Icon: "y"})
	require.NoError(t, err)

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Shown", active[0].Title)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCatalogMergeUpdate(t *testing.T) {
	f := newFixture()
	s := NewCatalogService(f.services)
	ctx := context.Background()

	svc, err := s.Create(ctx, ServiceInput{Title: "Web", Description: "d", Icon: "globe"})
	require.NoError(t, err)

	var body map[string]any
	dec := json.NewDecoder(strings.NewReader(`{"title":"Web apps","order":3,"popular":true,"createdAt":"2000-01-01T00:00:00Z"}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&body))

	got, err := s.Update(ctx, svc.ID.Hex(), body)
	require.NoError(t, err)
	assert.Equal(t, "Web apps", got.Title)
	assert.Equal(t, 3, got.Order)
	assert.True(t, got.Popular)
	assert.Equal(t, "globe", got.Icon)
	assert.WithinDuration(t, svc.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = s.Update(ctx, svc.ID.Hex(), map[string]any{"$set": 1})
	assertKind(t, err, apperr.KindValidation)

	_, err = s.Update(ctx, "64b000000000000000000000", map[string]any{"title": "x"})
	assertKind(t, err, apperr.KindNotFound)
}

func TestCatalogUpdateRejectsMistypedFields(t *testing.T) {
	f := newFixture()
	s := NewCatalogService(f.services)
	ctx := context.Background()

	svc, err := s.Create(ctx, ServiceInput{Title: "Web", Description: "d", Icon: "globe"})
	require.NoError(t, err)

	cases := []struct {
		body string
		msg  string
	}{
		{`{"order":"first"}`, "invalid order"},
		{`{"order":1.5}`, "invalid order"},
		{`{"active":"yes"}`, "invalid active"},
		{`{"popular":1}`, "invalid popular"},
		{`{"title":5}`, "invalid title"},
		{`{"features":["a",2]}`, "invalid features"},
		{`{"features":"a"}`, "invalid features"},
	}
	for _, tc := range cases {
		var body map[string]any
		dec := json.NewDecoder(strings.NewReader(tc.body))
		dec.UseNumber()
		require.NoError(t, dec.Decode(&body))

		_, err := s.Update(ctx, svc.ID.Hex(), body)
		assertKind(t, err, apperr.KindValidation)
		_, msg := apperr.Public(err)
		assert.Equal(t, tc.msg, msg, tc.body)
	}

	// nothing was written, so the public listing still loads
	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 0, active[0].Order)

	got, err := s.Update(ctx, svc.ID.Hex(), map[string]any{"badge": "new", "features": []any{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Features)
}

func TestServiceStoreKeepsUndecodableMerge(t *testing.T) {
	f := newFixture()
	s := NewCatalogService(f.services)
	ctx := context.Background()

	svc, err := s.Create(ctx, ServiceInput{Title: "Web", Description: "d", Icon: "globe"})
	require.NoError(t, err)

	// straight to the store, skipping the field checks
	_, err = f.services.Merge(ctx, svc.ID, map[string]any{"order": "first"})
	require.Error(t, err)
	_, err = s.ListActive(ctx)
	require.Error(t, err)
}

func TestMessageReplyStampsReadAt(t *testing.T) {
	f := newFixture()
	s := NewMessageService(f.messages, f.users, f.projects)
	ctx := context.Background()

	m, err := s.Send(ctx, &f.client, MessageInput{Subject: "Hi", Content: "Hello"})
	require.NoError(t, err)
	require.Nil(t, m.ReadAt)

	replied := "replied"
	got, err := s.UpdateStatus(ctx, &f.admin, m.ID.Hex(), MessagePatch{Status: &replied})
	require.NoError(t, err)
	assert.Equal(t, model.MessageReplied, got.Status)
	require.NotNil(t, got.ReadAt)
}

func TestMessageSend(t *testing.T) {
	f := newFixture()
	s := NewMessageService(f.messages, f.users, f.projects)
	ctx := context.Background()

	// a client without a receiver writes to the admin
	m, err := s.Send(ctx, &f.client, MessageInput{Subject: "Hi", Content: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, m.ReceiverID)
	assert.Equal(t, model.MessageUnread, m.Status)
	require.NotNil(t, m.Sender)
	assert.Equal(t, "client@example.com", m.Sender.Email)

	_, err = s.Send(ctx, &f.client, MessageInput{Subject: "Hi"})
	assertKind(t, err, apperr.KindValidation)

	_, err = s.Send(ctx, &f.client, MessageInput{Subject: "Hi", Content: "c", ReceiverID: "64b000000000000000000000"})
	assertKind(t, err, apperr.KindNotFound)

	_, err = s.Send(ctx, &f.admin, MessageInput{Subject: "Hi", Content: "c"})
	assertKind(t, err, apperr.KindValidation)

	other := f.users.Add(model.User{ClerkID: "user_admin2", Role: rbac.RoleAdmin})
	_, err = s.Send(ctx, &f.admin, MessageInput{Subject: "Hi", Content: "c", ReceiverID: other.ID.Hex()})
	assertKind(t, err, apperr.KindValidation)

	_, err = s.Send(ctx, &f.admin, MessageInput{Subject: "Hi", Content: "c", ReceiverID: f.client.ID.Hex()})
	require.NoError(t, err)
}

func TestMessageReadIsIdempotent(t *testing.T) {
	f := newFixture()
	s := NewMessageService(f.messages, f.users, f.projects)
	ctx := context.Background()

	m, err := s.Send(ctx, &f.client, MessageInput{Subject: "Hi", Content: "Hello"})
	require.NoError(t, err)

	read := "read"
	first, err := s.UpdateStatus(ctx, &f.admin, m.ID.Hex(), MessagePatch{Status: &read})
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)
	assert.Equal(t, model.MessageRead, first.Status)

	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	second, err := s.UpdateStatus(ctx, &f.admin, m.ID.Hex(), MessagePatch{Status: &read})
	require.NoError(t, err)
	assert.Equal(t, model.MessageRead, second.Status)
	assert.Equal(t, *first.ReadAt, *second.ReadAt)

	unread := "unread"
	_, err = s.UpdateStatus(ctx, &f.admin, m.ID.Hex(), MessagePatch{Status: &unread})
	assertKind(t, err, apperr.KindValidation)

	replied := "replied"
	third, err := s.UpdateStatus(ctx, &f.admin, m.ID.Hex(), MessagePatch{Status: &replied})
	require.NoError(t, err)
	assert.Equal(t, model.MessageReplied, third.Status)
	assert.Equal(t, *first.ReadAt, *third.ReadAt)
}

func TestMessageStatusOnlyByReceiver(t *testing.T) {
	f := newFixture()
	s := NewMessageService(f.messages, f.users, f.projects)
	ctx := context.Background()

	m, err := s.Send(ctx, &f.client, MessageInput{Subject: "Hi", Content: "Hello"})
	require.NoError(t, err)

	read := "read"
	_, err = s.UpdateStatus(ctx, &f.client, m.ID.Hex(), MessagePatch{Status: &read})
	assertKind(t, err, apperr.KindForbidden)

	_, err = s.UpdateStatus(ctx, &f.admin, "64b000000000000000000000", MessagePatch{Status: &read})
	assertKind(t, err, apperr.KindNotFound)

	bogus := "archived"
	_, err = s.UpdateStatus(ctx, &f.admin, m.ID.Hex(), MessagePatch{Status: &bogus})
	assertKind(t, err, apperr.KindValidation)
}

func TestSetupAdminOnce(t *testing.T) {
	users := testutil.NewUserStore()
	first := users.Add(model.User{ClerkID: "user_a", Role: rbac.RoleClient})
	second := users.Add(model.User{ClerkID: "user_b", Role: rbac.RoleClient})
	s := NewUserService(users, testutil.NewProjectStore())
	ctx := context.Background()

	u, err := s.SetupAdmin(ctx, &first)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, u.Role)

	_, err = s.SetupAdmin(ctx, &second)
	assertKind(t, err, apperr.KindValidation)
	_, msg := apperr.Public(err)
	assert.Equal(t, "admin already exists", msg)
}

func TestListClientsWithProjectCounts(t *testing.T) {
	f := newFixture()
	ps := NewProjectService(f.projects, f.users)
	us := NewUserService(f.users, f.projects)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := ps.Create(ctx, ProjectInput{Title: "X", Description: "Y", ClientID: f.client.ID.Hex()})
		require.NoError(t, err)
	}
	idle := f.users.Add(model.User{ClerkID: "user_idle", Role: rbac.RoleClient})

	clients, err := us.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	counts := map[string]int64{}
	for _, c := range clients {
		counts[c.ClerkID] = c.ProjectCount
	}
	assert.Equal(t, int64(2), counts[f.client.ClerkID])
	assert.Equal(t, int64(0), counts[idle.ClerkID])
}

func TestUpdateRole(t *testing.T) {
	f := newFixture()
	s := NewUserService(f.users, f.projects)
	ctx := context.Background()

	u, err := s.UpdateRole(ctx, f.client.ID.Hex(), RoleInput{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, u.Role)

	_, err = s.UpdateRole(ctx, f.client.ID.Hex(), RoleInput{Role: "owner"})
	assertKind(t, err, apperr.KindValidation)

	_, err = s.UpdateRole(ctx, "64b000000000000000000000", RoleInput{Role: "client"})
	assertKind(t, err, apperr.KindNotFound)
}

func TestIdentitySync(t *testing.T) {
	users := testutil.NewUserStore()
	s := NewIdentitySync(users, nil)
	ctx := context.Background()

	profile := model.UserProfile{Email: "a@example.com", FirstName: "Ada"}
	require.NoError(t, s.Apply(ctx, model.IdentityEvent{Type: model.IdentityUserCreated, ClerkID: "user_1", Profile: profile}))
	u, err := users.FindByClerkID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleClient, u.Role)
	assert.Equal(t, "Ada", u.FirstName)

	// replaying the create keeps a single record and its role
	_, err = users.UpdateRole(ctx, u.ID, rbac.RoleAdmin, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Apply(ctx, model.IdentityEvent{Type: model.IdentityUserCreated, ClerkID: "user_1", Profile: profile}))
	assert.Equal(t, 1, users.Len())
	u, _ = users.FindByClerkID(ctx, "user_1")
	assert.Equal(t, rbac.RoleAdmin, u.Role)

	profile.LastName = "Lovelace"
	require.NoError(t, s.Apply(ctx, model.IdentityEvent{Type: model.IdentityUserUpdated, ClerkID: "user_1", Profile: profile}))
	u, _ = users.FindByClerkID(ctx, "user_1")
	assert.Equal(t, "Lovelace", u.LastName)

	require.NoError(t, s.Apply(ctx, model.IdentityEvent{Type: model.IdentityUserUpdated, ClerkID: "user_ghost", Profile: profile}))
	require.NoError(t, s.Apply(ctx, model.IdentityEvent{Type: model.IdentityUserDeleted, ClerkID: "user_ghost"}))
	require.NoError(t, s.Apply(ctx, model.IdentityEvent{Type: "session.created", ClerkID: "user_1"}))
	assert.Equal(t, 1, users.Len())

	require.NoError(t, s.Apply(ctx, model.IdentityEvent{Type: model.IdentityUserDeleted, ClerkID: "user_1"}))
	assert.Equal(t, 0, users.Len())

	err = s.Apply(ctx, model.IdentityEvent{Type: model.IdentityUserCreated})
	assertKind(t, err, apperr.KindValidation)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture()
	ps := NewProjectService(f.projects, f.users)
	ms := NewMessageService(f.messages, f.users, f.projects)
	ctx := context.Background()

	statuses := []string{"pending", "in_progress", "in_progress", "completed", "cancelled", "pending", "pending"}
	for _, st := range statuses {
		_, err := ps.Create(ctx, ProjectInput{Title: st, Description: "d", ClientID: f.client.ID.Hex(), Status: st})
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := ms.Send(ctx, &f.client, MessageInput{Subject: "s", Content: "c"})
		require.NoError(t, err)
	}
	_, err := ms.Send(ctx, &f.admin, MessageInput{Subject: "s", Content: "c", ReceiverID: f.client.ID.Hex()})
	require.NoError(t, err)

	st, err := NewDashboardService(f.projects, f.messages, f.users).Stats(ctx, &f.admin)
	require.NoError(t, err)
	assert.Equal(t, ProjectCounts{Total: 7, Pending: 3, InProgress: 2, OnHold: 1, Completed: 1}, st.Projects)
	assert.Equal(t, int64(1), st.Clients)
	assert.Equal(t, int64(3), st.UnreadMessages)
	assert.Len(t, st.RecentProjects, 5)
	assert.Len(t, st.RecentMessages, 4)
}

