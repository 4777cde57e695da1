package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"portfolio/internal/model"
)

func TestProjectQuery(t *testing.T) {
	assert.Empty(t, projectQuery(model.ProjectFilter{}))

	client := primitive.NewObjectID()
	q := projectQuery(model.ProjectFilter{ClientID: &client, Status: model.ProjectOnHold, Priority: model.PriorityHigh})
	assert.Equal(t, bson.M{
		"clientId": client,
		"status":   model.ProjectOnHold,
		"priority": model.PriorityHigh,
	}, q)
}

func TestProjectSetOnlyTouchesGivenFields(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	title := "New title"
	status := model.ProjectOnHold
	source := "cancelled"
	progress := 40
	tech := []string{"go"}

	set := projectSet(model.ProjectUpdate{
		Title:        &title,
		Status:       &status,
		StatusSource: &source,
		Progress:     &progress,
		Technologies: &tech,
		UpdatedAt:    at,
	})

	assert.Equal(t, bson.M{
		"title":        "New title",
		"status":       model.ProjectOnHold,
		"statusSource": "cancelled",
		"progress":     40,
		"technologies": []string{"go"},
		"updatedAt":    at,
	}, set)
}

func TestMessageQuery(t *testing.T) {
	user := primitive.NewObjectID()
	project := primitive.NewObjectID()

	q := messageQuery(model.MessageFilter{Participant: &user, ProjectID: &project, Status: model.MessageUnread})
	assert.Equal(t, bson.A{bson.M{"senderId": user}, bson.M{"receiverId": user}}, q["$or"])
	assert.Equal(t, project, q["projectId"])
	assert.Equal(t, model.MessageUnread, q["status"])

	q = messageQuery(model.MessageFilter{ReceiverID: &user})
	assert.Equal(t, bson.M{"receiverId": user}, q)
}

func TestProfileSet(t *testing.T) {
	at := time.Now()
	set := profileSet(model.UserProfile{Email: "a@b.c", FirstName: "A"}, at)
	assert.Equal(t, "a@b.c", set["email"])
	assert.Equal(t, "A", set["firstName"])
	assert.Equal(t, "", set["lastName"])
	assert.Equal(t, at, set["updatedAt"])
}
