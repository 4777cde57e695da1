package model

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "pending"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectOnHold     ProjectStatus = "on-hold"
	ProjectCompleted  ProjectStatus = "completed"
)

// ProjectStatuses lists the stored vocabulary in display order.
var ProjectStatuses = []ProjectStatus{ProjectPending, ProjectInProgress, ProjectOnHold, ProjectCompleted}

// The external vocabulary uses underscores and has a "cancelled" value the
// store does not. cancelled and on_hold both land on on-hold, so the
// mapping cannot be reversed; Project.StatusSource keeps the input.
var projectStatusAliases = map[string]ProjectStatus{
	"pending":     ProjectPending,
	"in_progress": ProjectInProgress,
	"in-progress": ProjectInProgress,
	"on_hold":     ProjectOnHold,
	"on-hold":     ProjectOnHold,
	"cancelled":   ProjectOnHold,
	"completed":   ProjectCompleted,
}

// ParseProjectStatus maps an external or internal status string onto the
// stored vocabulary.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	if st, ok := projectStatusAliases[s]; ok {
		return st, nil
	}
	return "", fmt.Errorf("invalid project status %q", s)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", fmt.Errorf("invalid priority %q", s)
}

type Milestone struct {
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	DueDate     *time.Time `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Completed   bool       `bson:"completed" json:"completed"`
}

type Project struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title"`
	Description      string             `bson:"description" json:"description"`
	ClientID         primitive.ObjectID `bson:"clientId" json:"clientId"`
	Status           ProjectStatus      `bson:"status" json:"status"`
	StatusSource     string             `bson:"statusSource,omitempty" json:"statusSource,omitempty"`
	Priority         Priority           `bson:"priority" json:"priority"`
	Progress         int                `bson:"progress" json:"progress"`
	StartDate        time.Time          `bson:"startDate" json:"startDate"`
	EstimatedEndDate *time.Time         `bson:"estimatedEndDate,omitempty" json:"estimatedEndDate,omitempty"`
	Technologies     []string           `bson:"technologies" json:"technologies"`
	Milestones       []Milestone        `bson:"milestones" json:"milestones"`
	Features         []string           `bson:"features" json:"features"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Project) Summary() *ProjectSummary {
	return &ProjectSummary{ID: p.ID, Title: p.Title, Status: p.Status}
}

// ProjectView is a Project with its client populated.
type ProjectView struct {
	Project
	Client *UserSummary `json:"client,omitempty"`
}

type ProjectSummary struct {
	ID     primitive.ObjectID `json:"id"`
	Title  string             `json:"title"`
	Status ProjectStatus      `json:"status"`
}

// ProjectUpdate carries the whitelisted fields of a partial update; nil
// means untouched.
type ProjectUpdate struct {
	Title            *string
	Description      *string
	ClientID         *primitive.ObjectID
	Status           *ProjectStatus
	StatusSource     *string
	Priority         *Priority
	Progress         *int
	StartDate        *time.Time
	EstimatedEndDate *time.Time
	Technologies     *[]string
	Milestones       *[]Milestone
	Features         *[]string
	UpdatedAt        time.Time
}

type ProjectFilter struct {
	ClientID *primitive.ObjectID
	Status   ProjectStatus
	Priority Priority
	// SortByCreated orders by creation instead of last update.
	SortByCreated bool
	Limit         int64
}
