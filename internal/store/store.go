package store

import (
	"context"
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// TaskFilter controls filtering, sorting, and pagination for task queries.
// UserID is mandatory: results are always restricted to projects the user
// owns or is a member of.
type TaskFilter struct {
	UserID          string
	Status          *string
	Priority        *string
	ProjectID       *string
	AssigneeID      *string
	Query           *string // search title + description
	IncludeArchived bool
	SortBy          string // "updated_at", "created_at", "due_date", "priority", "title"
	SortDesc        bool
	Limit           int
	Offset          int
}

// Scope restricts analytics queries to a viewer's accessible projects,
// optionally narrowed to a single project.
type Scope struct {
	UserID    string
	ProjectID *string
}

// StatusCount is a per-status task count.
type StatusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// PriorityCount is a per-priority task count.
type PriorityCount struct {
	Priority string `db:"priority"`
	Count    int    `db:"count"`
}

// AssigneeCount is a per-assignee task count joined with the display name.
type AssigneeCount struct {
	AssigneeID string `db:"assignee_id"`
	Name       string `db:"name"`
	Count      int    `db:"count"`
}

// CompletionRecord is a completed task reference used for trend grouping.
type CompletionRecord struct {
	TaskID      string    `db:"id"`
	CompletedAt time.Time `db:"completed_at"`
}

// Store defines the persistence interface for users, projects with their
// memberships, tasks with their owned sub-collections, and analytics.
type Store interface {
	// === Users ===

	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsers(ctx context.Context) ([]model.User, error)

	// === Projects & membership ===

	CreateProject(ctx context.Context, project model.Project) (*model.Project, error)
	UpdateProject(ctx context.Context, project model.Project) error
	GetProjectByID(ctx context.Context, id string) (*model.Project, error)
	GetProjectsForUser(ctx context.Context, userID string, includeArchived bool) ([]model.Project, error)
	DeleteProjectCascade(ctx context.Context, id string) error
	AddMember(ctx context.Context, member model.Member) error
	RemoveMember(ctx context.Context, projectID, userID string) error

	// === Tasks ===

	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) error
	DeleteTask(ctx context.Context, id string) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	CountTasks(ctx context.Context, filter TaskFilter) (int, error)

	// === Task sub-collections ===

	AddComment(ctx context.Context, comment model.Comment) (*model.Comment, error)
	AddSubtask(ctx context.Context, subtask model.Subtask) (*model.Subtask, error)
	ToggleSubtask(ctx context.Context, id, userID string) error
	AddDependency(ctx context.Context, dep model.Dependency) (*model.Dependency, error)
	AddTimeEntry(ctx context.Context, entry model.TimeEntry) (*model.TimeEntry, error)
	AddWatcher(ctx context.Context, taskID, userID string) error
	RemoveWatcher(ctx context.Context, taskID, userID string) error

	// === Analytics ===
	//
	// Each aggregate is a single query over the scoped, non-archived task set.

	StatusCounts(ctx context.Context, scope Scope) ([]StatusCount, error)
	PriorityCounts(ctx context.Context, scope Scope) ([]PriorityCount, error)
	AssigneeCounts(ctx context.Context, scope Scope) ([]AssigneeCount, error)
	OverdueCount(ctx context.Context, scope Scope, now time.Time) (int, error)
	RecentTasks(ctx context.Context, scope Scope, since time.Time, limit int) ([]model.Task, error)
	CompletedSince(ctx context.Context, userID string, since time.Time) ([]CompletionRecord, error)
}
