package model

import (
	"math"
	"time"
)

// Task status constants.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusReview     = "review"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// TaskStatuses lists every valid task status.
var TaskStatuses = []string{
	TaskStatusTodo, TaskStatusInProgress, TaskStatusReview,
	TaskStatusCompleted, TaskStatusCancelled,
}

// Dependency relation constants.
const (
	RelationBlocks    = "blocks"
	RelationBlockedBy = "blocked-by"
	RelationRelatesTo = "relates-to"
)

// DependencyRelations lists every valid dependency relation.
var DependencyRelations = []string{RelationBlocks, RelationBlockedBy, RelationRelatesTo}

// Label is a name+color pair attached to a task. Stored as JSON on the task row.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Attachment is a file reference attached to a task. Stored as JSON on the task row.
type Attachment struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Comment is a discussion entry on a task. Its lifecycle is bound to the
// parent task (CASCADE delete); access always flows through the task.
type Comment struct {
	ID        string    `json:"id" db:"id"`
	TaskID    string    `json:"task_id" db:"task_id"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	Edited    bool      `json:"edited" db:"edited"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Subtask is a checklist entry within a task.
type Subtask struct {
	ID          string     `json:"id" db:"id"`
	TaskID      string     `json:"task_id" db:"task_id"`
	Title       string     `json:"title" db:"title"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CompletedBy *string    `json:"completed_by,omitempty" db:"completed_by"`
	SortOrder   int        `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Dependency links a task to another task. Deleting the other task does not
// remove the link; stale references are an accepted limitation.
type Dependency struct {
	ID          string    `json:"id" db:"id"`
	TaskID      string    `json:"task_id" db:"task_id"`
	OtherTaskID string    `json:"other_task_id" db:"other_task_id"`
	Relation    string    `json:"relation" db:"relation"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TimeEntry records time spent on a task by a user.
type TimeEntry struct {
	ID              string     `json:"id" db:"id"`
	TaskID          string     `json:"task_id" db:"task_id"`
	UserID          string     `json:"user_id" db:"user_id"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	DurationMinutes int        `json:"duration_minutes" db:"duration_minutes"`
	Description     string     `json:"description" db:"description"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// Task is a unit of work within a project.
type Task struct {
	ID             string       `json:"id" db:"id"`
	ProjectID      string       `json:"project_id" db:"project_id"`
	Title          string       `json:"title" db:"title"`
	Description    string       `json:"description" db:"description"`
	Status         string       `json:"status" db:"status"`
	Priority       string       `json:"priority" db:"priority"`
	AssigneeID     *string      `json:"assignee_id,omitempty" db:"assignee_id"`
	ReporterID     string       `json:"reporter_id" db:"reporter_id"`
	Labels         []Label      `json:"labels" db:"-"`
	Attachments    []Attachment `json:"attachments" db:"-"`
	DueDate        *time.Time   `json:"due_date,omitempty" db:"due_date"`
	EstimatedHours float64      `json:"estimated_hours" db:"estimated_hours"`
	ActualHours    float64      `json:"actual_hours" db:"actual_hours"`
	Progress       int          `json:"progress" db:"progress"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
	Archived       bool         `json:"archived" db:"archived"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`

	// Sub-collections, populated on single-task reads.
	Watchers     []string     `json:"watchers,omitempty" db:"-"`
	Comments     []Comment    `json:"comments,omitempty" db:"-"`
	Subtasks     []Subtask    `json:"subtasks,omitempty" db:"-"`
	Dependencies []Dependency `json:"dependencies,omitempty" db:"-"`
	TimeEntries  []TimeEntry  `json:"time_entries,omitempty" db:"-"`

	// Derived fields, computed at read time and never persisted.
	IsOverdue       bool `json:"is_overdue" db:"-"`
	DaysRemaining   *int `json:"days_remaining,omitempty" db:"-"`
	SubtaskProgress int  `json:"subtask_progress" db:"-"`
}

// ComputeDerived fills the derived fields relative to now.
func (t *Task) ComputeDerived(now time.Time) {
	t.IsOverdue = t.DueDate != nil && t.Status != TaskStatusCompleted && t.DueDate.Before(now)
	if t.DueDate != nil {
		days := int(math.Ceil(t.DueDate.Sub(now).Hours() / 24))
		t.DaysRemaining = &days
	} else {
		t.DaysRemaining = nil
	}
	t.SubtaskProgress = subtaskProgress(t.Subtasks)
}

// subtaskProgress returns the completed-subtask ratio as a rounded percentage,
// 0 when there are no subtasks.
func subtaskProgress(subtasks []Subtask) int {
	if len(subtasks) == 0 {
		return 0
	}
	done := 0
	for _, st := range subtasks {
		if st.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(subtasks)) * 100))
}
