package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// Field length and range bounds for task validation.
const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
	maxCommentLen     = 1000
	maxHours          = 1000
)

// Publisher delivers lifecycle events to project subscribers.
type Publisher interface {
	Publish(projectID, event string, payload any)
}

// TaskService enforces task lifecycle invariants on top of the store and
// emits exactly one lifecycle event per successful mutation.
type TaskService struct {
	store store.Store
	pub   Publisher
	log   *logrus.Entry
}

// NewTaskService builds a TaskService.
func NewTaskService(s store.Store, pub Publisher, log *logrus.Entry) *TaskService {
	return &TaskService{store: s, pub: pub, log: log}
}

// CreateTaskInput carries the caller-supplied fields for a new task.
// Reporter and status are never caller-supplied: the reporter is always the
// creator and new tasks always start in todo.
type CreateTaskInput struct {
	ProjectID      string
	Title          string
	Description    string
	Priority       string
	AssigneeID     *string
	DueDate        *time.Time
	EstimatedHours float64
	Labels         []model.Label
}

// TaskChanges is a candidate update: nil fields are untouched.
type TaskChanges struct {
	Title          *string
	Description    *string
	Status         *string
	Priority       *string
	AssigneeID     *string // empty string clears the assignee
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Progress       *int
	Labels         *[]model.Label
	Archived       *bool
}

// ListTasksOptions controls task list filtering and pagination.
type ListTasksOptions struct {
	Status     *string
	Priority   *string
	ProjectID  *string
	AssigneeID *string
	Query      *string
	Page       int
	Limit      int
}

// List returns the caller's accessible, non-archived tasks matching the
// options, plus the total match count for pagination.
func (s *TaskService) List(ctx context.Context, actor string, opts ListTasksOptions) ([]model.Task, int, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 || opts.Limit > 100 {
		opts.Limit = 20
	}

	filter := store.TaskFilter{
		UserID:     actor,
		Status:     opts.Status,
		Priority:   opts.Priority,
		ProjectID:  opts.ProjectID,
		AssigneeID: opts.AssigneeID,
		Query:      opts.Query,
		SortBy:     "updated_at",
		SortDesc:   true,
		Limit:      opts.Limit,
		Offset:     (opts.Page - 1) * opts.Limit,
	}

	tasks, err := s.store.GetTasks(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountTasks(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now().UTC()
	for i := range tasks {
		tasks[i].ComputeDerived(now)
	}
	return tasks, total, nil
}

// Get returns a single task with sub-collections and derived fields, after
// checking the caller can access the task's project.
func (s *TaskService) Get(ctx context.Context, actor, id string) (*model.Task, error) {
	task, _, err := s.loadAccessible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	task.ComputeDerived(time.Now().UTC())
	return task, nil
}

// Create validates the input, persists the task with reporter = actor and
// status todo, and emits a task-created event.
func (s *TaskService) Create(ctx context.Context, actor string, input CreateTaskInput) (*model.Task, error) {
	fields := map[string]string{}
	validateTitle(input.Title, fields)
	validateDescription(input.Description, fields)
	if input.Priority != "" && !contains(model.Priorities, input.Priority) {
		fields["priority"] = "must be one of: " + strings.Join(model.Priorities, ", ")
	}
	if input.EstimatedHours < 0 || input.EstimatedHours > maxHours {
		fields["estimated_hours"] = fmt.Sprintf("must be between 0 and %d", maxHours)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	project, err := s.store.GetProjectByID(ctx, input.ProjectID)
	if err != nil {
		return nil, notFound(err, "project", input.ProjectID)
	}
	if !CanAccessProject(actor, project) {
		return nil, &AccessDeniedError{Reason: "not a member of this project"}
	}

	assignee := input.AssigneeID
	if assignee != nil && *assignee == "" {
		assignee = nil
	}

	task, err := s.store.CreateTask(ctx, model.Task{
		ProjectID:      input.ProjectID,
		Title:          input.Title,
		Description:    input.Description,
		Status:         model.TaskStatusTodo,
		Priority:       input.Priority,
		AssigneeID:     assignee,
		ReporterID:     actor,
		Labels:         input.Labels,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
	})
	if err != nil {
		return nil, err
	}

	task.ComputeDerived(time.Now().UTC())
	s.pub.Publish(task.ProjectID, model.EventTaskCreated, task)
	return task, nil
}

// Update validates every changed field, applies the lifecycle rules, persists
// the result, and emits a task-updated event.
func (s *TaskService) Update(ctx context.Context, actor, id string, changes TaskChanges) (*model.Task, error) {
	task, _, err := s.loadAccessible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if fields := validateTaskChanges(changes); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	ApplyTaskUpdate(task, changes, time.Now().UTC())

	if err := s.store.UpdateTask(ctx, *task); err != nil {
		return nil, notFound(err, "task", id)
	}

	updated, err := s.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "task", id)
	}
	updated.ComputeDerived(time.Now().UTC())
	s.pub.Publish(updated.ProjectID, model.EventTaskUpdated, updated)
	return updated, nil
}

// Delete removes a task. Only the project owner or the task's reporter may
// delete it. Emits a task-deleted event.
func (s *TaskService) Delete(ctx context.Context, actor, id string) error {
	task, project, err := s.loadAccessible(ctx, actor, id)
	if err != nil {
		return err
	}
	if !CanDeleteTask(actor, task, project) {
		return &AccessDeniedError{Reason: "only the project owner or task reporter may delete a task"}
	}

	if err := s.store.DeleteTask(ctx, id); err != nil {
		return notFound(err, "task", id)
	}

	s.pub.Publish(task.ProjectID, model.EventTaskDeleted, map[string]string{
		"task_id": id, "project_id": task.ProjectID,
	})
	return nil
}

// AddComment appends a timestamped comment to the task and emits a
// comment-added event. The task itself is not otherwise mutated.
func (s *TaskService) AddComment(ctx context.Context, actor, taskID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxCommentLen {
		return nil, &ValidationError{Fields: map[string]string{
			"content": fmt.Sprintf("must be between 1 and %d characters", maxCommentLen),
		}}
	}

	task, _, err := s.loadAccessible(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	comment, err := s.store.AddComment(ctx, model.Comment{
		TaskID:   task.ID,
		AuthorID: actor,
		Content:  content,
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(task.ProjectID, model.EventCommentAdded, map[string]any{
		"project_id": task.ProjectID, "comment": comment,
	})
	return comment, nil
}

// AddSubtask appends a subtask and emits a task-updated event.
func (s *TaskService) AddSubtask(ctx context.Context, actor, taskID, title string) (*model.Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxTitleLen {
		return nil, &ValidationError{Fields: map[string]string{
			"title": fmt.Sprintf("must be between 1 and %d characters", maxTitleLen),
		}}
	}

	task, _, err := s.loadAccessible(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	subtask, err := s.store.AddSubtask(ctx, model.Subtask{TaskID: task.ID, Title: title})
	if err != nil {
		return nil, err
	}
	s.pub.Publish(task.ProjectID, model.EventTaskUpdated, task)
	return subtask, nil
}

// ToggleSubtask flips a subtask's completed state and emits a task-updated event.
func (s *TaskService) ToggleSubtask(ctx context.Context, actor, taskID, subtaskID string) error {
	task, _, err := s.loadAccessible(ctx, actor, taskID)
	if err != nil {
		return err
	}

	found := false
	for _, st := range task.Subtasks {
		if st.ID == subtaskID {
			found = true
			break
		}
	}
	if !found {
		return &NotFoundError{Resource: "subtask", ID: subtaskID}
	}

	if err := s.store.ToggleSubtask(ctx, subtaskID, actor); err != nil {
		return notFound(err, "subtask", subtaskID)
	}
	s.pub.Publish(task.ProjectID, model.EventTaskUpdated, task)
	return nil
}

// AddDependency links the task to another accessible task and emits a
// task-updated event.
func (s *TaskService) AddDependency(ctx context.Context, actor, taskID, otherTaskID, relation string) (*model.Dependency, error) {
	if !contains(model.DependencyRelations, relation) {
		return nil, &ValidationError{Fields: map[string]string{
			"relation": "must be one of: " + strings.Join(model.DependencyRelations, ", "),
		}}
	}

	task, _, err := s.loadAccessible(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetTaskByID(ctx, otherTaskID); err != nil {
		return nil, notFound(err, "task", otherTaskID)
	}

	dep, err := s.store.AddDependency(ctx, model.Dependency{
		TaskID: task.ID, OtherTaskID: otherTaskID, Relation: relation,
	})
	if err != nil {
		return nil, err
	}
	s.pub.Publish(task.ProjectID, model.EventTaskUpdated, task)
	return dep, nil
}

// AddTimeEntry records time spent on the task and emits a task-updated event.
// Duration is derived from the start/end pair when not supplied.
func (s *TaskService) AddTimeEntry(ctx context.Context, actor, taskID string, entry model.TimeEntry) (*model.TimeEntry, error) {
	fields := map[string]string{}
	if entry.StartedAt.IsZero() {
		fields["started_at"] = "missed value"
	}
	if entry.EndedAt != nil && entry.EndedAt.Before(entry.StartedAt) {
		fields["ended_at"] = "must not precede started_at"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	task, _, err := s.loadAccessible(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	entry.TaskID = task.ID
	entry.UserID = actor
	if entry.DurationMinutes == 0 && entry.EndedAt != nil {
		entry.DurationMinutes = int(entry.EndedAt.Sub(entry.StartedAt).Minutes())
	}

	created, err := s.store.AddTimeEntry(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(task.ProjectID, model.EventTaskUpdated, task)
	return created, nil
}

// Watch adds the actor to the task's watcher set.
func (s *TaskService) Watch(ctx context.Context, actor, taskID string) error {
	task, _, err := s.loadAccessible(ctx, actor, taskID)
	if err != nil {
		return err
	}
	return s.store.AddWatcher(ctx, task.ID, actor)
}

// Unwatch removes the actor from the task's watcher set.
func (s *TaskService) Unwatch(ctx context.Context, actor, taskID string) error {
	task, _, err := s.loadAccessible(ctx, actor, taskID)
	if err != nil {
		return err
	}
	return s.store.RemoveWatcher(ctx, task.ID, actor)
}

// loadAccessible loads a task and its project, rejecting callers without
// project access. Access denial is reported as such, distinct from not-found.
func (s *TaskService) loadAccessible(ctx context.Context, actor, taskID string) (*model.Task, *model.Project, error) {
	task, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, nil, notFound(err, "task", taskID)
	}
	project, err := s.store.GetProjectByID(ctx, task.ProjectID)
	if err != nil {
		return nil, nil, notFound(err, "project", task.ProjectID)
	}
	if !CanAccessProject(actor, project) {
		return nil, nil, &AccessDeniedError{Reason: "not a member of this project"}
	}
	return task, project, nil
}

// ApplyTaskUpdate applies validated changes to the task in place, enforcing
// the completion invariants:
//   - entering completed stamps CompletedAt and forces Progress to 100
//   - leaving completed clears CompletedAt
func ApplyTaskUpdate(task *model.Task, changes TaskChanges, now time.Time) {
	if changes.Title != nil {
		task.Title = strings.TrimSpace(*changes.Title)
	}
	if changes.Description != nil {
		task.Description = *changes.Description
	}
	if changes.Priority != nil {
		task.Priority = *changes.Priority
	}
	if changes.AssigneeID != nil {
		if *changes.AssigneeID == "" {
			task.AssigneeID = nil
		} else {
			task.AssigneeID = changes.AssigneeID
		}
	}
	if changes.DueDate != nil {
		task.DueDate = changes.DueDate
	}
	if changes.EstimatedHours != nil {
		task.EstimatedHours = *changes.EstimatedHours
	}
	if changes.ActualHours != nil {
		task.ActualHours = *changes.ActualHours
	}
	if changes.Progress != nil {
		task.Progress = *changes.Progress
	}
	if changes.Labels != nil {
		task.Labels = *changes.Labels
	}
	if changes.Archived != nil {
		task.Archived = *changes.Archived
	}

	if changes.Status != nil && *changes.Status != task.Status {
		wasCompleted := task.Status == model.TaskStatusCompleted
		task.Status = *changes.Status

		if task.Status == model.TaskStatusCompleted {
			if task.CompletedAt == nil {
				completedAt := now
				task.CompletedAt = &completedAt
			}
			task.Progress = 100
		} else if wasCompleted {
			task.CompletedAt = nil
		}
	}
}

// validateTaskChanges checks every present field against its constraint and
// returns all violations at once.
func validateTaskChanges(changes TaskChanges) map[string]string {
	fields := map[string]string{}

	if changes.Title != nil {
		validateTitle(*changes.Title, fields)
	}
	if changes.Description != nil {
		validateDescription(*changes.Description, fields)
	}
	if changes.Status != nil && !contains(model.TaskStatuses, *changes.Status) {
		fields["status"] = "must be one of: " + strings.Join(model.TaskStatuses, ", ")
	}
	if changes.Priority != nil && !contains(model.Priorities, *changes.Priority) {
		fields["priority"] = "must be one of: " + strings.Join(model.Priorities, ", ")
	}
	if changes.Progress != nil && (*changes.Progress < 0 || *changes.Progress > 100) {
		fields["progress"] = "must be between 0 and 100"
	}
	if changes.EstimatedHours != nil && (*changes.EstimatedHours < 0 || *changes.EstimatedHours > maxHours) {
		fields["estimated_hours"] = fmt.Sprintf("must be between 0 and %d", maxHours)
	}
	if changes.ActualHours != nil && (*changes.ActualHours < 0 || *changes.ActualHours > maxHours) {
		fields["actual_hours"] = fmt.Sprintf("must be between 0 and %d", maxHours)
	}

	return fields
}

func validateTitle(title string, fields map[string]string) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxTitleLen {
		fields["title"] = fmt.Sprintf("must be between 1 and %d characters", maxTitleLen)
	}
}

func validateDescription(description string, fields map[string]string) {
	if len(description) > maxDescriptionLen {
		fields["description"] = fmt.Sprintf("must be at most %d characters", maxDescriptionLen)
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
