package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/taskboard/internal/model"
)

// CreateTask inserts a new task. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return nil, fmt.Errorf("task title must not be empty")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = model.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.Labels == nil {
		task.Labels = []model.Label{}
	}
	if task.Attachments == nil {
		task.Attachments = []model.Attachment{}
	}

	labels, err := json.Marshal(task.Labels)
	if err != nil {
		return nil, fmt.Errorf("marshaling task labels: %w", err)
	}
	attachments, err := json.Marshal(task.Attachments)
	if err != nil {
		return nil, fmt.Errorf("marshaling task attachments: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, project_id, title, description, status, priority,
			assignee_id, reporter_id, labels, attachments,
			due_date, estimated_hours, actual_hours, progress,
			completed_at, archived, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.ProjectID, task.Title, task.Description, task.Status, task.Priority,
		task.AssigneeID, task.ReporterID, string(labels), string(attachments),
		task.DueDate, task.EstimatedHours, task.ActualHours, task.Progress,
		task.CompletedAt, boolToInt(task.Archived), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &task, nil
}

// UpdateTask persists the mutable fields of a task. The concurrency model is
// last-write-wins on the whole row; there is no version guard.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task model.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	task.UpdatedAt = time.Now().UTC()

	labels, err := json.Marshal(task.Labels)
	if err != nil {
		return fmt.Errorf("marshaling task labels: %w", err)
	}
	attachments, err := json.Marshal(task.Attachments)
	if err != nil {
		return fmt.Errorf("marshaling task attachments: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, description = ?, status = ?, priority = ?,
			assignee_id = ?, labels = ?, attachments = ?,
			due_date = ?, estimated_hours = ?, actual_hours = ?, progress = ?,
			completed_at = ?, archived = ?, updated_at = ?
		WHERE id = ?`,
		task.Title, task.Description, task.Status, task.Priority,
		task.AssigneeID, string(labels), string(attachments),
		task.DueDate, task.EstimatedHours, task.ActualHours, task.Progress,
		task.CompletedAt, boolToInt(task.Archived), task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
	}
	return nil
}

// DeleteTask removes a task by ID. Cascades to comments, subtasks,
// dependencies, time entries, and watchers. Dependency rows on other tasks
// that point at this one are not cleaned up; that is an accepted limitation.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetTaskByID retrieves a single task with all its sub-collections.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	if err := s.loadTaskCollections(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTasks retrieves tasks matching the filter, scoped to the filter's user.
// Sub-collections are not loaded for list views; subtask counts come from a
// separate aggregate when needed.
func (s *SQLiteStore) GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query, args := buildTaskQuery("SELECT tasks.*", filter)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// CountTasks returns the count of tasks matching the filter.
func (s *SQLiteStore) CountTasks(ctx context.Context, filter TaskFilter) (int, error) {
	filter.Limit = 0
	filter.Offset = 0
	query, args := buildTaskQuery("SELECT COUNT(*)", filter)

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return count, nil
}

// AddComment inserts a new comment on a task.
func (s *SQLiteStore) AddComment(ctx context.Context, comment model.Comment) (*model.Comment, error) {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_comments (id, task_id, author_id, content, edited, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID, comment.TaskID, comment.AuthorID, comment.Content,
		boolToInt(comment.Edited), comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding comment to task %s: %w", comment.TaskID, err)
	}
	return &comment, nil
}

// AddSubtask inserts a new subtask. Defaults sort_order to max+1 within the task.
func (s *SQLiteStore) AddSubtask(ctx context.Context, subtask model.Subtask) (*model.Subtask, error) {
	if strings.TrimSpace(subtask.Title) == "" {
		return nil, fmt.Errorf("subtask title must not be empty")
	}
	if subtask.ID == "" {
		subtask.ID = uuid.New().String()
	}
	subtask.CreatedAt = time.Now().UTC()

	if subtask.SortOrder == 0 {
		var maxOrder int
		err := s.db.GetContext(ctx, &maxOrder,
			"SELECT COALESCE(MAX(sort_order), 0) FROM task_subtasks WHERE task_id = ?",
			subtask.TaskID)
		if err != nil {
			return nil, fmt.Errorf("getting max subtask sort_order: %w", err)
		}
		subtask.SortOrder = maxOrder + 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_subtasks (id, task_id, title, completed, completed_at, completed_by, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		subtask.ID, subtask.TaskID, subtask.Title, boolToInt(subtask.Completed),
		subtask.CompletedAt, subtask.CompletedBy, subtask.SortOrder, subtask.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding subtask to task %s: %w", subtask.TaskID, err)
	}
	return &subtask, nil
}

// ToggleSubtask flips a subtask's completed state, stamping who completed it.
func (s *SQLiteStore) ToggleSubtask(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE task_subtasks SET
			completed = CASE WHEN completed = 0 THEN 1 ELSE 0 END,
			completed_at = CASE WHEN completed = 0 THEN ? ELSE NULL END,
			completed_by = CASE WHEN completed = 0 THEN ? ELSE NULL END
		WHERE id = ?`,
		time.Now().UTC(), userID, id,
	)
	if err != nil {
		return fmt.Errorf("toggling subtask %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("subtask %s: %w", id, ErrNotFound)
	}
	return nil
}

// AddDependency inserts a dependency link between two tasks.
func (s *SQLiteStore) AddDependency(ctx context.Context, dep model.Dependency) (*model.Dependency, error) {
	if dep.ID == "" {
		dep.ID = uuid.New().String()
	}
	dep.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_dependencies (id, task_id, other_task_id, relation, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		dep.ID, dep.TaskID, dep.OtherTaskID, dep.Relation, dep.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding dependency to task %s: %w", dep.TaskID, err)
	}
	return &dep, nil
}

// AddTimeEntry inserts a time tracking entry.
func (s *SQLiteStore) AddTimeEntry(ctx context.Context, entry model.TimeEntry) (*model.TimeEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_time_entries (id, task_id, user_id, started_at, ended_at, duration_minutes, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.TaskID, entry.UserID, entry.StartedAt, entry.EndedAt,
		entry.DurationMinutes, entry.Description, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding time entry to task %s: %w", entry.TaskID, err)
	}
	return &entry, nil
}

// AddWatcher adds a user to a task's watcher set. Idempotent.
func (s *SQLiteStore) AddWatcher(ctx context.Context, taskID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO task_watchers (task_id, user_id, added_at)
		VALUES (?, ?, ?)`,
		taskID, userID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("adding watcher %s to task %s: %w", userID, taskID, err)
	}
	return nil
}

// RemoveWatcher removes a user from a task's watcher set. No-op if absent.
func (s *SQLiteStore) RemoveWatcher(ctx context.Context, taskID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM task_watchers WHERE task_id = ? AND user_id = ?",
		taskID, userID,
	)
	if err != nil {
		return fmt.Errorf("removing watcher %s from task %s: %w", userID, taskID, err)
	}
	return nil
}

// loadTaskCollections populates all owned sub-collections of a task.
func (s *SQLiteStore) loadTaskCollections(ctx context.Context, task *model.Task) error {
	err := s.db.SelectContext(ctx, &task.Comments,
		"SELECT * FROM task_comments WHERE task_id = ? ORDER BY created_at, id", task.ID)
	if err != nil {
		return fmt.Errorf("loading comments for task %s: %w", task.ID, err)
	}

	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM task_subtasks WHERE task_id = ? ORDER BY sort_order", task.ID)
	if err != nil {
		return fmt.Errorf("loading subtasks for task %s: %w", task.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		st, err := scanSubtask(rows)
		if err != nil {
			return err
		}
		task.Subtasks = append(task.Subtasks, st)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	err = s.db.SelectContext(ctx, &task.Dependencies,
		"SELECT * FROM task_dependencies WHERE task_id = ? ORDER BY created_at, id", task.ID)
	if err != nil {
		return fmt.Errorf("loading dependencies for task %s: %w", task.ID, err)
	}

	err = s.db.SelectContext(ctx, &task.TimeEntries,
		"SELECT * FROM task_time_entries WHERE task_id = ? ORDER BY started_at, id", task.ID)
	if err != nil {
		return fmt.Errorf("loading time entries for task %s: %w", task.ID, err)
	}

	err = s.db.SelectContext(ctx, &task.Watchers,
		"SELECT user_id FROM task_watchers WHERE task_id = ? ORDER BY added_at, user_id", task.ID)
	if err != nil {
		return fmt.Errorf("loading watchers for task %s: %w", task.ID, err)
	}

	return nil
}

// buildTaskQuery constructs the SQL query and args for a TaskFilter.
func buildTaskQuery(selectClause string, filter TaskFilter) (string, []interface{}) {
	conditions := []string{"tasks.project_id IN " + accessibleProjects}
	args := []interface{}{filter.UserID, filter.UserID}

	if !filter.IncludeArchived {
		conditions = append(conditions, "tasks.archived = 0")
	}
	if filter.Status != nil {
		conditions = append(conditions, "tasks.status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Priority != nil {
		conditions = append(conditions, "tasks.priority = ?")
		args = append(args, *filter.Priority)
	}
	if filter.ProjectID != nil {
		conditions = append(conditions, "tasks.project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.AssigneeID != nil {
		conditions = append(conditions, "tasks.assignee_id = ?")
		args = append(args, *filter.AssigneeID)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(tasks.title LIKE ? OR tasks.description LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	query := selectClause + " FROM tasks WHERE " + strings.Join(conditions, " AND ")

	sortBy := "tasks.updated_at"
	if filter.SortBy != "" {
		allowed := map[string]string{
			"updated_at": "tasks.updated_at",
			"created_at": "tasks.created_at",
			"due_date":   "tasks.due_date",
			"priority":   "tasks.priority",
			"title":      "tasks.title",
		}
		if col, ok := allowed[filter.SortBy]; ok {
			sortBy = col
		}
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	// rowid tiebreak keeps insertion order stable for equal timestamps.
	query += fmt.Sprintf(" ORDER BY %s %s, tasks.rowid", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	return query, args
}

// scanTask scans a task row from either sqlx.Rows or sqlx.Row.
func scanTask(row interface{ Scan(dest ...interface{}) error }) (model.Task, error) {
	var (
		task        model.Task
		assigneeID  *string
		labels      string
		attachments string
		dueDate     *time.Time
		completedAt *time.Time
		archived    int
	)

	err := row.Scan(
		&task.ID, &task.ProjectID, &task.Title, &task.Description, &task.Status, &task.Priority,
		&assigneeID, &task.ReporterID, &labels, &attachments,
		&dueDate, &task.EstimatedHours, &task.ActualHours, &task.Progress,
		&completedAt, &archived, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, err
		}
		return model.Task{}, fmt.Errorf("scanning task row: %w", err)
	}

	task.AssigneeID = assigneeID
	task.DueDate = dueDate
	task.CompletedAt = completedAt
	task.Archived = archived != 0

	if labels != "" {
		if err := json.Unmarshal([]byte(labels), &task.Labels); err != nil {
			return model.Task{}, fmt.Errorf("unmarshaling task labels: %w", err)
		}
	}
	if attachments != "" {
		if err := json.Unmarshal([]byte(attachments), &task.Attachments); err != nil {
			return model.Task{}, fmt.Errorf("unmarshaling task attachments: %w", err)
		}
	}

	return task, nil
}

// scanSubtask scans a subtask row from sqlx.Rows.
func scanSubtask(row interface{ Scan(dest ...interface{}) error }) (model.Subtask, error) {
	var (
		st          model.Subtask
		completed   int
		completedAt *time.Time
		completedBy *string
	)

	err := row.Scan(
		&st.ID, &st.TaskID, &st.Title, &completed,
		&completedAt, &completedBy, &st.SortOrder, &st.CreatedAt,
	)
	if err != nil {
		return model.Subtask{}, fmt.Errorf("scanning subtask row: %w", err)
	}

	st.Completed = completed != 0
	st.CompletedAt = completedAt
	st.CompletedBy = completedBy
	return st, nil
}
