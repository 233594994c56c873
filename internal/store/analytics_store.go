package store

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// scopeClause builds the WHERE fragment and args restricting tasks to the
// viewer's accessible projects (optionally one project) and non-archived rows.
func scopeClause(scope Scope) (string, []interface{}) {
	clause := "tasks.project_id IN " + accessibleProjects + " AND tasks.archived = 0"
	args := []interface{}{scope.UserID, scope.UserID}
	if scope.ProjectID != nil {
		clause += " AND tasks.project_id = ?"
		args = append(args, *scope.ProjectID)
	}
	return clause, args
}

// StatusCounts groups the scoped non-archived tasks by status.
func (s *SQLiteStore) StatusCounts(ctx context.Context, scope Scope) ([]StatusCount, error) {
	clause, args := scopeClause(scope)
	var counts []StatusCount
	err := s.db.SelectContext(ctx, &counts,
		"SELECT status, COUNT(*) AS count FROM tasks WHERE "+clause+" GROUP BY status",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("counting tasks by status: %w", err)
	}
	return counts, nil
}

// PriorityCounts groups the scoped non-archived tasks by priority.
func (s *SQLiteStore) PriorityCounts(ctx context.Context, scope Scope) ([]PriorityCount, error) {
	clause, args := scopeClause(scope)
	var counts []PriorityCount
	err := s.db.SelectContext(ctx, &counts,
		"SELECT priority, COUNT(*) AS count FROM tasks WHERE "+clause+" GROUP BY priority",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("counting tasks by priority: %w", err)
	}
	return counts, nil
}

// AssigneeCounts groups the scoped non-archived tasks by assignee, joined
// with the assignee's display name. Unassigned tasks are excluded.
func (s *SQLiteStore) AssigneeCounts(ctx context.Context, scope Scope) ([]AssigneeCount, error) {
	clause, args := scopeClause(scope)
	var counts []AssigneeCount
	err := s.db.SelectContext(ctx, &counts, `
		SELECT tasks.assignee_id AS assignee_id, users.name AS name, COUNT(*) AS count
		FROM tasks
		JOIN users ON users.id = tasks.assignee_id
		WHERE `+clause+` AND tasks.assignee_id IS NOT NULL
		GROUP BY tasks.assignee_id, users.name`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("counting tasks by assignee: %w", err)
	}
	return counts, nil
}

// OverdueCount counts scoped non-archived tasks whose due date has passed
// and which are not completed.
func (s *SQLiteStore) OverdueCount(ctx context.Context, scope Scope, now time.Time) (int, error) {
	clause, args := scopeClause(scope)
	args = append(args, now.UTC())

	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM tasks
		WHERE `+clause+`
			AND due_date IS NOT NULL AND due_date < ?
			AND status != 'completed'`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("counting overdue tasks: %w", err)
	}
	return count, nil
}

// RecentTasks returns scoped non-archived tasks updated at or after since,
// newest first. Equal timestamps retain insertion order.
func (s *SQLiteStore) RecentTasks(
	ctx context.Context,
	scope Scope,
	since time.Time,
	limit int,
) ([]model.Task, error) {
	clause, args := scopeClause(scope)
	args = append(args, since.UTC())

	query := `SELECT tasks.* FROM tasks WHERE ` + clause + ` AND tasks.updated_at >= ?
		ORDER BY tasks.updated_at DESC, tasks.rowid`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recent tasks: %w", err)
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

// CompletedSince returns completion records for tasks assigned to the user
// that were completed at or after since, in chronological order. The caller
// groups them into trend buckets.
func (s *SQLiteStore) CompletedSince(
	ctx context.Context,
	userID string,
	since time.Time,
) ([]CompletionRecord, error) {
	var records []CompletionRecord
	err := s.db.SelectContext(ctx, &records, `
		SELECT id, completed_at FROM tasks
		WHERE assignee_id = ? AND status = 'completed'
			AND completed_at IS NOT NULL AND completed_at >= ?
		ORDER BY completed_at`,
		userID, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying completed tasks for user %s: %w", userID, err)
	}
	return records, nil
}
