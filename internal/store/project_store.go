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

// CreateProject inserts a new project and its owner membership row in a
// single transaction. The owner-always-a-member invariant is enforced here,
// at the call site, rather than by a hidden hook: if the caller already
// supplied an owner entry in Members it is not duplicated.
func (s *SQLiteStore) CreateProject(ctx context.Context, project model.Project) (*model.Project, error) {
	if strings.TrimSpace(project.Name) == "" {
		return nil, fmt.Errorf("project name must not be empty")
	}
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = model.ProjectStatusPlanning
	}
	if project.Priority == "" {
		project.Priority = model.PriorityMedium
	}
	if project.Budget.Currency == "" {
		project.Budget.Currency = "USD"
	}
	if project.Tags == nil {
		project.Tags = []string{}
	}

	tags, err := json.Marshal(project.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshaling project tags: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (
			id, name, description, status, priority, owner_id,
			tags, color, budget_allocated, budget_spent, budget_currency,
			progress, archived, deadline, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID, project.Name, project.Description, project.Status, project.Priority,
		project.OwnerID, string(tags), project.Color,
		project.Budget.Allocated, project.Budget.Spent, project.Budget.Currency,
		project.Progress, boolToInt(project.Archived), project.Deadline,
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	// INSERT OR IGNORE keeps this idempotent against a caller-supplied owner row.
	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO project_members (project_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)`,
		project.ID, project.OwnerID, model.RoleOwner, now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting owner membership: %w", err)
	}

	for _, m := range project.Members {
		if m.UserID == project.OwnerID {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO project_members (project_id, user_id, role, joined_at)
			VALUES (?, ?, ?, ?)`,
			project.ID, m.UserID, m.Role, now,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting membership for %s: %w", m.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing project creation: %w", err)
	}

	return s.GetProjectByID(ctx, project.ID)
}

// UpdateProject updates an existing project's mutable fields.
func (s *SQLiteStore) UpdateProject(ctx context.Context, project model.Project) error {
	if strings.TrimSpace(project.Name) == "" {
		return fmt.Errorf("project name must not be empty")
	}
	project.UpdatedAt = time.Now().UTC()

	tags, err := json.Marshal(project.Tags)
	if err != nil {
		return fmt.Errorf("marshaling project tags: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE projects SET
			name = ?, description = ?, status = ?, priority = ?,
			tags = ?, color = ?, budget_allocated = ?, budget_spent = ?,
			budget_currency = ?, progress = ?, archived = ?, deadline = ?,
			updated_at = ?
		WHERE id = ?`,
		project.Name, project.Description, project.Status, project.Priority,
		string(tags), project.Color,
		project.Budget.Allocated, project.Budget.Spent, project.Budget.Currency,
		project.Progress, boolToInt(project.Archived), project.Deadline,
		project.UpdatedAt, project.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project %s: %w", project.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("project %s: %w", project.ID, ErrNotFound)
	}
	return nil
}

// GetProjectByID retrieves a single project by ID, including its members
// ordered by join time.
func (s *SQLiteStore) GetProjectByID(ctx context.Context, id string) (*model.Project, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM projects WHERE id = ?", id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting project %s: %w", id, err)
	}

	if err := s.loadMembers(ctx, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProjectsForUser retrieves all projects the user owns or is a member of,
// with members loaded, ordered by last update descending.
func (s *SQLiteStore) GetProjectsForUser(
	ctx context.Context,
	userID string,
	includeArchived bool,
) ([]model.Project, error) {
	query := "SELECT * FROM projects WHERE id IN " + accessibleProjects
	args := []interface{}{userID, userID}
	if !includeArchived {
		query += " AND archived = 0"
	}
	query += " ORDER BY updated_at DESC"

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects for user %s: %w", userID, err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		if err := s.loadMembers(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// DeleteProjectCascade removes a project and every task referencing it in a
// single transaction: either both phases commit or neither is visible.
// Dependency rows in other projects pointing at the deleted tasks are not
// cleaned up; that is an accepted limitation of the data model.
func (s *SQLiteStore) DeleteProjectCascade(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("deleting tasks of project %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing project deletion: %w", err)
	}
	return nil
}

// AddMember appends a membership row.
func (s *SQLiteStore) AddMember(ctx context.Context, member model.Member) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_members (project_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)`,
		member.ProjectID, member.UserID, member.Role, member.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("adding member %s to project %s: %w", member.UserID, member.ProjectID, err)
	}
	return nil
}

// RemoveMember deletes a membership row. No-op if the user is not a member.
// References to the removed user from task watchers or assignees are left
// in place; that is an accepted limitation of the data model.
func (s *SQLiteStore) RemoveMember(ctx context.Context, projectID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM project_members WHERE project_id = ? AND user_id = ?",
		projectID, userID,
	)
	if err != nil {
		return fmt.Errorf("removing member %s from project %s: %w", userID, projectID, err)
	}
	return nil
}

// loadMembers populates project.Members ordered by join time.
func (s *SQLiteStore) loadMembers(ctx context.Context, project *model.Project) error {
	var members []model.Member
	err := s.db.SelectContext(ctx, &members,
		"SELECT * FROM project_members WHERE project_id = ? ORDER BY joined_at, user_id",
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("loading members for project %s: %w", project.ID, err)
	}
	project.Members = members
	return nil
}

// scanProject scans a project row from either sqlx.Rows or sqlx.Row.
func scanProject(row interface{ Scan(dest ...interface{}) error }) (model.Project, error) {
	var (
		project  model.Project
		tags     string
		archived int
		deadline *time.Time
	)

	err := row.Scan(
		&project.ID, &project.Name, &project.Description, &project.Status, &project.Priority,
		&project.OwnerID, &tags, &project.Color,
		&project.Budget.Allocated, &project.Budget.Spent, &project.Budget.Currency,
		&project.Progress, &archived, &deadline,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Project{}, err
		}
		return model.Project{}, fmt.Errorf("scanning project row: %w", err)
	}

	project.Archived = archived != 0
	project.Deadline = deadline
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &project.Tags); err != nil {
			return model.Project{}, fmt.Errorf("unmarshaling project tags: %w", err)
		}
	}

	return project, nil
}
