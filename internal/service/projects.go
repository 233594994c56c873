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

const maxProjectNameLen = 100

// ProjectService enforces membership invariants on top of the store.
type ProjectService struct {
	store store.Store
	log   *logrus.Entry
}

// NewProjectService builds a ProjectService.
func NewProjectService(s store.Store, log *logrus.Entry) *ProjectService {
	return &ProjectService{store: s, log: log}
}

// CreateProjectInput carries the caller-supplied fields for a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	Status      string
	Priority    string
	Tags        []string
	Color       string
	Budget      model.Budget
	Deadline    *time.Time
}

// ProjectChanges is a candidate update: nil fields are untouched.
type ProjectChanges struct {
	Name        *string
	Description *string
	Status      *string
	Priority    *string
	Tags        *[]string
	Color       *string
	Budget      *model.Budget
	Progress    *int
	Archived    *bool
	Deadline    *time.Time
}

// List returns all projects the actor owns or is a member of.
func (s *ProjectService) List(ctx context.Context, actor string, includeArchived bool) ([]model.Project, error) {
	return s.store.GetProjectsForUser(ctx, actor, includeArchived)
}

// Get returns a single project, rejecting callers without access.
func (s *ProjectService) Get(ctx context.Context, actor, id string) (*model.Project, error) {
	project, err := s.store.GetProjectByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "project", id)
	}
	if !CanAccessProject(actor, project) {
		return nil, &AccessDeniedError{Reason: "not a member of this project"}
	}
	return project, nil
}

// Create validates the input and persists the project with the actor as
// owner. The owner membership row is inserted in the same transaction; after
// creation the owner appears in Members exactly once with role owner.
func (s *ProjectService) Create(ctx context.Context, actor string, input CreateProjectInput) (*model.Project, error) {
	if fields := validateProjectInput(input.Name, input.Status, input.Priority, nil); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return s.store.CreateProject(ctx, model.Project{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		OwnerID:     actor,
		Tags:        input.Tags,
		Color:       input.Color,
		Budget:      input.Budget,
		Deadline:    input.Deadline,
	})
}

// Update applies validated changes. Requires manage rights (owner or admin).
func (s *ProjectService) Update(ctx context.Context, actor, id string, changes ProjectChanges) (*model.Project, error) {
	project, err := s.store.GetProjectByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "project", id)
	}
	if !CanManageProject(actor, project) {
		return nil, &AccessDeniedError{Reason: "requires owner or admin role"}
	}

	fields := map[string]string{}
	if changes.Name != nil {
		validateProjectName(*changes.Name, fields)
	}
	if changes.Status != nil && !contains(model.ProjectStatuses, *changes.Status) {
		fields["status"] = "must be one of: " + strings.Join(model.ProjectStatuses, ", ")
	}
	if changes.Priority != nil && !contains(model.Priorities, *changes.Priority) {
		fields["priority"] = "must be one of: " + strings.Join(model.Priorities, ", ")
	}
	if changes.Progress != nil && (*changes.Progress < 0 || *changes.Progress > 100) {
		fields["progress"] = "must be between 0 and 100"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if changes.Name != nil {
		project.Name = strings.TrimSpace(*changes.Name)
	}
	if changes.Description != nil {
		project.Description = *changes.Description
	}
	if changes.Status != nil {
		project.Status = *changes.Status
	}
	if changes.Priority != nil {
		project.Priority = *changes.Priority
	}
	if changes.Tags != nil {
		project.Tags = *changes.Tags
	}
	if changes.Color != nil {
		project.Color = *changes.Color
	}
	if changes.Budget != nil {
		project.Budget = *changes.Budget
	}
	if changes.Progress != nil {
		project.Progress = *changes.Progress
	}
	if changes.Archived != nil {
		project.Archived = *changes.Archived
	}
	if changes.Deadline != nil {
		project.Deadline = changes.Deadline
	}

	if err := s.store.UpdateProject(ctx, *project); err != nil {
		return nil, notFound(err, "project", id)
	}
	return s.store.GetProjectByID(ctx, id)
}

// Delete removes the project and cascades to every task referencing it, in
// one store transaction. Owner only.
func (s *ProjectService) Delete(ctx context.Context, actor, id string) error {
	project, err := s.store.GetProjectByID(ctx, id)
	if err != nil {
		return notFound(err, "project", id)
	}
	if !CanDeleteProject(actor, project) {
		return &AccessDeniedError{Reason: "only the owner may delete a project"}
	}

	if err := s.store.DeleteProjectCascade(ctx, id); err != nil {
		return notFound(err, "project", id)
	}

	s.log.WithFields(logrus.Fields{
		"project_id": id,
		"actor":      actor,
	}).Info("project deleted with task cascade")
	return nil
}

// AddMember appends a membership row. Requires manage rights; duplicate
// members are rejected with a conflict and membership is left unchanged.
func (s *ProjectService) AddMember(ctx context.Context, actor, projectID, userID, role string) (*model.Project, error) {
	if role == "" {
		role = model.RoleMember
	}
	if !contains(model.MemberRoles, role) {
		return nil, &ValidationError{Fields: map[string]string{
			"role": "must be one of: " + strings.Join(model.MemberRoles, ", "),
		}}
	}

	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, notFound(err, "project", projectID)
	}
	if !CanManageProject(actor, project) {
		return nil, &AccessDeniedError{Reason: "requires owner or admin role"}
	}
	if project.MemberRole(userID) != "" {
		return nil, &ConflictError{Reason: fmt.Sprintf("user %s is already a member", userID)}
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, notFound(err, "user", userID)
	}

	if err := s.store.AddMember(ctx, model.Member{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}); err != nil {
		return nil, err
	}
	return s.store.GetProjectByID(ctx, projectID)
}

// RemoveMember deletes a membership row. Requires manage rights; the owner
// is irremovable and attempting it is a conflict, never a mutation.
func (s *ProjectService) RemoveMember(ctx context.Context, actor, projectID, userID string) (*model.Project, error) {
	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, notFound(err, "project", projectID)
	}
	if !CanManageProject(actor, project) {
		return nil, &AccessDeniedError{Reason: "requires owner or admin role"}
	}
	if userID == project.OwnerID {
		return nil, &ConflictError{Reason: "the project owner cannot be removed"}
	}

	if err := s.store.RemoveMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.store.GetProjectByID(ctx, projectID)
}

// validateProjectInput collects violations for a new project's fields.
func validateProjectInput(name, status, priority string, fields map[string]string) map[string]string {
	if fields == nil {
		fields = map[string]string{}
	}
	validateProjectName(name, fields)
	if status != "" && !contains(model.ProjectStatuses, status) {
		fields["status"] = "must be one of: " + strings.Join(model.ProjectStatuses, ", ")
	}
	if priority != "" && !contains(model.Priorities, priority) {
		fields["priority"] = "must be one of: " + strings.Join(model.Priorities, ", ")
	}
	return fields
}

func validateProjectName(name string, fields map[string]string) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxProjectNameLen {
		fields["name"] = fmt.Sprintf("must be between 1 and %d characters", maxProjectNameLen)
	}
}
