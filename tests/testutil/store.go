package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// CreateUser inserts a user fixture and returns it.
func CreateUser(t *testing.T, s *store.SQLiteStore, email, name string) *model.User {
	t.Helper()

	user, err := s.CreateUser(context.Background(), model.User{
		Email:        email,
		PasswordHash: "x",
		Name:         name,
	})
	if err != nil {
		t.Fatalf("creating user fixture %s: %v", email, err)
	}
	return user
}

// CreateProject inserts a project fixture owned by ownerID and returns it.
func CreateProject(t *testing.T, s *store.SQLiteStore, ownerID, name string) *model.Project {
	t.Helper()

	project, err := s.CreateProject(context.Background(), model.Project{
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		t.Fatalf("creating project fixture %s: %v", name, err)
	}
	return project
}

// CreateTask inserts a task fixture in the given project and returns it.
func CreateTask(t *testing.T, s *store.SQLiteStore, projectID, reporterID, title string) *model.Task {
	t.Helper()

	task, err := s.CreateTask(context.Background(), model.Task{
		ProjectID:  projectID,
		Title:      title,
		ReporterID: reporterID,
	})
	if err != nil {
		t.Fatalf("creating task fixture %s: %v", title, err)
	}
	return task
}

// TimePtr returns a pointer to the given time.
func TimePtr(v time.Time) *time.Time { return &v }

// StrPtr returns a pointer to the given string.
func StrPtr(v string) *string { return &v }

// IntPtr returns a pointer to the given int.
func IntPtr(v int) *int { return &v }
