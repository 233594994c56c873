package service_test

import (
	"testing"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/service"
)

func projectWithRoles(ownerID string, members map[string]string) *model.Project {
	project := &model.Project{
		OwnerID: ownerID,
		Members: []model.Member{{UserID: ownerID, Role: model.RoleOwner}},
	}
	for userID, role := range members {
		project.Members = append(project.Members, model.Member{UserID: userID, Role: role})
	}
	return project
}

func TestCanAccessProject(t *testing.T) {
	project := projectWithRoles("owner", map[string]string{
		"admin":  model.RoleAdmin,
		"member": model.RoleMember,
		"viewer": model.RoleViewer,
	})

	tests := []struct {
		userID string
		want   bool
	}{
		{"owner", true},
		{"admin", true},
		{"member", true},
		{"viewer", true},
		{"stranger", false},
	}
	for _, tt := range tests {
		if got := service.CanAccessProject(tt.userID, project); got != tt.want {
			t.Errorf("CanAccessProject(%s) = %v, want %v", tt.userID, got, tt.want)
		}
	}
}

func TestCanManageProject(t *testing.T) {
	project := projectWithRoles("owner", map[string]string{
		"admin":  model.RoleAdmin,
		"member": model.RoleMember,
		"viewer": model.RoleViewer,
	})

	tests := []struct {
		userID string
		want   bool
	}{
		{"owner", true},
		{"admin", true},
		{"member", false},
		{"viewer", false},
		{"stranger", false},
	}
	for _, tt := range tests {
		if got := service.CanManageProject(tt.userID, project); got != tt.want {
			t.Errorf("CanManageProject(%s) = %v, want %v", tt.userID, got, tt.want)
		}
	}
}

func TestCanDeleteProject(t *testing.T) {
	project := projectWithRoles("owner", map[string]string{"admin": model.RoleAdmin})

	if !service.CanDeleteProject("owner", project) {
		t.Error("owner must be able to delete the project")
	}
	if service.CanDeleteProject("admin", project) {
		t.Error("admin must not be able to delete the project")
	}
}

func TestCanDeleteTask(t *testing.T) {
	project := projectWithRoles("owner", map[string]string{
		"reporter": model.RoleMember,
		"member":   model.RoleMember,
	})
	task := &model.Task{ReporterID: "reporter"}

	tests := []struct {
		userID string
		want   bool
	}{
		{"owner", true},
		{"reporter", true},
		{"member", false},
	}
	for _, tt := range tests {
		if got := service.CanDeleteTask(tt.userID, task, project); got != tt.want {
			t.Errorf("CanDeleteTask(%s) = %v, want %v", tt.userID, got, tt.want)
		}
	}
}
