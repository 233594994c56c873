package service

import "github.com/nhle/taskboard/internal/model"

// Authorization predicates. All are pure and side-effect free; they are
// evaluated before every mutating operation and most reads. A false result
// maps to an access-denied outcome, never a silent filter.

// CanAccessProject reports whether the user may read the project and its
// tasks: the owner or any member, regardless of role.
func CanAccessProject(userID string, project *model.Project) bool {
	if userID == project.OwnerID {
		return true
	}
	return project.MemberRole(userID) != ""
}

// CanManageProject reports whether the user may mutate the project and its
// membership: the owner or a member with role admin.
func CanManageProject(userID string, project *model.Project) bool {
	if userID == project.OwnerID {
		return true
	}
	return project.MemberRole(userID) == model.RoleAdmin
}

// CanDeleteProject reports whether the user may delete the project: the
// owner only.
func CanDeleteProject(userID string, project *model.Project) bool {
	return userID == project.OwnerID
}

// CanDeleteTask reports whether the user may delete the task: the project
// owner or the task's reporter.
func CanDeleteTask(userID string, task *model.Task, project *model.Project) bool {
	return userID == project.OwnerID || userID == task.ReporterID
}
