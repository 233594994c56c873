package model

import "time"

// Project status constants.
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on-hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// Priority constants, shared by projects and tasks.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Membership role constants.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// ProjectStatuses lists every valid project status.
var ProjectStatuses = []string{
	ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold,
	ProjectStatusCompleted, ProjectStatusCancelled,
}

// Priorities lists every valid priority value.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// MemberRoles lists every valid membership role.
var MemberRoles = []string{RoleOwner, RoleAdmin, RoleMember, RoleViewer}

// Member is a user's membership in a project.
type Member struct {
	ProjectID string    `json:"-" db:"project_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	JoinedAt  time.Time `json:"joined_at" db:"joined_at"`
}

// Budget tracks allocated and spent amounts for a project.
type Budget struct {
	Allocated float64 `json:"allocated" db:"budget_allocated"`
	Spent     float64 `json:"spent" db:"budget_spent"`
	Currency  string  `json:"currency" db:"budget_currency"`
}

// Project is a grouping container for tasks, with role-based membership.
// The owner always appears in Members with role "owner".
type Project struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	Priority    string     `json:"priority" db:"priority"`
	OwnerID     string     `json:"owner_id" db:"owner_id"`
	Tags        []string   `json:"tags" db:"-"`
	Color       string     `json:"color" db:"color"`
	Budget      Budget     `json:"budget" db:"-"`
	Progress    int        `json:"progress" db:"progress"`
	Archived    bool       `json:"archived" db:"archived"`
	Deadline    *time.Time `json:"deadline,omitempty" db:"deadline"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// Members is populated by queries that join with project_members.
	Members []Member `json:"members,omitempty" db:"-"`
}

// MemberRole returns the role userID holds in the project, or "" if not a member.
func (p *Project) MemberRole(userID string) string {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}
