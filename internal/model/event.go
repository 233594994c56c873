package model

// Lifecycle event names delivered to project subscribers.
const (
	EventTaskCreated  = "task-created"
	EventTaskUpdated  = "task-updated"
	EventTaskDeleted  = "task-deleted"
	EventCommentAdded = "comment-added"
)

// Event is a lifecycle notification scoped to a project channel.
type Event struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"event"`
	Payload   any    `json:"payload"`
}
