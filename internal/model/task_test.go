package model

import (
	"testing"
	"time"
)

func TestComputeDerivedOverdue(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name    string
		dueDate *time.Time
		status  string
		want    bool
	}{
		{"past due and open", &past, TaskStatusInProgress, true},
		{"past due but completed", &past, TaskStatusCompleted, false},
		{"future due", &future, TaskStatusTodo, false},
		{"no due date", nil, TaskStatusTodo, false},
		{"past due cancelled", &past, TaskStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{DueDate: tt.dueDate, Status: tt.status}
			task.ComputeDerived(now)
			if task.IsOverdue != tt.want {
				t.Errorf("IsOverdue = %v, want %v", task.IsOverdue, tt.want)
			}
		})
	}
}

func TestComputeDerivedDaysRemaining(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate *time.Time
		want    *int
	}{
		{"three days out", timePtr(now.Add(72 * time.Hour)), intPtr(3)},
		{"partial day rounds up", timePtr(now.Add(36 * time.Hour)), intPtr(2)},
		{"two days overdue", timePtr(now.Add(-48 * time.Hour)), intPtr(-2)},
		{"no due date", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{DueDate: tt.dueDate}
			task.ComputeDerived(now)
			if (task.DaysRemaining == nil) != (tt.want == nil) {
				t.Fatalf("DaysRemaining = %v, want %v", task.DaysRemaining, tt.want)
			}
			if tt.want != nil && *task.DaysRemaining != *tt.want {
				t.Errorf("DaysRemaining = %d, want %d", *task.DaysRemaining, *tt.want)
			}
		})
	}
}

func TestComputeDerivedSubtaskProgress(t *testing.T) {
	tests := []struct {
		name      string
		completed []bool
		want      int
	}{
		{"no subtasks", nil, 0},
		{"none done", []bool{false, false}, 0},
		{"one of four", []bool{true, false, false, false}, 25},
		{"one of three rounds", []bool{true, false, false}, 33},
		{"two of three rounds", []bool{true, true, false}, 67},
		{"all done", []bool{true, true}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{}
			for _, done := range tt.completed {
				task.Subtasks = append(task.Subtasks, Subtask{Completed: done})
			}
			task.ComputeDerived(time.Now())
			if task.SubtaskProgress != tt.want {
				t.Errorf("SubtaskProgress = %d, want %d", task.SubtaskProgress, tt.want)
			}
		})
	}
}

func TestMemberRole(t *testing.T) {
	project := Project{
		OwnerID: "u1",
		Members: []Member{
			{UserID: "u1", Role: RoleOwner},
			{UserID: "u2", Role: RoleAdmin},
		},
	}

	if got := project.MemberRole("u2"); got != RoleAdmin {
		t.Errorf("MemberRole(u2) = %q, want %q", got, RoleAdmin)
	}
	if got := project.MemberRole("u3"); got != "" {
		t.Errorf("MemberRole(u3) = %q, want empty", got)
	}
}

func timePtr(v time.Time) *time.Time { return &v }
func intPtr(v int) *int              { return &v }
