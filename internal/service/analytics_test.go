package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/tests/testutil"
)

func TestDashboardReconciles(t *testing.T) {
	s := testutil.NewTestStore(t)
	analytics := service.NewAnalyticsService(s)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s, "owner@example.com", "Owner")
	other := testutil.CreateUser(t, s, "other@example.com", "Other")
	project := testutil.CreateProject(t, s, owner.ID, "Metrics")
	foreign := testutil.CreateProject(t, s, other.ID, "Foreign")

	now := time.Now().UTC()
	past := now.Add(-48 * time.Hour)

	createTask(t, s, model.Task{ProjectID: project.ID, ReporterID: owner.ID, Title: "open"})
	createTask(t, s, model.Task{
		ProjectID: project.ID, ReporterID: owner.ID, Title: "late",
		Status: model.TaskStatusInProgress, DueDate: &past,
	})
	createTask(t, s, model.Task{
		ProjectID: project.ID, ReporterID: owner.ID, Title: "done",
		Status: model.TaskStatusCompleted, CompletedAt: &now,
	})
	createTask(t, s, model.Task{ProjectID: foreign.ID, ReporterID: other.ID, Title: "invisible"})

	dashboard, err := analytics.Dashboard(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if dashboard.TotalTasks != 3 {
		t.Errorf("TotalTasks = %d, want 3 (foreign project excluded)", dashboard.TotalTasks)
	}

	sum := 0
	for _, count := range dashboard.StatusDistribution {
		sum += count
	}
	if sum != dashboard.TotalTasks {
		t.Errorf("status distribution sums to %d, want TotalTasks %d", sum, dashboard.TotalTasks)
	}

	if dashboard.OverdueCount != 1 {
		t.Errorf("OverdueCount = %d, want 1", dashboard.OverdueCount)
	}
	if len(dashboard.RecentTasks) != 3 {
		t.Errorf("RecentTasks = %d, want 3", len(dashboard.RecentTasks))
	}
}

func TestProjectAnalyticsAccessAndCompletion(t *testing.T) {
	s := testutil.NewTestStore(t)
	analytics := service.NewAnalyticsService(s)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s, "owner@example.com", "Owner")
	stranger := testutil.CreateUser(t, s, "stranger@example.com", "Stranger")
	project := testutil.CreateProject(t, s, owner.ID, "Progress")

	now := time.Now().UTC()
	createTask(t, s, model.Task{ProjectID: project.ID, ReporterID: owner.ID, Title: "open"})
	createTask(t, s, model.Task{
		ProjectID: project.ID, ReporterID: owner.ID, Title: "done",
		Status: model.TaskStatusCompleted, CompletedAt: &now,
	})

	_, err := analytics.Project(ctx, stranger.ID, project.ID)
	var denied *service.AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("Project by stranger = %v, want AccessDeniedError", err)
	}

	stats, err := analytics.Project(ctx, owner.ID, project.ID)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if stats.TotalTasks != 2 {
		t.Errorf("TotalTasks = %d, want 2", stats.TotalTasks)
	}
	if stats.CompletionPercent != 50 {
		t.Errorf("CompletionPercent = %d, want 50", stats.CompletionPercent)
	}
	if stats.MemberCount != 1 {
		t.Errorf("MemberCount = %d, want 1", stats.MemberCount)
	}
}

func TestUserStatsWeeklyTrend(t *testing.T) {
	s := testutil.NewTestStore(t)
	analytics := service.NewAnalyticsService(s)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s, "owner@example.com", "Owner")
	project := testutil.CreateProject(t, s, owner.ID, "Trend")

	now := time.Now().UTC()
	thisWeek := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-8 * 24 * time.Hour)

	for _, completedAt := range []time.Time{thisWeek, thisWeek, lastWeek} {
		done := completedAt
		createTask(t, s, model.Task{
			ProjectID: project.ID, ReporterID: owner.ID, Title: "done",
			AssigneeID: &owner.ID, Status: model.TaskStatusCompleted, CompletedAt: &done,
		})
	}
	// Outside the 28-day window.
	old := now.Add(-40 * 24 * time.Hour)
	createTask(t, s, model.Task{
		ProjectID: project.ID, ReporterID: owner.ID, Title: "old",
		AssigneeID: &owner.ID, Status: model.TaskStatusCompleted, CompletedAt: &old,
	})

	stats, err := analytics.UserStats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("UserStats: %v", err)
	}
	if stats.CompletedLast28Days != 3 {
		t.Errorf("CompletedLast28Days = %d, want 3", stats.CompletedLast28Days)
	}

	total := 0
	for _, bucket := range stats.WeeklyTrend {
		total += bucket.Count
	}
	if total != 3 {
		t.Errorf("trend buckets sum to %d, want 3", total)
	}

	for i := 1; i < len(stats.WeeklyTrend); i++ {
		prev, cur := stats.WeeklyTrend[i-1], stats.WeeklyTrend[i]
		if cur.Year < prev.Year || (cur.Year == prev.Year && cur.Week <= prev.Week) {
			t.Errorf("trend not ascending: %+v before %+v", prev, cur)
		}
	}
}

func createTask(t *testing.T, s *store.SQLiteStore, task model.Task) *model.Task {
	t.Helper()
	created, err := s.CreateTask(context.Background(), task)
	if err != nil {
		t.Fatalf("creating task %s: %v", task.Title, err)
	}
	return created
}
