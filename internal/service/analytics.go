package service

import (
	"context"
	"sort"
	"time"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// Trailing windows for dashboard aggregates.
const (
	recentActivityWindow = 7 * 24 * time.Hour
	completionWindow     = 28 * 24 * time.Hour
	recentActivityLimit  = 10
)

// AssigneeStat is a per-assignee task count with the display name attached.
type AssigneeStat struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// Dashboard is the cross-project statistics view for one user.
type Dashboard struct {
	TotalTasks           int            `json:"total_tasks"`
	StatusDistribution   map[string]int `json:"status_distribution"`
	PriorityDistribution map[string]int `json:"priority_distribution"`
	AssigneeDistribution []AssigneeStat `json:"assignee_distribution"`
	OverdueCount         int            `json:"overdue_count"`
	RecentTasks          []model.Task   `json:"recent_tasks"`
}

// ProjectAnalytics is the statistics view for a single project.
type ProjectAnalytics struct {
	ProjectID            string         `json:"project_id"`
	TotalTasks           int            `json:"total_tasks"`
	StatusDistribution   map[string]int `json:"status_distribution"`
	PriorityDistribution map[string]int `json:"priority_distribution"`
	AssigneeDistribution []AssigneeStat `json:"assignee_distribution"`
	OverdueCount         int            `json:"overdue_count"`
	MemberCount          int            `json:"member_count"`
	CompletionPercent    int            `json:"completion_percent"`
}

// WeeklyCompletion is one (ISO year, ISO week) bucket of completed tasks.
type WeeklyCompletion struct {
	Year  int `json:"year"`
	Week  int `json:"week"`
	Count int `json:"count"`
}

// UserStats is the personal statistics view for one user.
type UserStats struct {
	CompletedLast28Days int                `json:"completed_last_28_days"`
	WeeklyTrend         []WeeklyCompletion `json:"weekly_trend"`
}

// AnalyticsService computes derived statistics over the caller's accessible
// projects. Every aggregate is one store query; there are no per-task lookups.
type AnalyticsService struct {
	store store.Store
}

// NewAnalyticsService builds an AnalyticsService.
func NewAnalyticsService(s store.Store) *AnalyticsService {
	return &AnalyticsService{store: s}
}

// Dashboard computes the cross-project dashboard for the user. Status counts
// sum to the total non-archived task count for the same scope.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	scope := store.Scope{UserID: userID}
	now := time.Now().UTC()

	statuses, priorities, assignees, overdue, err := s.distributions(ctx, scope, now)
	if err != nil {
		return nil, err
	}

	recent, err := s.store.RecentTasks(ctx, scope, now.Add(-recentActivityWindow), recentActivityLimit)
	if err != nil {
		return nil, err
	}
	for i := range recent {
		recent[i].ComputeDerived(now)
	}

	total := 0
	for _, c := range statuses {
		total += c
	}

	return &Dashboard{
		TotalTasks:           total,
		StatusDistribution:   statuses,
		PriorityDistribution: priorities,
		AssigneeDistribution: assignees,
		OverdueCount:         overdue,
		RecentTasks:          recent,
	}, nil
}

// Project computes the statistics view for a single project, access-checked.
func (s *AnalyticsService) Project(ctx context.Context, actor, projectID string) (*ProjectAnalytics, error) {
	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, notFound(err, "project", projectID)
	}
	if !CanAccessProject(actor, project) {
		return nil, &AccessDeniedError{Reason: "not a member of this project"}
	}

	scope := store.Scope{UserID: actor, ProjectID: &projectID}
	now := time.Now().UTC()

	statuses, priorities, assignees, overdue, err := s.distributions(ctx, scope, now)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, c := range statuses {
		total += c
	}
	completionPercent := 0
	if total > 0 {
		completionPercent = statuses[model.TaskStatusCompleted] * 100 / total
	}

	return &ProjectAnalytics{
		ProjectID:            projectID,
		TotalTasks:           total,
		StatusDistribution:   statuses,
		PriorityDistribution: priorities,
		AssigneeDistribution: assignees,
		OverdueCount:         overdue,
		MemberCount:          len(project.Members),
		CompletionPercent:    completionPercent,
	}, nil
}

// UserStats computes the user's weekly completion trend over the trailing
// 28 days, grouped by ISO (year, week) in ascending chronological order.
func (s *AnalyticsService) UserStats(ctx context.Context, userID string) (*UserStats, error) {
	now := time.Now().UTC()
	records, err := s.store.CompletedSince(ctx, userID, now.Add(-completionWindow))
	if err != nil {
		return nil, err
	}

	type bucket struct{ year, week int }
	counts := map[bucket]int{}
	for _, r := range records {
		year, week := r.CompletedAt.ISOWeek()
		counts[bucket{year, week}]++
	}

	trend := make([]WeeklyCompletion, 0, len(counts))
	for b, count := range counts {
		trend = append(trend, WeeklyCompletion{Year: b.year, Week: b.week, Count: count})
	}
	sort.Slice(trend, func(i, j int) bool {
		if trend[i].Year != trend[j].Year {
			return trend[i].Year < trend[j].Year
		}
		return trend[i].Week < trend[j].Week
	})

	return &UserStats{
		CompletedLast28Days: len(records),
		WeeklyTrend:         trend,
	}, nil
}

// distributions fetches the three grouped counts and the overdue count for a
// scope, one query each.
func (s *AnalyticsService) distributions(
	ctx context.Context,
	scope store.Scope,
	now time.Time,
) (map[string]int, map[string]int, []AssigneeStat, int, error) {
	statusCounts, err := s.store.StatusCounts(ctx, scope)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	statuses := map[string]int{}
	for _, c := range statusCounts {
		statuses[c.Status] = c.Count
	}

	priorityCounts, err := s.store.PriorityCounts(ctx, scope)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	priorities := map[string]int{}
	for _, c := range priorityCounts {
		priorities[c.Priority] = c.Count
	}

	assigneeCounts, err := s.store.AssigneeCounts(ctx, scope)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	assignees := make([]AssigneeStat, 0, len(assigneeCounts))
	for _, c := range assigneeCounts {
		assignees = append(assignees, AssigneeStat{UserID: c.AssigneeID, Name: c.Name, Count: c.Count})
	}

	overdue, err := s.store.OverdueCount(ctx, scope, now)
	if err != nil {
		return nil, nil, nil, 0, err
	}

	return statuses, priorities, assignees, overdue, nil
}
