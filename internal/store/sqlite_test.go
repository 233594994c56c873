package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/tests/testutil"
)

func TestCreateUserAndLookup(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	user := testutil.CreateUser(t, s, "alice@example.com", "Alice")

	byID, err := s.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", byID.Email)
	}

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("id = %q, want %q", byEmail.ID, user.ID)
	}

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUserByEmail(unknown) = %v, want ErrNotFound", err)
	}
}

func TestCreateProjectOwnerMembership(t *testing.T) {
	s := testutil.NewTestStore(t)

	owner := testutil.CreateUser(t, s, "owner@example.com", "Owner")
	project := testutil.CreateProject(t, s, owner.ID, "Alpha")

	ownerRows := 0
	for _, m := range project.Members {
		if m.UserID == owner.ID {
			ownerRows++
			if m.Role != model.RoleOwner {
				t.Errorf("owner role = %q, want %q", m.Role, model.RoleOwner)
			}
		}
	}
	if ownerRows != 1 {
		t.Errorf("owner appears %d times in members, want exactly 1", ownerRows)
	}
}

func TestCreateProjectWithSuppliedOwnerMember(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s, "owner@example.com", "Owner")
	extra := testutil.CreateUser(t, s, "extra@example.com", "Extra")

	project, err := s.CreateProject(ctx, model.Project{
		Name:    "Beta",
		OwnerID: owner.ID,
		Members: []model.Member{
			{UserID: owner.ID, Role: model.RoleOwner},
			{UserID: extra.ID, Role: model.RoleMember},
		},
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if len(project.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(project.Members))
	}
	if project.MemberRole(owner.ID) != model.RoleOwner {
		t.Errorf("owner role = %q, want owner", project.MemberRole(owner.ID))
	}
	if project.MemberRole(extra.ID) != model.RoleMember {
		t.Errorf("extra role = %q, want member", project.MemberRole(extra.ID))
	}
}

func TestDeleteProjectCascade(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s, "owner@example.com", "Owner")
	doomed := testutil.CreateProject(t, s, owner.ID, "Doomed")
	survivor := testutil.CreateProject(t, s, owner.ID, "Survivor")

	doomedTask := testutil.CreateTask(t, s, doomed.ID, owner.ID, "Doomed task")
	survivorTask := testutil.CreateTask(t, s, survivor.ID, owner.ID, "Survivor task")

	if _, err := s.AddComment(ctx, model.Comment{
		TaskID: doomedTask.ID, AuthorID: owner.ID, Content: "gone soon",
	}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	if err := s.DeleteProjectCascade(ctx, doomed.ID); err != nil {
		t.Fatalf("DeleteProjectCascade: %v", err)
	}

	if _, err := s.GetProjectByID(ctx, doomed.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("project still readable after cascade: %v", err)
	}
	if _, err := s.GetTaskByID(ctx, doomedTask.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("task still readable after cascade: %v", err)
	}

	kept, err := s.GetTaskByID(ctx, survivorTask.ID)
	if err != nil {
		t.Fatalf("survivor task lost: %v", err)
	}
	if kept.ProjectID != survivor.ID {
		t.Errorf("survivor task project = %q, want %q", kept.ProjectID, survivor.ID)
	}
}

func TestDeleteProjectCascadeNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)

	err := s.DeleteProjectCascade(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteProjectCascade(missing) = %v, want ErrNotFound", err)
	}
}

func TestGetProjectsForUserScoping(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, s, "alice@example.com", "Alice")
	bob := testutil.CreateUser(t, s, "bob@example.com", "Bob")

	testutil.CreateProject(t, s, alice.ID, "Owned")
	shared := testutil.CreateProject(t, s, alice.ID, "Shared")
	testutil.CreateProject(t, s, alice.ID, "Private")

	if err := s.AddMember(ctx, model.Member{
		ProjectID: shared.ID, UserID: bob.ID, Role: model.RoleMember,
	}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	aliceProjects, err := s.GetProjectsForUser(ctx, alice.ID, false)
	if err != nil {
		t.Fatalf("GetProjectsForUser(alice): %v", err)
	}
	if len(aliceProjects) != 3 {
		t.Errorf("alice sees %d projects, want 3", len(aliceProjects))
	}

	bobProjects, err := s.GetProjectsForUser(ctx, bob.ID, false)
	if err != nil {
		t.Fatalf("GetProjectsForUser(bob): %v", err)
	}
	if len(bobProjects) != 1 {
		t.Fatalf("bob sees %d projects, want 1", len(bobProjects))
	}
	if bobProjects[0].ID != shared.ID {
		t.Errorf("bob sees project %q, want %q", bobProjects[0].ID, shared.ID)
	}
}

func TestGetTasksScoping(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, s, "alice@example.com", "Alice")
	bob := testutil.CreateUser(t, s, "bob@example.com", "Bob")

	aliceProject := testutil.CreateProject(t, s, alice.ID, "Alice's")
	bobProject := testutil.CreateProject(t, s, bob.ID, "Bob's")

	testutil.CreateTask(t, s, aliceProject.ID, alice.ID, "Alice task")
	testutil.CreateTask(t, s, bobProject.ID, bob.ID, "Bob task")

	tasks, err := s.GetTasks(ctx, store.TaskFilter{UserID: bob.ID})
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("bob sees %d tasks, want 1", len(tasks))
	}
	if tasks[0].Title != "Bob task" {
		t.Errorf("bob sees task %q, want Bob task", tasks[0].Title)
	}

	// Membership extends visibility.
	if err := s.AddMember(ctx, model.Member{
		ProjectID: aliceProject.ID, UserID: bob.ID, Role: model.RoleViewer,
	}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	tasks, err = s.GetTasks(ctx, store.TaskFilter{UserID: bob.ID})
	if err != nil {
		t.Fatalf("GetTasks after membership: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("bob sees %d tasks after joining, want 2", len(tasks))
	}
}

func TestGetTasksFiltersAndPagination(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s, "owner@example.com", "Owner")
	project := testutil.CreateProject(t, s, owner.ID, "Filtering")

	for _, title := range []string{"first", "second", "third", "fourth", "fifth"} {
		testutil.CreateTask(t, s, project.ID, owner.ID, title)
	}

	filter := store.TaskFilter{
		UserID: owner.ID,
		SortBy: "created_at",
		Limit:  2,
		Offset: 2,
	}
	page, err := s.GetTasks(ctx, filter)
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page has %d tasks, want 2", len(page))
	}
	// rowid tiebreak keeps insertion order for equal timestamps.
	if page[0].Title != "third" || page[1].Title != "fourth" {
		t.Errorf("page = [%s, %s], want [third, fourth]", page[0].Title, page[1].Title)
	}

	total, err := s.CountTasks(ctx, filter)
	if err != nil {
		t.Fatalf("CountTasks: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}

	query := "thi"
	matched, err := s.GetTasks(ctx, store.TaskFilter{UserID: owner.ID, Query: &query})
	if err != nil {
		t.Fatalf("GetTasks(query): %v", err)
	}
	if len(matched) != 1 || matched[0].Title != "third" {
		t.Errorf("query match = %v, want [third]", titles(matched))
	}
}

func TestGetTasksExcludesArchived(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s, "owner@example.com", "Owner")
	project := testutil.CreateProject(t, s, owner.ID, "Archive")

	active := testutil.CreateTask(t, s, project.ID, owner.ID, "active")
	archived := testutil.CreateTask(t, s, project.ID, owner.ID, "archived")
	archived.Archived = true
	if err := s.UpdateTask(ctx, *archived); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	tasks, err := s.GetTasks(ctx, store.TaskFilter{UserID: owner.ID})
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != active.ID {
		t.Errorf("visible tasks = %v, want only active", titles(tasks))
	}

	all, err := s.GetTasks(ctx, store.TaskFilter{UserID: owner.ID, IncludeArchived: true})
	if err != nil {
		t.Fatalf("GetTasks(archived): %v", err)
	}
	if len(all) != 2 {
		t.Errorf("with archived = %d tasks, want 2", len(all))
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)

	err := s.UpdateTask(context.Background(), model.Task{ID: "missing", Title: "x"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateTask(missing) = %v, want ErrNotFound", err)
	}
}

func TestTaskSubCollections(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s, "owner@example.com", "Owner")
	project := testutil.CreateProject(t, s, owner.ID, "Collections")
	task := testutil.CreateTask(t, s, project.ID, owner.ID, "parent")
	other := testutil.CreateTask(t, s, project.ID, owner.ID, "other")

	if _, err := s.AddComment(ctx, model.Comment{TaskID: task.ID, AuthorID: owner.ID, Content: "hi"}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	first, err := s.AddSubtask(ctx, model.Subtask{TaskID: task.ID, Title: "step one"})
	if err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}
	second, err := s.AddSubtask(ctx, model.Subtask{TaskID: task.ID, Title: "step two"})
	if err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}
	if second.SortOrder != first.SortOrder+1 {
		t.Errorf("sort orders = %d, %d; want consecutive", first.SortOrder, second.SortOrder)
	}
	if _, err := s.AddDependency(ctx, model.Dependency{
		TaskID: task.ID, OtherTaskID: other.ID, Relation: model.RelationBlocks,
	}); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	started := time.Now().UTC().Add(-time.Hour)
	if _, err := s.AddTimeEntry(ctx, model.TimeEntry{
		TaskID: task.ID, UserID: owner.ID, StartedAt: started, DurationMinutes: 30,
	}); err != nil {
		t.Fatalf("AddTimeEntry: %v", err)
	}
	if err := s.AddWatcher(ctx, task.ID, owner.ID); err != nil {
		t.Fatalf("AddWatcher: %v", err)
	}

	loaded, err := s.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID: %v", err)
	}
	if len(loaded.Comments) != 1 {
		t.Errorf("comments = %d, want 1", len(loaded.Comments))
	}
	if len(loaded.Subtasks) != 2 {
		t.Errorf("subtasks = %d, want 2", len(loaded.Subtasks))
	}
	if len(loaded.Dependencies) != 1 {
		t.Errorf("dependencies = %d, want 1", len(loaded.Dependencies))
	}
	if len(loaded.TimeEntries) != 1 {
		t.Errorf("time entries = %d, want 1", len(loaded.TimeEntries))
	}
	if len(loaded.Watchers) != 1 || loaded.Watchers[0] != owner.ID {
		t.Errorf("watchers = %v, want [%s]", loaded.Watchers, owner.ID)
	}
}

func TestToggleSubtask(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s, "owner@example.com", "Owner")
	project := testutil.CreateProject(t, s, owner.ID, "Toggling")
	task := testutil.CreateTask(t, s, project.ID, owner.ID, "parent")

	subtask, err := s.AddSubtask(ctx, model.Subtask{TaskID: task.ID, Title: "flip me"})
	if err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}

	if err := s.ToggleSubtask(ctx, subtask.ID, owner.ID); err != nil {
		t.Fatalf("ToggleSubtask: %v", err)
	}
	loaded, err := s.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID: %v", err)
	}
	st := loaded.Subtasks[0]
	if !st.Completed {
		t.Error("subtask not completed after toggle")
	}
	if st.CompletedAt == nil || st.CompletedBy == nil || *st.CompletedBy != owner.ID {
		t.Errorf("completion stamp = %v/%v, want time and %s", st.CompletedAt, st.CompletedBy, owner.ID)
	}

	if err := s.ToggleSubtask(ctx, subtask.ID, owner.ID); err != nil {
		t.Fatalf("second ToggleSubtask: %v", err)
	}
	loaded, err = s.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID: %v", err)
	}
	st = loaded.Subtasks[0]
	if st.Completed || st.CompletedAt != nil || st.CompletedBy != nil {
		t.Errorf("toggle back left completion state: %+v", st)
	}
}

func TestWatchersIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s, "owner@example.com", "Owner")
	project := testutil.CreateProject(t, s, owner.ID, "Watching")
	task := testutil.CreateTask(t, s, project.ID, owner.ID, "watched")

	for i := 0; i < 3; i++ {
		if err := s.AddWatcher(ctx, task.ID, owner.ID); err != nil {
			t.Fatalf("AddWatcher #%d: %v", i, err)
		}
	}
	loaded, err := s.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID: %v", err)
	}
	if len(loaded.Watchers) != 1 {
		t.Errorf("watchers = %d, want 1", len(loaded.Watchers))
	}

	if err := s.RemoveWatcher(ctx, task.ID, owner.ID); err != nil {
		t.Fatalf("RemoveWatcher: %v", err)
	}
	// Removing an absent watcher is a no-op.
	if err := s.RemoveWatcher(ctx, task.ID, owner.ID); err != nil {
		t.Fatalf("second RemoveWatcher: %v", err)
	}
}

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}
