package rest_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/auth"
	"github.com/nhle/taskboard/internal/events"
	"github.com/nhle/taskboard/internal/rest"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/tests/testutil"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := testutil.NewTestStore(t)
	log := logrus.New()
	log.SetOutput(io.Discard)

	tokens := auth.NewManager("test-secret", time.Hour)
	hub := events.NewHub(logrus.NewEntry(log))

	svcs := rest.Services{
		Users:     service.NewUserService(s, tokens),
		Projects:  service.NewProjectService(s, logrus.NewEntry(log)),
		Tasks:     service.NewTaskService(s, hub, logrus.NewEntry(log)),
		Analytics: service.NewAnalyticsService(s),
	}
	return rest.NewRouter(svcs, tokens, hub, log)
}

// do issues a JSON request against the router and decodes the JSON response.
func do(t *testing.T, router *gin.Engine, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decoding %s %s response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, decoded
}

func register(t *testing.T, router *gin.Engine, email, name string) (userID, token string) {
	t.Helper()

	status, body := do(t, router, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    email,
		"password": "correct horse",
		"name":     name,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %v", email, status, body)
	}

	user := body["user"].(map[string]any)
	return user["id"].(string), body["token"].(string)
}

func TestAPIRequiresAuthentication(t *testing.T) {
	router := newTestRouter(t)

	status, _ := do(t, router, http.MethodGet, "/api/projects", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("unauthenticated request = %d, want 401", status)
	}
}

func TestLoginBadCredentialsIs401(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "alice@example.com", "Alice")

	status, _ := do(t, router, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("bad credentials = %d, want 401", status)
	}

	status, body := do(t, router, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	if status != http.StatusOK {
		t.Errorf("good credentials = %d, body %v, want 200", status, body)
	}
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	_, ownerToken := register(t, router, "owner@example.com", "Owner")
	memberID, memberToken := register(t, router, "member@example.com", "Member")

	// Owner creates a project.
	status, project := do(t, router, http.MethodPost, "/api/projects", ownerToken, map[string]any{
		"name": "Launch",
	})
	if status != http.StatusCreated {
		t.Fatalf("create project = %d, body %v", status, project)
	}
	projectID := project["id"].(string)

	// Owner creates a task in it.
	status, task := do(t, router, http.MethodPost, "/api/tasks", ownerToken, map[string]any{
		"project_id": projectID,
		"title":      "Ship it",
	})
	if status != http.StatusCreated {
		t.Fatalf("create task = %d, body %v", status, task)
	}
	taskID := task["id"].(string)

	// The member cannot see the project before joining.
	status, _ = do(t, router, http.MethodGet, "/api/projects/"+projectID, memberToken, nil)
	if status != http.StatusForbidden {
		t.Errorf("non-member project read = %d, want 403", status)
	}

	// Owner adds the member.
	status, body := do(t, router, http.MethodPost, "/api/projects/"+projectID+"/members", ownerToken, map[string]any{
		"user_id": memberID,
	})
	if status != http.StatusOK {
		t.Fatalf("add member = %d, body %v", status, body)
	}

	// Duplicate add is a conflict.
	status, _ = do(t, router, http.MethodPost, "/api/projects/"+projectID+"/members", ownerToken, map[string]any{
		"user_id": memberID,
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate member = %d, want 409", status)
	}

	// Now the member can read the task.
	status, _ = do(t, router, http.MethodGet, "/api/tasks/"+taskID, memberToken, nil)
	if status != http.StatusOK {
		t.Errorf("member task read = %d, want 200", status)
	}

	// Completing the task stamps completion and forces progress.
	status, updated := do(t, router, http.MethodPut, "/api/tasks/"+taskID, ownerToken, map[string]any{
		"status": "completed",
	})
	if status != http.StatusOK {
		t.Fatalf("complete task = %d, body %v", status, updated)
	}
	if updated["completed_at"] == nil {
		t.Error("completed task has no completed_at")
	}
	if progress, ok := updated["progress"].(float64); !ok || progress != 100 {
		t.Errorf("progress = %v, want 100", updated["progress"])
	}

	// The member may not delete the project.
	status, _ = do(t, router, http.MethodDelete, "/api/projects/"+projectID, memberToken, nil)
	if status != http.StatusForbidden {
		t.Errorf("member project delete = %d, want 403", status)
	}

	// The owner deletes it; the task disappears with it.
	status, _ = do(t, router, http.MethodDelete, "/api/projects/"+projectID, ownerToken, nil)
	if status != http.StatusNoContent {
		t.Errorf("owner project delete = %d, want 204", status)
	}
	status, _ = do(t, router, http.MethodGet, "/api/tasks/"+taskID, ownerToken, nil)
	if status != http.StatusNotFound {
		t.Errorf("task read after cascade = %d, want 404", status)
	}
}

func TestValidationErrorsReportAllFields(t *testing.T) {
	router := newTestRouter(t)
	_, token := register(t, router, "owner@example.com", "Owner")

	status, project := do(t, router, http.MethodPost, "/api/projects", token, map[string]any{
		"name": "Checks",
	})
	if status != http.StatusCreated {
		t.Fatalf("create project = %d", status)
	}
	projectID := project["id"].(string)

	status, task := do(t, router, http.MethodPost, "/api/tasks", token, map[string]any{
		"project_id": projectID,
		"title":      "target",
	})
	if status != http.StatusCreated {
		t.Fatalf("create task = %d", status)
	}
	taskID := task["id"].(string)

	status, body := do(t, router, http.MethodPut, "/api/tasks/"+taskID, token, map[string]any{
		"status":   "done",
		"progress": 150,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("invalid update = %d, body %v, want 400", status, body)
	}

	fields, ok := body["fields"].(map[string]any)
	if !ok {
		t.Fatalf("response has no fields map: %v", body)
	}
	for _, field := range []string{"status", "progress"} {
		if _, present := fields[field]; !present {
			t.Errorf("missing violation for %q in %v", field, fields)
		}
	}
}

func TestDashboardAndStatsRoutes(t *testing.T) {
	router := newTestRouter(t)
	_, token := register(t, router, "owner@example.com", "Owner")

	status, body := do(t, router, http.MethodGet, "/api/tasks/analytics/dashboard", token, nil)
	if status != http.StatusOK {
		t.Errorf("dashboard = %d, body %v, want 200", status, body)
	}
	if _, ok := body["total_tasks"]; !ok {
		t.Errorf("dashboard missing total_tasks: %v", body)
	}

	status, body = do(t, router, http.MethodGet, "/api/users/me/stats", token, nil)
	if status != http.StatusOK {
		t.Errorf("user stats = %d, body %v, want 200", status, body)
	}
}
