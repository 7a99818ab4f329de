package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/middleware"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"github.com/taskflow-dev/taskflow/internal/ws"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the global connection at a fresh in-memory
// database scoped to the test.
func setupTestDB(t *testing.T) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMembership{},
		&models.Task{},
		&models.Comment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb
}

func createTestUser(t *testing.T, name, email string) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "not-a-real-hash",
	}

	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}

	return user
}

// newAuthedRouter builds the API surface with authentication stubbed
// to the given user, the way the real middleware would resolve it.
func newAuthedRouter(user models.User) (*gin.Engine, *ws.Hub) {
	gin.SetMode(gin.TestMode)

	hub := ws.NewHub()
	taskHandler := NewTaskHandler(hub)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(types.ContextUserKey, middleware.AuthenticatedUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		})
	})

	r.POST("/api/projects", CreateProject)
	r.GET("/api/projects", ListProjects)
	r.PATCH("/api/projects/:project_id", UpdateProject)
	r.DELETE("/api/projects/:project_id", DeleteProject)

	r.POST("/api/tasks", taskHandler.CreateTask)
	r.GET("/api/tasks/project/:project_id", taskHandler.ListTasksByProject)
	r.PATCH("/api/tasks/:task_id", taskHandler.UpdateTask)
	r.DELETE("/api/tasks/:task_id", taskHandler.DeleteTask)

	r.POST("/api/comments", CreateComment)
	r.GET("/api/comments/task/:task_id", ListCommentsByTask)

	return r, hub
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

// Response envelopes.

type projectEnvelope struct {
	Project types.ProjectResponse `json:"project"`
}

type projectListEnvelope struct {
	Projects []types.ProjectResponse `json:"projects"`
}

type taskEnvelope struct {
	Task types.TaskResponse `json:"task"`
}

type taskListEnvelope struct {
	Tasks []types.TaskResponse `json:"tasks"`
}

type commentEnvelope struct {
	Comment types.CommentResponse `json:"comment"`
}

type commentListEnvelope struct {
	Comments []types.CommentResponse `json:"comments"`
}

type userEnvelope struct {
	User types.UserResponse `json:"user"`
}

// createProjectVia drives the real handler so fixtures go through the
// same invariants as production writes.
func createProjectVia(t *testing.T, r *gin.Engine, title string, members []uint) types.ProjectResponse {
	t.Helper()

	w := doJSON(t, r, "POST", "/api/projects", gin.H{
		"title":   title,
		"members": members,
	})

	if w.Code != 201 {
		t.Fatalf("expected 201 creating project %q, got %d: %s", title, w.Code, w.Body.String())
	}

	var env projectEnvelope
	decodeBody(t, w, &env)
	return env.Project
}

func createTaskVia(t *testing.T, r *gin.Engine, projectID uint, title string) types.TaskResponse {
	t.Helper()

	w := doJSON(t, r, "POST", "/api/tasks", gin.H{
		"title":      title,
		"project_id": projectID,
	})

	if w.Code != 201 {
		t.Fatalf("expected 201 creating task %q, got %d: %s", title, w.Code, w.Body.String())
	}

	var env taskEnvelope
	decodeBody(t, w, &env)
	return env.Task
}
