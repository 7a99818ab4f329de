package handlers

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCreateComment_AuthorFixedToCaller(t *testing.T) {
	setupTestDB(t)

	ana := createTestUser(t, "Ana", "ana@example.com")
	r, _ := newAuthedRouter(ana)

	project := createProjectVia(t, r, "Sprint 1", nil)
	task := createTaskVia(t, r, project.ID, "Fix bug")

	w := doJSON(t, r, "POST", "/api/comments", map[string]interface{}{
		"content": "LGTM",
		"task_id": task.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var env commentEnvelope
	decodeBody(t, w, &env)

	if env.Comment.Author.ID != ana.ID {
		t.Fatalf("expected author %d, got %d", ana.ID, env.Comment.Author.ID)
	}
	if env.Comment.Content != "LGTM" {
		t.Fatalf("expected content LGTM, got %q", env.Comment.Content)
	}
}

func TestCreateComment_MissingTaskNotFound(t *testing.T) {
	setupTestDB(t)

	ana := createTestUser(t, "Ana", "ana@example.com")
	r, _ := newAuthedRouter(ana)

	w := doJSON(t, r, "POST", "/api/comments", map[string]interface{}{
		"content": "hello?",
		"task_id": 42,
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing task, got %d", w.Code)
	}
}

func TestCreateComment_EmptyContentRejected(t *testing.T) {
	setupTestDB(t)

	ana := createTestUser(t, "Ana", "ana@example.com")
	r, _ := newAuthedRouter(ana)

	project := createProjectVia(t, r, "Sprint 1", nil)
	task := createTaskVia(t, r, project.ID, "Fix bug")

	w := doJSON(t, r, "POST", "/api/comments", map[string]interface{}{
		"content": "   ",
		"task_id": task.ID,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank content, got %d", w.Code)
	}
}

func TestComments_NonMemberForbidden(t *testing.T) {
	setupTestDB(t)

	ana := createTestUser(t, "Ana", "ana@example.com")
	bob := createTestUser(t, "Bob", "bob@example.com")

	anaRouter, _ := newAuthedRouter(ana)
	project := createProjectVia(t, anaRouter, "Sprint 1", nil)
	task := createTaskVia(t, anaRouter, project.ID, "Fix bug")

	bobRouter, _ := newAuthedRouter(bob)

	w := doJSON(t, bobRouter, "POST", "/api/comments", map[string]interface{}{
		"content": "let me in",
		"task_id": task.ID,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 creating comment, got %d", w.Code)
	}

	w = doJSON(t, bobRouter, "GET", fmt.Sprintf("/api/comments/task/%d", task.ID), nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 listing comments, got %d", w.Code)
	}
}

func TestListCommentsByTask_NewestFirstWithAuthors(t *testing.T) {
	setupTestDB(t)

	ana := createTestUser(t, "Ana", "ana@example.com")
	r, _ := newAuthedRouter(ana)

	project := createProjectVia(t, r, "Sprint 1", nil)
	task := createTaskVia(t, r, project.ID, "Fix bug")

	for _, content := range []string{"first", "second", "third"} {
		w := doJSON(t, r, "POST", "/api/comments", map[string]interface{}{
			"content": content,
			"task_id": task.ID,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201 for %q, got %d", content, w.Code)
		}
	}

	w := doJSON(t, r, "GET", fmt.Sprintf("/api/comments/task/%d", task.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var env commentListEnvelope
	decodeBody(t, w, &env)

	if len(env.Comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(env.Comments))
	}
	if env.Comments[0].Content != "third" || env.Comments[2].Content != "first" {
		t.Fatalf("expected newest-first ordering, got %+v", env.Comments)
	}
	for _, c := range env.Comments {
		if c.Author.Name != "Ana" {
			t.Fatalf("expected resolved author, got %+v", c.Author)
		}
	}
}
