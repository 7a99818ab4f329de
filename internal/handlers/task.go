package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"github.com/taskflow-dev/taskflow/internal/utils"
	"github.com/taskflow-dev/taskflow/internal/ws"
	"gorm.io/gorm"
)

// TaskHandler carries the fan-out hub so task mutations can notify
// the project room.
type TaskHandler struct {
	hub *ws.Hub
}

func NewTaskHandler(hub *ws.Hub) *TaskHandler {
	return &TaskHandler{hub: hub}
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ProjectID   uint   `json:"project_id" binding:"required"`
	AssignedTo  *uint  `json:"assigned_to"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	AssignedTo  *uint   `json:"assigned_to"`
}

// assigneeExists checks that an assigned_to id resolves to a user.
// Membership is deliberately not required, but a dangling id would
// trip the foreign key and surface as a 500.
func assigneeExists(userID uint) (bool, error) {
	var count int64

	err := db.DB.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// resolveTask loads a task with its project and assignee for display.
func resolveTask(taskID uint) (*models.Task, error) {
	var task models.Task

	err := db.DB.
		Preload("Project").
		Preload("AssignedTo").
		First(&task, taskID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errTaskNotFound
		}
		return nil, err
	}

	return &task, nil
}

func (h *TaskHandler) CreateTask(ctx *gin.Context) {
	var req CreateTaskRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title and project are required"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)

	if req.Title == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title and project are required"})
		return
	}

	if req.Status == "" {
		req.Status = types.TaskStatusTodo
	}

	if !types.ValidTaskStatus(req.Status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task status"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if _, err := ensureProjectMember(req.ProjectID, userID); err != nil {
		respondAccessError(ctx, err)
		return
	}

	if req.AssignedTo != nil {
		exists, err := assigneeExists(*req.AssignedTo)
		if err != nil {
			log.Printf("Failed to check assignee: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !exists {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Assigned user does not exist"})
			return
		}
	}

	task := models.Task{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		ProjectID:    req.ProjectID,
		AssignedToID: req.AssignedTo,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		log.Printf("Failed to create task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	created, err := resolveTask(task.ID)

	if err != nil {
		respondAccessError(ctx, err)
		return
	}

	view := taskView(created)
	h.hub.Emit(created.ProjectID, "task:created", view)

	ctx.JSON(http.StatusCreated, gin.H{"task": view})
}

func (h *TaskHandler) ListTasksByProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := ensureProjectMember(projectID, userID); err != nil {
		respondAccessError(ctx, err)
		return
	}

	var tasks []models.Task

	err = db.DB.
		Where("project_id = ?", projectID).
		Preload("Project").
		Preload("AssignedTo").
		Order("created_at DESC, id DESC").
		Find(&tasks).Error

	if err != nil {
		log.Printf("Failed to list tasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]types.TaskResponse, 0, len(tasks))

	for i := range tasks {
		response = append(response, taskView(&tasks[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"tasks": response})
}

func (h *TaskHandler) UpdateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateTaskRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := resolveTask(taskID)

	if err != nil {
		respondAccessError(ctx, err)
		return
	}

	if _, err := ensureProjectMember(task.ProjectID, userID); err != nil {
		respondAccessError(ctx, err)
		return
	}

	// Partial update: only the fields present in the patch change.
	updates := make(map[string]interface{})

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Task title cannot be empty"})
			return
		}
		updates["title"] = title
	}

	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if req.Status != nil {
		if !types.ValidTaskStatus(*req.Status) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task status"})
			return
		}
		updates["status"] = *req.Status
	}

	if req.AssignedTo != nil {
		exists, err := assigneeExists(*req.AssignedTo)
		if err != nil {
			log.Printf("Failed to check assignee: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !exists {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Assigned user does not exist"})
			return
		}
		updates["assigned_to_id"] = *req.AssignedTo
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
			log.Printf("Failed to update task: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
			return
		}
	}

	updated, err := resolveTask(task.ID)

	if err != nil {
		respondAccessError(ctx, err)
		return
	}

	view := taskView(updated)
	h.hub.Emit(updated.ProjectID, "task:updated", view)

	ctx.JSON(http.StatusOK, gin.H{"task": view})
}

func (h *TaskHandler) DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := resolveTask(taskID)

	if err != nil {
		respondAccessError(ctx, err)
		return
	}

	if _, err := ensureProjectMember(task.ProjectID, userID); err != nil {
		respondAccessError(ctx, err)
		return
	}

	// A task takes its comments with it.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, task.ID).Error
	})

	if err != nil {
		log.Printf("Failed to delete task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	h.hub.Emit(task.ProjectID, "task:deleted", gin.H{"id": task.ID})

	ctx.Status(http.StatusNoContent)
}
