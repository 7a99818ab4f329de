package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"github.com/taskflow-dev/taskflow/internal/utils"
)

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
	TaskID  uint   `json:"task_id" binding:"required"`
}

// ensureCommentAccess walks comment -> task -> project and gates on
// membership. Missing task or project is not-found before any
// authorization decision.
func ensureCommentAccess(taskID uint, userID uint) (*models.Task, error) {
	task, err := resolveTask(taskID)

	if err != nil {
		return nil, err
	}

	if _, err := ensureProjectMember(task.ProjectID, userID); err != nil {
		return nil, err
	}

	return task, nil
}

func CreateComment(ctx *gin.Context) {
	var req CreateCommentRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Content and task are required"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)

	if req.Content == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Content and task are required"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	task, err := ensureCommentAccess(req.TaskID, userID)

	if err != nil {
		respondAccessError(ctx, err)
		return
	}

	// The author is always the caller, whatever the payload says.
	comment := models.Comment{
		Content:  req.Content,
		TaskID:   task.ID,
		AuthorID: userID,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		log.Printf("Failed to create comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	if err := db.DB.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		log.Printf("Failed to reload comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"comment": commentView(&comment)})
}

func ListCommentsByTask(ctx *gin.Context) {
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

	if _, err := ensureCommentAccess(taskID, userID); err != nil {
		respondAccessError(ctx, err)
		return
	}

	var comments []models.Comment

	err = db.DB.
		Where("task_id = ?", taskID).
		Preload("Author").
		Order("created_at DESC, id DESC").
		Find(&comments).Error

	if err != nil {
		log.Printf("Failed to list comments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	response := make([]types.CommentResponse, 0, len(comments))

	for i := range comments {
		response = append(response, commentView(&comments[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"comments": response})
}
