package handlers

import (
	"errors"
	"log"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/authz"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"gorm.io/gorm"
)

var (
	errProjectNotFound  = errors.New("project not found")
	errTaskNotFound     = errors.New("task not found")
	errNotProjectMember = errors.New("access denied: not a project member")
)

// resolveProject loads a project with its owner and memberships.
func resolveProject(projectID uint) (*models.Project, error) {
	var project models.Project

	err := db.DB.
		Preload("Owner").
		Preload("Memberships.User").
		First(&project, projectID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProjectNotFound
		}
		return nil, err
	}

	return &project, nil
}

// ensureProjectMember resolves the project and gates access. The
// existence check comes first so a missing project is reported as
// not-found, never as forbidden.
func ensureProjectMember(projectID uint, userID uint) (*models.Project, error) {
	project, err := resolveProject(projectID)

	if err != nil {
		return nil, err
	}

	if !authz.CanAccess(project, userID) {
		return nil, errNotProjectMember
	}

	return project, nil
}

// respondAccessError maps resolution/authorization failures onto the
// error taxonomy: 404 for missing aggregates, 403 for non-members,
// 500 for anything the store threw at us.
func respondAccessError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, errProjectNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	case errors.Is(err, errTaskNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, errNotProjectMember):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied: not a project member"})
	default:
		log.Printf("Store error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func userView(user models.User) types.UserResponse {
	return types.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt,
	}
}

// projectView renders a project with its member list in a stable
// order (ascending user id) regardless of storage order.
func projectView(project *models.Project) types.ProjectResponse {
	members := make([]types.UserResponse, 0, len(project.Memberships))

	for _, membership := range project.Memberships {
		members = append(members, userView(membership.User))
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].ID < members[j].ID
	})

	return types.ProjectResponse{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Owner:       userView(project.Owner),
		Members:     members,
		CreatedAt:   project.CreatedAt,
	}
}

func taskView(task *models.Task) types.TaskResponse {
	view := types.TaskResponse{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		ProjectID:    task.ProjectID,
		ProjectTitle: task.Project.Title,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	if task.AssignedTo != nil {
		assignee := userView(*task.AssignedTo)
		view.AssignedTo = &assignee
	}

	return view
}

func commentView(comment *models.Comment) types.CommentResponse {
	return types.CommentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		TaskID:    comment.TaskID,
		Author:    userView(comment.Author),
		CreatedAt: comment.CreatedAt,
	}
}
