package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/authz"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"github.com/taskflow-dev/taskflow/internal/utils"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Members     []uint `json:"members"`
}

type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Members     *[]uint `json:"members"`
}

// normalizeMemberIDs de-duplicates the requested member ids and drops
// ids that do not resolve to a user. The owner is excluded here; the
// caller always inserts the owner membership itself.
func normalizeMemberIDs(tx *gorm.DB, memberIDs []uint, ownerID uint) ([]uint, error) {
	seen := make(map[uint]bool)
	candidates := make([]uint, 0, len(memberIDs))

	for _, id := range memberIDs {
		if id == ownerID || seen[id] {
			continue
		}
		seen[id] = true
		candidates = append(candidates, id)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	var existing []uint

	if err := tx.Model(&models.User{}).Where("id IN ?", candidates).Pluck("id", &existing).Error; err != nil {
		return nil, err
	}

	return existing, nil
}

func CreateProject(ctx *gin.Context) {
	var req CreateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)

	if req.Title == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project title is required"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project := models.Project{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     userID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		memberIDs, err := normalizeMemberIDs(tx, req.Members, userID)

		if err != nil {
			return err
		}

		memberships := []models.ProjectMembership{
			{UserID: userID, ProjectID: project.ID, Role: models.RoleOwner},
		}

		for _, memberID := range memberIDs {
			memberships = append(memberships, models.ProjectMembership{
				UserID:    memberID,
				ProjectID: project.ID,
				Role:      models.RoleMember,
			})
		}

		return tx.Create(&memberships).Error
	})

	if err != nil {
		log.Printf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	created, err := resolveProject(project.ID)

	if err != nil {
		respondAccessError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"project": projectView(created)})
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// The owner always holds a membership row, so membership alone
	// covers "owner or member".
	var projects []models.Project

	err = db.DB.
		Joins("JOIN project_memberships ON project_memberships.project_id = projects.id").
		Where("project_memberships.user_id = ?", userID).
		Preload("Owner").
		Preload("Memberships.User").
		Order("projects.created_at DESC, projects.id DESC").
		Find(&projects).Error

	if err != nil {
		log.Printf("Failed to list projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]types.ProjectResponse, 0, len(projects))

	for i := range projects {
		response = append(response, projectView(&projects[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"projects": response})
}

func UpdateProject(ctx *gin.Context) {
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

	var req UpdateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := resolveProject(projectID)

	if err != nil {
		respondAccessError(ctx, err)
		return
	}

	if !authz.IsOwner(project, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner can update this project"})
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project title is required"})
			return
		}
		project.Title = title
	}

	if req.Description != nil {
		project.Description = *req.Description
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Project{}).Where("id = ?", project.ID).
			Updates(map[string]interface{}{
				"title":       project.Title,
				"description": project.Description,
			}).Error; err != nil {
			return err
		}

		if req.Members == nil {
			return nil
		}

		// Replace the member set. The owner's row is never touched,
		// so the owner stays a member whatever the request says.
		if err := tx.Where("project_id = ? AND user_id != ?", project.ID, project.OwnerID).
			Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		memberIDs, err := normalizeMemberIDs(tx, *req.Members, project.OwnerID)

		if err != nil {
			return err
		}

		for _, memberID := range memberIDs {
			membership := models.ProjectMembership{
				UserID:    memberID,
				ProjectID: project.ID,
				Role:      models.RoleMember,
			}
			if err := tx.Create(&membership).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		log.Printf("Failed to update project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	updated, err := resolveProject(project.ID)

	if err != nil {
		respondAccessError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"project": projectView(updated)})
}

func DeleteProject(ctx *gin.Context) {
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

	project, err := resolveProject(projectID)

	if err != nil {
		respondAccessError(ctx, err)
		return
	}

	if !authz.IsOwner(project, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner can delete this project"})
		return
	}

	// Cascade explicitly so no orphaned tasks or comments survive the
	// project, whatever the database's own constraints do.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id IN (?)",
			tx.Model(&models.Task{}).Select("id").Where("project_id = ?", project.ID),
		).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, project.ID).Error
	})

	if err != nil {
		log.Printf("Failed to delete project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
