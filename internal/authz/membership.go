// Package authz holds the membership policy: pure decisions about who
// may read or mutate a project's tasks and comments.
package authz

import "github.com/taskflow-dev/taskflow/internal/models"

// CanAccess reports whether userID may operate on the project: true
// iff the user owns it or holds a membership row. The project's
// Memberships must already be loaded; no store access happens here.
// Callers must resolve existence first so that a missing project
// surfaces as not-found rather than forbidden.
func CanAccess(project *models.Project, userID uint) bool {
	if project.OwnerID == userID {
		return true
	}

	for _, membership := range project.Memberships {
		if membership.UserID == userID {
			return true
		}
	}

	return false
}

// IsOwner reports whether userID owns the project. Project deletion
// and membership changes are owner-only, stricter than CanAccess.
func IsOwner(project *models.Project, userID uint) bool {
	return project.OwnerID == userID
}
