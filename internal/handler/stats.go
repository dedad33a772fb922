package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"scenecraft-backend/internal/model"
)

// StatsHandler dashboard statistics
type StatsHandler struct {
	db *gorm.DB
}

// NewStatsHandler creates the stats handler
func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

// UserStats counts a user's projects and the distinct people they work
// with across those projects
func (h *StatsHandler) UserStats(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil {
		return badID(c, "user")
	}

	collabProjects := h.db.Model(&model.ProjectCollaborator{}).
		Select("project_id").
		Where("user_id = ?", userID)

	var projects []model.Project
	err = h.db.Preload("Collaborators").
		Where("owner_id = ? OR id IN (?)", userID, collabProjects).
		Find(&projects).Error
	if err != nil {
		return serverError(c, "Failed to fetch user statistics")
	}

	// Distinct co-workers: owners and collaborators across the user's
	// projects, excluding the user themselves
	peers := make(map[int64]struct{})
	for _, p := range projects {
		if p.OwnerID != int64(userID) {
			peers[p.OwnerID] = struct{}{}
		}
		for _, collab := range p.Collaborators {
			if collab.UserID != int64(userID) {
				peers[collab.UserID] = struct{}{}
			}
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats": fiber.Map{
			"projects":      len(projects),
			"collaborators": len(peers),
		},
	})
}
