package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"scenecraft-backend/internal/model"
)

// StoryboardHandler canvas document load/save
type StoryboardHandler struct {
	db *gorm.DB
}

// NewStoryboardHandler creates the storyboard handler
func NewStoryboardHandler(db *gorm.DB) *StoryboardHandler {
	return &StoryboardHandler{db: db}
}

// Get returns the project's storyboard, creating an empty first page on
// first access
func (h *StoryboardHandler) Get(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("projectId")
	if err != nil {
		return badID(c, "project")
	}

	var storyboard model.Storyboard
	err = h.db.Where("project_id = ?", projectID).First(&storyboard).Error
	if err == gorm.ErrRecordNotFound {
		pid := int64(projectID)
		storyboard = model.Storyboard{
			ProjectID: &pid,
			Pages:     model.StoryboardPages{{PageNumber: 1}},
		}
		if err := h.db.Create(&storyboard).Error; err != nil {
			log.Printf("[Storyboard] Failed to create default for project %d: %v", projectID, err)
			return serverError(c, "Server error")
		}
	} else if err != nil {
		return serverError(c, "Server error")
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"storyboard": storyboard,
	})
}

// SaveStoryboardRequest whole-document save payload
type SaveStoryboardRequest struct {
	Pages model.StoryboardPages `json:"pages"`
}

// Save replaces the storyboard pages. Last write wins; no merging.
func (h *StoryboardHandler) Save(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("projectId")
	if err != nil {
		return badID(c, "project")
	}

	var req SaveStoryboardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	var storyboard model.Storyboard
	err = h.db.Where("project_id = ?", projectID).First(&storyboard).Error
	if err == gorm.ErrRecordNotFound {
		pid := int64(projectID)
		storyboard = model.Storyboard{
			ProjectID: &pid,
			Pages:     req.Pages,
		}
		if err := h.db.Create(&storyboard).Error; err != nil {
			return serverError(c, "Server error")
		}
	} else if err != nil {
		return serverError(c, "Server error")
	} else {
		if err := h.db.Model(&storyboard).Update("pages", req.Pages).Error; err != nil {
			return serverError(c, "Server error")
		}
		h.db.Where("project_id = ?", projectID).First(&storyboard)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"storyboard": storyboard,
	})
}
