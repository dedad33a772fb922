package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"scenecraft-backend/internal/model"
)

// ScriptHandler screenplay load/save
type ScriptHandler struct {
	db *gorm.DB
}

// NewScriptHandler creates the script handler
func NewScriptHandler(db *gorm.DB) *ScriptHandler {
	return &ScriptHandler{db: db}
}

// defaultScriptPages is the starter document created on first load
func defaultScriptPages() model.ScriptPages {
	return model.ScriptPages{{
		ID:         "page-1",
		PageNumber: 1,
		Blocks: []model.ScriptBlock{
			{ID: "1", Type: model.BlockSceneHeading, Content: "INT. SCENE 1 - DAY"},
			{ID: "2", Type: model.BlockAction, Content: "Start writing your screenplay here..."},
		},
	}}
}

// Get returns the project's script, creating the default document on
// first access
func (h *ScriptHandler) Get(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("projectId")
	if err != nil {
		return badID(c, "project")
	}

	var script model.Script
	err = h.db.Where("project_id = ?", projectID).First(&script).Error
	if err == gorm.ErrRecordNotFound {
		script = model.Script{
			ProjectID: int64(projectID),
			Pages:     defaultScriptPages(),
		}
		if err := h.db.Create(&script).Error; err != nil {
			log.Printf("[Script] Failed to create default for project %d: %v", projectID, err)
			return serverError(c, "Server error")
		}
	} else if err != nil {
		return serverError(c, "Server error")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"script":  script,
	})
}

// SaveScriptRequest whole-document save payload
type SaveScriptRequest struct {
	Pages     model.ScriptPages `json:"pages"`
	PageColor *string           `json:"pageColor"`
}

// Save replaces the script document. Last write wins; no merging.
func (h *ScriptHandler) Save(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("projectId")
	if err != nil {
		return badID(c, "project")
	}

	var req SaveScriptRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	var script model.Script
	err = h.db.Where("project_id = ?", projectID).First(&script).Error
	if err == gorm.ErrRecordNotFound {
		script = model.Script{
			ProjectID: int64(projectID),
			Pages:     req.Pages,
		}
		if req.PageColor != nil {
			script.PageColor = *req.PageColor
		}
		if err := h.db.Create(&script).Error; err != nil {
			return serverError(c, "Server error")
		}
	} else if err != nil {
		return serverError(c, "Server error")
	} else {
		updates := map[string]interface{}{"pages": req.Pages}
		if req.PageColor != nil {
			updates["page_color"] = *req.PageColor
		}
		if err := h.db.Model(&script).Updates(updates).Error; err != nil {
			return serverError(c, "Server error")
		}
		h.db.Where("project_id = ?", projectID).First(&script)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"script":  script,
	})
}
