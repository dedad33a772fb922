package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"scenecraft-backend/internal/model"
	"scenecraft-backend/internal/storage"
)

// ShotSequenceHandler timeline document CRUD
type ShotSequenceHandler struct {
	db *gorm.DB
	s3 *storage.S3Service
}

// NewShotSequenceHandler creates the shot sequence handler. s3 may be
// nil when storage is unconfigured; audio cleanup is skipped then.
func NewShotSequenceHandler(db *gorm.DB, s3 *storage.S3Service) *ShotSequenceHandler {
	return &ShotSequenceHandler{db: db, s3: s3}
}

// CreateSequenceRequest create payload
type CreateSequenceRequest struct {
	ProjectID int64  `json:"projectId"`
	Title     string `json:"title"`
}

// Create makes the project's sequence, or returns the existing one.
// One sequence per project.
func (h *ShotSequenceHandler) Create(c *fiber.Ctx) error {
	var req CreateSequenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.ProjectID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Project ID is required",
		})
	}

	var sequence model.ShotSequence
	err := h.db.Where("project_id = ?", req.ProjectID).First(&sequence).Error
	if err == nil {
		return c.JSON(fiber.Map{
			"success":  true,
			"sequence": sequence,
		})
	}
	if err != gorm.ErrRecordNotFound {
		return serverError(c, "Server error")
	}

	title := req.Title
	if title == "" {
		title = "Untitled Sequence"
	}

	sequence = model.ShotSequence{
		ProjectID: req.ProjectID,
		Title:     title,
		Frames:    model.SequenceFrames{},
	}
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sequence).Error; err != nil {
			return err
		}
		return tx.Model(&model.Project{}).
			Where("id = ?", req.ProjectID).
			Update("shot_sequence_id", sequence.ID).Error
	})
	if err != nil {
		return serverError(c, "Server error")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"sequence": sequence,
	})
}

// GetByProject returns the project's sequence
func (h *ShotSequenceHandler) GetByProject(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("projectId")
	if err != nil {
		return badID(c, "project")
	}

	var sequence model.ShotSequence
	if err := h.db.Where("project_id = ?", projectID).First(&sequence).Error; err != nil {
		return notFound(c, "Sequence not found")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"sequence": sequence,
	})
}

// UpdateSequenceRequest partial update payload
type UpdateSequenceRequest struct {
	Frames     *model.SequenceFrames `json:"frames"`
	AudioTrack *string               `json:"audioTrack"`
	Title      *string               `json:"title"`
}

// Update applies a partial update by sequence id
func (h *ShotSequenceHandler) Update(c *fiber.Ctx) error {
	sequenceID, err := c.ParamsInt("id")
	if err != nil {
		return badID(c, "sequence")
	}

	var sequence model.ShotSequence
	if err := h.db.First(&sequence, sequenceID).Error; err != nil {
		return notFound(c, "Sequence not found")
	}

	var req UpdateSequenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Frames != nil {
		updates["frames"] = *req.Frames
	}
	if req.AudioTrack != nil {
		updates["audio_track"] = *req.AudioTrack
	}
	if req.Title != nil && *req.Title != "" {
		updates["title"] = *req.Title
	}

	if len(updates) > 0 {
		if err := h.db.Model(&sequence).Updates(updates).Error; err != nil {
			return serverError(c, "Server error")
		}
	}

	h.db.First(&sequence, sequenceID)

	return c.JSON(fiber.Map{
		"success":  true,
		"sequence": sequence,
	})
}

// Delete removes a sequence and unlinks it from its project
func (h *ShotSequenceHandler) Delete(c *fiber.Ctx) error {
	sequenceID, err := c.ParamsInt("id")
	if err != nil {
		return badID(c, "sequence")
	}

	var sequence model.ShotSequence
	if err := h.db.First(&sequence, sequenceID).Error; err != nil {
		return notFound(c, "Sequence not found")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Project{}).
			Where("id = ?", sequence.ProjectID).
			Update("shot_sequence_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&sequence).Error
	})
	if err != nil {
		return serverError(c, "Server error")
	}

	// Drop the uploaded audio track along with its sequence
	if key := h.s3.KeyFromURL(sequence.AudioTrack); key != "" {
		h.s3.Delete(c.Context(), key)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Sequence deleted",
	})
}
