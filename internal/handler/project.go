package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"scenecraft-backend/internal/cache"
	"scenecraft-backend/internal/model"
)

// ProjectHandler project CRUD, collaborators and comments
type ProjectHandler struct {
	db    *gorm.DB
	cache *cache.RedisClient
}

// NewProjectHandler creates the project handler
func NewProjectHandler(db *gorm.DB, redis *cache.RedisClient) *ProjectHandler {
	return &ProjectHandler{db: db, cache: redis}
}

// List returns all projects the user owns or collaborates on, most
// recently updated first
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	userID := c.QueryInt("userId")
	if userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "User ID is required",
		})
	}

	collabProjects := h.db.Model(&model.ProjectCollaborator{}).
		Select("project_id").
		Where("user_id = ?", userID)

	var projects []model.Project
	err := h.db.
		Preload("Owner").
		Preload("Collaborators.User").
		Where("owner_id = ? OR id IN (?)", userID, collabProjects).
		Order("updated_at DESC").
		Find(&projects).Error
	if err != nil {
		return serverError(c, "Failed to fetch projects")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"projects": projects,
	})
}

// CreateProjectRequest new project payload
type CreateProjectRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Genre       string           `json:"genre"`
	Tags        model.StringList `json:"tags"`
	CoverImage  string           `json:"coverImage"`
	Status      string           `json:"status"`
	OwnerID     int64            `json:"ownerId"`
}

// Create makes a new project with an empty default storyboard
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.Title == "" || req.OwnerID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Title and owner ID are required",
		})
	}

	status := req.Status
	if status == "" {
		status = model.StatusDraft.String()
	}

	var project model.Project
	err := h.db.Transaction(func(tx *gorm.DB) error {
		storyboard := model.Storyboard{
			Pages: model.StoryboardPages{{PageNumber: 1}},
		}
		if err := tx.Create(&storyboard).Error; err != nil {
			return err
		}

		project = model.Project{
			Title:        req.Title,
			Description:  req.Description,
			Genre:        req.Genre,
			Tags:         req.Tags,
			CoverImage:   req.CoverImage,
			Status:       status,
			OwnerID:      req.OwnerID,
			StoryboardID: &storyboard.ID,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		// Back-link the storyboard to its project
		return tx.Model(&storyboard).Update("project_id", project.ID).Error
	})
	if err != nil {
		log.Printf("[Project] Create failed: %v", err)
		return serverError(c, "Failed to create project")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"project": project,
		"message": "Project created successfully",
	})
}

// UpdateProjectRequest partial update payload; nil fields are untouched
type UpdateProjectRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Genre       *string           `json:"genre"`
	Tags        *model.StringList `json:"tags"`
	CoverImage  *string           `json:"coverImage"`
	Status      *string           `json:"status"`
}

// Update applies a partial update and returns the updated project
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return badID(c, "project")
	}

	var project model.Project
	if err := h.db.First(&project, projectID).Error; err != nil {
		return notFound(c, "Project not found")
	}

	var req UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Genre != nil {
		updates["genre"] = *req.Genre
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.CoverImage != nil {
		updates["cover_image"] = *req.CoverImage
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := h.db.Model(&project).Updates(updates).Error; err != nil {
			return serverError(c, "Failed to update project")
		}
	}

	h.db.First(&project, projectID)

	return c.JSON(fiber.Map{
		"success": true,
		"project": project,
		"message": "Project updated successfully",
	})
}

// Delete removes a project and every document attached to it
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return badID(c, "project")
	}

	var project model.Project
	if err := h.db.First(&project, projectID).Error; err != nil {
		return notFound(c, "Project not found")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&model.Storyboard{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.Script{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.ShotSequence{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.ProjectCollaborator{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.ProjectComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.Invitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
	if err != nil {
		log.Printf("[Project] Delete failed: %v", err)
		return serverError(c, "Failed to delete project")
	}

	h.cache.InvalidateComments(c.Context(), int64(projectID))

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Project deleted successfully",
	})
}

// AddCollaboratorRequest collaborator payload
type AddCollaboratorRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AddCollaborator adds an existing user to the project by email
func (h *ProjectHandler) AddCollaborator(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return badID(c, "project")
	}

	var req AddCollaboratorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return notFound(c, "User not found")
	}

	var project model.Project
	if err := h.db.First(&project, projectID).Error; err != nil {
		return notFound(c, "Project not found")
	}

	var count int64
	h.db.Model(&model.ProjectCollaborator{}).
		Where("project_id = ? AND user_id = ?", projectID, user.ID).
		Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "User is already a collaborator",
		})
	}

	role := req.Role
	if role == "" {
		role = model.CollaboratorViewer.String()
	}

	collab := model.ProjectCollaborator{
		ProjectID: int64(projectID),
		UserID:    user.ID,
		Role:      role,
		Active:    true,
	}
	if err := h.db.Create(&collab).Error; err != nil {
		return serverError(c, "Failed to add collaborator")
	}

	h.db.Preload("Collaborators.User").Preload("Owner").First(&project, projectID)

	return c.JSON(fiber.Map{
		"success": true,
		"project": project,
		"message": "Collaborator added successfully",
	})
}

// GetComments returns the project's comment thread, cache first
func (h *ProjectHandler) GetComments(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return badID(c, "project")
	}

	if cached, err := h.cache.GetComments(c.Context(), int64(projectID)); err == nil && cached != nil {
		return c.JSON(fiber.Map{
			"success":  true,
			"comments": cached,
		})
	}

	var count int64
	h.db.Model(&model.Project{}).Where("id = ?", projectID).Count(&count)
	if count == 0 {
		return notFound(c, "Project not found")
	}

	var comments []model.ProjectComment
	err = h.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return serverError(c, "Failed to fetch comments")
	}

	// Warm the cache for the next reader
	if len(comments) > 0 {
		cached := make([]cache.CachedComment, len(comments))
		for i, cm := range comments {
			cached[i] = cache.CachedComment{
				ID:        cm.ID,
				ProjectID: cm.ProjectID,
				UserID:    cm.UserID,
				Username:  cm.Username,
				Text:      cm.Text,
				CreatedAt: cm.CreatedAt,
			}
		}
		h.cache.PrimeComments(c.Context(), int64(projectID), cached)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"comments": comments,
	})
}

// AddCommentRequest comment payload
type AddCommentRequest struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

// AddComment appends a comment to the project thread
func (h *ProjectHandler) AddComment(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return badID(c, "project")
	}

	var req AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.Text == "" || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Text and user ID are required",
		})
	}

	var count int64
	h.db.Model(&model.Project{}).Where("id = ?", projectID).Count(&count)
	if count == 0 {
		return notFound(c, "Project not found")
	}

	username := req.Username
	if username == "" {
		username = "Unknown User"
	}

	comment := model.ProjectComment{
		ProjectID: int64(projectID),
		UserID:    req.UserID,
		Username:  username,
		Text:      req.Text,
	}
	if err := h.db.Create(&comment).Error; err != nil {
		return serverError(c, "Failed to add comment")
	}

	h.cache.AppendComment(c.Context(), &cache.CachedComment{
		ID:        comment.ID,
		ProjectID: comment.ProjectID,
		UserID:    comment.UserID,
		Username:  comment.Username,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	})

	h.db.Preload("User").First(&comment, comment.ID)

	return c.JSON(fiber.Map{
		"success": true,
		"comment": comment,
		"message": "Comment added successfully",
	})
}

func badID(c *fiber.Ctx, kind string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Invalid " + kind + " ID",
	})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}
