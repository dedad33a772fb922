package handler

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"scenecraft-backend/internal/email"
	"scenecraft-backend/internal/model"
)

const invitationTTL = 7 * 24 * time.Hour

// InvitationHandler mails and redeems collaboration invites
type InvitationHandler struct {
	db          *gorm.DB
	mailer      *email.Service
	frontendURL string
}

// NewInvitationHandler creates the invitation handler
func NewInvitationHandler(db *gorm.DB, mailer *email.Service, frontendURL string) *InvitationHandler {
	return &InvitationHandler{db: db, mailer: mailer, frontendURL: frontendURL}
}

// SendInvitationRequest invite payload
type SendInvitationRequest struct {
	Email       string `json:"email"`
	InviterName string `json:"inviterName"`
	ProjectName string `json:"projectName"`
	ProjectID   int64  `json:"projectId"`
	Role        string `json:"role"`
}

// Send creates an invitation record and mails the accept link
func (h *InvitationHandler) Send(c *fiber.Ctx) error {
	var req SendInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.Email == "" || req.ProjectID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Email and project ID are required",
		})
	}

	var project model.Project
	if err := h.db.First(&project, req.ProjectID).Error; err != nil {
		return notFound(c, "Project not found")
	}

	role := normalizeRole(req.Role)

	invitation := model.Invitation{
		Email:     req.Email,
		ProjectID: project.ID,
		InviterID: project.OwnerID,
		Role:      role,
		Token:     newInviteToken(),
		Status:    model.InvitationPending.String(),
		ExpiresAt: time.Now().Add(invitationTTL),
	}
	if err := h.db.Create(&invitation).Error; err != nil {
		return serverError(c, "Failed to send invitation")
	}

	acceptURL := fmt.Sprintf("%s/accept-invitation/%s", h.frontendURL, invitation.Token)
	if err := h.mailer.SendInvitation(req.Email, req.InviterName, req.ProjectName, acceptURL); err != nil {
		log.Printf("[Invitation] Failed to mail %s: %v", req.Email, err)
		return serverError(c, "Failed to send invitation")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Invitation sent successfully to %s", req.Email),
	})
}

// Details returns the invitation behind a token so the accept page can
// show what is being joined
func (h *InvitationHandler) Details(c *fiber.Ctx) error {
	token := c.Params("token")

	var invitation model.Invitation
	err := h.db.Preload("Project").Preload("Inviter").
		Where("token = ?", token).
		First(&invitation).Error
	if err != nil {
		return notFound(c, "Invitation not found")
	}

	if invitation.Status == model.InvitationPending.String() && time.Now().After(invitation.ExpiresAt) {
		h.db.Model(&invitation).Update("status", model.InvitationExpired.String())
		invitation.Status = model.InvitationExpired.String()
	}

	return c.JSON(fiber.Map{
		"success": true,
		"invitation": fiber.Map{
			"email":       invitation.Email,
			"role":        invitation.Role,
			"status":      invitation.Status,
			"expiresAt":   invitation.ExpiresAt,
			"projectName": invitation.Project.Title,
			"inviterName": invitation.Inviter.Username,
		},
	})
}

// AcceptRequest redemption payload
type AcceptRequest struct {
	UserID int64 `json:"userId"`
}

// Accept redeems an invitation token and joins the user to the project
func (h *InvitationHandler) Accept(c *fiber.Ctx) error {
	token := c.Params("token")

	var req AcceptRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "User ID is required",
		})
	}

	var invitation model.Invitation
	err := h.db.Where("token = ? AND status = ?", token, model.InvitationPending.String()).
		First(&invitation).Error
	if err != nil {
		return notFound(c, "Invitation not found or already used")
	}

	if time.Now().After(invitation.ExpiresAt) {
		h.db.Model(&invitation).Update("status", model.InvitationExpired.String())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invitation has expired",
		})
	}

	var project model.Project
	if err := h.db.First(&project, invitation.ProjectID).Error; err != nil {
		return notFound(c, "Project not found")
	}

	if project.OwnerID == req.UserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "You are already the owner of this project",
		})
	}

	var count int64
	h.db.Model(&model.ProjectCollaborator{}).
		Where("project_id = ? AND user_id = ?", project.ID, req.UserID).
		Count(&count)
	if count > 0 {
		// Redeem the token even when membership already exists
		h.db.Model(&invitation).Update("status", model.InvitationAccepted.String())
		return c.JSON(fiber.Map{
			"success": true,
			"message": "You are already a collaborator on this project",
			"project": project,
		})
	}

	now := time.Now()
	collab := model.ProjectCollaborator{
		ProjectID:  project.ID,
		UserID:     req.UserID,
		Role:       invitation.Role,
		Active:     true,
		LastActive: &now,
	}
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&collab).Error; err != nil {
			return err
		}
		return tx.Model(&invitation).Update("status", model.InvitationAccepted.String()).Error
	})
	if err != nil {
		return serverError(c, "Failed to accept invitation")
	}

	h.db.Preload("Collaborators.User").Preload("Owner").First(&project, project.ID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Invitation accepted successfully",
		"project": project,
	})
}

// newInviteToken returns 32 random bytes hex encoded
func newInviteToken() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// normalizeRole title-cases a role name, defaulting to Viewer
func normalizeRole(role string) string {
	switch role {
	case "owner", "Owner":
		return "Owner"
	case "editor", "Editor":
		return model.CollaboratorEditor.String()
	default:
		return model.CollaboratorViewer.String()
	}
}
