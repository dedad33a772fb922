package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"scenecraft-backend/internal/auth"
	"scenecraft-backend/internal/model"
)

var bcryptCost = 12

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// AuthHandler registration, login and OAuth flows
type AuthHandler struct {
	db          *gorm.DB
	jwtManager  *auth.JWTManager
	oauth       *auth.OAuthManager
	frontendURL string
	secure      bool
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *auth.JWTManager, oauth *auth.OAuthManager, frontendURL string, secure bool) *AuthHandler {
	return &AuthHandler{
		db:          db,
		jwtManager:  jwtManager,
		oauth:       oauth,
		frontendURL: frontendURL,
		secure:      secure,
	}
}

// RegisterRequest signup payload
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) duplicateUser(c *fiber.Ctx, field string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": fmt.Sprintf("User with this %s already exists", field),
	})
}

// Register creates a local account
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	var validationErrors []string
	if len(strings.TrimSpace(req.Username)) < 3 {
		validationErrors = append(validationErrors, "Username must be at least 3 characters")
	}
	if !emailPattern.MatchString(req.Email) {
		validationErrors = append(validationErrors, "Valid email is required")
	}
	if len(req.Password) < 6 {
		validationErrors = append(validationErrors, "Password must be at least 6 characters")
	}
	if len(validationErrors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  validationErrors,
		})
	}

	// Report which field collides so the frontend can highlight it
	var existing model.User
	err := h.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error
	if err == nil {
		field := "username"
		if existing.Email == req.Email {
			field = "email"
		}
		return h.duplicateUser(c, field)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return serverError(c, "Server error during registration")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return serverError(c, "Server error during registration")
	}

	role := req.Role
	if role == "" {
		role = model.RoleArtist.String()
	}

	user := model.User{
		Username: strings.TrimSpace(req.Username),
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
		Provider: model.ProviderLocal.String(),
		IsActive: true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		// A concurrent registration can slip past the pre-check and
		// land on the unique index instead
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			field := "username"
			var count int64
			h.db.Model(&model.User{}).Where("email = ?", req.Email).Count(&count)
			if count > 0 {
				field = "email"
			}
			return h.duplicateUser(c, field)
		}
		return serverError(c, "Server error during registration")
	}
	log.Printf("[Auth] User registered: %s", user.Email)

	token, err := h.jwtManager.GenerateToken(user.ID, user.Email)
	if err != nil {
		return serverError(c, "Failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"token":   token,
		"user": fiber.Map{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"provider":   user.Provider,
			"created_at": user.CreatedAt,
		},
	})
}

// Login authenticates a local account
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	var validationErrors []string
	if req.Email == "" {
		validationErrors = append(validationErrors, "Email is required")
	}
	if req.Password == "" {
		validationErrors = append(validationErrors, "Password is required")
	}
	if len(validationErrors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  validationErrors,
		})
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid email or password",
		})
	}

	if !user.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Account is deactivated",
		})
	}

	if user.Provider == model.ProviderLocal.String() {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid email or password",
			})
		}
	}

	h.recordLogin(&user)

	token, err := h.jwtManager.GenerateToken(user.ID, user.Email)
	if err != nil {
		return serverError(c, "Failed to generate token")
	}
	log.Printf("[Auth] Login successful: %s", user.Email)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user": fiber.Map{
			"id":          user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"provider":    user.Provider,
			"lastLogin":   user.LastLogin,
			"loginCount":  user.LoginCount,
		},
	})
}

// Profile returns the authenticated user
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*auth.Claims)

	var user model.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// GoogleRedirect starts the Google OAuth flow
func (h *AuthHandler) GoogleRedirect(c *fiber.Ctx) error {
	state := h.issueState(c)
	return c.Redirect(h.oauth.GoogleAuthURL(state), fiber.StatusTemporaryRedirect)
}

// GitHubRedirect starts the GitHub OAuth flow
func (h *AuthHandler) GitHubRedirect(c *fiber.Ctx) error {
	state := h.issueState(c)
	return c.Redirect(h.oauth.GitHubAuthURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback completes the Google OAuth flow
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	if !h.validState(c) {
		return h.authFailed(c)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	profile, err := h.oauth.ExchangeGoogle(ctx, c.Query("code"))
	if err != nil {
		log.Printf("[Auth] Google OAuth failed: %v", err)
		return h.authFailed(c)
	}
	return h.completeOAuth(c, profile)
}

// GitHubCallback completes the GitHub OAuth flow
func (h *AuthHandler) GitHubCallback(c *fiber.Ctx) error {
	if !h.validState(c) {
		return h.authFailed(c)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	profile, err := h.oauth.ExchangeGitHub(ctx, c.Query("code"))
	if err != nil {
		log.Printf("[Auth] GitHub OAuth failed: %v", err)
		return h.authFailed(c)
	}
	return h.completeOAuth(c, profile)
}

// completeOAuth finds or creates the user and redirects to the frontend
// with a fresh token
func (h *AuthHandler) completeOAuth(c *fiber.Ctx, profile *auth.OAuthProfile) error {
	var user model.User
	query := h.db.Where("email = ?", profile.Email)
	switch profile.Provider {
	case "google":
		query = query.Or("google_id = ?", profile.ProviderID)
	case "github":
		query = query.Or("git_hub_id = ?", profile.ProviderID)
	}
	err := query.First(&user).Error

	if err == gorm.ErrRecordNotFound {
		user = model.User{
			Username: h.uniqueUsername(profile),
			Email:    profile.Email,
			Avatar:   profile.Avatar,
			Role:     model.RoleArtist.String(),
			Provider: profile.Provider,
			IsActive: true,
		}
		h.linkProviderID(&user, profile)
		if err := h.db.Create(&user).Error; err != nil {
			log.Printf("[Auth] Failed to create %s user: %v", profile.Provider, err)
			return h.authFailed(c)
		}
		log.Printf("[Auth] New %s user created: %s", profile.Provider, user.Email)
	} else if err != nil {
		return h.authFailed(c)
	} else {
		// Link the provider account on first OAuth login
		h.linkProviderID(&user, profile)
		user.Avatar = profile.Avatar
		h.db.Save(&user)
	}

	h.recordLogin(&user)

	token, err := h.jwtManager.GenerateToken(user.ID, user.Email)
	if err != nil {
		return h.authFailed(c)
	}

	return c.Redirect(fmt.Sprintf("%s/auth/success?token=%s&provider=%s",
		h.frontendURL, token, profile.Provider), fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) linkProviderID(user *model.User, profile *auth.OAuthProfile) {
	switch profile.Provider {
	case "google":
		if user.GoogleID == nil {
			id := profile.ProviderID
			user.GoogleID = &id
		}
	case "github":
		if user.GitHubID == nil {
			id := profile.ProviderID
			user.GitHubID = &id
		}
	}
}

// uniqueUsername derives a username from the OAuth profile, suffixing
// the provider id when the plain name is taken
func (h *AuthHandler) uniqueUsername(profile *auth.OAuthProfile) string {
	name := profile.Username
	if name == "" {
		name = strings.ToLower(strings.ReplaceAll(profile.DisplayName, " ", ""))
	}
	if name == "" {
		name = profile.Provider + profile.ProviderID
	}

	var count int64
	h.db.Model(&model.User{}).Where("username = ?", name).Count(&count)
	if count > 0 {
		name = name + "-" + profile.ProviderID
	}
	return name
}

func (h *AuthHandler) recordLogin(user *model.User) {
	now := time.Now()
	user.LastLogin = &now
	user.LoginCount++
	h.db.Model(user).Updates(map[string]interface{}{
		"last_login":  now,
		"login_count": user.LoginCount,
	})
}

// issueState writes the CSRF state cookie for the OAuth round trip
func (h *AuthHandler) issueState(c *fiber.Ctx) string {
	buf := make([]byte, 16)
	rand.Read(buf)
	state := hex.EncodeToString(buf)

	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		Secure:   h.secure,
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return state
}

func (h *AuthHandler) validState(c *fiber.Ctx) bool {
	state := c.Query("state")
	cookie := c.Cookies("oauth_state")
	return state != "" && state == cookie
}

func (h *AuthHandler) authFailed(c *fiber.Ctx) error {
	return c.Redirect(h.frontendURL+"/?error=auth_failed", fiber.StatusTemporaryRedirect)
}

func serverError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}
