package handler

import (
	"io"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"scenecraft-backend/internal/storage"
)

const maxUploadSize = 50 * 1024 * 1024

var allowedAudioMimes = map[string]struct{}{
	"audio/mpeg": {}, "audio/mp3": {}, "audio/wav": {},
	"audio/ogg": {}, "audio/webm": {}, "audio/mp4": {},
}

var allowedImageMimes = map[string]struct{}{
	"image/jpeg": {}, "image/jpg": {}, "image/png": {},
	"image/gif": {}, "image/webp": {},
}

// UploadHandler asset uploads for sequences and storyboards
type UploadHandler struct {
	s3 *storage.S3Service
}

// NewUploadHandler creates the upload handler. s3 may be nil when
// storage is unconfigured.
func NewUploadHandler(s3 *storage.S3Service) *UploadHandler {
	return &UploadHandler{s3: s3}
}

// UploadAudio stores a sequence audio track
func (h *UploadHandler) UploadAudio(c *fiber.Ctx) error {
	return h.upload(c, "audio", storage.AudioPrefix, allowedAudioMimes, "audioUrl")
}

// UploadImage stores a storyboard image
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	return h.upload(c, "image", storage.StoryboardPrefix, allowedImageMimes, "imageUrl")
}

func (h *UploadHandler) upload(c *fiber.Ctx, field, prefix string, allowed map[string]struct{}, urlField string) error {
	if h.s3 == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "Upload storage is not configured",
		})
	}

	fileHeader, err := c.FormFile(field)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No " + field + " file uploaded",
		})
	}

	if fileHeader.Size > maxUploadSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "File exceeds the 50MB limit",
		})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if _, ok := allowed[contentType]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid file type. Only audio and image files are allowed.",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return serverError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return serverError(c, "Failed to read uploaded file")
	}

	url, key, err := h.s3.Upload(c.Context(), prefix, fileHeader.Filename, contentType, data)
	if err != nil {
		log.Printf("[Upload] S3 upload failed: %v", err)
		return serverError(c, "Failed to upload "+field)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  capitalize(field) + " uploaded successfully",
		urlField:   url,
		"filename": fileHeader.Filename,
		"size":     fileHeader.Size,
		"key":      key,
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
