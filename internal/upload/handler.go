package upload

import (
	"os"
	"path/filepath"
	"strings"

	"eoq-backend/internal/auth"
	"eoq-backend/internal/config"
	"eoq-backend/internal/models"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxAvatarSize = 1 * 1024 * 1024 // 1MB

// POST /api/upload/profile
// Accepts a multipart image, center-crops it to 512x512 jpeg and replaces
// the user's previous avatar on disk.
func ProfilePictureHandler(db *gorm.DB, cfg *config.Config, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Missing user information")
		}

		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "No file uploaded")
		}
		if fileHeader.Size > maxAvatarSize {
			return fiber.NewError(fiber.StatusBadRequest, "File too large (max 1MB)")
		}
		if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/") {
			return fiber.NewError(fiber.StatusBadRequest, "Only image files are allowed")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		src, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file")
		}
		defer src.Close()

		img, err := imaging.Decode(src, imaging.AutoOrientation(true))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "File is not a decodable image")
		}
		img = imaging.Fill(img, 512, 512, imaging.Center, imaging.Lanczos)

		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not prepare upload directory")
		}

		filename := "profile-" + user.Username + "-" + uuid.NewString() + ".jpg"
		outPath := filepath.Join(cfg.UploadDir, filename)
		if err := imaging.Save(img, outPath, imaging.JPEGQuality(80)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store avatar")
		}

		// best-effort removal of the previous file
		if user.AvatarURL != nil {
			oldName := filepath.Base(*user.AvatarURL)
			if oldName != "" && oldName != "." {
				if rmErr := os.Remove(filepath.Join(cfg.UploadDir, oldName)); rmErr != nil && !os.IsNotExist(rmErr) {
					log.WithError(rmErr).Warn("could not remove old avatar")
				}
			}
		}

		avatarURL := cfg.BaseURL + "/uploads/" + filename
		user.AvatarURL = &avatarURL
		if err := db.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update user")
		}

		return c.JSON(fiber.Map{
			"error":   false,
			"message": "Avatar updated",
			"data":    fiber.Map{"avatar": avatarURL},
		})
	}
}
