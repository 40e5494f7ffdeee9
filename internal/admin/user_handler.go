package admin

import (
	"strings"

	"eoq-backend/internal/audit"
	"eoq-backend/internal/auth"
	"eoq-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// POST /api/admin/create-user
func CreateUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Username = strings.TrimSpace(body.Username)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		role := models.UserRole(body.Role)
		if role != models.RoleAdmin && role != models.RoleStaff {
			return fiber.NewError(fiber.StatusBadRequest, "Role must be staff or admin")
		}
		if body.Username == "" || body.Email == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username, email and name are required")
		}
		if !auth.ValidateEmail(body.Email) {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid email format")
		}
		if !auth.IsPasswordStrong(body.Password) {
			return fiber.NewError(fiber.StatusBadRequest, "Password too weak (min 8 chars, 1 uppercase, 1 digit/symbol)")
		}

		var count int64
		db.Model(&models.User{}).
			Where("username = ? OR email = ?", body.Username, body.Email).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Username or email already exists")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Username:     body.Username,
			Email:        body.Email,
			PasswordHash: string(hash),
			Name:         body.Name,
			Role:         role,
		}
		if err := db.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"error":   false,
			"message": "User " + user.Username + " (" + string(user.Role) + ") created",
			"data":    fiber.Map{"userId": user.ID},
		})
	}
}

// GET /api/admin/users[?iduser=]
func ListUsersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("iduser") != "" {
			id := c.QueryInt("iduser")
			if id <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid iduser")
			}
			var user models.User
			if err := db.First(&user, id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "User not found")
			}
			return c.JSON(fiber.Map{"error": false, "data": user})
		}

		var users []models.User
		if err := db.Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list users")
		}
		return c.JSON(fiber.Map{"error": false, "data": users})
	}
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// POST /api/admin/reset-password?iduser=
func ResetPasswordHandler(db *gorm.DB, rec *audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetID := c.QueryInt("iduser")
		if targetID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Query parameter ?iduser is required")
		}

		var body ResetPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !auth.IsPasswordStrong(body.NewPassword) {
			return fiber.NewError(fiber.StatusBadRequest, "New password too weak")
		}

		var user models.User
		if err := db.First(&user, targetID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Target user not found")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}
		user.PasswordHash = string(hash)
		if err := db.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reset password")
		}

		adminID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		adminName, _ := c.Locals(auth.CtxUserNameKey).(string)
		rec.Write(audit.LogOptions{
			UserID:      adminID,
			UserName:    adminName,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionUpdate,
			Description: "password reset by admin",
		})

		return c.JSON(fiber.Map{"error": false, "message": "Password reset"})
	}
}
