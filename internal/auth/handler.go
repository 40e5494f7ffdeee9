package auth

import (
	"regexp"
	"strings"
	"unicode"

	"eoq-backend/internal/config"
	"eoq-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Identity string `json:"identity"` // username or email
	Password string `json:"password"`
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsPasswordStrong requires at least 8 characters, one uppercase letter
// and one digit or symbol.
func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasUpper := false
	for _, r := range password {
		if unicode.IsUpper(r) {
			hasUpper = true
			break
		}
	}
	return hasUpper && strings.ContainsAny(password, "0123456789!@#$%^&*")
}

// EnsureDefaultAdmin seeds the admin account on an empty user table so a
// fresh deployment can be logged into. Called once at startup.
func EnsureDefaultAdmin(db *gorm.DB, log *logrus.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:     "admin",
		Email:        "admin@eoq.com",
		Name:         "Administrator",
		Role:         models.RoleAdmin,
		PasswordHash: string(hash),
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.WithField("username", admin.Username).Warn("default admin created, change its password immediately")
	return nil
}

func RegisterHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Username = strings.TrimSpace(body.Username)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if body.Username == "" || body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username, email, password and name are required")
		}
		if !ValidateEmail(body.Email) {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid email format")
		}
		if !IsPasswordStrong(body.Password) {
			return fiber.NewError(fiber.StatusBadRequest, "Password too weak (min 8 chars, 1 uppercase, 1 digit/symbol)")
		}

		role := models.RoleStaff
		if body.Role == string(models.RoleAdmin) {
			role = models.RoleAdmin
		}

		var count int64
		db.Model(&models.User{}).
			Where("username = ? OR email = ?", body.Username, body.Email).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Username or email already registered")
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
			"message": "Registration successful",
			"data":    fiber.Map{"userId": user.ID, "username": user.Username},
		})
	}
}

func LoginHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Identity = strings.TrimSpace(body.Identity)
		if body.Identity == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "identity and password are required")
		}

		var user models.User
		if err := db.Where("username = ? OR email = ?", body.Identity, strings.ToLower(body.Identity)).
			First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Login failed: unknown user or wrong password")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Login failed: unknown user or wrong password")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not sign token")
		}

		return c.JSON(fiber.Map{
			"error":   false,
			"message": "Login successful",
			"data": fiber.Map{
				"token": token,
				"user": fiber.Map{
					"userId":   user.ID,
					"name":     user.Name,
					"username": user.Username,
					"email":    user.Email,
					"role":     user.Role,
					"avatar":   user.AvatarURL,
				},
			},
		})
	}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func ChangePasswordHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Missing user information")
		}

		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !IsPasswordStrong(body.NewPassword) {
			return fiber.NewError(fiber.StatusBadRequest, "New password too weak")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.CurrentPassword)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Current password is wrong")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}
		user.PasswordHash = string(hash)
		if err := db.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update password")
		}

		return c.JSON(fiber.Map{"error": false, "message": "Password changed"})
	}
}

func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Missing user information")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		return c.JSON(fiber.Map{
			"error": false,
			"data": fiber.Map{
				"userId":   user.ID,
				"name":     user.Name,
				"username": user.Username,
				"email":    user.Email,
				"role":     user.Role,
				"avatar":   user.AvatarURL,
			},
		})
	}
}
