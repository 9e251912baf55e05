package controller

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"billdesk/internal/model"
	"billdesk/pkg/database"
	"billdesk/pkg/email"
	"billdesk/pkg/utils/jwt"
)

type RegisterInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
	GSTIN        string `json:"gstin"`
	PhoneNumber  string `json:"phone_number"`
	Address      string `json:"address"`
	StateCode    string `json:"state_code"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if !isValidEmail(input.Email) || len(input.Password) < 6 || input.BusinessName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email, a password of at least 6 characters and a business name are required",
		})
	}

	var existingUser model.User
	if err := database.GetDB().Where("email = ?", input.Email).First(&existingUser).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email already exists",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not hash password",
		})
	}

	user := model.User{
		Email:        input.Email,
		Password:     string(hashedPassword),
		Name:         input.Name,
		BusinessName: input.BusinessName,
		GSTIN:        input.GSTIN,
		PhoneNumber:  input.PhoneNumber,
		Address:      input.Address,
		StateCode:    input.StateCode,
	}

	if err := database.GetDB().Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create user",
		})
	}

	if email.GlobalEmailService != nil {
		if err := email.GlobalEmailService.SendWelcomeEmail(user.Email, user.DisplayName()); err != nil {
			log.Printf("Could not send welcome email: %v", err)
		}
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"token":   token,
		"user":    user.GetPublicProfile(),
	})
}

func Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	var user model.User
	if err := database.GetDB().Where("email = ?", input.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if user.Status == model.UserStatusDeactivated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Account is deactivated",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user.GetPublicProfile(),
	})
}

func GetMe(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch user",
		})
	}

	return c.JSON(fiber.Map{
		"user": user.GetPublicProfile(),
	})
}

type PasswordResetRequestInput struct {
	Email string `json:"email"`
}

type PasswordResetInput struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func RequestPasswordReset(c *fiber.Ctx) error {
	input := new(PasswordResetRequestInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	var user model.User
	if err := database.GetDB().Where("email = ?", input.Email).First(&user).Error; err != nil {
		// Do not reveal whether the email exists.
		return c.JSON(fiber.Map{
			"message": "If the email exists, a reset link has been sent",
		})
	}

	token := randomToken()
	expiresAt := time.Now().Add(1 * time.Hour)
	if err := database.GetDB().Model(&user).Updates(map[string]interface{}{
		"reset_token":            token,
		"reset_token_expires_at": expiresAt,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create reset token",
		})
	}

	if email.GlobalEmailService != nil {
		resetLink := fmt.Sprintf("https://app.billdesk.app/reset-password?token=%s", token)
		if err := email.GlobalEmailService.SendPasswordResetEmail(user.Email, resetLink); err != nil {
			log.Printf("Could not send password reset email: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"message": "If the email exists, a reset link has been sent",
	})
}

func ResetPassword(c *fiber.Ctx) error {
	input := new(PasswordResetInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Token == "" || len(input.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid token and a password of at least 6 characters are required",
		})
	}

	var user model.User
	if err := database.GetDB().Where("reset_token = ?", input.Token).First(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or expired reset token",
		})
	}

	if user.ResetTokenExpiresAt == nil || user.ResetTokenExpiresAt.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or expired reset token",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not hash password",
		})
	}

	if err := database.GetDB().Model(&user).Updates(map[string]interface{}{
		"password":               string(hashedPassword),
		"reset_token":            "",
		"reset_token_expires_at": nil,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update password",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Password updated successfully",
	})
}

func isValidEmail(address string) bool {
	at := strings.Index(address, "@")
	if at < 1 || at == len(address)-1 {
		return false
	}
	domain := address[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(address, " \t")
}

func randomToken() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
