package controller

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"billdesk/internal/model"
	"billdesk/pkg/billing"
	"billdesk/pkg/database"
	"billdesk/pkg/email"
	"billdesk/pkg/entitlement"
	"billdesk/pkg/utils/jwt"
)

type InviteMemberInput struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func ListMembers(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var members []model.TeamMember
	if err := database.DB.Where("owner_id = ? AND status <> ?", claims.UserID, model.TeamMemberStatusRemoved).
		Order("created_at ASC").Find(&members).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch team members",
		})
	}

	return c.JSON(fiber.Map{
		"members":        members,
		"seat_allowance": seatAllowance(claims.UserID),
	})
}

// InviteMember checks its preconditions in a fixed order: email shape,
// self-invite, seat limit, duplicate invite.
func InviteMember(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(InviteMemberInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	invitee := strings.ToLower(strings.TrimSpace(input.Email))
	if !isValidEmail(invitee) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid email is required",
		})
	}
	if strings.EqualFold(invitee, claims.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You cannot invite yourself",
		})
	}

	role := input.Role
	if role == "" {
		role = model.TeamRoleMember
	}
	if role != model.TeamRoleMember && role != model.TeamRoleAdmin {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role",
		})
	}

	allowed := seatAllowance(claims.UserID)
	var occupied int64
	database.DB.Model(&model.TeamMember{}).
		Where("owner_id = ? AND status IN ?", claims.UserID,
			[]string{model.TeamMemberStatusActive, model.TeamMemberStatusPending}).
		Count(&occupied)
	if int(occupied) >= allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "You have reached your team seat limit",
			"in_use":  occupied,
			"allowed": allowed,
		})
	}

	var existing model.TeamMember
	if err := database.DB.Where("owner_id = ? AND email = ? AND status IN ?", claims.UserID, invitee,
		[]string{model.TeamMemberStatusActive, model.TeamMemberStatusPending}).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "This email has already been invited",
		})
	}

	member := model.TeamMember{
		OwnerID:         claims.UserID,
		Email:           invitee,
		Role:            role,
		Status:          model.TeamMemberStatusPending,
		InviteToken:     inviteToken(),
		InviteExpiresAt: time.Now().Add(model.InviteTokenTTL),
	}
	if err := database.DB.Create(&member).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create invitation",
		})
	}

	logTeamActivity(claims.UserID, "team_member_invited", map[string]interface{}{
		"email": invitee,
		"role":  role,
	})
	sendInviteEmail(claims.UserID, member)

	return c.Status(fiber.StatusCreated).JSON(member)
}

// ResendInvite rotates the token and expiry without changing status.
func ResendInvite(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var member model.TeamMember
	if err := database.DB.Where("id = ? AND owner_id = ? AND status = ?",
		c.Params("id"), claims.UserID, model.TeamMemberStatusPending).
		First(&member).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Pending invitation not found",
		})
	}

	member.InviteToken = inviteToken()
	member.InviteExpiresAt = time.Now().Add(model.InviteTokenTTL)
	if err := database.DB.Save(&member).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not resend invitation",
		})
	}

	sendInviteEmail(claims.UserID, member)

	return c.JSON(fiber.Map{
		"message": "Invitation resent",
	})
}

// RemoveMember is a soft status transition; rows are never hard-deleted.
// The owner seat cannot be removed.
func RemoveMember(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var member model.TeamMember
	if err := database.DB.Where("id = ? AND owner_id = ?", c.Params("id"), claims.UserID).
		First(&member).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Team member not found",
		})
	}

	if member.Role == model.TeamRoleOwner {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "The owner cannot be removed",
		})
	}

	if err := database.DB.Model(&member).Update("status", model.TeamMemberStatusRemoved).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not remove team member",
		})
	}

	logTeamActivity(claims.UserID, "team_member_removed", map[string]interface{}{
		"email": member.Email,
	})

	return c.JSON(fiber.Map{
		"message": "Team member removed",
	})
}

type ChangeRoleInput struct {
	Role string `json:"role"`
}

// ChangeMemberRole is forbidden both from and to the owner role.
func ChangeMemberRole(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(ChangeRoleInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Role == model.TeamRoleOwner {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "The owner role cannot be assigned",
		})
	}
	if input.Role != model.TeamRoleMember && input.Role != model.TeamRoleAdmin {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role",
		})
	}

	var member model.TeamMember
	if err := database.DB.Where("id = ? AND owner_id = ?", c.Params("id"), claims.UserID).
		First(&member).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Team member not found",
		})
	}

	if member.Role == model.TeamRoleOwner {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "The owner role cannot be changed",
		})
	}

	if err := database.DB.Model(&member).Update("role", input.Role).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not change role",
		})
	}

	logTeamActivity(claims.UserID, "team_member_role_changed", map[string]interface{}{
		"email": member.Email,
		"role":  input.Role,
	})

	return c.JSON(member)
}

// AcceptInvite consumes a valid, unexpired invite token. The caller must
// be signed in with the invited email.
func AcceptInvite(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var member model.TeamMember
	if err := database.DB.Where("invite_token = ? AND status = ?",
		c.Params("token"), model.TeamMemberStatusPending).
		First(&member).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Invitation not found",
		})
	}

	if member.InviteExpiresAt.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invitation has expired",
		})
	}
	if !strings.EqualFold(member.Email, claims.Email) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "This invitation was sent to a different email",
		})
	}

	memberUserID := claims.UserID
	updates := map[string]interface{}{
		"status":         model.TeamMemberStatusActive,
		"member_user_id": memberUserID,
	}
	if err := database.DB.Model(&member).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not accept invitation",
		})
	}

	logTeamActivity(member.OwnerID, "team_member_joined", map[string]interface{}{
		"email": member.Email,
	})

	return c.JSON(fiber.Map{
		"message": "Invitation accepted",
	})
}

type AddonPurchaseInput struct {
	Quantity      int    `json:"quantity"`
	BillingPeriod string `json:"billingPeriod"`
}

// CreateAddonOrder starts an extra-seat purchase. Addons are only sold
// to lifetime-plan owners; recurring plans upgrade their base plan
// instead.
func CreateAddonOrder(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(AddonPurchaseInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	status := entitlement.Resolve(database.DB, claims.UserID)
	if !status.IsLifetime {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Seat addons are only available on the lifetime plan",
		})
	}

	amount, err := billing.AddonCharge(input.BillingPeriod, input.Quantity)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	receipt := "addon_" + uuid.New().String()[:16]
	orderID, err := gateway.CreateOrder(amount, receipt, map[string]interface{}{
		"user_id":        strconv.FormatUint(uint64(claims.UserID), 10),
		"purpose":        model.PaymentPurposeAddon,
		"quantity":       strconv.Itoa(input.Quantity),
		"billing_period": input.BillingPeriod,
	})
	if err != nil {
		log.Printf("Could not create addon order for user %d: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create payment order",
		})
	}

	return c.JSON(fiber.Map{
		"order_id": orderID,
		"amount":   amount,
		"currency": "INR",
	})
}

type VerifyAddonInput struct {
	OrderID       string `json:"orderId"`
	PaymentID     string `json:"paymentId"`
	Signature     string `json:"signature"`
	Quantity      int    `json:"quantity"`
	BillingPeriod string `json:"billingPeriod"`
}

func VerifyAddonPayment(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(VerifyAddonInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if input.OrderID == "" || input.PaymentID == "" || input.Signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "orderId, paymentId and signature are required",
		})
	}

	ok, err := gateway.VerifyCallback(input.OrderID, input.PaymentID, input.Signature)
	if err != nil {
		log.Printf("Addon payment verification unavailable: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Payment verification is not configured",
		})
	}
	if !ok {
		log.Printf("Addon payment signature mismatch for order %s", input.OrderID)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Payment signature verification failed",
		})
	}

	addon, err := billing.ApplyAddonCapture(database.DB, billing.AddonCaptureInput{
		OwnerID:       claims.UserID,
		Quantity:      input.Quantity,
		BillingPeriod: input.BillingPeriod,
		OrderID:       input.OrderID,
		PaymentID:     input.PaymentID,
	})
	if err != nil {
		log.Printf("Could not apply addon payment %s: %v", input.PaymentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not apply seat addon",
		})
	}

	sendReceipt(claims.UserID, fmt.Sprintf("%d extra team seats", input.Quantity), input.PaymentID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Seat addon activated",
		"addon":   addon,
	})
}

// seatAllowance is the base plan allowance plus currently active addon
// grants.
func seatAllowance(ownerID uint) int {
	status := entitlement.Resolve(database.DB, ownerID)
	slug := entitlement.FreePlan
	if status.HasActivePlan && !status.IsExpired {
		slug = entitlement.PlanSlug(status.PlanSlug)
	}
	base := entitlement.GetPlanLimits(slug).MaxSeats
	return base + billing.ActiveAddonSeats(database.DB, ownerID)
}

func inviteToken() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

func sendInviteEmail(ownerID uint, member model.TeamMember) {
	if email.GlobalEmailService == nil {
		return
	}

	var owner model.User
	if err := database.DB.First(&owner, ownerID).Error; err != nil {
		return
	}

	inviteLink := fmt.Sprintf("https://app.billdesk.app/invites/%s", member.InviteToken)
	err := email.GlobalEmailService.SendTeamInviteEmail(
		member.Email, owner.BusinessName, member.Role, inviteLink, member.InviteExpiresAt)
	if err != nil {
		log.Printf("Could not send invite email to %s: %v", member.Email, err)
	}
}

func logTeamActivity(userID uint, action string, details map[string]interface{}) {
	raw, _ := json.Marshal(details)
	entry := model.ActivityLog{UserID: userID, Action: action, Details: datatypes.JSON(raw)}
	if err := database.DB.Create(&entry).Error; err != nil {
		log.Printf("Could not append activity log %s for user %d: %v", action, userID, err)
	}
}
