package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/notify"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FunctionsHandler keeps the contract of the hosted send-report-email
// function for clients that still call it directly.
type FunctionsHandler struct {
	db         *gorm.DB
	dispatcher *notify.Dispatcher
	admins     identity.AdminList
}

func NewFunctionsHandler(db *gorm.DB, dispatcher *notify.Dispatcher, admins identity.AdminList) *FunctionsHandler {
	return &FunctionsHandler{db: db, dispatcher: dispatcher, admins: admins}
}

type functionError struct {
	Error string `json:"error"`
}

func (h *FunctionsHandler) SendReportEmail(c *fiber.Ctx) error {
	var msg notify.Message
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(functionError{Error: "Invalid request body"})
	}

	if err := msg.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(functionError{Error: err.Error()})
	}

	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(functionError{Error: "Unauthorized"})
	}
	actor, err := identity.LoadActor(c.UserContext(), h.db, userID, h.admins)
	if err != nil {
		if errors.Is(err, identity.ErrUnknownActor) {
			return c.Status(fiber.StatusUnauthorized).JSON(functionError{Error: "Unauthorized"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(functionError{Error: "Failed to load user"})
	}
	// Residents may only email themselves.
	if !actor.IsAdmin() && !strings.EqualFold(strings.TrimSpace(msg.UserEmail), actor.Email) {
		return c.Status(fiber.StatusForbidden).JSON(functionError{Error: "userEmail must be your own address"})
	}

	if err := h.dispatcher.Send(c.UserContext(), msg); err != nil {
		slog.Warn("send-report-email failed",
			"action", string(msg.Type),
			"user_id", userID.String(),
			"error", err,
		)
		return c.Status(fiber.StatusBadRequest).JSON(functionError{Error: err.Error()})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Email envoyé avec succès",
	})
}
