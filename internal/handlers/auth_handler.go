package handlers

import (
	"errors"

	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/services"
	"github.com/Bdsolutionconsulting/linkhood/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return dto.Fail(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, services.ErrInvalidEmail), errors.Is(err, services.ErrWeakPassword):
			return dto.Fail(c, fiber.StatusBadRequest, err.Error())
		case validation.IsValidation(err):
			return dto.Invalid(c, err)
		}
		return dto.Fail(c, fiber.StatusInternalServerError, "Failed to register")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Confirm(c *fiber.Ctx) error {
	var req dto.ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Confirm(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidConfirmation) {
			return dto.Fail(c, fiber.StatusBadRequest, err.Error())
		}
		return dto.Fail(c, fiber.StatusInternalServerError, "Failed to confirm email")
	}

	return c.JSON(resp)
}

// ResendConfirmation always answers 200 so it cannot be used to probe
// which addresses are registered.
func (h *AuthHandler) ResendConfirmation(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.authService.ResendConfirmation(c.UserContext(), req.Email); err != nil {
		return dto.Fail(c, fiber.StatusInternalServerError, "Failed to send confirmation email")
	}
	return c.JSON(fiber.Map{"message": "Si un compte existe pour cette adresse, un e-mail de confirmation a été envoyé."})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return dto.Fail(c, fiber.StatusUnauthorized, err.Error())
		case errors.Is(err, services.ErrEmailNotConfirmed):
			return dto.Fail(c, fiber.StatusForbidden, "Veuillez confirmer votre adresse e-mail avant de vous connecter.")
		}
		return dto.Fail(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return dto.Fail(c, fiber.StatusUnauthorized, err.Error())
		}
		return dto.Fail(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return dto.Fail(c, fiber.StatusInternalServerError, "Failed to logout")
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.authService.DeleteAccount(c.UserContext(), userID, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return dto.Fail(c, fiber.StatusUnauthorized, "Incorrect password. Please try again.")
		case errors.Is(err, services.ErrUserNotFound):
			return dto.Fail(c, fiber.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrPasswordRequired):
			return dto.Fail(c, fiber.StatusBadRequest, "Password is required")
		}
		return dto.Fail(c, fiber.StatusInternalServerError, "Failed to delete account")
	}

	return c.JSON(fiber.Map{"message": "Account deleted successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.authService.Me(c.UserContext(), userID, identity.GetEmail(c))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return dto.Fail(c, fiber.StatusNotFound, "User not found")
		}
		return dto.Fail(c, fiber.StatusInternalServerError, "Failed to load profile")
	}

	return c.JSON(dto.NewUserResponse(user))
}
