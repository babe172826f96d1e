package handlers

import (
	"errors"

	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/services"
	"github.com/Bdsolutionconsulting/linkhood/internal/session"
	"github.com/gofiber/fiber/v2"
)

type SessionHandler struct {
	profileService *services.ProfileService
}

func NewSessionHandler(profileService *services.ProfileService) *SessionHandler {
	return &SessionHandler{profileService: profileService}
}

// Bootstrap tells a starting client who it is and where to navigate.
// A token whose user no longer exists counts as signed out.
func (h *SessionHandler) Bootstrap(c *fiber.Ctx) error {
	path := c.Query("path", "/")
	canGoBack := c.QueryBool("can_go_back", false)

	resp := dto.BootstrapResponse{}
	if userID, err := identity.GetUserID(c); err == nil {
		user, err := h.profileService.Get(c.UserContext(), userID)
		switch {
		case err == nil:
			u := dto.NewUserResponse(user)
			resp.Authenticated = true
			resp.User = &u
		case errors.Is(err, services.ErrUserNotFound):
		default:
			return dto.Fail(c, fiber.StatusInternalServerError, "Failed to load session")
		}
	}

	resp.Redirect = session.ResolveRedirect(resp.Authenticated, path, canGoBack)
	return c.JSON(resp)
}
