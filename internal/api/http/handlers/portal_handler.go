package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmedabdul/staff-portal/internal/api/dto"
	"github.com/ahmedabdul/staff-portal/internal/routing"
	apperrors "github.com/ahmedabdul/staff-portal/pkg/util/errorutil"
)

// PortalHandler applies the navigation guard to portal page requests.
type PortalHandler struct{}

// NewPortalHandler constructs handler.
func NewPortalHandler() *PortalHandler {
	return &PortalHandler{}
}

// Page handles GET /, /staffportal and /staffportal/:page.
func (h *PortalHandler) Page(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	current := store.Session()
	decision := routing.Resolve(c.Path(), current)
	switch decision.Outcome {
	case routing.Redirect:
		return c.Redirect(decision.Location, http.StatusSeeOther)
	case routing.NotFound:
		return apperrors.NewNotFound("page", map[string]interface{}{"path": c.Path()})
	}
	return data(c, http.StatusOK, dto.ViewResponse{View: decision.View, Session: sessionResponse(current)})
}
