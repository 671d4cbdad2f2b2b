package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmedabdul/staff-portal/internal/api/dto"
	"github.com/ahmedabdul/staff-portal/internal/domain"
	"github.com/ahmedabdul/staff-portal/internal/session"
	apperrors "github.com/ahmedabdul/staff-portal/pkg/util/errorutil"
)

// StaffHandler exposes roster endpoints.
type StaffHandler struct{}

// NewStaffHandler constructs handler.
func NewStaffHandler() *StaffHandler {
	return &StaffHandler{}
}

// List handles GET /api/staff. An optional q searches name, email and role.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		return data(c, http.StatusOK, staffList(store.SearchStaff(q)))
	}
	return data(c, http.StatusOK, staffList(store.StaffList()))
}

// Partners handles GET /api/staff/partners.
func (h *StaffHandler) Partners(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, staffList(store.Partners()))
}

// Create handles POST /api/staff.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		return apperrors.NewValidationError("name and email required", nil)
	}

	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	member, err := store.AssignStaff(c.UserContext(), session.NewStaff{
		Name:  req.Name,
		Email: req.Email,
		Role:  domain.StaffRole(req.Role),
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, staffResponse(member))
}

// Delete handles DELETE /api/staff/:id.
func (h *StaffHandler) Delete(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	if err := store.RemoveStaff(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Update handles PATCH /api/staff/:id.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		if trimmed == "" {
			return apperrors.NewValidationError("email must not be empty", nil)
		}
		req.Email = &trimmed
	}

	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	ok, err := store.UpdateProfile(c.UserContext(), id, session.ProfileUpdate{Name: req.Name, Email: req.Email})
	if err != nil {
		return err
	}
	if !ok {
		current := store.Session()
		if !current.Authenticated {
			return apperrors.NewUnauthorized("sign in required")
		}
		if !current.IsAdmin && current.CurrentUser.ID != id {
			return apperrors.NewForbidden("only the administrator may edit other profiles")
		}
		return domain.ErrStaffNotFound
	}

	for _, m := range store.StaffList() {
		if m.ID == id {
			return data(c, http.StatusOK, staffResponse(m))
		}
	}
	return domain.ErrStaffNotFound
}
