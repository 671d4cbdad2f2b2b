package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ahmedabdul/staff-portal/internal/api/dto"
	"github.com/ahmedabdul/staff-portal/internal/observability"
	apperrors "github.com/ahmedabdul/staff-portal/pkg/util/errorutil"
)

// SessionHandler exposes login, logout and the current session.
type SessionHandler struct {
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewSessionHandler constructs handler.
func NewSessionHandler(metrics *observability.Metrics, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{metrics: metrics, logger: logger}
}

// Login handles POST /api/session/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	ok, err := store.Login(c.UserContext(), req.Email, req.Password, req.Remember)
	if err != nil {
		return err
	}
	h.metrics.RecordLogin(ok)
	if !ok {
		return apperrors.NewUnauthorized("invalid email or password")
	}
	return data(c, http.StatusOK, sessionResponse(store.Session()))
}

// Logout handles POST /api/session/logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	if err := store.Logout(c.UserContext()); err != nil {
		h.logger.Warn("logout left persisted state behind", zap.Error(err))
	}
	return c.SendStatus(http.StatusNoContent)
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, sessionResponse(store.Session()))
}
