package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/ahmedabdul/staff-portal/pkg/util/errorutil"
)

// RequireAuthenticated ensures the client has a signed-in identity.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !SessionFromContext(c).Authenticated {
			return apperrors.NewUnauthorized("sign in required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller is the administrator.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := SessionFromContext(c)
		if !s.Authenticated {
			return apperrors.NewUnauthorized("sign in required")
		}
		if !s.IsAdmin {
			return apperrors.NewForbidden("administrator required")
		}
		return c.Next()
	}
}

// RequireReviewer ensures the caller may review reports: a managing partner
// or the administrator.
func RequireReviewer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := SessionFromContext(c)
		if !s.Authenticated {
			return apperrors.NewUnauthorized("sign in required")
		}
		if !s.IsPartner && !s.IsAdmin {
			return apperrors.NewForbidden("managing partner required")
		}
		return c.Next()
	}
}
