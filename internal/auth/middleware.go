package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/estatedesk/estatedesk/internal/db/models"
)

// localsUserKey is the fiber.Locals key carrying the authenticated principal.
const localsUserKey = "auth.user"

// RequireAuth creates Fiber middleware that resolves the bearer token to
// a user and stores the principal in fiber.Locals. Requests without a
// valid token are rejected with 401.
func RequireAuth(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return unauthenticated(c)
		}

		claims, err := s.ParseToken(token)
		if err != nil {
			return unauthenticated(c)
		}

		user, err := s.LoadUser(claims.UserID)
		if err != nil {
			return unauthenticated(c)
		}

		if user.Status != models.StatusActive {
			return unauthenticated(c)
		}

		c.Locals(localsUserKey, user)

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific
// permission. It must run after RequireAuth.
func RequirePermission(s *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return unauthenticated(c)
		}

		allowed, err := s.HasPermission(user.ID, permission)
		if err != nil {
			log.Error().Err(err).Uint("user_id", user.ID).Str("permission", permission).
				Msg("failed to check permission")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Internal Server Error",
			})
		}

		if !allowed {
			log.Warn().Uint("user_id", user.ID).Str("permission", permission).
				Msg("user lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  "error",
				"message": "Forbidden: You don't have permission to access this resource",
			})
		}

		return c.Next()
	}
}

// CurrentUser returns the authenticated principal stored by RequireAuth,
// or nil when the request is unauthenticated.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUserKey).(*models.User)
	return user
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "error",
		"message": "Unauthenticated",
	})
}
