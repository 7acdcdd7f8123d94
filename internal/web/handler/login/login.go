// Package login provides the bearer-token session endpoints.
package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/estatedesk/estatedesk/internal/auth"
	"github.com/estatedesk/estatedesk/internal/config"
	"github.com/estatedesk/estatedesk/internal/web/handler"
)

// Paths for session management.
const (
	LoginPath  = handler.RootPath + "login"
	LogoutPath = handler.RootPath + "logout"
	MePath     = handler.RootPath + "user"
)

// Service provides login, logout and the current-user endpoint.
type Service struct {
	cfg       *config.Config
	auth      *auth.Service
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Login is the only unauthenticated endpoint of
// the API.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.auth = authService
	s.validator = handler.NewValidator()

	app.Post(LoginPath, s.Login)
	app.Post(LogoutPath, auth.RequireAuth(authService), s.Logout)
	app.Get(MePath, auth.RequireAuth(authService), s.Me)
}

type payload struct {
	Email    string `form:"email"    json:"email"    validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(c *fiber.Ctx) error {
	var in payload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFailed(c, handler.FormatValidationErrors(err))
	}

	user, err := s.auth.Authenticate(in.Email, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return handler.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, auth.ErrUserAccountDisabled):
			return handler.Forbidden(c, "Your account is inactive")
		default:
			log.Error().Err(err).Msg("login failed")
			return handler.Internal(c, "Failed to log in")
		}
	}

	token, err := s.auth.IssueToken(user.ID, user.Email)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue token")
		return handler.Internal(c, "Failed to log in")
	}

	return handler.Data(c, fiber.StatusOK, "Login successful", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout acknowledges the client discarding its token. Tokens are
// stateless, so there is nothing to revoke server side.
func (s *Service) Logout(c *fiber.Ctx) error {
	return handler.Message(c, fiber.StatusOK, "Logged out successfully")
}

// Me returns the authenticated user with roles, their permissions and
// the flattened permission list.
func (s *Service) Me(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return handler.Error(c, fiber.StatusUnauthorized, "Unauthenticated")
	}

	permissions, err := s.auth.GetUserPermissions(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load user permissions")
		return handler.Internal(c, "Failed to load user")
	}

	return handler.Data(c, fiber.StatusOK, "", fiber.Map{
		"user":        user,
		"permissions": permissions,
	})
}
