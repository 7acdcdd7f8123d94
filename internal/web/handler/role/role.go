// Package role provides the JSON handlers for role and permission
// management. The heavy lifting lives in the db controller so the
// transactional permission sync is reusable from the seeder and tests.
package role

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/estatedesk/estatedesk/internal/auth"
	"github.com/estatedesk/estatedesk/internal/config"
	rolecontroller "github.com/estatedesk/estatedesk/internal/db/controller/role"
	"github.com/estatedesk/estatedesk/internal/web/handler"
)

// Path is the base path for role management.
const Path = handler.RootPath + "roles"

// PermissionsPath lists the permissions assignable to roles.
const PermissionsPath = handler.RootPath + "permissions"

// Service provides role and permission management.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	auth      *auth.Service
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.auth = authService
	s.validator = handler.NewValidator()

	app.Get(Path,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermRoleList),
		s.List,
	)
	app.Post(Path,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermRoleCreate),
		s.Create,
	)
	app.Get(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermRoleList),
		s.Show,
	)
	app.Put(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermRoleEdit),
		s.Update,
	)
	app.Delete(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermRoleDelete),
		s.Delete,
	)
	app.Get(PermissionsPath,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermRoleList),
		s.Permissions,
	)
}

type payload struct {
	Name        string   `form:"name"        json:"name"        validate:"required,max=255"`
	Permissions []string `form:"permissions" json:"permissions" validate:"omitempty,dive,required"`
}

// mapControllerError converts controller sentinels into the API
// responses they stand for.
func mapControllerError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, rolecontroller.ErrRoleNotFound):
		return handler.NotFound(c, "Role not found")
	case errors.Is(err, rolecontroller.ErrRoleNameTaken):
		return handler.ValidationFailed(c, map[string]string{"name": "The name has already been taken"})
	case errors.Is(err, rolecontroller.ErrUnknownPermission):
		return handler.ValidationFailed(c, map[string]string{"permissions": "The selected permissions is invalid"})
	case errors.Is(err, rolecontroller.ErrSuperAdminProtected):
		return handler.Forbidden(c, "Super Admin role cannot be deleted")
	default:
		log.Error().Err(err).Msg("role operation failed")
		return handler.Internal(c, fallback)
	}
}

// List returns all roles with their permissions.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := rolecontroller.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list roles")
		return handler.Internal(c, "Failed to load roles")
	}

	return handler.Data(c, fiber.StatusOK, "", roles)
}

// Create validates and inserts a role with its permission set.
func (s *Service) Create(c *fiber.Ctx) error {
	var in payload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFailed(c, handler.FormatValidationErrors(err))
	}

	role, err := rolecontroller.Create(s.db, in.Name, in.Permissions)
	if err != nil {
		return mapControllerError(c, err, "Failed to create role")
	}

	s.auth.InvalidateCache()

	return handler.Data(c, fiber.StatusCreated, "Role created successfully", role)
}

// Show returns one role with its permissions.
func (s *Service) Show(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Role not found")
	}

	role, err := rolecontroller.Get(s.db, id)
	if err != nil {
		return mapControllerError(c, err, "Failed to load role")
	}

	return handler.Data(c, fiber.StatusOK, "", role)
}

// Update renames a role and replaces its permission set.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Role not found")
	}

	var in payload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFailed(c, handler.FormatValidationErrors(err))
	}

	role, err := rolecontroller.Update(s.db, id, in.Name, in.Permissions)
	if err != nil {
		return mapControllerError(c, err, "Failed to update role")
	}

	s.auth.InvalidateCache()

	return handler.Data(c, fiber.StatusOK, "Role updated successfully", role)
}

// Delete removes a role and its permission links. The Super Admin
// role is protected.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Role not found")
	}

	if err := rolecontroller.Delete(s.db, id); err != nil {
		return mapControllerError(c, err, "Failed to delete role")
	}

	s.auth.InvalidateCache()

	return handler.Message(c, fiber.StatusOK, "Role deleted successfully")
}

// Permissions lists every permission assignable to a role.
func (s *Service) Permissions(c *fiber.Ctx) error {
	permissions, err := rolecontroller.ListPermissions(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list permissions")
		return handler.Internal(c, "Failed to load permissions")
	}

	return handler.Data(c, fiber.StatusOK, "", permissions)
}
