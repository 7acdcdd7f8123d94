// Package user provides the multipart CRUD handlers for accounts.
// Create and update run in a transaction so the account row and its
// role assignment land together or not at all.
package user

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/estatedesk/estatedesk/internal/assets"
	"github.com/estatedesk/estatedesk/internal/auth"
	"github.com/estatedesk/estatedesk/internal/config"
	"github.com/estatedesk/estatedesk/internal/db/models"
	"github.com/estatedesk/estatedesk/internal/db/repo"
	"github.com/estatedesk/estatedesk/internal/web/handler"
)

// Path is the base path for user management.
const Path = handler.RootPath + "users"

// Service provides CRUD operations for users.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	repo      *repo.Repo[models.User]
	store     *assets.Store
	auth      *auth.Service
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Update is a POST so multipart clients can
// replace the profile image in the same request.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.auth = authService
	s.validator = handler.NewValidator()
	s.store = assets.NewStore(cfg.Assets.Root)
	s.repo = repo.New[models.User](db, repo.Config{
		Preloads:     []string{"Roles"},
		DefaultOrder: "id ASC",
	})

	app.Get(Path,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermUserList),
		s.List,
	)
	app.Post(Path,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermUserCreate),
		s.Create,
	)
	app.Get(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermUserList),
		s.Show,
	)
	app.Post(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermUserEdit),
		s.Update,
	)
	app.Delete(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermUserDelete),
		s.Delete,
	)
}

type createPayload struct {
	Name          string `form:"name"           validate:"required,max=255"`
	Email         string `form:"email"          validate:"required,email"`
	Password      string `form:"password"       validate:"required,min=6"`
	ContactNumber string `form:"contact_number" validate:"omitempty,len=10"`
	Address       string `form:"address"        validate:"omitempty"`
	Status        string `form:"status"         validate:"required,oneof=active inactive"`
	Role          string `form:"role"           validate:"required"`
}

type updatePayload struct {
	Name          string `form:"name"           validate:"required,max=255"`
	Email         string `form:"email"          validate:"required,email"`
	Password      string `form:"password"       validate:"omitempty,min=6"`
	ContactNumber string `form:"contact_number" validate:"omitempty,len=10"`
	Address       string `form:"address"        validate:"omitempty"`
	Status        string `form:"status"         validate:"required,oneof=active inactive"`
	Role          string `form:"role"           validate:"required"`
}

// roleExists probes the roles table by name.
func (s *Service) roleExists(name string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// checkEmailAndRole runs the shared uniqueness and role probes.
func (s *Service) checkEmailAndRole(email, role string, excludeID uint) (map[string]string, error) {
	taken, err := s.repo.Taken("email", email, excludeID)
	if err != nil {
		return nil, err
	}

	if taken {
		return map[string]string{"email": "The email has already been taken"}, nil
	}

	exists, err := s.roleExists(role)
	if err != nil {
		return nil, err
	}

	if !exists {
		return map[string]string{"role": "The selected role is invalid"}, nil
	}

	return nil, nil
}

// saveProfileImage stores the uploaded image, mapping validation
// failures to a field-keyed error.
func (s *Service) saveProfileImage(c *fiber.Ctx) (string, map[string]string, error) {
	fh, err := c.FormFile("profile_image")
	if err != nil {
		return "", nil, nil
	}

	name, err := s.store.Save(fh, assets.UserProfileImage)
	if err != nil {
		if errors.Is(err, assets.ErrUnsupportedFormat) || errors.Is(err, assets.ErrFileTooLarge) {
			return "", map[string]string{"profile_image": "The profile image must be an image no larger than 2 MB"}, nil
		}

		return "", nil, err
	}

	return name, nil, nil
}

// List returns all users with their roles.
func (s *Service) List(c *fiber.Ctx) error {
	users, err := s.repo.List(repo.Query{})
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		return handler.Internal(c, "Failed to load users")
	}

	return handler.Data(c, fiber.StatusOK, "", users)
}

// Create validates, stores the profile image and inserts the user and
// its role assignment in one transaction.
func (s *Service) Create(c *fiber.Ctx) error {
	var in createPayload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFailed(c, handler.FormatValidationErrors(err))
	}

	errs, err := s.checkEmailAndRole(in.Email, in.Role, 0)
	if err != nil {
		log.Error().Err(err).Msg("user validation failed")
		return handler.Internal(c, "Failed to create user")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	image, errs, err := s.saveProfileImage(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to store profile image")
		return handler.Internal(c, "Failed to create user")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	user := models.User{
		Name:          in.Name,
		Email:         in.Email,
		Password:      models.HashPassword(in.Password),
		ContactNumber: in.ContactNumber,
		Address:       in.Address,
		Status:        models.Status(in.Status),
		ProfileImage:  image,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		return s.auth.SyncUserRoles(tx, user.ID, []string{in.Role})
	})
	if err != nil {
		if image != "" {
			s.store.Remove(assets.UserProfileImage, image)
		}

		log.Error().Err(err).Msg("failed to create user")

		return handler.Internal(c, "Failed to create user")
	}

	created, err := s.repo.Get(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload user")
		return handler.Internal(c, "Failed to create user")
	}

	return handler.Data(c, fiber.StatusCreated, "User created successfully", created)
}

// Show returns one user with roles and their permissions.
func (s *Service) Show(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "User not found")
	}

	var user models.User
	err := s.db.Preload("Roles.Permissions").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return handler.NotFound(c, "User not found")
		}

		log.Error().Err(err).Msg("failed to load user")

		return handler.Internal(c, "Failed to load user")
	}

	return handler.Data(c, fiber.StatusOK, "", user)
}

// Update re-validates and persists a user. The password only changes
// when the request carries one; the role assignment is replaced in the
// same transaction as the row update.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "User not found")
	}

	user, err := s.repo.Get(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "User not found")
		}

		log.Error().Err(err).Msg("failed to load user")

		return handler.Internal(c, "Failed to load user")
	}

	var in updatePayload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFailed(c, handler.FormatValidationErrors(err))
	}

	errs, err := s.checkEmailAndRole(in.Email, in.Role, id)
	if err != nil {
		log.Error().Err(err).Msg("user validation failed")
		return handler.Internal(c, "Failed to update user")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	image, errs, err := s.saveProfileImage(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to store profile image")
		return handler.Internal(c, "Failed to update user")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	fields := map[string]any{
		"name":           in.Name,
		"email":          in.Email,
		"contact_number": in.ContactNumber,
		"address":        in.Address,
		"status":         in.Status,
	}
	if in.Password != "" {
		fields["password"] = models.HashPassword(in.Password)
	}
	if image != "" {
		fields["profile_image"] = image
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}

		return s.auth.SyncUserRoles(tx, id, []string{in.Role})
	})
	if err != nil {
		if image != "" {
			s.store.Remove(assets.UserProfileImage, image)
		}

		log.Error().Err(err).Msg("failed to update user")

		return handler.Internal(c, "Failed to update user")
	}

	if image != "" && user.ProfileImage != "" {
		s.store.Remove(assets.UserProfileImage, user.ProfileImage)
	}

	updated, err := s.repo.Get(id)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload user")
		return handler.Internal(c, "Failed to update user")
	}

	return handler.Data(c, fiber.StatusOK, "User updated successfully", updated)
}

// Delete removes a user. Holders of the Super Admin role cannot be
// deleted.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "User not found")
	}

	user, err := s.repo.Get(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "User not found")
		}

		log.Error().Err(err).Msg("failed to load user")

		return handler.Internal(c, "Failed to load user")
	}

	if user.HasRole(models.SuperAdminRoleName) {
		return handler.Forbidden(c, "Super Admin cannot be deleted")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to delete user")
		return handler.Internal(c, "Failed to delete user")
	}

	s.auth.InvalidateCache()

	if user.ProfileImage != "" {
		s.store.Remove(assets.UserProfileImage, user.ProfileImage)
	}

	return handler.Message(c, fiber.StatusOK, "User deleted successfully")
}
