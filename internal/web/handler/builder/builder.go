// Package builder provides the multipart CRUD handlers for builders.
package builder

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

// Path is the base path for builder management.
const Path = handler.RootPath + "builders"

// Service provides CRUD operations for builders.
type Service struct {
	cfg       *config.Config
	repo      *repo.Repo[models.Builder]
	store     *assets.Store
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Update is a POST so multipart clients can
// replace the logo in the same request.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.validator = handler.NewValidator()
	s.store = assets.NewStore(cfg.Assets.Root)
	s.repo = repo.New[models.Builder](db, repo.Config{
		DefaultOrder: "id DESC",
	})

	app.Get(Path,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermBuilderList),
		s.List,
	)
	app.Post(Path,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermBuilderCreate),
		s.Create,
	)
	app.Get(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermBuilderList),
		s.Show,
	)
	app.Post(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermBuilderEdit),
		s.Update,
	)
	app.Delete(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermBuilderDelete),
		s.Delete,
	)
}

type payload struct {
	CompanyName           string `form:"company_name"            validate:"required,max=255"`
	Name                  string `form:"name"                    validate:"required,max=255"`
	Experience            string `form:"experience"              validate:"omitempty"`
	Status                string `form:"status"                  validate:"required,oneof=active inactive"`
	ContactNumber         string `form:"contact_number"          validate:"required,max=20"`
	Email                 string `form:"email"                   validate:"required,email"`
	Website               string `form:"website"                 validate:"omitempty,url"`
	OfficeAddress         string `form:"office_address"          validate:"required"`
	TotalProjectCompleted int    `form:"total_project_completed" validate:"omitempty,min=0"`
	OngoingProjects       int    `form:"ongoing_projects"        validate:"omitempty,min=0"`
}

// validate runs struct validation plus the email uniqueness probe.
// excludeID skips the record being updated.
func (s *Service) validate(in payload, excludeID uint) (map[string]string, error) {
	if err := s.validator.Struct(in); err != nil {
		return handler.FormatValidationErrors(err), nil
	}

	taken, err := s.repo.Taken("email", in.Email, excludeID)
	if err != nil {
		return nil, err
	}

	if taken {
		return map[string]string{"email": "The email has already been taken"}, nil
	}

	return nil, nil
}

// saveLogo stores the uploaded logo, mapping validation failures to a
// field-keyed error. Returns the stored filename, or "" when the
// request carries no logo.
func (s *Service) saveLogo(c *fiber.Ctx) (string, map[string]string, error) {
	fh, err := c.FormFile("company_logo")
	if err != nil {
		return "", nil, nil
	}

	name, err := s.store.Save(fh, assets.BuilderLogo)
	if err != nil {
		if errors.Is(err, assets.ErrUnsupportedFormat) || errors.Is(err, assets.ErrFileTooLarge) {
			return "", map[string]string{"company_logo": "The company logo must be an image no larger than 2 MB"}, nil
		}

		return "", nil, err
	}

	return name, nil, nil
}

// List returns all builders, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	builders, err := s.repo.List(repo.Query{})
	if err != nil {
		log.Error().Err(err).Msg("failed to list builders")
		return handler.Internal(c, "Failed to load builders")
	}

	return handler.Data(c, fiber.StatusOK, "", builders)
}

// Create validates, stores the logo and inserts a builder. A failed
// insert removes the just-stored logo again.
func (s *Service) Create(c *fiber.Ctx) error {
	var in payload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	errs, err := s.validate(in, 0)
	if err != nil {
		log.Error().Err(err).Msg("builder validation failed")
		return handler.Internal(c, "Failed to create builder")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	logo, errs, err := s.saveLogo(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to store builder logo")
		return handler.Internal(c, "Failed to create builder")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	builder := models.Builder{
		CompanyName:           in.CompanyName,
		Name:                  in.Name,
		CompanyLogo:           logo,
		Experience:            in.Experience,
		Status:                models.Status(in.Status),
		ContactNumber:         in.ContactNumber,
		Email:                 in.Email,
		Website:               in.Website,
		OfficeAddress:         in.OfficeAddress,
		TotalProjectCompleted: in.TotalProjectCompleted,
		OngoingProjects:       in.OngoingProjects,
	}

	if err := s.repo.Create(&builder); err != nil {
		if logo != "" {
			s.store.Remove(assets.BuilderLogo, logo)
		}

		log.Error().Err(err).Msg("failed to create builder")

		return handler.Internal(c, "Failed to create builder")
	}

	return handler.Data(c, fiber.StatusCreated, "Builder created successfully", builder)
}

// Show returns one builder.
func (s *Service) Show(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Builder not found")
	}

	builder, err := s.repo.Get(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "Builder not found")
		}

		log.Error().Err(err).Msg("failed to load builder")

		return handler.Internal(c, "Failed to load builder")
	}

	return handler.Data(c, fiber.StatusOK, "", builder)
}

// Update re-validates and persists a builder. A replacement logo is
// stored first; the previous file is removed only once the new one is
// safely on disk.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Builder not found")
	}

	builder, err := s.repo.Get(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "Builder not found")
		}

		log.Error().Err(err).Msg("failed to load builder")

		return handler.Internal(c, "Failed to load builder")
	}

	var in payload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	errs, err := s.validate(in, id)
	if err != nil {
		log.Error().Err(err).Msg("builder validation failed")
		return handler.Internal(c, "Failed to update builder")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	logo, errs, err := s.saveLogo(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to store builder logo")
		return handler.Internal(c, "Failed to update builder")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	fields := map[string]any{
		"company_name":            in.CompanyName,
		"name":                    in.Name,
		"experience":              in.Experience,
		"status":                  in.Status,
		"contact_number":          in.ContactNumber,
		"email":                   in.Email,
		"website":                 in.Website,
		"office_address":          in.OfficeAddress,
		"total_project_completed": in.TotalProjectCompleted,
		"ongoing_projects":        in.OngoingProjects,
	}
	if logo != "" {
		fields["company_logo"] = logo
	}

	if err := s.repo.Update(id, fields); err != nil {
		if logo != "" {
			s.store.Remove(assets.BuilderLogo, logo)
		}

		log.Error().Err(err).Msg("failed to update builder")

		return handler.Internal(c, "Failed to update builder")
	}

	if logo != "" && builder.CompanyLogo != "" {
		s.store.Remove(assets.BuilderLogo, builder.CompanyLogo)
	}

	updated, err := s.repo.Get(id)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload builder")
		return handler.Internal(c, "Failed to update builder")
	}

	return handler.Data(c, fiber.StatusOK, "Builder updated successfully", updated)
}

// Delete removes a builder and its stored logo.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Builder not found")
	}

	builder, err := s.repo.Get(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "Builder not found")
		}

		log.Error().Err(err).Msg("failed to load builder")

		return handler.Internal(c, "Failed to load builder")
	}

	if err := s.repo.Delete(id); err != nil {
		log.Error().Err(err).Msg("failed to delete builder")
		return handler.Internal(c, "Failed to delete builder")
	}

	if builder.CompanyLogo != "" {
		s.store.Remove(assets.BuilderLogo, builder.CompanyLogo)
	}

	return handler.Message(c, fiber.StatusOK, "Builder deleted successfully")
}
