// Package propertytype provides the JSON CRUD handlers for property types.
package propertytype

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/estatedesk/estatedesk/internal/auth"
	"github.com/estatedesk/estatedesk/internal/config"
	"github.com/estatedesk/estatedesk/internal/db/models"
	"github.com/estatedesk/estatedesk/internal/db/repo"
	"github.com/estatedesk/estatedesk/internal/web/handler"
)

// Path is the base path for property type management.
const Path = handler.RootPath + "property-types"

// Service provides CRUD operations for property types.
type Service struct {
	cfg        *config.Config
	repo       *repo.Repo[models.PropertyType]
	categories *repo.Repo[models.Category]
	validator  *validator.Validate
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
	s.validator = handler.NewValidator()
	s.repo = repo.New[models.PropertyType](db, repo.Config{
		Preloads:      []string{"Category"},
		DefaultOrder:  "name ASC",
		SearchColumns: []string{"name"},
		FilterColumns: []string{"status", "category_id"},
	})
	s.categories = repo.New[models.Category](db, repo.Config{})

	app.Get(Path,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermPropertyTypeList),
		s.List,
	)
	app.Post(Path,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermPropertyTypeCreate),
		s.Create,
	)
	app.Get(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermPropertyTypeList),
		s.Show,
	)
	app.Put(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermPropertyTypeEdit),
		s.Update,
	)
	app.Delete(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermPropertyTypeDelete),
		s.Delete,
	)
}

type payload struct {
	Name       string `form:"name"        json:"name"        validate:"required,max=255"`
	CategoryID uint   `form:"category_id" json:"category_id" validate:"required"`
	Status     string `form:"status"      json:"status"      validate:"omitempty,oneof=active inactive"`
}

// validate runs struct validation and the category existence probe.
func (s *Service) validate(in payload) (map[string]string, error) {
	if err := s.validator.Struct(in); err != nil {
		return handler.FormatValidationErrors(err), nil
	}

	exists, err := s.categories.Exists(in.CategoryID)
	if err != nil {
		return nil, err
	}

	if !exists {
		return map[string]string{"category_id": "The selected category id is invalid"}, nil
	}

	return nil, nil
}

// List returns property types filtered by search/status/category.
func (s *Service) List(c *fiber.Ctx) error {
	q := repo.Query{
		Search:  c.Query("search"),
		Filters: map[string]any{},
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", 0),
	}

	if status := c.Query("status"); status != "" {
		q.Filters["status"] = status
	}

	if categoryID := c.QueryInt("category_id", 0); categoryID > 0 {
		q.Filters["category_id"] = categoryID
	}

	if q.PerPage > 0 {
		page, err := s.repo.ListPage(q)
		if err != nil {
			log.Error().Err(err).Msg("failed to list property types")
			return handler.Internal(c, "Failed to load property types")
		}

		return handler.Results(c, fiber.StatusOK, "", page)
	}

	propertyTypes, err := s.repo.List(q)
	if err != nil {
		log.Error().Err(err).Msg("failed to list property types")
		return handler.Internal(c, "Failed to load property types")
	}

	return handler.Results(c, fiber.StatusOK, "", propertyTypes)
}

// Create validates and inserts a property type.
func (s *Service) Create(c *fiber.Ctx) error {
	var in payload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	errs, err := s.validate(in)
	if err != nil {
		log.Error().Err(err).Msg("property type validation failed")
		return handler.Internal(c, "Failed to create property type")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	propertyType := models.PropertyType{
		Name:       in.Name,
		CategoryID: &in.CategoryID,
		Status:     models.StatusActive,
	}
	if in.Status != "" {
		propertyType.Status = models.Status(in.Status)
	}

	if err := s.repo.Create(&propertyType); err != nil {
		log.Error().Err(err).Msg("failed to create property type")
		return handler.Internal(c, "Failed to create property type")
	}

	return handler.Results(c, fiber.StatusCreated, "Property type created successfully", propertyType)
}

// Show returns one property type with its category.
func (s *Service) Show(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Property type not found")
	}

	propertyType, err := s.repo.Get(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "Property type not found")
		}

		log.Error().Err(err).Msg("failed to load property type")

		return handler.Internal(c, "Failed to load property type")
	}

	return handler.Results(c, fiber.StatusOK, "", propertyType)
}

// Update re-validates and persists a property type.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Property type not found")
	}

	if _, err := s.repo.Get(id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "Property type not found")
		}

		log.Error().Err(err).Msg("failed to load property type")

		return handler.Internal(c, "Failed to load property type")
	}

	var in payload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	errs, err := s.validate(in)
	if err != nil {
		log.Error().Err(err).Msg("property type validation failed")
		return handler.Internal(c, "Failed to update property type")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	fields := map[string]any{
		"name":        in.Name,
		"category_id": in.CategoryID,
	}
	if in.Status != "" {
		fields["status"] = in.Status
	}

	if err := s.repo.Update(id, fields); err != nil {
		log.Error().Err(err).Msg("failed to update property type")
		return handler.Internal(c, "Failed to update property type")
	}

	propertyType, err := s.repo.Get(id)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload property type")
		return handler.Internal(c, "Failed to update property type")
	}

	return handler.Results(c, fiber.StatusOK, "Property type updated successfully", propertyType)
}

// Delete removes a property type. Properties that referenced it keep
// their rows with the reference nulled by the schema.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Property type not found")
	}

	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "Property type not found")
		}

		log.Error().Err(err).Msg("failed to delete property type")

		return handler.Internal(c, "Failed to delete property type")
	}

	return handler.Message(c, fiber.StatusOK, "Property type deleted successfully")
}
