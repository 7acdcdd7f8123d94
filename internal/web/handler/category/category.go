// Package category provides the JSON CRUD handlers for property categories.
package category

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

// Path is the base path for category management.
const Path = handler.RootPath + "categories"

// Service provides CRUD operations for categories.
type Service struct {
	cfg       *config.Config
	repo      *repo.Repo[models.Category]
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
	s.validator = handler.NewValidator()
	s.repo = repo.New[models.Category](db, repo.Config{
		Preloads:      []string{"PropertyTypes"},
		DefaultOrder:  "name ASC",
		SearchColumns: []string{"name"},
		FilterColumns: []string{"status"},
	})

	app.Get(Path,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermCategoryList),
		s.List,
	)
	app.Post(Path,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermCategoryCreate),
		s.Create,
	)
	app.Get(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermCategoryList),
		s.Show,
	)
	app.Put(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermCategoryEdit),
		s.Update,
	)
	app.Delete(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermCategoryDelete),
		s.Delete,
	)
}

type payload struct {
	Name   string `form:"name"   json:"name"   validate:"required,max=255"`
	Status string `form:"status" json:"status" validate:"omitempty,oneof=active inactive"`
}

// List returns categories filtered by search/status. Pagination only
// applies when both page and per_page are supplied; otherwise the full
// filtered set is returned.
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

	if q.PerPage > 0 {
		page, err := s.repo.ListPage(q)
		if err != nil {
			log.Error().Err(err).Msg("failed to list categories")
			return handler.Internal(c, "Failed to load categories")
		}

		return handler.Results(c, fiber.StatusOK, "", page)
	}

	categories, err := s.repo.List(q)
	if err != nil {
		log.Error().Err(err).Msg("failed to list categories")
		return handler.Internal(c, "Failed to load categories")
	}

	return handler.Results(c, fiber.StatusOK, "", categories)
}

// Create validates and inserts a category.
func (s *Service) Create(c *fiber.Ctx) error {
	var in payload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFailed(c, handler.FormatValidationErrors(err))
	}

	taken, err := s.repo.Taken("name", in.Name, 0)
	if err != nil {
		log.Error().Err(err).Msg("category uniqueness check failed")
		return handler.Internal(c, "Failed to create category")
	}

	if taken {
		return handler.ValidationFailed(c, map[string]string{"name": "The name has already been taken"})
	}

	category := models.Category{
		Name:   in.Name,
		Status: models.StatusActive,
	}
	if in.Status != "" {
		category.Status = models.Status(in.Status)
	}

	if err := s.repo.Create(&category); err != nil {
		log.Error().Err(err).Msg("failed to create category")
		return handler.Internal(c, "Failed to create category")
	}

	return handler.Results(c, fiber.StatusCreated, "Category created successfully", category)
}

// Show returns one category with its property types.
func (s *Service) Show(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Category not found")
	}

	category, err := s.repo.Get(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "Category not found")
		}

		log.Error().Err(err).Msg("failed to load category")

		return handler.Internal(c, "Failed to load category")
	}

	return handler.Results(c, fiber.StatusOK, "", category)
}

// Update re-validates and persists a category.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Category not found")
	}

	if _, err := s.repo.Get(id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "Category not found")
		}

		log.Error().Err(err).Msg("failed to load category")

		return handler.Internal(c, "Failed to load category")
	}

	var in payload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFailed(c, handler.FormatValidationErrors(err))
	}

	taken, err := s.repo.Taken("name", in.Name, id)
	if err != nil {
		log.Error().Err(err).Msg("category uniqueness check failed")
		return handler.Internal(c, "Failed to update category")
	}

	if taken {
		return handler.ValidationFailed(c, map[string]string{"name": "The name has already been taken"})
	}

	fields := map[string]any{"name": in.Name}
	if in.Status != "" {
		fields["status"] = in.Status
	}

	if err := s.repo.Update(id, fields); err != nil {
		log.Error().Err(err).Msg("failed to update category")
		return handler.Internal(c, "Failed to update category")
	}

	category, err := s.repo.Get(id)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload category")
		return handler.Internal(c, "Failed to update category")
	}

	return handler.Results(c, fiber.StatusOK, "Category updated successfully", category)
}

// Delete removes a category. Dependent property types and properties
// keep their rows with the reference nulled by the schema.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Category not found")
	}

	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "Category not found")
		}

		log.Error().Err(err).Msg("failed to delete category")

		return handler.Internal(c, "Failed to delete category")
	}

	return handler.Message(c, fiber.StatusOK, "Category deleted successfully")
}
