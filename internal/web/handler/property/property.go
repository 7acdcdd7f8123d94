// Package property provides the multipart CRUD handlers for property
// listings. It carries the most involved asset lifecycle of the API:
// an image and a brochure can both arrive with a create or update.
package property

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

// Path is the base path for property management.
const Path = handler.RootPath + "properties"

// Service provides CRUD operations for properties.
type Service struct {
	cfg           *config.Config
	repo          *repo.Repo[models.Property]
	builders      *repo.Repo[models.Builder]
	categories    *repo.Repo[models.Category]
	propertyTypes *repo.Repo[models.PropertyType]
	store         *assets.Store
	validator     *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Update is a POST so multipart clients can
// replace the image and brochure in the same request.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.validator = handler.NewValidator()
	s.store = assets.NewStore(cfg.Assets.Root)
	s.repo = repo.New[models.Property](db, repo.Config{
		Preloads:      []string{"Builder", "Category", "PropertyType"},
		DefaultOrder:  "id DESC",
		SearchColumns: []string{"name", "address"},
		FilterColumns: []string{"builder_id", "category_id", "property_type_id", "status"},
	})
	s.builders = repo.New[models.Builder](db, repo.Config{})
	s.categories = repo.New[models.Category](db, repo.Config{})
	s.propertyTypes = repo.New[models.PropertyType](db, repo.Config{})

	app.Get(Path,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermPropertyList),
		s.List,
	)
	app.Post(Path,
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermPropertyCreate),
		s.Create,
	)
	app.Get(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermPropertyList),
		s.Show,
	)
	app.Post(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermPropertyEdit),
		s.Update,
	)
	app.Delete(Path+"/:id",
		auth.RequireAuth(authService),
		auth.RequirePermission(authService, auth.PermPropertyDelete),
		s.Delete,
	)
}

type payload struct {
	BuilderID      uint     `form:"builder_id"       validate:"required"`
	CategoryID     uint     `form:"category_id"      validate:"required"`
	PropertyTypeID uint     `form:"property_type_id" validate:"required"`
	Name           string   `form:"name"             validate:"required,max=255"`
	SqFeet         string   `form:"sq_feet"          validate:"omitempty,max=255"`
	StartingPrice  float64  `form:"starting_price"   validate:"required,min=0"`
	EndingPrice    *float64 `form:"ending_price"     validate:"omitempty,min=0"`
	Address        string   `form:"address"          validate:"omitempty"`
	Latitude       string   `form:"latitude"         validate:"omitempty,max=255"`
	Longitude      string   `form:"longitude"        validate:"omitempty,max=255"`
	YoutubeLink    string   `form:"youtube_link"     validate:"omitempty,url"`
	AdditionalNote string   `form:"additional_note"  validate:"omitempty"`
	Status         string   `form:"status"           validate:"required,oneof=active inactive"`
}

// validate runs struct validation and the referenced-record probes.
func (s *Service) validate(in payload) (map[string]string, error) {
	if err := s.validator.Struct(in); err != nil {
		return handler.FormatValidationErrors(err), nil
	}

	exists, err := s.builders.Exists(in.BuilderID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return map[string]string{"builder_id": "Builder not found"}, nil
	}

	exists, err = s.categories.Exists(in.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return map[string]string{"category_id": "The selected category id is invalid"}, nil
	}

	exists, err = s.propertyTypes.Exists(in.PropertyTypeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return map[string]string{"property_type_id": "The selected property type id is invalid"}, nil
	}

	return nil, nil
}

// saveUpload stores one optional upload under the given kind, mapping
// validation failures to a field-keyed error.
func (s *Service) saveUpload(c *fiber.Ctx, field string, kind assets.Kind, message string) (string, map[string]string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, nil
	}

	name, err := s.store.Save(fh, kind)
	if err != nil {
		if errors.Is(err, assets.ErrUnsupportedFormat) || errors.Is(err, assets.ErrFileTooLarge) {
			return "", map[string]string{field: message}, nil
		}

		return "", nil, err
	}

	return name, nil, nil
}

// List returns a page of properties with their builder, category and
// property type. Listing is always paginated; per_page defaults to 10.
func (s *Service) List(c *fiber.Ctx) error {
	q := repo.Query{
		Search:  c.Query("search"),
		Filters: map[string]any{},
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", repo.DefaultPerPage),
	}

	if builderID := c.QueryInt("builder_id", 0); builderID > 0 {
		q.Filters["builder_id"] = builderID
	}

	if categoryID := c.QueryInt("category_id", 0); categoryID > 0 {
		q.Filters["category_id"] = categoryID
	}

	if propertyTypeID := c.QueryInt("property_type_id", 0); propertyTypeID > 0 {
		q.Filters["property_type_id"] = propertyTypeID
	}

	if status := c.Query("status"); status != "" {
		q.Filters["status"] = status
	}

	page, err := s.repo.ListPage(q)
	if err != nil {
		log.Error().Err(err).Msg("failed to list properties")
		return handler.Internal(c, "Failed to load properties")
	}

	return handler.Results(c, fiber.StatusOK, "", page)
}

// Create validates, stores the uploads and inserts a property. Any
// file already moved is removed again when a later step fails.
func (s *Service) Create(c *fiber.Ctx) error {
	var in payload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	errs, err := s.validate(in)
	if err != nil {
		log.Error().Err(err).Msg("property validation failed")
		return handler.Internal(c, "Failed to create property")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	image, errs, err := s.saveUpload(c, "image", assets.PropertyImage,
		"The image must be an image no larger than 2 MB")
	if err != nil {
		log.Error().Err(err).Msg("failed to store property image")
		return handler.Internal(c, "Failed to create property")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	brochure, errs, err := s.saveUpload(c, "brochure", assets.PropertyBrochure,
		"The brochure must be a pdf, doc or docx no larger than 5 MB")
	if err != nil || errs != nil {
		if image != "" {
			s.store.Remove(assets.PropertyImage, image)
		}

		if err != nil {
			log.Error().Err(err).Msg("failed to store property brochure")
			return handler.Internal(c, "Failed to create property")
		}

		return handler.ValidationFailed(c, errs)
	}

	property := models.Property{
		BuilderID:      in.BuilderID,
		CategoryID:     &in.CategoryID,
		PropertyTypeID: &in.PropertyTypeID,
		Name:           in.Name,
		SqFeet:         in.SqFeet,
		StartingPrice:  in.StartingPrice,
		EndingPrice:    in.EndingPrice,
		Image:          image,
		Address:        in.Address,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		YoutubeLink:    in.YoutubeLink,
		Brochure:       brochure,
		AdditionalNote: in.AdditionalNote,
		Status:         models.Status(in.Status),
	}

	if err := s.repo.Create(&property); err != nil {
		if image != "" {
			s.store.Remove(assets.PropertyImage, image)
		}
		if brochure != "" {
			s.store.Remove(assets.PropertyBrochure, brochure)
		}

		log.Error().Err(err).Msg("failed to create property")

		return handler.Internal(c, "Failed to create property")
	}

	created, err := s.repo.Get(property.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload property")
		return handler.Internal(c, "Failed to create property")
	}

	return handler.Results(c, fiber.StatusCreated, "Property created successfully", created)
}

// Show returns one property with its relations.
func (s *Service) Show(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Property not found")
	}

	property, err := s.repo.Get(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "Property not found")
		}

		log.Error().Err(err).Msg("failed to load property")

		return handler.Internal(c, "Failed to load property")
	}

	return handler.Results(c, fiber.StatusOK, "", property)
}

// Update re-validates and persists a property. Replacement uploads are
// stored first; the previous files are removed only once the new ones
// are safely on disk and the row is updated.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Property not found")
	}

	property, err := s.repo.Get(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "Property not found")
		}

		log.Error().Err(err).Msg("failed to load property")

		return handler.Internal(c, "Failed to load property")
	}

	var in payload
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	errs, err := s.validate(in)
	if err != nil {
		log.Error().Err(err).Msg("property validation failed")
		return handler.Internal(c, "Failed to update property")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	image, errs, err := s.saveUpload(c, "image", assets.PropertyImage,
		"The image must be an image no larger than 2 MB")
	if err != nil {
		log.Error().Err(err).Msg("failed to store property image")
		return handler.Internal(c, "Failed to update property")
	}

	if errs != nil {
		return handler.ValidationFailed(c, errs)
	}

	brochure, errs, err := s.saveUpload(c, "brochure", assets.PropertyBrochure,
		"The brochure must be a pdf, doc or docx no larger than 5 MB")
	if err != nil || errs != nil {
		if image != "" {
			s.store.Remove(assets.PropertyImage, image)
		}

		if err != nil {
			log.Error().Err(err).Msg("failed to store property brochure")
			return handler.Internal(c, "Failed to update property")
		}

		return handler.ValidationFailed(c, errs)
	}

	fields := map[string]any{
		"builder_id":       in.BuilderID,
		"category_id":      in.CategoryID,
		"property_type_id": in.PropertyTypeID,
		"name":             in.Name,
		"sq_feet":          in.SqFeet,
		"starting_price":   in.StartingPrice,
		"ending_price":     in.EndingPrice,
		"address":          in.Address,
		"latitude":         in.Latitude,
		"longitude":        in.Longitude,
		"youtube_link":     in.YoutubeLink,
		"additional_note":  in.AdditionalNote,
		"status":           in.Status,
	}
	if image != "" {
		fields["image"] = image
	}
	if brochure != "" {
		fields["brochure"] = brochure
	}

	if err := s.repo.Update(id, fields); err != nil {
		if image != "" {
			s.store.Remove(assets.PropertyImage, image)
		}
		if brochure != "" {
			s.store.Remove(assets.PropertyBrochure, brochure)
		}

		log.Error().Err(err).Msg("failed to update property")

		return handler.Internal(c, "Failed to update property")
	}

	if image != "" && property.Image != "" {
		s.store.Remove(assets.PropertyImage, property.Image)
	}

	if brochure != "" && property.Brochure != "" {
		s.store.Remove(assets.PropertyBrochure, property.Brochure)
	}

	updated, err := s.repo.Get(id)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload property")
		return handler.Internal(c, "Failed to update property")
	}

	return handler.Results(c, fiber.StatusOK, "Property updated successfully", updated)
}

// Delete removes a property and its stored files.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c)
	if !ok {
		return handler.NotFound(c, "Property not found")
	}

	property, err := s.repo.Get(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return handler.NotFound(c, "Property not found")
		}

		log.Error().Err(err).Msg("failed to load property")

		return handler.Internal(c, "Failed to load property")
	}

	if err := s.repo.Delete(id); err != nil {
		log.Error().Err(err).Msg("failed to delete property")
		return handler.Internal(c, "Failed to delete property")
	}

	if property.Image != "" {
		s.store.Remove(assets.PropertyImage, property.Image)
	}

	if property.Brochure != "" {
		s.store.Remove(assets.PropertyBrochure, property.Brochure)
	}

	return handler.Message(c, fiber.StatusOK, "Property deleted successfully")
}
