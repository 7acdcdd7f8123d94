// Package repo implements a generic resource repository. Every CRM
// entity shares the same persistence contract (filtered listing with a
// fixed default order, eager relation loading, uniqueness probes with
// self-exclusion, single-row create/update/delete); this package
// implements it once, parameterized by a per-entity Config, instead of
// repeating the control flow per entity.
package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// DefaultPerPage is the page size ListPage falls back to when the query
// carries none. Client-supplied values below 1 are clamped to it.
const DefaultPerPage = 10

// Config is the per-entity parameterization of the repository.
type Config struct {
	// Preloads are the relations eagerly loaded on Get and List.
	Preloads []string
	// DefaultOrder is the fixed per-entity ordering (clients can not override it).
	DefaultOrder string
	// SearchColumns are substring-matched against the search term, OR-combined.
	SearchColumns []string
	// FilterColumns is the allow-list of exact-match filter columns.
	FilterColumns []string
}

// Query carries the allow-listed list parameters.
type Query struct {
	// Search is a substring matched against the entity's search columns.
	Search string
	// Filters maps column name to exact-match value. Columns outside the
	// entity's allow-list are ignored.
	Filters map[string]any
	// Page is the 1-based page number, used only when PerPage is set.
	Page int
	// PerPage is the page size. List ignores it and returns the full
	// filtered set; ListPage clamps values below 1 to DefaultPerPage.
	PerPage int
}

// Paginated mirrors the envelope shape of a paginated listing.
type Paginated[T any] struct {
	CurrentPage int   `json:"current_page"`
	Data        []T   `json:"data"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// Repo provides CRUD operations for one entity type.
type Repo[T any] struct {
	db  *gorm.DB
	cfg Config
}

// New creates a repository for entity type T with the given configuration.
func New[T any](db *gorm.DB, cfg Config) *Repo[T] {
	return &Repo[T]{db: db, cfg: cfg}
}

// DB exposes the underlying connection for callers that need one-off queries.
func (r *Repo[T]) DB() *gorm.DB {
	return r.db
}

func (r *Repo[T]) scope(q Query) *gorm.DB {
	tx := r.db.Model(new(T))

	if q.Search != "" && len(r.cfg.SearchColumns) > 0 {
		like := "%" + q.Search + "%"

		cond := r.db
		for _, col := range r.cfg.SearchColumns {
			cond = cond.Or(col+" LIKE ?", like)
		}

		tx = tx.Where(cond)
	}

	for _, col := range r.cfg.FilterColumns {
		if v, ok := q.Filters[col]; ok {
			tx = tx.Where(col+" = ?", v)
		}
	}

	return tx
}

func (r *Repo[T]) preload(tx *gorm.DB) *gorm.DB {
	for _, p := range r.cfg.Preloads {
		tx = tx.Preload(p)
	}

	return tx
}

// List returns the full filtered set in the entity's default order.
// There is deliberately no implicit cap: callers wanting pagination use ListPage.
func (r *Repo[T]) List(q Query) ([]T, error) {
	if r.db == nil {
		return nil, ErrDBNil
	}

	var records []T

	tx := r.preload(r.scope(q)).Order(r.cfg.DefaultOrder)
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

// ListPage returns one page of the filtered set plus paging metadata.
func (r *Repo[T]) ListPage(q Query) (*Paginated[T], error) {
	if r.db == nil {
		return nil, ErrDBNil
	}

	if q.Page < 1 {
		q.Page = 1
	}

	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}

	var total int64
	if err := r.scope(q).Count(&total).Error; err != nil {
		return nil, err
	}

	lastPage := int((total + int64(q.PerPage) - 1) / int64(q.PerPage))
	if lastPage == 0 {
		lastPage = 1
	}

	var records []T

	offset := (q.Page - 1) * q.PerPage

	tx := r.preload(r.scope(q)).Order(r.cfg.DefaultOrder).Limit(q.PerPage).Offset(offset)
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}

	return &Paginated[T]{
		CurrentPage: q.Page,
		Data:        records,
		LastPage:    lastPage,
		PerPage:     q.PerPage,
		Total:       total,
	}, nil
}

// Get fetches one record by id with its declared relations eagerly loaded.
func (r *Repo[T]) Get(id uint) (*T, error) {
	if r.db == nil {
		return nil, ErrDBNil
	}

	var record T

	result := r.preload(r.db).First(&record, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, result.Error
	}

	return &record, nil
}

// Create inserts a new record.
func (r *Repo[T]) Create(record *T) error {
	if r.db == nil {
		return ErrDBNil
	}

	return r.db.Create(record).Error
}

// Update persists only the given fields of the record identified by id.
func (r *Repo[T]) Update(id uint, fields map[string]any) error {
	if r.db == nil {
		return ErrDBNil
	}

	result := r.db.Model(new(T)).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// distinguish a missing row from a no-op update
		var probe T
		if err := r.db.First(&probe, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return err
		}
	}

	return nil
}

// Delete removes the record with the given id.
func (r *Repo[T]) Delete(id uint) error {
	if r.db == nil {
		return ErrDBNil
	}

	result := r.db.Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Taken reports whether another record already holds value in column.
// excludeID carves the record itself out of the uniqueness scope on
// updates; pass zero on create. The match is case-sensitive and exact.
func (r *Repo[T]) Taken(column string, value any, excludeID uint) (bool, error) {
	if r.db == nil {
		return false, ErrDBNil
	}

	var count int64

	tx := r.db.Model(new(T)).Where(column+" = ?", value)
	if excludeID != 0 {
		tx = tx.Where("id <> ?", excludeID)
	}

	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// Exists reports whether a record with the given id exists. Used as the
// foreign-key probe during validation of referencing payloads.
func (r *Repo[T]) Exists(id uint) (bool, error) {
	if r.db == nil {
		return false, ErrDBNil
	}

	var count int64
	if err := r.db.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
