// Package catalog serves the read-mostly tag and ingredient catalogs and
// imports them in bulk.
package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/ports/inbound"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
	"github.com/alchemorsel/foodgram/pkg/errors"
)

// Cache keys
const (
	tagsKey          = "tags:all"
	ingredientPrefix = "ingredients:"
)

// CacheTTL sets how long catalog reads stay cached
type CacheTTL struct {
	Tags        time.Duration
	Ingredients time.Duration
}

// CacheObserver is told the outcome of every cache lookup
type CacheObserver interface {
	CacheLookup(hit bool)
}

type noopObserver struct{}

func (noopObserver) CacheLookup(bool) {}

// CatalogService implements inbound.CatalogService
type CatalogService struct {
	ingredients outbound.IngredientRepository
	tags        outbound.TagRepository
	cache       outbound.CacheRepository
	ttl         CacheTTL
	observer    CacheObserver
	logger      *zap.Logger
	tracer      trace.Tracer
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	ingredients outbound.IngredientRepository,
	tags outbound.TagRepository,
	cache outbound.CacheRepository,
	ttl CacheTTL,
	observer CacheObserver,
	logger *zap.Logger,
) inbound.CatalogService {
	if observer == nil {
		observer = noopObserver{}
	}
	return &CatalogService{
		ingredients: ingredients,
		tags:        tags,
		cache:       cache,
		ttl:         ttl,
		observer:    observer,
		logger:      logger.Named("catalog-service"),
		tracer:      otel.Tracer("foodgram/application/catalog"),
	}
}

// ListTags returns every tag ordered by id
func (s *CatalogService) ListTags(ctx context.Context) (tags []recipe.Tag, err error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListTags")
	defer func() { endSpan(span, err) }()

	if s.cached(ctx, tagsKey, &tags) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return tags, nil
	}

	tags, err = s.tags.List(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list tags", err)
	}
	s.store(ctx, tagsKey, tags, s.ttl.Tags)
	return tags, nil
}

// GetTag returns one tag
func (s *CatalogService) GetTag(ctx context.Context, id int64) (*recipe.Tag, error) {
	tag, err := s.tags.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, recipe.ErrTagNotFound) {
			return nil, errors.NewTagNotFoundError(id)
		}
		return nil, errors.NewDatabaseError("load tag", err)
	}
	return tag, nil
}

// SearchIngredients returns ingredients whose name starts with namePrefix,
// ignoring case, ordered by name. An empty prefix lists the whole catalog.
func (s *CatalogService) SearchIngredients(ctx context.Context, namePrefix string) (items []recipe.Ingredient, err error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.SearchIngredients")
	defer func() { endSpan(span, err) }()

	namePrefix = strings.ToLower(strings.TrimSpace(namePrefix))
	key := ingredientPrefix + namePrefix

	if s.cached(ctx, key, &items) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return items, nil
	}

	items, err = s.ingredients.SearchByPrefix(ctx, namePrefix)
	if err != nil {
		return nil, errors.NewDatabaseError("search ingredients", err)
	}
	s.store(ctx, key, items, s.ttl.Ingredients)
	return items, nil
}

// GetIngredient returns one ingredient
func (s *CatalogService) GetIngredient(ctx context.Context, id int64) (*recipe.Ingredient, error) {
	ingredient, err := s.ingredients.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, recipe.ErrIngredientNotFound) {
			return nil, errors.NewIngredientNotFoundError(id)
		}
		return nil, errors.NewDatabaseError("load ingredient", err)
	}
	return ingredient, nil
}

// ImportIngredients inserts the valid rows that are not stored yet. Invalid
// rows are reported by their 1-based position and do not stop the import.
func (s *CatalogService) ImportIngredients(ctx context.Context, rows []inbound.IngredientRow) (report *inbound.ImportReport, err error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ImportIngredients")
	defer func() { endSpan(span, err) }()

	report = &inbound.ImportReport{Read: len(rows)}
	items := make([]recipe.Ingredient, 0, len(rows))
	for i, row := range rows {
		item, err := recipe.NewIngredient(row.Name, row.MeasurementUnit)
		if err != nil {
			report.Invalid = append(report.Invalid, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		items = append(items, item)
	}

	created, err := s.ingredients.Import(ctx, items)
	if err != nil {
		return nil, errors.NewDatabaseError("import ingredients", err)
	}
	report.Created = created
	report.Skipped = len(items) - created

	if err := s.cache.DeleteByPrefix(ctx, ingredientPrefix); err != nil {
		s.logger.Warn("Failed to invalidate ingredient cache", zap.Error(err))
	}

	s.logger.Info("Ingredients imported",
		zap.Int("read", report.Read),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("invalid", len(report.Invalid)),
	)
	return report, nil
}

// ImportTags inserts the valid tag rows that are not stored yet
func (s *CatalogService) ImportTags(ctx context.Context, rows []inbound.TagRow) (report *inbound.ImportReport, err error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ImportTags")
	defer func() { endSpan(span, err) }()

	report = &inbound.ImportReport{Read: len(rows)}
	items := make([]recipe.Tag, 0, len(rows))
	for i, row := range rows {
		tag, err := recipe.NewTag(row.Name, row.Color, row.Slug)
		if err != nil {
			report.Invalid = append(report.Invalid, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		items = append(items, tag)
	}

	created, err := s.tags.Import(ctx, items)
	if err != nil {
		return nil, errors.NewDatabaseError("import tags", err)
	}
	report.Created = created
	report.Skipped = len(items) - created

	if err := s.cache.Delete(ctx, tagsKey); err != nil {
		s.logger.Warn("Failed to invalidate tag cache", zap.Error(err))
	}

	s.logger.Info("Tags imported",
		zap.Int("read", report.Read),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("invalid", len(report.Invalid)),
	)
	return report, nil
}

// cached decodes key into dst. Cache failures count as misses.
func (s *CatalogService) cached(ctx context.Context, key string, dst interface{}) bool {
	data, err := s.cache.Get(ctx, key)
	s.observer.CacheLookup(err == nil)
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *CatalogService) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
