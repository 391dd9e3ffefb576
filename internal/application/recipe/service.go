// Package recipe provides the application layer for recipe management
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/application/errmap"
	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/ports/inbound"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
	"github.com/alchemorsel/foodgram/pkg/errors"
)

// Pagination bounds list requests
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// RecipeService implements the recipe use cases
type RecipeService struct {
	recipeRepo     outbound.RecipeRepository
	ingredientRepo outbound.IngredientRepository
	tagRepo        outbound.TagRepository
	events         outbound.EventPublisher
	pagination     Pagination
	logger         *zap.Logger
	tracer         trace.Tracer
}

// NewRecipeService creates a new recipe service
func NewRecipeService(
	recipeRepo outbound.RecipeRepository,
	ingredientRepo outbound.IngredientRepository,
	tagRepo outbound.TagRepository,
	events outbound.EventPublisher,
	pagination Pagination,
	logger *zap.Logger,
) inbound.RecipeService {
	return &RecipeService{
		recipeRepo:     recipeRepo,
		ingredientRepo: ingredientRepo,
		tagRepo:        tagRepo,
		events:         events,
		pagination:     pagination,
		logger:         logger.Named("recipe-service"),
		tracer:         otel.Tracer("foodgram/application/recipe"),
	}
}

// CreateRecipe validates the draft and its references, then stores the
// recipe with all associations in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, viewer shared.Viewer, draft recipe.Draft) (view *recipe.View, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.CreateRecipe")
	defer func() { endSpan(span, err) }()

	if !viewer.IsAuthenticated() {
		return nil, errors.NewUnauthorizedError("")
	}

	recipeEntity, err := recipe.NewRecipe(viewer.UserID, draft)
	if err != nil {
		return nil, errmap.Repository("validate recipe", err)
	}
	if err := s.checkReferences(ctx, draft); err != nil {
		return nil, err
	}

	if err := s.recipeRepo.Create(ctx, recipeEntity); err != nil {
		return nil, errmap.Repository("create recipe", err)
	}
	span.SetAttributes(attribute.Int64("recipe.id", recipeEntity.ID()))

	s.events.Publish(ctx, recipeEntity.Events()...)

	s.logger.Info("Recipe created",
		zap.Int64("recipe_id", recipeEntity.ID()),
		zap.Int64("author_id", viewer.UserID),
		zap.Int("ingredients", len(draft.Ingredients)),
		zap.Int("tags", len(draft.TagIDs)),
	)

	return s.view(ctx, recipeEntity.ID(), viewer)
}

// UpdateRecipe replaces the recipe and its associations with draft. Only the
// author may update.
func (s *RecipeService) UpdateRecipe(ctx context.Context, viewer shared.Viewer, recipeID int64, draft recipe.Draft) (view *recipe.View, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.UpdateRecipe",
		trace.WithAttributes(attribute.Int64("recipe.id", recipeID)))
	defer func() { endSpan(span, err) }()

	if !viewer.IsAuthenticated() {
		return nil, errors.NewUnauthorizedError("")
	}

	recipeEntity, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return nil, s.lookupError(recipeID, err)
	}

	if err := recipeEntity.Update(viewer.UserID, draft); err != nil {
		if isNotAuthor(err) {
			return nil, errors.NewNotRecipeAuthorError(recipeID)
		}
		return nil, errmap.Repository("validate recipe", err)
	}
	if err := s.checkReferences(ctx, draft); err != nil {
		return nil, err
	}

	if err := s.recipeRepo.Update(ctx, recipeEntity); err != nil {
		return nil, errmap.Repository("update recipe", err)
	}

	s.events.Publish(ctx, recipeEntity.Events()...)

	s.logger.Info("Recipe updated",
		zap.Int64("recipe_id", recipeID),
		zap.Int64("author_id", viewer.UserID),
	)

	return s.view(ctx, recipeID, viewer)
}

// DeleteRecipe removes a recipe; junction rows cascade
func (s *RecipeService) DeleteRecipe(ctx context.Context, viewer shared.Viewer, recipeID int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.DeleteRecipe",
		trace.WithAttributes(attribute.Int64("recipe.id", recipeID)))
	defer func() { endSpan(span, err) }()

	if !viewer.IsAuthenticated() {
		return errors.NewUnauthorizedError("")
	}

	recipeEntity, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return s.lookupError(recipeID, err)
	}
	if err := recipeEntity.CanBeDeletedBy(viewer.UserID); err != nil {
		return errors.NewNotRecipeAuthorError(recipeID)
	}

	if err := s.recipeRepo.Delete(ctx, recipeID); err != nil {
		return s.lookupError(recipeID, err)
	}

	s.events.Publish(ctx, recipe.RecipeDeletedEvent{RecipeID: recipeID, DeletedAt: nowUTC()})

	s.logger.Info("Recipe deleted",
		zap.Int64("recipe_id", recipeID),
		zap.Int64("author_id", viewer.UserID),
	)
	return nil
}

// GetRecipe returns one recipe annotated for viewer
func (s *RecipeService) GetRecipe(ctx context.Context, viewer shared.Viewer, recipeID int64) (view *recipe.View, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.GetRecipe",
		trace.WithAttributes(attribute.Int64("recipe.id", recipeID)))
	defer func() { endSpan(span, err) }()

	return s.view(ctx, recipeID, viewer)
}

// ListRecipes returns one page of recipes matching filter, each annotated
// for viewer, in the default order.
func (s *RecipeService) ListRecipes(ctx context.Context, viewer shared.Viewer, filter recipe.Filter, params inbound.PaginationParams) (list *inbound.RecipeList, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.ListRecipes")
	defer func() { endSpan(span, err) }()

	criteria, err := filter.Resolve(viewer)
	if err != nil {
		return nil, errmap.Repository("resolve filter", err)
	}

	params = params.Normalize(s.pagination.DefaultLimit, s.pagination.MaxLimit)
	views, total, err := s.recipeRepo.List(ctx, criteria, viewer, outbound.Page{
		Offset: params.Offset(),
		Limit:  params.Limit,
	})
	if err != nil {
		return nil, errors.NewDatabaseError("list recipes", err)
	}

	span.SetAttributes(attribute.Int64("recipes.total", total))

	return &inbound.RecipeList{
		Recipes: views,
		Total:   total,
		Page:    params.Page,
		Limit:   params.Limit,
	}, nil
}

// checkReferences confirms every referenced ingredient and tag exists,
// reporting the first missing id in submission order.
func (s *RecipeService) checkReferences(ctx context.Context, draft recipe.Draft) error {
	ingredientIDs := draft.IngredientIDs()
	ingredients, err := s.ingredientRepo.FindByIDs(ctx, ingredientIDs)
	if err != nil {
		return errors.NewDatabaseError("load ingredients", err)
	}
	known := make(map[int64]struct{}, len(ingredients))
	for _, ingredient := range ingredients {
		known[ingredient.ID] = struct{}{}
	}
	for _, id := range ingredientIDs {
		if _, ok := known[id]; !ok {
			return errors.NewIngredientNotFoundError(id)
		}
	}

	tags, err := s.tagRepo.FindByIDs(ctx, draft.TagIDs)
	if err != nil {
		return errors.NewDatabaseError("load tags", err)
	}
	knownTags := make(map[int64]struct{}, len(tags))
	for _, tag := range tags {
		knownTags[tag.ID] = struct{}{}
	}
	for _, id := range draft.TagIDs {
		if _, ok := knownTags[id]; !ok {
			return errors.NewTagNotFoundError(id)
		}
	}

	return nil
}

func (s *RecipeService) view(ctx context.Context, recipeID int64, viewer shared.Viewer) (*recipe.View, error) {
	view, err := s.recipeRepo.GetView(ctx, recipeID, viewer)
	if err != nil {
		return nil, s.lookupError(recipeID, err)
	}
	return view, nil
}

func (s *RecipeService) lookupError(recipeID int64, err error) error {
	if isRecipeNotFound(err) {
		return errors.NewRecipeNotFoundError(recipeID)
	}
	return errmap.Repository("load recipe", err)
}
