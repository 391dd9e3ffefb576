// Package relation implements favorites, shopping cart membership and
// subscriptions on top of the relation store.
package relation

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/application/errmap"
	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/relation"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/domain/user"
	"github.com/alchemorsel/foodgram/internal/ports/inbound"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
	"github.com/alchemorsel/foodgram/pkg/errors"
)

// RelationService implements inbound.RelationService
type RelationService struct {
	relations    outbound.RelationRepository
	recipes      outbound.RecipeRepository
	users        outbound.UserRepository
	events       outbound.EventPublisher
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
	tracer       trace.Tracer
}

// NewRelationService creates a new relation service
func NewRelationService(
	relations outbound.RelationRepository,
	recipes outbound.RecipeRepository,
	users outbound.UserRepository,
	events outbound.EventPublisher,
	defaultLimit, maxLimit int,
	logger *zap.Logger,
) inbound.RelationService {
	return &RelationService{
		relations:    relations,
		recipes:      recipes,
		users:        users,
		events:       events,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger.Named("relation-service"),
		tracer:       otel.Tracer("foodgram/application/relation"),
	}
}

// AddFavorite marks a recipe as a favorite of the viewer
func (s *RelationService) AddFavorite(ctx context.Context, viewer shared.Viewer, recipeID int64) (*recipe.Summary, error) {
	return s.addRecipeRelation(ctx, relation.KindFavorite, viewer, recipeID)
}

// RemoveFavorite unmarks a favorite
func (s *RelationService) RemoveFavorite(ctx context.Context, viewer shared.Viewer, recipeID int64) error {
	return s.removeRecipeRelation(ctx, relation.KindFavorite, viewer, recipeID)
}

// AddToShoppingCart puts a recipe in the viewer's cart
func (s *RelationService) AddToShoppingCart(ctx context.Context, viewer shared.Viewer, recipeID int64) (*recipe.Summary, error) {
	return s.addRecipeRelation(ctx, relation.KindPurchase, viewer, recipeID)
}

// RemoveFromShoppingCart takes a recipe out of the viewer's cart
func (s *RelationService) RemoveFromShoppingCart(ctx context.Context, viewer shared.Viewer, recipeID int64) error {
	return s.removeRecipeRelation(ctx, relation.KindPurchase, viewer, recipeID)
}

func (s *RelationService) addRecipeRelation(ctx context.Context, kind relation.Kind, viewer shared.Viewer, recipeID int64) (summary *recipe.Summary, err error) {
	ctx, span := s.startSpan(ctx, "Add", kind, recipeID)
	defer func() { endSpan(span, err) }()

	if !viewer.IsAuthenticated() {
		return nil, errors.NewUnauthorizedError("")
	}

	summary, err = s.recipes.GetSummary(ctx, recipeID)
	if err != nil {
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(recipeID)
		}
		return nil, errors.NewDatabaseError("load recipe", err)
	}

	if err := s.add(ctx, kind, viewer.UserID, recipeID); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *RelationService) removeRecipeRelation(ctx context.Context, kind relation.Kind, viewer shared.Viewer, recipeID int64) (err error) {
	ctx, span := s.startSpan(ctx, "Remove", kind, recipeID)
	defer func() { endSpan(span, err) }()

	if !viewer.IsAuthenticated() {
		return errors.NewUnauthorizedError("")
	}

	exists, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return errors.NewDatabaseError("check recipe", err)
	}
	if !exists {
		return errors.NewRecipeNotFoundError(recipeID)
	}

	return s.remove(ctx, kind, viewer.UserID, recipeID)
}

// Subscribe makes the viewer follow authorID and returns the author with a
// preview of their recipes.
func (s *RelationService) Subscribe(ctx context.Context, viewer shared.Viewer, authorID int64, recipesLimit int) (sub *inbound.Subscription, err error) {
	ctx, span := s.startSpan(ctx, "Add", relation.KindFollow, authorID)
	defer func() { endSpan(span, err) }()

	if !viewer.IsAuthenticated() {
		return nil, errors.NewUnauthorizedError("")
	}

	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		if stderrors.Is(err, user.ErrUserNotFound) {
			return nil, errors.NewUserNotFoundError(authorID)
		}
		return nil, errors.NewDatabaseError("load author", err)
	}

	if err := s.add(ctx, relation.KindFollow, viewer.UserID, authorID); err != nil {
		return nil, err
	}

	subs, err := s.withRecipes(ctx, []*user.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

// Unsubscribe removes a follow
func (s *RelationService) Unsubscribe(ctx context.Context, viewer shared.Viewer, authorID int64) (err error) {
	ctx, span := s.startSpan(ctx, "Remove", relation.KindFollow, authorID)
	defer func() { endSpan(span, err) }()

	if !viewer.IsAuthenticated() {
		return errors.NewUnauthorizedError("")
	}

	exists, err := s.users.Exists(ctx, authorID)
	if err != nil {
		return errors.NewDatabaseError("check author", err)
	}
	if !exists {
		return errors.NewUserNotFoundError(authorID)
	}

	return s.remove(ctx, relation.KindFollow, viewer.UserID, authorID)
}

// ListSubscriptions returns the authors the viewer follows, ordered by id,
// each with at most recipesLimit recipes when recipesLimit > 0.
func (s *RelationService) ListSubscriptions(ctx context.Context, viewer shared.Viewer, params inbound.PaginationParams, recipesLimit int) (list *inbound.SubscriptionList, err error) {
	ctx, span := s.tracer.Start(ctx, "RelationService.ListSubscriptions")
	defer func() { endSpan(span, err) }()

	if !viewer.IsAuthenticated() {
		return nil, errors.NewUnauthorizedError("")
	}

	params = params.Normalize(s.defaultLimit, s.maxLimit)
	authors, total, err := s.users.ListFollowing(ctx, viewer.UserID, outbound.Page{
		Offset: params.Offset(),
		Limit:  params.Limit,
	})
	if err != nil {
		return nil, errors.NewDatabaseError("list subscriptions", err)
	}

	subs, err := s.withRecipes(ctx, authors, recipesLimit)
	if err != nil {
		return nil, err
	}

	return &inbound.SubscriptionList{
		Subscriptions: subs,
		Total:         total,
		Page:          params.Page,
		Limit:         params.Limit,
	}, nil
}

// withRecipes attaches recipe previews and counts to followed authors with
// one batched query.
func (s *RelationService) withRecipes(ctx context.Context, authors []*user.User, recipesLimit int) ([]inbound.Subscription, error) {
	subs := make([]inbound.Subscription, len(authors))
	if len(authors) == 0 {
		return subs, nil
	}

	ids := make([]int64, len(authors))
	for i, author := range authors {
		ids[i] = author.ID()
	}

	summaries, counts, err := s.recipes.SummariesByAuthors(ctx, ids, recipesLimit)
	if err != nil {
		return nil, errors.NewDatabaseError("load author recipes", err)
	}

	for i, author := range authors {
		recipes := summaries[author.ID()]
		if recipes == nil {
			recipes = []recipe.Summary{}
		}
		subs[i] = inbound.Subscription{
			Author:       author.ToProfile(true),
			Recipes:      recipes,
			RecipesCount: counts[author.ID()],
		}
	}
	return subs, nil
}

func (s *RelationService) add(ctx context.Context, kind relation.Kind, userID, targetID int64) error {
	rel, err := relation.New(kind, userID, targetID)
	if err != nil {
		return errmap.Repository("validate relation", err)
	}
	if err := s.relations.Add(ctx, rel); err != nil {
		return errmap.Repository("add relation", err)
	}

	s.events.Publish(ctx, relation.AddedEvent{Kind: kind, UserID: userID, TargetID: targetID, At: rel.CreatedAt})
	s.logger.Info("Relation added",
		zap.String("kind", string(kind)),
		zap.Int64("user_id", userID),
		zap.Int64("target_id", targetID),
	)
	return nil
}

func (s *RelationService) remove(ctx context.Context, kind relation.Kind, userID, targetID int64) error {
	if err := s.relations.Remove(ctx, kind, userID, targetID); err != nil {
		return errmap.Repository("remove relation", err)
	}

	s.events.Publish(ctx, relation.RemovedEvent{Kind: kind, UserID: userID, TargetID: targetID, At: time.Now().UTC()})
	s.logger.Info("Relation removed",
		zap.String("kind", string(kind)),
		zap.Int64("user_id", userID),
		zap.Int64("target_id", targetID),
	)
	return nil
}

func (s *RelationService) startSpan(ctx context.Context, op string, kind relation.Kind, targetID int64) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "RelationService."+op, trace.WithAttributes(
		attribute.String("relation.kind", string(kind)),
		attribute.Int64("relation.target_id", targetID),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
