// Package shopping exports the aggregated shopping list of a user's cart.
package shopping

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/domain/shopping"
	"github.com/alchemorsel/foodgram/internal/ports/inbound"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
	"github.com/alchemorsel/foodgram/pkg/errors"
)

// ShoppingListService implements inbound.ShoppingListService
type ShoppingListService struct {
	carts  outbound.ShoppingListRepository
	logger *zap.Logger
	tracer trace.Tracer
}

// NewShoppingListService creates a new shopping list service
func NewShoppingListService(carts outbound.ShoppingListRepository, logger *zap.Logger) inbound.ShoppingListService {
	return &ShoppingListService{
		carts:  carts,
		logger: logger.Named("shopping-service"),
		tracer: otel.Tracer("foodgram/application/shopping"),
	}
}

// DownloadShoppingList sums the ingredients of every recipe in the viewer's
// cart and renders them as a text attachment.
func (s *ShoppingListService) DownloadShoppingList(ctx context.Context, viewer shared.Viewer) (doc *shopping.Document, err error) {
	ctx, span := s.tracer.Start(ctx, "ShoppingListService.DownloadShoppingList")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !viewer.IsAuthenticated() {
		return nil, errors.NewUnauthorizedError("")
	}

	rows, err := s.carts.CartRows(ctx, viewer.UserID)
	if err != nil {
		return nil, errors.NewDatabaseError("load shopping cart", err)
	}

	list := shopping.Aggregate(rows)
	span.SetAttributes(attribute.Int("shopping.items", len(list.Items)))

	s.logger.Debug("Shopping list exported",
		zap.Int64("user_id", viewer.UserID),
		zap.Int("items", len(list.Items)),
	)

	document := shopping.NewDocument(list)
	return &document, nil
}
