package shopping_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	shoppingapp "github.com/alchemorsel/foodgram/internal/application/shopping"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/domain/shopping"
	"github.com/alchemorsel/foodgram/pkg/errors"
	"github.com/alchemorsel/foodgram/test/testutils"
)

func TestDownloadShoppingList(t *testing.T) {
	t.Run("SumsAcrossRecipes", func(t *testing.T) {
		carts := new(testutils.MockShoppingListRepository)
		carts.On("CartRows", mock.Anything, int64(3)).Return([]shopping.Row{
			{Name: "соль", Unit: "г", Amount: 5},
			{Name: "мука", Unit: "г", Amount: 200},
			{Name: "соль", Unit: "г", Amount: 10},
		}, nil)
		service := shoppingapp.NewShoppingListService(carts, zap.NewNop())

		doc, err := service.DownloadShoppingList(context.Background(), shared.AuthenticatedAs(3))

		require.NoError(t, err)
		assert.Equal(t, "shopping_cart.txt", doc.Filename)
		assert.Equal(t, "text/plain; charset=utf-8", doc.ContentType)
		assert.Equal(t, "Список покупок\n·мука (г)- 200\n·соль (г)- 15\n", string(doc.Body))
		carts.AssertExpectations(t)
	})

	t.Run("EmptyCartRendersHeaderOnly", func(t *testing.T) {
		carts := new(testutils.MockShoppingListRepository)
		carts.On("CartRows", mock.Anything, int64(3)).Return([]shopping.Row{}, nil)
		service := shoppingapp.NewShoppingListService(carts, zap.NewNop())

		doc, err := service.DownloadShoppingList(context.Background(), shared.AuthenticatedAs(3))

		require.NoError(t, err)
		assert.Equal(t, "Список покупок\n", string(doc.Body))
	})

	t.Run("AnonymousIsRejected", func(t *testing.T) {
		carts := new(testutils.MockShoppingListRepository)
		service := shoppingapp.NewShoppingListService(carts, zap.NewNop())

		_, err := service.DownloadShoppingList(context.Background(), shared.Anonymous())

		testutils.AssertAppError(t, err, errors.CodeUnauthorized)
		carts.AssertNotCalled(t, "CartRows", mock.Anything, mock.Anything)
	})
}
