package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/alchemorsel/foodgram/internal/domain/shopping"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

// ShoppingListRepository runs the cart aggregation in the database
type ShoppingListRepository struct {
	db *gorm.DB
}

// NewShoppingListRepository creates a new shopping list repository
func NewShoppingListRepository(db *gorm.DB) outbound.ShoppingListRepository {
	return &ShoppingListRepository{db: db}
}

// CartRows sums ingredient amounts over every recipe in the user's cart,
// grouped by ingredient name and measurement unit.
func (r *ShoppingListRepository) CartRows(ctx context.Context, userID int64) ([]shopping.Row, error) {
	var rows []shopping.Row
	err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN purchases ON purchases.recipe_id = recipe_ingredients.recipe_id").
		Where("purchases.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate cart: %w", err)
	}
	return rows, nil
}
