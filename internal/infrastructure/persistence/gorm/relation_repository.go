package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/relation"
	"github.com/alchemorsel/foodgram/internal/domain/user"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

// RelationRepository stores favorites, cart entries and follows. Uniqueness
// of each (user, target) pair is enforced by the tables' composite unique
// indexes, so a lost race surfaces as the same duplicate error as a plain
// repeat.
type RelationRepository struct {
	db *gorm.DB
}

// NewRelationRepository creates a new relation repository
func NewRelationRepository(db *gorm.DB) outbound.RelationRepository {
	return &RelationRepository{db: db}
}

// relationTable maps a kind to its model and target column
func relationTable(kind relation.Kind) (interface{}, string, error) {
	switch kind {
	case relation.KindFavorite:
		return &FavoriteModel{}, "recipe_id", nil
	case relation.KindPurchase:
		return &PurchaseModel{}, "recipe_id", nil
	case relation.KindFollow:
		return &FollowModel{}, "following_id", nil
	default:
		return nil, "", fmt.Errorf("unknown relation kind %q", kind)
	}
}

func relationRow(rel relation.Relation) (interface{}, error) {
	switch rel.Kind {
	case relation.KindFavorite:
		return &FavoriteModel{UserID: rel.UserID, RecipeID: rel.TargetID, CreatedAt: rel.CreatedAt}, nil
	case relation.KindPurchase:
		return &PurchaseModel{UserID: rel.UserID, RecipeID: rel.TargetID, CreatedAt: rel.CreatedAt}, nil
	case relation.KindFollow:
		return &FollowModel{UserID: rel.UserID, FollowingID: rel.TargetID, CreatedAt: rel.CreatedAt}, nil
	default:
		return nil, fmt.Errorf("unknown relation kind %q", rel.Kind)
	}
}

// Add inserts a relation row
func (r *RelationRepository) Add(ctx context.Context, rel relation.Relation) error {
	row, err := relationRow(rel)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return relation.NewDuplicateError(rel.Kind)
	case isCheckViolation(err) && rel.Kind == relation.KindFollow:
		return &relation.DuplicateRelationError{Kind: rel.Kind, Message: relation.SelfFollowMessage}
	case isForeignKeyViolation(err):
		if rel.Kind.TargetsRecipe() {
			return recipe.ErrRecipeNotFound
		}
		return user.ErrUserNotFound
	default:
		return fmt.Errorf("insert %s: %w", rel.Kind, err)
	}
}

// Remove deletes a relation row
func (r *RelationRepository) Remove(ctx context.Context, kind relation.Kind, userID, targetID int64) error {
	model, column, err := relationTable(kind)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND "+column+" = ?", userID, targetID).
		Delete(model)
	if result.Error != nil {
		return fmt.Errorf("delete %s: %w", kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return relation.NewNotFoundError(kind)
	}
	return nil
}

// Exists reports whether the pair is stored
func (r *RelationRepository) Exists(ctx context.Context, kind relation.Kind, userID, targetID int64) (bool, error) {
	model, column, err := relationTable(kind)
	if err != nil {
		return false, err
	}

	var count int64
	err = r.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND "+column+" = ?", userID, targetID).
		Count(&count).Error
	return count > 0, err
}

// FollowedAmong returns which of candidateIDs userID follows
func (r *RelationRepository) FollowedAmong(ctx context.Context, userID int64, candidateIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(candidateIDs))
	if userID <= 0 || len(candidateIDs) == 0 {
		return result, nil
	}

	var followed []int64
	err := r.db.WithContext(ctx).Model(&FollowModel{}).
		Where("user_id = ? AND following_id IN ?", userID, candidateIDs).
		Pluck("following_id", &followed).Error
	if err != nil {
		return nil, err
	}
	for _, id := range followed {
		result[id] = true
	}
	return result, nil
}
