package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
)

// Annotator adds per-viewer membership flags and recipe filters to recipe
// queries. Flags are computed by correlated EXISTS subqueries inside the
// listing query itself, so a page of N recipes costs one statement plus the
// association preloads regardless of N.
type Annotator struct {
	db *gorm.DB
}

// NewAnnotator creates an annotator bound to db. The handle is only used to
// build subqueries; they execute as part of the outer statement.
func NewAnnotator(db *gorm.DB) *Annotator {
	return &Annotator{db: db}
}

func (a *Annotator) sub() *gorm.DB {
	return a.db.Session(&gorm.Session{NewDB: true})
}

func (a *Annotator) favoriteExists(userID int64) *gorm.DB {
	return a.sub().Model(&FavoriteModel{}).Select("1").
		Where("favorites.user_id = ? AND favorites.recipe_id = recipes.id", userID)
}

func (a *Annotator) purchaseExists(userID int64) *gorm.DB {
	return a.sub().Model(&PurchaseModel{}).Select("1").
		Where("purchases.user_id = ? AND purchases.recipe_id = recipes.id", userID)
}

func (a *Annotator) tagExists(slugs []string) *gorm.DB {
	return a.sub().Model(&RecipeTagModel{}).Select("1").
		Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
		Where("recipe_tags.recipe_id = recipes.id AND tags.slug IN ?", slugs)
}

// Annotate selects the recipe columns plus is_favorited and
// is_in_shopping_cart for viewer. Anonymous viewers match no rows, so both
// flags are false.
func (a *Annotator) Annotate(q *gorm.DB, viewer shared.Viewer) *gorm.DB {
	userID := viewer.MembershipID()
	return q.Select(
		"recipes.*, EXISTS (?) AS is_favorited, EXISTS (?) AS is_in_shopping_cart",
		a.favoriteExists(userID),
		a.purchaseExists(userID),
	)
}

// Apply narrows q by criteria. Tag slugs are OR-ed; every other criterion is
// AND-ed. Membership criteria for an anonymous viewer compare against user 0,
// so True matches nothing and False matches everything.
func (a *Annotator) Apply(q *gorm.DB, c recipe.Criteria, viewer shared.Viewer) *gorm.DB {
	userID := viewer.MembershipID()

	if len(c.TagSlugs) > 0 {
		q = q.Where("EXISTS (?)", a.tagExists(c.TagSlugs))
	}
	if c.AuthorID > 0 {
		q = q.Where("recipes.author_id = ?", c.AuthorID)
	}
	q = applyTriState(q, c.IsFavorited, a.favoriteExists(userID))
	q = applyTriState(q, c.IsInShoppingCart, a.purchaseExists(userID))
	return q
}

func applyTriState(q *gorm.DB, state recipe.TriState, exists *gorm.DB) *gorm.DB {
	switch state {
	case recipe.True:
		return q.Where("EXISTS (?)", exists)
	case recipe.False:
		return q.Where("NOT EXISTS (?)", exists)
	default:
		return q
	}
}

// SubscribedAmong returns which of authorIDs the viewer follows with a single
// query. Anonymous viewers follow nobody.
func (a *Annotator) SubscribedAmong(ctx context.Context, viewer shared.Viewer, authorIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(authorIDs))
	if !viewer.IsAuthenticated() || len(authorIDs) == 0 {
		return result, nil
	}

	var followed []int64
	err := a.db.WithContext(ctx).Model(&FollowModel{}).
		Where("user_id = ? AND following_id IN ?", viewer.UserID, authorIDs).
		Pluck("following_id", &followed).Error
	if err != nil {
		return nil, err
	}
	for _, id := range followed {
		result[id] = true
	}
	return result, nil
}

// withViewAssociations preloads everything a recipe.View needs, keeping
// junction rows in insertion order.
func withViewAssociations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("RecipeIngredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id")
		}).
		Preload("RecipeIngredients.Ingredient").
		Preload("RecipeTags", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_tags.id")
		}).
		Preload("RecipeTags.Tag")
}
