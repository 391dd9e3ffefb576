// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db        *gorm.DB
	annotator *Annotator
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db, annotator: NewAnnotator(db)}
}

// Create stores the recipe row and both association sets in one transaction.
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	model := RecipeToModel(rec)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		return replaceAssociations(tx, model.ID, rec, false)
	})
	if err != nil {
		return err
	}

	rec.AssignID(model.ID)
	return nil
}

// Update rewrites the recipe row and replaces its ingredient and tag sets.
// Nothing is visible to other readers until the transaction commits.
func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&RecipeModel{}).
			Where("id = ?", rec.ID()).
			Updates(map[string]interface{}{
				"name":         rec.Name(),
				"text":         rec.Text(),
				"image":        rec.Image(),
				"cooking_time": rec.CookingTime(),
				"updated_at":   rec.UpdatedAt(),
			})
		if result.Error != nil {
			return fmt.Errorf("update recipe: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return recipe.ErrRecipeNotFound
		}
		return replaceAssociations(tx, rec.ID(), rec, true)
	})
}

// replaceAssociations writes the recipe's full ingredient and tag sets,
// clearing the previous ones first when clear is set.
func replaceAssociations(tx *gorm.DB, recipeID int64, rec *recipe.Recipe, clear bool) error {
	if clear {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&RecipeIngredientModel{}).Error; err != nil {
			return fmt.Errorf("clear recipe ingredients: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&RecipeTagModel{}).Error; err != nil {
			return fmt.Errorf("clear recipe tags: %w", err)
		}
	}

	if rows := ingredientRows(recipeID, rec.Ingredients()); len(rows) > 0 {
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			if isForeignKeyViolation(err) {
				return recipe.ErrIngredientNotFound
			}
			if isUniqueViolation(err) {
				return &recipe.DuplicateIngredientError{}
			}
			return fmt.Errorf("insert recipe ingredients: %w", err)
		}
	}

	if rows := tagRows(recipeID, rec.TagIDs()); len(rows) > 0 {
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			if isForeignKeyViolation(err) {
				return recipe.ErrTagNotFound
			}
			if isUniqueViolation(err) {
				return &recipe.DuplicateTagError{}
			}
			return fmt.Errorf("insert recipe tags: %w", err)
		}
	}
	return nil
}

// Delete removes a recipe; junction and relation rows cascade.
func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&RecipeModel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

// FindByID loads the recipe aggregate
func (r *RecipeRepository) FindByID(ctx context.Context, id int64) (*recipe.Recipe, error) {
	var model RecipeModel
	err := r.db.WithContext(ctx).
		Preload("RecipeIngredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("RecipeTags", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_tags.id") }).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, err
	}
	return ModelToRecipe(&model), nil
}

// Exists reports whether a recipe with id is stored
func (r *RecipeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RecipeModel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// GetView returns one recipe annotated for viewer
func (r *RecipeRepository) GetView(ctx context.Context, id int64, viewer shared.Viewer) (*recipe.View, error) {
	var model RecipeModel
	q := r.annotator.Annotate(r.db.WithContext(ctx).Model(&RecipeModel{}), viewer)
	err := withViewAssociations(q).Where("recipes.id = ?", id).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, err
	}

	subscribed, err := r.annotator.SubscribedAmong(ctx, viewer, []int64{model.AuthorID})
	if err != nil {
		return nil, err
	}
	return ModelToView(&model, subscribed[model.AuthorID]), nil
}

// List returns one page of recipes matching criteria, newest first, with the
// total number of matches. The membership flags of every row on the page come
// from the same statement that selects the page.
func (r *RecipeRepository) List(ctx context.Context, criteria recipe.Criteria, viewer shared.Viewer, page outbound.Page) ([]*recipe.View, int64, error) {
	filtered := func() *gorm.DB {
		return r.annotator.Apply(r.db.WithContext(ctx).Model(&RecipeModel{}), criteria, viewer)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}
	if total == 0 {
		return []*recipe.View{}, 0, nil
	}

	q := withViewAssociations(r.annotator.Annotate(filtered(), viewer)).
		Order("recipes.created_at DESC").
		Order("recipes.name").
		Order("recipes.id DESC")
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}

	var models []RecipeModel
	if err := q.Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}

	authorIDs := make([]int64, 0, len(models))
	seen := make(map[int64]struct{}, len(models))
	for i := range models {
		if _, ok := seen[models[i].AuthorID]; !ok {
			seen[models[i].AuthorID] = struct{}{}
			authorIDs = append(authorIDs, models[i].AuthorID)
		}
	}
	subscribed, err := r.annotator.SubscribedAmong(ctx, viewer, authorIDs)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*recipe.View, len(models))
	for i := range models {
		views[i] = ModelToView(&models[i], subscribed[models[i].AuthorID])
	}
	return views, total, nil
}

// GetSummary returns the short form of a recipe
func (r *RecipeRepository) GetSummary(ctx context.Context, id int64) (*recipe.Summary, error) {
	var model RecipeModel
	err := r.db.WithContext(ctx).
		Select("id", "name", "image", "cooking_time").
		Take(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, err
	}
	summary := ModelToSummary(&model)
	return &summary, nil
}

type authorSummaryRow struct {
	ID          int64
	AuthorID    int64
	Name        string
	Image       string
	CookingTime int
}

type authorCountRow struct {
	AuthorID int64
	Total    int64
}

// SummariesByAuthors loads recipe previews for a page of followed authors in
// two statements. limit <= 0 returns every recipe.
func (r *RecipeRepository) SummariesByAuthors(ctx context.Context, authorIDs []int64, limit int) (map[int64][]recipe.Summary, map[int64]int64, error) {
	summaries := make(map[int64][]recipe.Summary, len(authorIDs))
	counts := make(map[int64]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return summaries, counts, nil
	}
	db := r.db.WithContext(ctx)

	var countRows []authorCountRow
	err := db.Model(&RecipeModel{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&countRows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("count author recipes: %w", err)
	}
	for _, row := range countRows {
		counts[row.AuthorID] = row.Total
	}

	var rows []authorSummaryRow
	if limit > 0 {
		err = db.Raw(`SELECT id, author_id, name, image, cooking_time FROM (
				SELECT id, author_id, name, image, cooking_time,
					ROW_NUMBER() OVER (PARTITION BY author_id ORDER BY id) AS position
				FROM recipes WHERE author_id IN ?
			) ranked WHERE position <= ? ORDER BY author_id, id`, authorIDs, limit).
			Scan(&rows).Error
	} else {
		err = db.Model(&RecipeModel{}).
			Select("id, author_id, name, image, cooking_time").
			Where("author_id IN ?", authorIDs).
			Order("author_id, id").
			Scan(&rows).Error
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load author recipes: %w", err)
	}

	for _, row := range rows {
		summaries[row.AuthorID] = append(summaries[row.AuthorID], recipe.Summary{
			ID:          row.ID,
			Name:        row.Name,
			Image:       row.Image,
			CookingTime: row.CookingTime,
		})
	}
	return summaries, counts, nil
}
