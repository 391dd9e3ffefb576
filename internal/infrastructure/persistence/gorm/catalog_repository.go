package gorm

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

const importBatchSize = 500

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// IngredientRepository serves the ingredient catalog
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db *gorm.DB) outbound.IngredientRepository {
	return &IngredientRepository{db: db}
}

// FindByID finds an ingredient by ID
func (r *IngredientRepository) FindByID(ctx context.Context, id int64) (*recipe.Ingredient, error) {
	var model IngredientModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrIngredientNotFound
		}
		return nil, err
	}
	ingredient := ModelToIngredient(&model)
	return &ingredient, nil
}

// FindByIDs returns the ingredients among ids that exist
func (r *IngredientRepository) FindByIDs(ctx context.Context, ids []int64) ([]recipe.Ingredient, error) {
	if len(ids) == 0 {
		return []recipe.Ingredient{}, nil
	}
	var models []IngredientModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	result := make([]recipe.Ingredient, len(models))
	for i := range models {
		result[i] = ModelToIngredient(&models[i])
	}
	return result, nil
}

// SearchByPrefix returns ingredients whose name starts with prefix,
// case-insensitively, ordered by name. An empty prefix returns the catalog.
func (r *IngredientRepository) SearchByPrefix(ctx context.Context, prefix string) ([]recipe.Ingredient, error) {
	q := r.db.WithContext(ctx).Model(&IngredientModel{})
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		pattern := likeEscaper.Replace(strings.ToLower(prefix)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}

	var models []IngredientModel
	if err := q.Order("name").Order("measurement_unit").Find(&models).Error; err != nil {
		return nil, err
	}
	result := make([]recipe.Ingredient, len(models))
	for i := range models {
		result[i] = ModelToIngredient(&models[i])
	}
	return result, nil
}

// Import inserts new ingredients, leaving existing (name, unit) pairs as they are
func (r *IngredientRepository) Import(ctx context.Context, items []recipe.Ingredient) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	models := make([]IngredientModel, len(items))
	for i, item := range items {
		models[i] = IngredientToModel(item)
		models[i].ID = 0
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&models, importBatchSize)
	return int(result.RowsAffected), result.Error
}

// TagRepository serves tags
type TagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) outbound.TagRepository {
	return &TagRepository{db: db}
}

// List returns every tag ordered by id
func (r *TagRepository) List(ctx context.Context) ([]recipe.Tag, error) {
	var models []TagModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return tagsFromModels(models), nil
}

// FindByID finds a tag by ID
func (r *TagRepository) FindByID(ctx context.Context, id int64) (*recipe.Tag, error) {
	var model TagModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrTagNotFound
		}
		return nil, err
	}
	tag := ModelToTag(&model)
	return &tag, nil
}

// FindByIDs returns the tags among ids that exist
func (r *TagRepository) FindByIDs(ctx context.Context, ids []int64) ([]recipe.Tag, error) {
	if len(ids) == 0 {
		return []recipe.Tag{}, nil
	}
	var models []TagModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return tagsFromModels(models), nil
}

// Import inserts tags whose name and slug are both unused
func (r *TagRepository) Import(ctx context.Context, items []recipe.Tag) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	models := make([]TagModel, len(items))
	for i, item := range items {
		models[i] = TagToModel(item)
		models[i].ID = 0
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&models, importBatchSize)
	return int(result.RowsAffected), result.Error
}

func tagsFromModels(models []TagModel) []recipe.Tag {
	tags := make([]recipe.Tag, len(models))
	for i := range models {
		tags[i] = ModelToTag(&models[i])
	}
	return tags
}
