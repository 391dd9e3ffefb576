// Package recipe contains the core domain logic for recipe management.
// A recipe owns its ingredient and tag associations and replaces them as a
// whole on every update.
package recipe

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alchemorsel/foodgram/internal/domain/shared"
)

// Draft is the full desired state of a recipe as submitted by its author.
type Draft struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	Ingredients []IngredientAmount
	TagIDs      []int64
}

// Validate checks the whole draft before anything is written. Checks run in
// a fixed order so the same payload always reports the same error.
func (d Draft) Validate() error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(d.Text) == "" {
		return ErrTextRequired
	}
	if d.CookingTime < MinCookingTime || d.CookingTime > MaxCookingTime {
		return &OutOfRangeError{Field: "cooking_time", Value: d.CookingTime, Min: MinCookingTime, Max: MaxCookingTime}
	}
	if len(d.Ingredients) == 0 {
		return &MissingRequiredFieldError{Field: "ingredients"}
	}
	if len(d.TagIDs) == 0 {
		return &MissingRequiredFieldError{Field: "tags"}
	}

	seenIngredients := make(map[int64]struct{}, len(d.Ingredients))
	for _, item := range d.Ingredients {
		if _, dup := seenIngredients[item.IngredientID]; dup {
			return &DuplicateIngredientError{IngredientID: item.IngredientID}
		}
		seenIngredients[item.IngredientID] = struct{}{}
	}

	seenTags := make(map[int64]struct{}, len(d.TagIDs))
	for _, id := range d.TagIDs {
		if _, dup := seenTags[id]; dup {
			return &DuplicateTagError{TagID: id}
		}
		seenTags[id] = struct{}{}
	}

	for _, item := range d.Ingredients {
		if item.Amount < MinAmount || item.Amount > MaxAmount {
			return &OutOfRangeError{Field: "amount", Value: item.Amount, Min: MinAmount, Max: MaxAmount}
		}
	}

	return nil
}

// IngredientIDs returns the ingredient ids in submission order.
func (d Draft) IngredientIDs() []int64 {
	ids := make([]int64, len(d.Ingredients))
	for i, item := range d.Ingredients {
		ids[i] = item.IngredientID
	}
	return ids
}

// Recipe represents the recipe aggregate.
type Recipe struct {
	shared.AggregateRoot

	id          int64
	authorID    int64
	name        string
	text        string
	image       string
	cookingTime int
	ingredients []IngredientAmount
	tagIDs      []int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewRecipe creates a recipe authored by authorID from a validated draft.
func NewRecipe(authorID int64, draft Draft) (*Recipe, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r := &Recipe{
		authorID:  authorID,
		createdAt: now,
		updatedAt: now,
	}
	r.apply(draft)

	return r, nil
}

// Restore rebuilds a recipe from storage without validation or events.
func Restore(
	id, authorID int64,
	name, text, image string,
	cookingTime int,
	ingredients []IngredientAmount,
	tagIDs []int64,
	createdAt, updatedAt time.Time,
) *Recipe {
	return &Recipe{
		id:          id,
		authorID:    authorID,
		name:        name,
		text:        text,
		image:       image,
		cookingTime: cookingTime,
		ingredients: ingredients,
		tagIDs:      tagIDs,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Update replaces the recipe's state and associations with draft. Only the
// author may update a recipe.
func (r *Recipe) Update(editorID int64, draft Draft) error {
	if editorID != r.authorID {
		return ErrNotRecipeAuthor
	}
	if err := draft.Validate(); err != nil {
		return err
	}

	r.apply(draft)
	r.updatedAt = time.Now().UTC()

	r.AddEvent(RecipeUpdatedEvent{
		RecipeID:  r.id,
		AuthorID:  r.authorID,
		UpdatedAt: r.updatedAt,
	})
	return nil
}

// CanBeDeletedBy reports whether userID may delete the recipe.
func (r *Recipe) CanBeDeletedBy(userID int64) error {
	if userID != r.authorID {
		return ErrNotRecipeAuthor
	}
	return nil
}

func (r *Recipe) apply(draft Draft) {
	r.name = strings.TrimSpace(draft.Name)
	r.text = draft.Text
	r.image = draft.Image
	r.cookingTime = draft.CookingTime
	r.ingredients = append([]IngredientAmount(nil), draft.Ingredients...)
	r.tagIDs = append([]int64(nil), draft.TagIDs...)
}

// AssignID is called by the repository once a new recipe is stored.
func (r *Recipe) AssignID(id int64) {
	r.id = id
	r.AddEvent(RecipeCreatedEvent{
		RecipeID:  id,
		AuthorID:  r.authorID,
		Name:      r.name,
		CreatedAt: r.createdAt,
	})
}

// ID returns the recipe's identifier
func (r *Recipe) ID() int64 { return r.id }

// AuthorID returns the recipe's author ID
func (r *Recipe) AuthorID() int64 { return r.authorID }

func (r *Recipe) Name() string     { return r.name }
func (r *Recipe) Text() string     { return r.text }
func (r *Recipe) Image() string    { return r.image }
func (r *Recipe) CookingTime() int { return r.cookingTime }

// Ingredients returns a copy of the ingredient list.
func (r *Recipe) Ingredients() []IngredientAmount {
	return append([]IngredientAmount(nil), r.ingredients...)
}

// TagIDs returns a copy of the tag list.
func (r *Recipe) TagIDs() []int64 {
	return append([]int64(nil), r.tagIDs...)
}

func (r *Recipe) CreatedAt() time.Time { return r.createdAt }
func (r *Recipe) UpdatedAt() time.Time { return r.updatedAt }
