package gorm

import (
	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/user"
)

// UserToModel converts a domain user to GORM model
func UserToModel(u *user.User) *UserModel {
	return &UserModel{
		ID:           u.ID(),
		Username:     u.Username(),
		Email:        u.Email(),
		FirstName:    u.FirstName(),
		LastName:     u.LastName(),
		PasswordHash: u.PasswordHash(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
	}
}

// ModelToUser converts a GORM model to domain user
func ModelToUser(m *UserModel) *user.User {
	return user.Restore(m.ID, m.Username, m.Email, m.FirstName, m.LastName, m.PasswordHash, m.CreatedAt, m.UpdatedAt)
}

// RecipeToModel converts the recipe row itself. Associations are written
// separately by the repository.
func RecipeToModel(r *recipe.Recipe) *RecipeModel {
	return &RecipeModel{
		ID:          r.ID(),
		AuthorID:    r.AuthorID(),
		Name:        r.Name(),
		Text:        r.Text(),
		Image:       r.Image(),
		CookingTime: r.CookingTime(),
		CreatedAt:   r.CreatedAt(),
		UpdatedAt:   r.UpdatedAt(),
	}
}

// ingredientRows builds junction rows in submission order
func ingredientRows(recipeID int64, items []recipe.IngredientAmount) []RecipeIngredientModel {
	rows := make([]RecipeIngredientModel, len(items))
	for i, item := range items {
		rows[i] = RecipeIngredientModel{
			RecipeID:     recipeID,
			IngredientID: item.IngredientID,
			Amount:       item.Amount,
		}
	}
	return rows
}

func tagRows(recipeID int64, tagIDs []int64) []RecipeTagModel {
	rows := make([]RecipeTagModel, len(tagIDs))
	for i, id := range tagIDs {
		rows[i] = RecipeTagModel{RecipeID: recipeID, TagID: id}
	}
	return rows
}

// ModelToRecipe converts a GORM model with preloaded associations to a domain recipe
func ModelToRecipe(m *RecipeModel) *recipe.Recipe {
	ingredients := make([]recipe.IngredientAmount, len(m.RecipeIngredients))
	for i, ri := range m.RecipeIngredients {
		ingredients[i] = recipe.IngredientAmount{IngredientID: ri.IngredientID, Amount: ri.Amount}
	}
	tagIDs := make([]int64, len(m.RecipeTags))
	for i, rt := range m.RecipeTags {
		tagIDs[i] = rt.TagID
	}
	return recipe.Restore(
		m.ID, m.AuthorID,
		m.Name, m.Text, m.Image,
		m.CookingTime,
		ingredients, tagIDs,
		m.CreatedAt, m.UpdatedAt,
	)
}

// ModelToView converts an annotated model to the read model. subscribed is
// whether the viewer follows the author.
func ModelToView(m *RecipeModel, subscribed bool) *recipe.View {
	tags := make([]recipe.Tag, len(m.RecipeTags))
	for i, rt := range m.RecipeTags {
		tags[i] = ModelToTag(&rt.Tag)
	}
	lines := make([]recipe.IngredientLine, len(m.RecipeIngredients))
	for i, ri := range m.RecipeIngredients {
		lines[i] = recipe.IngredientLine{
			Ingredient: ModelToIngredient(&ri.Ingredient),
			Amount:     ri.Amount,
		}
	}

	return &recipe.View{
		ID: m.ID,
		Author: recipe.AuthorView{
			ID:           m.Author.ID,
			Username:     m.Author.Username,
			Email:        m.Author.Email,
			FirstName:    m.Author.FirstName,
			LastName:     m.Author.LastName,
			IsSubscribed: subscribed,
		},
		Name:             m.Name,
		Text:             m.Text,
		Image:            m.Image,
		CookingTime:      m.CookingTime,
		Tags:             tags,
		Ingredients:      lines,
		IsFavorited:      m.IsFavorited,
		IsInShoppingCart: m.IsInShoppingCart,
		CreatedAt:        m.CreatedAt,
	}
}

// ModelToSummary converts a recipe row to its short form
func ModelToSummary(m *RecipeModel) recipe.Summary {
	return recipe.Summary{ID: m.ID, Name: m.Name, Image: m.Image, CookingTime: m.CookingTime}
}

func ModelToIngredient(m *IngredientModel) recipe.Ingredient {
	return recipe.Ingredient{ID: m.ID, Name: m.Name, MeasurementUnit: m.MeasurementUnit}
}

func IngredientToModel(i recipe.Ingredient) IngredientModel {
	return IngredientModel{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func ModelToTag(m *TagModel) recipe.Tag {
	return recipe.Tag{ID: m.ID, Name: m.Name, Color: m.Color, Slug: m.Slug}
}

func TagToModel(t recipe.Tag) TagModel {
	return TagModel{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}
