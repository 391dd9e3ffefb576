package handlers

import (
	"strings"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/user"
	"github.com/alchemorsel/foodgram/internal/ports/inbound"
)

// Requests

// RecipeRequest is the body of recipe create and update. Ranges and
// duplicates are checked by the domain so every rule reports in one order.
type RecipeRequest struct {
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	Image       string                    `json:"image"`
	CookingTime int                       `json:"cooking_time"`
	Ingredients []IngredientAmountRequest `json:"ingredients" validate:"dive"`
	Tags        []int64                   `json:"tags" validate:"dive,gt=0"`
}

// IngredientAmountRequest is one ingredient line of a recipe request
type IngredientAmountRequest struct {
	ID     int64 `json:"id" validate:"required,gt=0"`
	Amount int   `json:"amount"`
}

// Draft converts the request to the domain draft
func (r RecipeRequest) Draft() recipe.Draft {
	draft := recipe.Draft{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		TagIDs:      r.Tags,
	}
	if r.Ingredients != nil {
		draft.Ingredients = make([]recipe.IngredientAmount, len(r.Ingredients))
		for i, item := range r.Ingredients {
			draft.Ingredients[i] = recipe.IngredientAmount{IngredientID: item.ID, Amount: item.Amount}
		}
	}
	return draft
}

// RegisterRequest is the registration body
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=150"`
}

// Normalize trims the username and email and lowercases the email, matching
// what registration stores.
func (req *RegisterRequest) Normalize() {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
}

// Responses

// TagResponse is a tag
type TagResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// IngredientResponse is a catalog ingredient
type IngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// RecipeIngredientResponse is an ingredient line of a recipe
type RecipeIngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// UserResponse is a profile as seen by the viewer
type UserResponse struct {
	Email        string `json:"email"`
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// RegisteredUserResponse is returned by registration
type RegisteredUserResponse struct {
	Email     string `json:"email"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RecipeResponse is a full recipe
type RecipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeSummaryResponse is the short recipe form
type RecipeSummaryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionResponse is a followed author with recipe previews
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeSummaryResponse `json:"recipes"`
	RecipesCount int64                   `json:"recipes_count"`
}

// PageResponse wraps one page of results
type PageResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func tagResponse(t recipe.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func tagResponses(tags []recipe.Tag) []TagResponse {
	out := make([]TagResponse, len(tags))
	for i, t := range tags {
		out[i] = tagResponse(t)
	}
	return out
}

func ingredientResponse(i recipe.Ingredient) IngredientResponse {
	return IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func ingredientResponses(items []recipe.Ingredient) []IngredientResponse {
	out := make([]IngredientResponse, len(items))
	for i, item := range items {
		out[i] = ingredientResponse(item)
	}
	return out
}

func userResponse(p user.Profile) UserResponse {
	return UserResponse{
		Email:        p.Email,
		ID:           p.ID,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		IsSubscribed: p.IsSubscribed,
	}
}

func recipeResponse(v *recipe.View) RecipeResponse {
	ingredients := make([]RecipeIngredientResponse, len(v.Ingredients))
	for i, line := range v.Ingredients {
		ingredients[i] = RecipeIngredientResponse{
			ID:              line.ID,
			Name:            line.Name,
			MeasurementUnit: line.MeasurementUnit,
			Amount:          line.Amount,
		}
	}
	return RecipeResponse{
		ID:   v.ID,
		Tags: tagResponses(v.Tags),
		Author: UserResponse{
			Email:        v.Author.Email,
			ID:           v.Author.ID,
			Username:     v.Author.Username,
			FirstName:    v.Author.FirstName,
			LastName:     v.Author.LastName,
			IsSubscribed: v.Author.IsSubscribed,
		},
		Ingredients:      ingredients,
		IsFavorited:      v.IsFavorited,
		IsInShoppingCart: v.IsInShoppingCart,
		Name:             v.Name,
		Image:            v.Image,
		Text:             v.Text,
		CookingTime:      v.CookingTime,
	}
}

func summaryResponse(s recipe.Summary) RecipeSummaryResponse {
	return RecipeSummaryResponse{ID: s.ID, Name: s.Name, Image: s.Image, CookingTime: s.CookingTime}
}

func subscriptionResponse(s inbound.Subscription) SubscriptionResponse {
	recipes := make([]RecipeSummaryResponse, len(s.Recipes))
	for i, r := range s.Recipes {
		recipes[i] = summaryResponse(r)
	}
	return SubscriptionResponse{
		UserResponse: userResponse(s.Author),
		Recipes:      recipes,
		RecipesCount: s.RecipesCount,
	}
}
