// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/relation"
	"github.com/alchemorsel/foodgram/internal/domain/user"
	gormrepo "github.com/alchemorsel/foodgram/internal/infrastructure/persistence/gorm"
)

// DraftBuilder provides a fluent interface for building recipe drafts. The
// default draft is valid.
type DraftBuilder struct {
	draft recipe.Draft
}

// NewDraftBuilder creates a new draft builder with default values
func NewDraftBuilder() *DraftBuilder {
	faker := gofakeit.New(time.Now().UnixNano())

	return &DraftBuilder{
		draft: recipe.Draft{
			Name:        faker.Sentence(3),
			Text:        faker.Paragraph(2, 3, 5, " "),
			Image:       "recipes/images/" + faker.UUID() + ".png",
			CookingTime: faker.Number(5, 120),
			Ingredients: []recipe.IngredientAmount{{IngredientID: 1, Amount: 100}},
			TagIDs:      []int64{1},
		},
	}
}

// WithName sets the recipe name
func (b *DraftBuilder) WithName(name string) *DraftBuilder {
	b.draft.Name = name
	return b
}

// WithText sets the recipe description
func (b *DraftBuilder) WithText(text string) *DraftBuilder {
	b.draft.Text = text
	return b
}

// WithCookingTime sets the cooking time in minutes
func (b *DraftBuilder) WithCookingTime(minutes int) *DraftBuilder {
	b.draft.CookingTime = minutes
	return b
}

// WithIngredients replaces the ingredient list
func (b *DraftBuilder) WithIngredients(items ...recipe.IngredientAmount) *DraftBuilder {
	b.draft.Ingredients = append([]recipe.IngredientAmount{}, items...)
	return b
}

// WithTags replaces the tag list
func (b *DraftBuilder) WithTags(ids ...int64) *DraftBuilder {
	b.draft.TagIDs = append([]int64{}, ids...)
	return b
}

// Build returns the draft
func (b *DraftBuilder) Build() recipe.Draft {
	d := b.draft
	d.Ingredients = append([]recipe.IngredientAmount{}, b.draft.Ingredients...)
	d.TagIDs = append([]int64{}, b.draft.TagIDs...)
	return d
}

// Amount is shorthand for an ingredient line of a draft
func Amount(ingredientID int64, amount int) recipe.IngredientAmount {
	return recipe.IngredientAmount{IngredientID: ingredientID, Amount: amount}
}

// UserBuilder provides a fluent interface for building test users
type UserBuilder struct {
	username     string
	email        string
	firstName    string
	lastName     string
	passwordHash string
}

// NewUserBuilder creates a new user builder with unique defaults
func NewUserBuilder() *UserBuilder {
	faker := gofakeit.New(time.Now().UnixNano())
	username := fmt.Sprintf("%s%d", faker.Username(), faker.Number(1000, 999999))

	return &UserBuilder{
		username:     username,
		email:        username + "@example.com",
		firstName:    faker.FirstName(),
		lastName:     faker.LastName(),
		passwordHash: "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi",
	}
}

// WithUsername sets the username
func (ub *UserBuilder) WithUsername(username string) *UserBuilder {
	ub.username = username
	return ub
}

// WithEmail sets the email
func (ub *UserBuilder) WithEmail(email string) *UserBuilder {
	ub.email = email
	return ub
}

// WithPasswordHash sets the stored password hash
func (ub *UserBuilder) WithPasswordHash(hash string) *UserBuilder {
	ub.passwordHash = hash
	return ub
}

// Build creates the user
func (ub *UserBuilder) Build() (*user.User, error) {
	return user.NewUser(ub.username, ub.email, ub.firstName, ub.lastName, ub.passwordHash)
}

// Fixtures inserts rows straight into a migrated database so repository and
// handler tests can arrange state in one line.
type Fixtures struct {
	t  testing.TB
	db *gorm.DB
}

// NewFixtures creates fixtures bound to db
func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

// User stores a new user and returns its id
func (f *Fixtures) User(username string) int64 {
	f.t.Helper()
	u, err := NewUserBuilder().WithUsername(username).WithEmail(username + "@example.com").Build()
	require.NoError(f.t, err)
	require.NoError(f.t, gormrepo.NewUserRepository(f.db).Create(context.Background(), u))
	return u.ID()
}

// Ingredient stores an ingredient and returns its id
func (f *Fixtures) Ingredient(name, unit string) int64 {
	f.t.Helper()
	model := gormrepo.IngredientModel{Name: name, MeasurementUnit: unit}
	require.NoError(f.t, f.db.Create(&model).Error)
	return model.ID
}

// Tag stores a tag and returns its id
func (f *Fixtures) Tag(name, slug string) int64 {
	f.t.Helper()
	model := gormrepo.TagModel{Name: name, Color: "#49B64E", Slug: slug}
	require.NoError(f.t, f.db.Create(&model).Error)
	return model.ID
}

// Recipe stores a recipe authored by authorID and returns its id
func (f *Fixtures) Recipe(authorID int64, draft recipe.Draft) int64 {
	f.t.Helper()
	r, err := recipe.NewRecipe(authorID, draft)
	require.NoError(f.t, err)
	require.NoError(f.t, gormrepo.NewRecipeRepository(f.db).Create(context.Background(), r))
	return r.ID()
}

// Relate stores a favorite, cart entry or follow
func (f *Fixtures) Relate(kind relation.Kind, userID, targetID int64) {
	f.t.Helper()
	rel, err := relation.New(kind, userID, targetID)
	require.NoError(f.t, err)
	require.NoError(f.t, gormrepo.NewRelationRepository(f.db).Add(context.Background(), rel))
}
