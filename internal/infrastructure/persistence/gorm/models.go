// Package gorm provides GORM model definitions and repositories
package gorm

import (
	"time"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string `gorm:"type:varchar(254);uniqueIndex;not null"`
	FirstName    string `gorm:"type:varchar(150);not null;default:''"`
	LastName     string `gorm:"type:varchar(150);not null;default:''"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IngredientModel represents the ingredient catalog. (name, measurement_unit) is unique.
type IngredientModel struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	Name            string `gorm:"type:varchar(200);not null;uniqueIndex:idx_ingredient_name_unit,priority:1"`
	MeasurementUnit string `gorm:"type:varchar(200);not null;uniqueIndex:idx_ingredient_name_unit,priority:2"`
}

// TagModel represents a tag
type TagModel struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"type:varchar(200);uniqueIndex;not null"`
	Color string `gorm:"type:varchar(7);not null"`
	Slug  string `gorm:"type:varchar(200);uniqueIndex;not null"`
}

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	AuthorID    int64     `gorm:"not null;index"`
	Author      UserModel `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Text        string    `gorm:"type:text;not null"`
	Image       string    `gorm:"type:varchar(500);not null;default:''"`
	CookingTime int       `gorm:"type:smallint;not null;check:chk_recipes_cooking_time,cooking_time BETWEEN 1 AND 32767"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time

	// Relationships
	RecipeIngredients []RecipeIngredientModel `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	RecipeTags        []RecipeTagModel        `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`

	// Membership flags computed per viewer, never stored
	IsFavorited      bool `gorm:"->;-:migration"`
	IsInShoppingCart bool `gorm:"->;-:migration"`
}

// RecipeIngredientModel links a recipe to an ingredient with an amount
type RecipeIngredientModel struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	RecipeID     int64           `gorm:"not null;uniqueIndex:idx_recipe_ingredient_pair,priority:1"`
	IngredientID int64           `gorm:"not null;uniqueIndex:idx_recipe_ingredient_pair,priority:2;index"`
	Ingredient   IngredientModel `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
	Amount       int             `gorm:"type:smallint;not null;default:1;check:chk_recipe_ingredients_amount,amount BETWEEN 1 AND 32767"`
}

// RecipeTagModel links a recipe to a tag
type RecipeTagModel struct {
	ID       int64    `gorm:"primaryKey;autoIncrement"`
	RecipeID int64    `gorm:"not null;uniqueIndex:idx_recipe_tag_pair,priority:1"`
	TagID    int64    `gorm:"not null;uniqueIndex:idx_recipe_tag_pair,priority:2;index"`
	Tag      TagModel `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}

// FavoriteModel marks a recipe as favorite for a user
type FavoriteModel struct {
	ID        int64       `gorm:"primaryKey;autoIncrement"`
	UserID    int64       `gorm:"not null;uniqueIndex:idx_favorite_user_recipe,priority:1"`
	RecipeID  int64       `gorm:"not null;uniqueIndex:idx_favorite_user_recipe,priority:2;index"`
	User      UserModel   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe    RecipeModel `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// PurchaseModel puts a recipe into a user's shopping cart
type PurchaseModel struct {
	ID        int64       `gorm:"primaryKey;autoIncrement"`
	UserID    int64       `gorm:"not null;uniqueIndex:idx_purchase_user_recipe,priority:1"`
	RecipeID  int64       `gorm:"not null;uniqueIndex:idx_purchase_user_recipe,priority:2;index"`
	User      UserModel   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe    RecipeModel `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// FollowModel represents a user following an author
type FollowModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_follow_pair,priority:1"`
	FollowingID int64     `gorm:"not null;uniqueIndex:idx_follow_pair,priority:2;index;check:chk_follows_not_self,user_id <> following_id"`
	User        UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Following   UserModel `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
}

// Table names

func (UserModel) TableName() string             { return "users" }
func (IngredientModel) TableName() string       { return "ingredients" }
func (TagModel) TableName() string              { return "tags" }
func (RecipeModel) TableName() string           { return "recipes" }
func (RecipeIngredientModel) TableName() string { return "recipe_ingredients" }
func (RecipeTagModel) TableName() string        { return "recipe_tags" }
func (FavoriteModel) TableName() string         { return "favorites" }
func (PurchaseModel) TableName() string         { return "purchases" }
func (FollowModel) TableName() string           { return "follows" }

// AllModels lists the models in dependency order for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&IngredientModel{},
		&TagModel{},
		&RecipeModel{},
		&RecipeIngredientModel{},
		&RecipeTagModel{},
		&FavoriteModel{},
		&PurchaseModel{},
		&FollowModel{},
	}
}
