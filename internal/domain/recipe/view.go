package recipe

import "time"

// AuthorView is the author block of a recipe read model.
type AuthorView struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	IsSubscribed bool
}

// View is a recipe as returned to a particular viewer, with membership flags
// already computed.
type View struct {
	ID               int64
	Author           AuthorView
	Name             string
	Text             string
	Image            string
	CookingTime      int
	Tags             []Tag
	Ingredients      []IngredientLine
	IsFavorited      bool
	IsInShoppingCart bool
	CreatedAt        time.Time
}

// Summary is the short form used by relation endpoints and subscriptions.
type Summary struct {
	ID          int64
	Name        string
	Image       string
	CookingTime int
}
