package recipe

import (
	"regexp"
	"strings"
)

// Bounds shared by cooking time and ingredient amounts. Both are stored in a
// 16-bit column.
const (
	MinAmount      = 1
	MaxAmount      = 32767
	MinCookingTime = 1
	MaxCookingTime = 32767
	MaxNameLength  = 200
)

var (
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	slugPattern  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Ingredient is an entry of the ingredient catalog. The (Name, MeasurementUnit)
// pair is unique.
type Ingredient struct {
	ID              int64
	Name            string
	MeasurementUnit string
}

// NewIngredient validates a catalog entry.
func NewIngredient(name, unit string) (Ingredient, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if name == "" || unit == "" {
		return Ingredient{}, ErrIngredientName
	}
	return Ingredient{Name: name, MeasurementUnit: unit}, nil
}

// Tag labels recipes. Name and Slug are unique.
type Tag struct {
	ID    int64
	Name  string
	Color string
	Slug  string
}

// NewTag validates a tag and normalizes its color to upper case.
func NewTag(name, color, slug string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, ErrTagNameRequired
	}
	color, err := NormalizeColor(color)
	if err != nil {
		return Tag{}, err
	}
	if !slugPattern.MatchString(slug) {
		return Tag{}, ErrInvalidSlug
	}
	return Tag{Name: name, Color: color, Slug: slug}, nil
}

// NormalizeColor checks a #RRGGBB value and upper-cases it.
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if !colorPattern.MatchString(color) {
		return "", ErrInvalidColor
	}
	return strings.ToUpper(color), nil
}

// IngredientAmount is one line of a recipe's ingredient list as submitted.
type IngredientAmount struct {
	IngredientID int64
	Amount       int
}

// IngredientLine is an ingredient resolved from the catalog with its amount.
type IngredientLine struct {
	Ingredient
	Amount int
}
