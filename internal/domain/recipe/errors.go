package recipe

import (
	"errors"
	"fmt"
)

// Domain errors for recipe operations

var (
	// Entity validation errors
	ErrNameRequired    = errors.New("recipe name is required")
	ErrNameTooLong     = errors.New("recipe name must not exceed 200 characters")
	ErrTextRequired    = errors.New("recipe description is required")
	ErrInvalidColor    = errors.New("tag color must be a #RRGGBB hex value")
	ErrInvalidSlug     = errors.New("tag slug may contain only letters, digits, hyphens and underscores")
	ErrTagNameRequired = errors.New("tag name is required")
	ErrIngredientName  = errors.New("ingredient name and measurement unit are required")

	// Lookup errors
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrTagNotFound        = errors.New("tag not found")

	// Permission errors
	ErrNotRecipeAuthor = errors.New("only the recipe author can perform this action")

	// ErrInvalidPayload is matched by every typed validation error below.
	ErrInvalidPayload = errors.New("invalid recipe payload")
)

// DuplicateIngredientError is returned when an ingredient id appears twice in one submission.
type DuplicateIngredientError struct {
	IngredientID int64
}

func (e *DuplicateIngredientError) Error() string {
	return fmt.Sprintf("ingredients are not unique: ingredient %d is listed more than once", e.IngredientID)
}

func (e *DuplicateIngredientError) Is(target error) bool { return target == ErrInvalidPayload }

// DuplicateTagError is returned when a tag id appears twice in one submission.
type DuplicateTagError struct {
	TagID int64
}

func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("tags are not unique: tag %d is listed more than once", e.TagID)
}

func (e *DuplicateTagError) Is(target error) bool { return target == ErrInvalidPayload }

// MissingRequiredFieldError is returned when a required list is empty.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("%s: at least one item is required", e.Field)
}

func (e *MissingRequiredFieldError) Is(target error) bool { return target == ErrInvalidPayload }

// OutOfRangeError is returned when a bounded number falls outside its range.
type OutOfRangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d, got %d", e.Field, e.Min, e.Max, e.Value)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrInvalidPayload }

// FieldOf returns the payload field a validation error refers to.
func FieldOf(err error) string {
	var (
		dupIngredient *DuplicateIngredientError
		dupTag        *DuplicateTagError
		missing       *MissingRequiredFieldError
		outOfRange    *OutOfRangeError
	)
	switch {
	case errors.As(err, &dupIngredient):
		return "ingredients"
	case errors.As(err, &dupTag):
		return "tags"
	case errors.As(err, &missing):
		return missing.Field
	case errors.As(err, &outOfRange):
		return outOfRange.Field
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrNameTooLong):
		return "name"
	case errors.Is(err, ErrTextRequired):
		return "text"
	case errors.Is(err, ErrInvalidColor):
		return "color"
	case errors.Is(err, ErrInvalidSlug):
		return "slug"
	default:
		return ""
	}
}
