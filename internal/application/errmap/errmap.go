// Package errmap translates domain errors into application errors.
package errmap

import (
	"context"
	stderrors "errors"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/relation"
	"github.com/alchemorsel/foodgram/internal/domain/user"
	"github.com/alchemorsel/foodgram/pkg/errors"
)

// Translate maps a known domain error to an AppError. ok is false for
// errors the domain does not define.
func Translate(err error) (appErr *errors.AppError, ok bool) {
	if err == nil {
		return nil, false
	}
	if stderrors.As(err, &appErr) {
		return appErr, true
	}

	var (
		dup       *relation.DuplicateRelationError
		missing   *relation.NotFoundError
		badFilter *recipe.InvalidFilterError
	)

	switch {
	case stderrors.As(err, &dup):
		return errors.NewDuplicateRelationError(dup.Message).WithCause(err), true
	case stderrors.As(err, &missing):
		return errors.NewRelationNotFoundError(missing.Message).WithCause(err), true
	case stderrors.As(err, &badFilter):
		return errors.NewFieldValidationError(badFilter.Param, err.Error()).WithCause(err), true
	case stderrors.Is(err, recipe.ErrAnonymousAuthorMe):
		return errors.NewUnauthorizedError(err.Error()).WithCause(err), true

	case stderrors.Is(err, recipe.ErrRecipeNotFound):
		return errors.NewAppError(errors.CodeRecipeNotFound, "Recipe not found", "").WithCause(err), true
	case stderrors.Is(err, recipe.ErrIngredientNotFound):
		return errors.NewAppError(errors.CodeIngredientNotFound, "Ingredient not found", "").WithCause(err), true
	case stderrors.Is(err, recipe.ErrTagNotFound):
		return errors.NewAppError(errors.CodeTagNotFound, "Tag not found", "").WithCause(err), true
	case stderrors.Is(err, recipe.ErrNotRecipeAuthor):
		return errors.NewAppError(errors.CodeNotRecipeAuthor, "Insufficient permissions", err.Error()).WithCause(err), true
	case stderrors.Is(err, user.ErrUserNotFound):
		return errors.NewAppError(errors.CodeUserNotFound, "User not found", "").WithCause(err), true
	case stderrors.Is(err, user.ErrEmailTaken):
		return errors.NewAppError(errors.CodeEmailAlreadyExists, "Email already exists", err.Error()).WithCause(err), true
	case stderrors.Is(err, user.ErrUsernameTaken):
		return errors.NewAppError(errors.CodeUsernameAlreadyExists, "Username already exists", err.Error()).WithCause(err), true
	}

	if field := validationField(err); field != "" {
		return errors.NewFieldValidationError(field, err.Error()).WithCause(err), true
	}

	return nil, false
}

// Repository translates err, reporting a timeout as service unavailable and
// anything else unknown as a database failure of op.
func Repository(op string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := Translate(err); ok {
		return appErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewServiceUnavailableError("database").WithCause(err)
	}
	return errors.NewDatabaseError(op, err)
}

func validationField(err error) string {
	if field := recipe.FieldOf(err); field != "" {
		return field
	}
	switch {
	case stderrors.Is(err, recipe.ErrIngredientName):
		return "name"
	case stderrors.Is(err, recipe.ErrTagNameRequired):
		return "name"
	case stderrors.Is(err, user.ErrInvalidUsername),
		stderrors.Is(err, user.ErrUsernameTooLong),
		stderrors.Is(err, user.ErrReservedUsername):
		return "username"
	case stderrors.Is(err, user.ErrInvalidEmail):
		return "email"
	case stderrors.Is(err, user.ErrNameTooLong):
		return "first_name"
	case stderrors.Is(err, user.ErrEmptyPasswordHash):
		return "password"
	}
	return ""
}
