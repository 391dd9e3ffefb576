package recipe

import (
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
)

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func isNotAuthor(err error) bool {
	return stderrors.Is(err, recipe.ErrNotRecipeAuthor)
}

func isRecipeNotFound(err error) bool {
	return stderrors.Is(err, recipe.ErrRecipeNotFound)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
