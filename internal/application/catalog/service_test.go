package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/application/catalog"
	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/foodgram/internal/ports/inbound"
	"github.com/alchemorsel/foodgram/pkg/errors"
	"github.com/alchemorsel/foodgram/test/testutils"
)

type CatalogServiceTestSuite struct {
	suite.Suite
	ingredients *testutils.MockIngredientRepository
	tags        *testutils.MockTagRepository
	cache       *memory.CacheRepository
	service     inbound.CatalogService
	ctx         context.Context
}

func (s *CatalogServiceTestSuite) SetupTest() {
	s.ingredients = new(testutils.MockIngredientRepository)
	s.tags = new(testutils.MockTagRepository)
	s.cache = memory.NewCacheRepository(0)
	s.service = catalog.NewCatalogService(s.ingredients, s.tags, s.cache,
		catalog.CacheTTL{Tags: time.Hour, Ingredients: time.Hour}, nil, zap.NewNop())
	s.ctx = context.Background()
}

func (s *CatalogServiceTestSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *CatalogServiceTestSuite) TearDownSubTest() {
	s.ingredients.AssertExpectations(s.T())
	s.tags.AssertExpectations(s.T())
	s.cache.Close()
}

func (s *CatalogServiceTestSuite) TestListTags() {
	s.Run("SecondCall_ShouldBeServedFromCache", func() {
		tags := []recipe.Tag{{ID: 1, Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"}}
		s.tags.On("List", mock.Anything).Return(tags, nil).Once()

		first, err := s.service.ListTags(s.ctx)
		s.Require().NoError(err)
		second, err := s.service.ListTags(s.ctx)
		s.Require().NoError(err)

		s.Equal(tags, first)
		s.Equal(tags, second)
	})

	s.Run("ImportShouldInvalidate", func() {
		s.tags.On("List", mock.Anything).Return([]recipe.Tag{}, nil).Twice()
		s.tags.On("Import", mock.Anything, mock.Anything).Return(1, nil)

		_, err := s.service.ListTags(s.ctx)
		s.Require().NoError(err)
		_, err = s.service.ImportTags(s.ctx, []inbound.TagRow{{Name: "Ужин", Color: "#8775d2", Slug: "dinner"}})
		s.Require().NoError(err)
		_, err = s.service.ListTags(s.ctx)
		s.Require().NoError(err)
	})
}

func (s *CatalogServiceTestSuite) TestSearchIngredients() {
	s.Run("PrefixIsCaseFolded", func() {
		items := []recipe.Ingredient{{ID: 3, Name: "Sugar", MeasurementUnit: "g"}}
		s.ingredients.On("SearchByPrefix", mock.Anything, "su").Return(items, nil).Once()

		first, err := s.service.SearchIngredients(s.ctx, "Su")
		s.Require().NoError(err)
		second, err := s.service.SearchIngredients(s.ctx, "sU")
		s.Require().NoError(err)

		s.Equal(items, first)
		s.Equal(items, second)
	})
}

func (s *CatalogServiceTestSuite) TestGet() {
	s.Run("MissingIngredient_ShouldBeNotFound", func() {
		s.ingredients.On("FindByID", mock.Anything, int64(404)).Return(nil, recipe.ErrIngredientNotFound)

		_, err := s.service.GetIngredient(s.ctx, 404)

		testutils.AssertAppError(s.T(), err, errors.CodeIngredientNotFound)
	})

	s.Run("MissingTag_ShouldBeNotFound", func() {
		s.tags.On("FindByID", mock.Anything, int64(8)).Return(nil, recipe.ErrTagNotFound)

		_, err := s.service.GetTag(s.ctx, 8)

		testutils.AssertAppError(s.T(), err, errors.CodeTagNotFound)
	})
}

func (s *CatalogServiceTestSuite) TestImportIngredients() {
	s.Run("ShouldReportCreatedSkippedAndInvalid", func() {
		s.ingredients.On("Import", mock.Anything, mock.MatchedBy(func(items []recipe.Ingredient) bool {
			return len(items) == 2 && items[0].Name == "мука"
		})).Return(1, nil)

		report, err := s.service.ImportIngredients(s.ctx, []inbound.IngredientRow{
			{Name: " мука ", MeasurementUnit: "г"},
			{Name: "", MeasurementUnit: "г"},
			{Name: "соль", MeasurementUnit: "г"},
		})

		s.Require().NoError(err)
		s.Equal(3, report.Read)
		s.Equal(1, report.Created)
		s.Equal(1, report.Skipped)
		s.Require().Len(report.Invalid, 1)
		s.Contains(report.Invalid[0], "row 2")
	})
}

func TestCatalogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}
