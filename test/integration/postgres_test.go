//go:build integration

// Package integration runs the GORM repositories against PostgreSQL
package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/relation"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
	gormrepo "github.com/alchemorsel/foodgram/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
	"github.com/alchemorsel/foodgram/test/testutils"
)

// PostgresIntegrationTestSuite exercises the queries whose behavior depends
// on the PostgreSQL dialect: unique violations, ON CONFLICT and case folding.
type PostgresIntegrationTestSuite struct {
	suite.Suite
	testDB *testutils.TestDatabase
	ctx    context.Context

	fx     *testutils.Fixtures
	author int64
	reader int64
	flour  int64
	brunch int64
}

func (s *PostgresIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.testDB = testutils.SetupTestDatabase(s.T())
	require.NoError(s.T(), s.testDB.RunMigrations(), "Failed to run database migrations")
}

func (s *PostgresIntegrationTestSuite) SetupTest() {
	require.NoError(s.T(), s.testDB.TruncateAllTables(), "Failed to clean database")

	s.fx = testutils.NewFixtures(s.T(), s.testDB.GormDB)
	s.author = s.fx.User("author")
	s.reader = s.fx.User("reader")
	s.flour = s.fx.Ingredient("Мука", "г")
	s.brunch = s.fx.Tag("Бранч", "brunch")
}

func (s *PostgresIntegrationTestSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *PostgresIntegrationTestSuite) recipe(name string) int64 {
	return s.fx.Recipe(s.author, testutils.NewDraftBuilder().
		WithName(name).
		WithIngredients(testutils.Amount(s.flour, 100)).
		WithTags(s.brunch).
		Build())
}

func (s *PostgresIntegrationTestSuite) TestRelations() {
	repo := gormrepo.NewRelationRepository(s.testDB.GormDB)

	s.Run("DuplicateFavorite_ShouldReportDuplicate", func() {
		id := s.recipe("Блины")
		rel, err := relation.New(relation.KindFavorite, s.reader, id)
		s.Require().NoError(err)
		s.Require().NoError(repo.Add(s.ctx, rel))

		err = repo.Add(s.ctx, rel)

		var dup *relation.DuplicateRelationError
		s.ErrorAs(err, &dup)
	})

	s.Run("ConcurrentAdds_ShouldStoreOnePair", func() {
		id := s.recipe("Сырники")
		rel, err := relation.New(relation.KindPurchase, s.reader, id)
		s.Require().NoError(err)

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = repo.Add(s.ctx, rel)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			s.ErrorIs(err, relation.ErrDuplicate)
		}
		s.Equal(1, succeeded)
		s.Equal(int64(1), testutils.CountRecords(s.T(), s.testDB.GormDB, "purchases"))
	})

	s.Run("RemoveMissing_ShouldReportNotFound", func() {
		err := repo.Remove(s.ctx, relation.KindFollow, s.reader, s.author)

		s.ErrorIs(err, relation.ErrNotFound)
	})
}

func (s *PostgresIntegrationTestSuite) TestRecipeQueries() {
	repo := gormrepo.NewRecipeRepository(s.testDB.GormDB)

	s.Run("List_ShouldFilterByTagAndFavorite", func() {
		liked := s.recipe("Омлет")
		s.recipe("Каша")
		s.fx.Relate(relation.KindFavorite, s.reader, liked)

		views, total, err := repo.List(s.ctx, recipe.Criteria{
			TagSlugs:    []string{"brunch"},
			IsFavorited: recipe.True,
		}, shared.AuthenticatedAs(s.reader), outbound.Page{Limit: 10})

		s.Require().NoError(err)
		s.Equal(int64(1), total)
		s.Require().Len(views, 1)
		s.Equal(liked, views[0].ID)
		s.True(views[0].IsFavorited)
	})

	s.Run("SummariesByAuthors_ShouldLimitPreviewAndCountAll", func() {
		for _, name := range []string{"Суп", "Борщ", "Щи"} {
			s.recipe(name)
		}

		previews, counts, err := repo.SummariesByAuthors(s.ctx, []int64{s.author}, 2)

		s.Require().NoError(err)
		s.Len(previews[s.author], 2)
		s.Equal(int64(3), counts[s.author])
	})
}

func (s *PostgresIntegrationTestSuite) TestCatalog() {
	ingredients := gormrepo.NewIngredientRepository(s.testDB.GormDB)

	s.Run("Import_ShouldSkipExistingPairs", func() {
		items := []recipe.Ingredient{
			{Name: "Мука", MeasurementUnit: "г"},
			{Name: "Мука", MeasurementUnit: "стакан"},
			{Name: "Молоко", MeasurementUnit: "мл"},
		}

		created, err := ingredients.Import(s.ctx, items)

		s.Require().NoError(err)
		s.Equal(2, created)
	})

	s.Run("SearchByPrefix_ShouldFoldCyrillicCase", func() {
		s.fx.Ingredient("Мёд", "г")

		found, err := ingredients.SearchByPrefix(s.ctx, "му")

		s.Require().NoError(err)
		s.Require().Len(found, 1)
		s.Equal("Мука", found[0].Name)
	})

	s.Run("List_ShouldIncludeStoredTags", func() {
		tags, err := gormrepo.NewTagRepository(s.testDB.GormDB).List(s.ctx)

		s.Require().NoError(err)
		slugs := make([]string, 0, len(tags))
		for _, t := range tags {
			slugs = append(slugs, t.Slug)
		}
		s.Contains(slugs, "brunch")
	})
}

func (s *PostgresIntegrationTestSuite) TestShoppingList() {
	s.Run("CartRows_ShouldSumAcrossRecipes", func() {
		first := s.recipe("Оладьи")
		second := s.recipe("Пирог")
		s.fx.Relate(relation.KindPurchase, s.reader, first)
		s.fx.Relate(relation.KindPurchase, s.reader, second)

		rows, err := gormrepo.NewShoppingListRepository(s.testDB.GormDB).CartRows(s.ctx, s.reader)

		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal("Мука", rows[0].Name)
		s.Equal(int64(200), rows[0].Amount)
	})
}

func TestPostgresIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(PostgresIntegrationTestSuite))
}
