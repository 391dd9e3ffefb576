package gorm_test

import (
	"context"
	"testing"

	pgconnv4 "github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/relation"
	"github.com/alchemorsel/foodgram/internal/domain/user"
	gormrepo "github.com/alchemorsel/foodgram/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/foodgram/test/testutils"
)

// PostgresErrorTestSuite runs the repositories on sqlite but makes inserts
// fail with the PgError values the postgres drivers return, so the SQLSTATE
// classification is covered without a database server.
type PostgresErrorTestSuite struct {
	suite.Suite
	db       *gorm.DB
	fx       *testutils.Fixtures
	ctx      context.Context
	inject   map[string]error
	alice    int64
	bob      int64
	recipeID int64
}

func (s *PostgresErrorTestSuite) SetupTest() {
	s.db = testutils.NewSQLiteDB(s.T())
	s.fx = testutils.NewFixtures(s.T(), s.db)
	s.ctx = context.Background()
	s.inject = map[string]error{}

	s.alice = s.fx.User("alice")
	s.bob = s.fx.User("bob")
	eggs := s.fx.Ingredient("яйца", "шт.")
	tag := s.fx.Tag("Завтрак", "breakfast")
	s.recipeID = s.fx.Recipe(s.bob, testutils.NewDraftBuilder().
		WithIngredients(testutils.Amount(eggs, 2)).
		WithTags(tag).
		Build())

	err := s.db.Callback().Create().Before("gorm:create").Register("test:inject_pg_error", func(tx *gorm.DB) {
		if err, ok := s.inject[tx.Statement.Table]; ok {
			_ = tx.AddError(err)
		}
	})
	s.Require().NoError(err)
}

func (s *PostgresErrorTestSuite) SetupSubTest() {
	s.inject = map[string]error{}
}

func (s *PostgresErrorTestSuite) addRelation(kind relation.Kind, userID, targetID int64) error {
	rel, err := relation.New(kind, userID, targetID)
	s.Require().NoError(err)
	return gormrepo.NewRelationRepository(s.db).Add(s.ctx, rel)
}

func (s *PostgresErrorTestSuite) TestRelationAdd() {
	s.Run("PgxV4UniqueViolation_ShouldBeDuplicate", func() {
		s.inject["favorites"] = &pgconnv4.PgError{Code: "23505", ConstraintName: "idx_favorite_user_recipe"}

		err := s.addRelation(relation.KindFavorite, s.alice, s.recipeID)

		var dup *relation.DuplicateRelationError
		s.Require().ErrorAs(err, &dup)
		s.Equal(relation.KindFavorite, dup.Kind)
		s.ErrorIs(err, relation.ErrDuplicate)
	})

	s.Run("PgxV5UniqueViolation_ShouldBeDuplicate", func() {
		s.inject["purchases"] = &pgconn.PgError{Code: "23505"}

		s.ErrorIs(s.addRelation(relation.KindPurchase, s.alice, s.recipeID), relation.ErrDuplicate)
	})

	s.Run("ForeignKeyViolation_ShouldBeNotFound", func() {
		s.inject["favorites"] = &pgconnv4.PgError{Code: "23503"}
		s.inject["follows"] = &pgconnv4.PgError{Code: "23503"}

		s.ErrorIs(s.addRelation(relation.KindFavorite, s.alice, s.recipeID), recipe.ErrRecipeNotFound)
		s.ErrorIs(s.addRelation(relation.KindFollow, s.alice, s.bob), user.ErrUserNotFound)
	})

	s.Run("CheckViolationOnFollow_ShouldBeSelfFollow", func() {
		s.inject["follows"] = &pgconnv4.PgError{Code: "23514", ConstraintName: "chk_follows_not_self"}

		err := s.addRelation(relation.KindFollow, s.alice, s.bob)

		var dup *relation.DuplicateRelationError
		s.Require().ErrorAs(err, &dup)
		s.Equal(relation.SelfFollowMessage, dup.Message)
	})

	s.Run("OtherSQLState_ShouldStayStorageError", func() {
		s.inject["favorites"] = &pgconnv4.PgError{Code: "40001"}

		err := s.addRelation(relation.KindFavorite, s.alice, s.recipeID)

		s.Require().Error(err)
		s.NotErrorIs(err, relation.ErrDuplicate)
		s.NotErrorIs(err, recipe.ErrRecipeNotFound)
	})
}

func (s *PostgresErrorTestSuite) TestUserCreate_ConstraintNamesTheColumn() {
	cases := []struct {
		name       string
		constraint string
		want       error
	}{
		{"EmailIndex", "idx_users_email", user.ErrEmailTaken},
		{"UsernameIndex", "idx_users_username", user.ErrUsernameTaken},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.inject["users"] = &pgconnv4.PgError{Code: "23505", ConstraintName: tc.constraint}
			u, err := testutils.NewUserBuilder().Build()
			s.Require().NoError(err)

			err = gormrepo.NewUserRepository(s.db).Create(s.ctx, u)

			s.ErrorIs(err, tc.want)
		})
	}
}

func TestPostgresErrorTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresErrorTestSuite))
}
