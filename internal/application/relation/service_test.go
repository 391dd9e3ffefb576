package relation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	relationapp "github.com/alchemorsel/foodgram/internal/application/relation"
	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/relation"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/domain/user"
	"github.com/alchemorsel/foodgram/internal/ports/inbound"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
	"github.com/alchemorsel/foodgram/pkg/errors"
	"github.com/alchemorsel/foodgram/test/testutils"
)

type RelationServiceTestSuite struct {
	suite.Suite
	relations *testutils.MockRelationRepository
	recipes   *testutils.MockRecipeRepository
	users     *testutils.MockUserRepository
	events    *testutils.MockEventPublisher
	service   inbound.RelationService
	ctx       context.Context
	viewer    shared.Viewer
}

func (s *RelationServiceTestSuite) SetupTest() {
	s.relations = new(testutils.MockRelationRepository)
	s.recipes = new(testutils.MockRecipeRepository)
	s.users = new(testutils.MockUserRepository)
	s.events = new(testutils.MockEventPublisher)
	s.events.On("Publish", mock.Anything, mock.Anything).Return().Maybe()
	s.service = relationapp.NewRelationService(s.relations, s.recipes, s.users, s.events, 6, 100, zap.NewNop())
	s.ctx = context.Background()
	s.viewer = shared.AuthenticatedAs(1)
}

func (s *RelationServiceTestSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *RelationServiceTestSuite) TearDownSubTest() {
	s.relations.AssertExpectations(s.T())
	s.recipes.AssertExpectations(s.T())
	s.users.AssertExpectations(s.T())
}

func author(id int64, username string) *user.User {
	now := time.Now()
	return user.Restore(id, username, username+"@example.com", "", "", "hash", now, now)
}

func (s *RelationServiceTestSuite) TestAddFavorite() {
	s.Run("ExistingRecipe_ShouldReturnSummary", func() {
		summary := &recipe.Summary{ID: 4, Name: "Soup", CookingTime: 10}
		s.recipes.On("GetSummary", mock.Anything, int64(4)).Return(summary, nil)
		s.relations.On("Add", mock.Anything, mock.MatchedBy(func(r relation.Relation) bool {
			return r.Kind == relation.KindFavorite && r.UserID == 1 && r.TargetID == 4
		})).Return(nil)

		got, err := s.service.AddFavorite(s.ctx, s.viewer, 4)

		s.Require().NoError(err)
		s.Equal(summary, got)
		s.events.AssertCalled(s.T(), "Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventName() == "relation.added"
		}))
	})

	s.Run("Duplicate_ShouldBeBadRequest", func() {
		s.recipes.On("GetSummary", mock.Anything, int64(4)).Return(&recipe.Summary{ID: 4}, nil)
		s.relations.On("Add", mock.Anything, mock.Anything).Return(relation.NewDuplicateError(relation.KindFavorite))

		_, err := s.service.AddFavorite(s.ctx, s.viewer, 4)

		testutils.AssertAppError(s.T(), err, errors.CodeDuplicateRelation)
		s.Equal(400, err.(*errors.AppError).StatusCode())
	})

	s.Run("MissingRecipe_ShouldBeNotFound", func() {
		s.recipes.On("GetSummary", mock.Anything, int64(4)).Return(nil, recipe.ErrRecipeNotFound)

		_, err := s.service.AddFavorite(s.ctx, s.viewer, 4)

		testutils.AssertAppError(s.T(), err, errors.CodeRecipeNotFound)
	})

	s.Run("Anonymous_ShouldBeUnauthorized", func() {
		_, err := s.service.AddFavorite(s.ctx, shared.Anonymous(), 4)

		testutils.AssertAppError(s.T(), err, errors.CodeUnauthorized)
	})
}

func (s *RelationServiceTestSuite) TestRemoveFromShoppingCart() {
	s.Run("InCart_ShouldRemove", func() {
		s.recipes.On("Exists", mock.Anything, int64(4)).Return(true, nil)
		s.relations.On("Remove", mock.Anything, relation.KindPurchase, int64(1), int64(4)).Return(nil)

		s.NoError(s.service.RemoveFromShoppingCart(s.ctx, s.viewer, 4))
	})

	s.Run("NotInCart_ShouldBeNotFound", func() {
		s.recipes.On("Exists", mock.Anything, int64(4)).Return(true, nil)
		s.relations.On("Remove", mock.Anything, relation.KindPurchase, int64(1), int64(4)).
			Return(relation.NewNotFoundError(relation.KindPurchase))

		err := s.service.RemoveFromShoppingCart(s.ctx, s.viewer, 4)

		testutils.AssertAppError(s.T(), err, errors.CodeRelationNotFound)
	})

	s.Run("MissingRecipe_ShouldBeNotFound", func() {
		s.recipes.On("Exists", mock.Anything, int64(4)).Return(false, nil)

		err := s.service.RemoveFromShoppingCart(s.ctx, s.viewer, 4)

		testutils.AssertAppError(s.T(), err, errors.CodeRecipeNotFound)
		s.relations.AssertNotCalled(s.T(), "Remove", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func (s *RelationServiceTestSuite) TestSubscribe() {
	s.Run("OtherUser_ShouldReturnProfileWithRecipes", func() {
		s.users.On("FindByID", mock.Anything, int64(2)).Return(author(2, "chef"), nil)
		s.relations.On("Add", mock.Anything, mock.MatchedBy(func(r relation.Relation) bool {
			return r.Kind == relation.KindFollow && r.TargetID == 2
		})).Return(nil)
		s.recipes.On("SummariesByAuthors", mock.Anything, []int64{2}, 3).Return(
			map[int64][]recipe.Summary{2: {{ID: 7}, {ID: 8}, {ID: 9}}},
			map[int64]int64{2: 5},
			nil,
		)

		sub, err := s.service.Subscribe(s.ctx, s.viewer, 2, 3)

		s.Require().NoError(err)
		s.True(sub.Author.IsSubscribed)
		s.Equal("chef", sub.Author.Username)
		s.Len(sub.Recipes, 3)
		s.Equal(int64(5), sub.RecipesCount)
	})

	s.Run("Self_ShouldBeBadRequest", func() {
		s.users.On("FindByID", mock.Anything, int64(1)).Return(author(1, "me1"), nil)

		_, err := s.service.Subscribe(s.ctx, s.viewer, 1, 0)

		testutils.AssertAppError(s.T(), err, errors.CodeDuplicateRelation)
		s.Contains(err.Error(), relation.SelfFollowMessage)
		s.relations.AssertNotCalled(s.T(), "Add", mock.Anything, mock.Anything)
	})

	s.Run("UnknownAuthor_ShouldBeNotFound", func() {
		s.users.On("FindByID", mock.Anything, int64(9)).Return(nil, user.ErrUserNotFound)

		_, err := s.service.Subscribe(s.ctx, s.viewer, 9, 0)

		testutils.AssertAppError(s.T(), err, errors.CodeUserNotFound)
	})
}

func (s *RelationServiceTestSuite) TestUnsubscribe() {
	s.Run("NotFollowing_ShouldBeNotFound", func() {
		s.users.On("Exists", mock.Anything, int64(2)).Return(true, nil)
		s.relations.On("Remove", mock.Anything, relation.KindFollow, int64(1), int64(2)).
			Return(relation.NewNotFoundError(relation.KindFollow))

		err := s.service.Unsubscribe(s.ctx, s.viewer, 2)

		testutils.AssertAppError(s.T(), err, errors.CodeRelationNotFound)
	})
}

func (s *RelationServiceTestSuite) TestListSubscriptions() {
	s.Run("ShouldAttachRecipesPerAuthor", func() {
		s.users.On("ListFollowing", mock.Anything, int64(1), outbound.Page{Offset: 0, Limit: 6}).
			Return([]*user.User{author(2, "a"), author(3, "b")}, int64(2), nil)
		s.recipes.On("SummariesByAuthors", mock.Anything, []int64{2, 3}, 0).Return(
			map[int64][]recipe.Summary{2: {{ID: 1}}},
			map[int64]int64{2: 1},
			nil,
		)

		list, err := s.service.ListSubscriptions(s.ctx, s.viewer, inbound.PaginationParams{}, 0)

		s.Require().NoError(err)
		s.Equal(int64(2), list.Total)
		s.Require().Len(list.Subscriptions, 2)
		s.Len(list.Subscriptions[0].Recipes, 1)
		s.NotNil(list.Subscriptions[1].Recipes)
		s.Empty(list.Subscriptions[1].Recipes)
		s.Equal(int64(0), list.Subscriptions[1].RecipesCount)
	})

	s.Run("NoFollows_ShouldSkipRecipeQuery", func() {
		s.users.On("ListFollowing", mock.Anything, int64(1), mock.Anything).
			Return([]*user.User{}, int64(0), nil)

		list, err := s.service.ListSubscriptions(s.ctx, s.viewer, inbound.PaginationParams{Page: 3}, 2)

		s.Require().NoError(err)
		s.Empty(list.Subscriptions)
		s.recipes.AssertNotCalled(s.T(), "SummariesByAuthors", mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("Anonymous_ShouldBeUnauthorized", func() {
		_, err := s.service.ListSubscriptions(s.ctx, shared.Anonymous(), inbound.PaginationParams{}, 0)

		testutils.AssertAppError(s.T(), err, errors.CodeUnauthorized)
	})
}

func TestRelationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RelationServiceTestSuite))
}
