package apiserver_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/alchemorsel/foodgram/internal/application/catalog"
	recipeapp "github.com/alchemorsel/foodgram/internal/application/recipe"
	relationapp "github.com/alchemorsel/foodgram/internal/application/relation"
	shoppingapp "github.com/alchemorsel/foodgram/internal/application/shopping"
	userapp "github.com/alchemorsel/foodgram/internal/application/user"
	"github.com/alchemorsel/foodgram/internal/domain/relation"
	"github.com/alchemorsel/foodgram/internal/infrastructure/config"
	"github.com/alchemorsel/foodgram/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/foodgram/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/foodgram/internal/infrastructure/monitoring"
	gormrepo "github.com/alchemorsel/foodgram/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/foodgram/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/foodgram/internal/infrastructure/security"
	"github.com/alchemorsel/foodgram/pkg/errors"
	"github.com/alchemorsel/foodgram/pkg/healthcheck"
	"github.com/alchemorsel/foodgram/test/testutils"
)

// APIServerTestSuite drives the router end to end against an in-memory
// database.
type APIServerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	fx      *testutils.Fixtures
	auth    *security.AuthService
	metrics *monitoring.MetricsCollector
	handler http.Handler
	assert  *testutils.HTTPAssertions

	author int64
	reader int64
	flour  int64
	salt   int64
	lunch  int64
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "Foodgram", Environment: "test"},
		Server: config.ServerConfig{Port: 8080, MaxBodyBytes: 1 << 20, EnableCORS: true, AllowedOrigins: []string{"*"}},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			JWTExpiration: time.Hour,
			BCryptCost:    bcrypt.MinCost,
		},
		Monitoring: config.MonitoringConfig{
			EnableMetrics:   true,
			MetricsPath:     "/metrics",
			HealthCheckPath: "/health",
			ReadinessPath:   "/ready",
		},
		Pagination: config.PaginationConfig{DefaultLimit: 6, MaxLimit: 100},
	}
}

func (s *APIServerTestSuite) SetupTest() {
	cfg := testConfig()
	log := zap.NewNop()

	s.db = testutils.NewSQLiteDB(s.T())
	s.fx = testutils.NewFixtures(s.T(), s.db)
	s.auth = security.NewAuthService(cfg.Auth, log, nil)
	s.metrics = monitoring.NewMetricsCollector(log)
	s.assert = testutils.NewHTTPAssertions(s.T())

	events := new(testutils.MockEventPublisher)
	events.On("Publish", mock.Anything, mock.Anything).Return().Maybe()

	recipes := gormrepo.NewRecipeRepository(s.db)
	ingredients := gormrepo.NewIngredientRepository(s.db)
	tags := gormrepo.NewTagRepository(s.db)
	users := gormrepo.NewUserRepository(s.db)
	relations := gormrepo.NewRelationRepository(s.db)

	services := handlers.Services{
		Recipes: recipeapp.NewRecipeService(recipes, ingredients, tags, events,
			recipeapp.Pagination{DefaultLimit: 6, MaxLimit: 100}, log),
		Relations: relationapp.NewRelationService(relations, recipes, users, events, 6, 100, log),
		Shopping:  shoppingapp.NewShoppingListService(gormrepo.NewShoppingListRepository(s.db), log),
		Users:     userapp.NewUserService(users, relations, s.auth, events, log),
		Catalog: catalog.NewCatalogService(ingredients, tags, memory.NewCacheRepository(0),
			catalog.CacheTTL{Tags: time.Minute, Ingredients: time.Minute}, s.metrics, log),
	}

	health := healthcheck.New("test", log)
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	health.Register("database", healthcheck.NewDatabaseChecker(sqlDB))

	server := apiserver.NewAPIServer(apiserver.Dependencies{
		Config:   cfg,
		Logger:   log,
		Services: services,
		Tokens:   s.auth,
		Metrics:  s.metrics,
		Health:   health,
	})
	s.handler = server.Handler()

	s.author = s.fx.User("author")
	s.reader = s.fx.User("reader")
	s.flour = s.fx.Ingredient("flour", "g")
	s.salt = s.fx.Ingredient("salt", "g")
	s.lunch = s.fx.Tag("Lunch", "lunch")
}

func (s *APIServerTestSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *APIServerTestSuite) token(userID int64) string {
	token, err := s.auth.GenerateAccessToken(userID, "user")
	s.Require().NoError(err)
	return token
}

func (s *APIServerTestSuite) do(method, path string, userID int64, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID > 0 {
		req.Header.Set("Authorization", "Bearer "+s.token(userID))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APIServerTestSuite) recipeBody(amounts map[int64]int) map[string]interface{} {
	ingredients := make([]map[string]interface{}, 0, len(amounts))
	for _, id := range []int64{s.flour, s.salt} {
		if amount, ok := amounts[id]; ok {
			ingredients = append(ingredients, map[string]interface{}{"id": id, "amount": amount})
		}
	}
	return map[string]interface{}{
		"name":         "Bread",
		"text":         "Knead and bake",
		"image":        "recipes/images/bread.png",
		"cooking_time": 60,
		"ingredients":  ingredients,
		"tags":         []int64{s.lunch},
	}
}

func (s *APIServerTestSuite) createRecipe(userID int64, amounts map[int64]int) int64 {
	rec := s.do(http.MethodPost, "/api/recipes", userID, s.recipeBody(amounts))
	s.assert.StatusCode(rec, http.StatusCreated)
	var created handlers.RecipeResponse
	s.assert.JSONResponse(rec, &created)
	return created.ID
}

func (s *APIServerTestSuite) TestRegistration() {
	body := map[string]interface{}{
		"email":      " New@Example.com ",
		"username":   "newcomer",
		"first_name": "New",
		"last_name":  "Comer",
		"password":   "s3cret-pass",
	}

	s.Run("NewUser_ShouldBeCreated", func() {
		rec := s.do(http.MethodPost, "/api/users", 0, body)

		s.assert.StatusCode(rec, http.StatusCreated)
		var got handlers.RegisteredUserResponse
		s.assert.JSONResponse(rec, &got)
		s.Equal("newcomer", got.Username)
		s.Equal("new@example.com", got.Email)
		s.NotZero(got.ID)
		s.NotContains(rec.Body.String(), "password")
	})

	s.Run("TakenUsername_ShouldConflict", func() {
		s.assert.StatusCode(s.do(http.MethodPost, "/api/users", 0, body), http.StatusCreated)

		rec := s.do(http.MethodPost, "/api/users", 0, body)

		s.assert.StatusCode(rec, http.StatusConflict)
		s.assert.ErrorCode(rec, errors.CodeUsernameAlreadyExists)
	})

	s.Run("MissingFields_ShouldReportJSONFieldNames", func() {
		rec := s.do(http.MethodPost, "/api/users", 0, map[string]interface{}{"username": "x"})

		s.assert.StatusCode(rec, http.StatusBadRequest)
		resp := s.assert.ErrorCode(rec, errors.CodeValidationFailed)
		s.Contains(resp.Error.Details, "email is required")
		s.Contains(resp.Error.Details, "first_name is required")
	})

	s.Run("MalformedJSON_ShouldBeBadRequest", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		s.handler.ServeHTTP(rec, req)

		s.assert.StatusCode(rec, http.StatusBadRequest)
		s.assert.ErrorCode(rec, errors.CodeBadRequest)
	})
}

func (s *APIServerTestSuite) TestAuthentication() {
	s.Run("MissingToken_ShouldBeUnauthorized", func() {
		rec := s.do(http.MethodGet, "/api/users/me", 0, nil)

		s.assert.StatusCode(rec, http.StatusUnauthorized)
		s.assert.ErrorCode(rec, errors.CodeUnauthorized)
	})

	s.Run("InvalidToken_ShouldBeRejectedOnPublicRoutes", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()

		s.handler.ServeHTTP(rec, req)

		s.assert.StatusCode(rec, http.StatusUnauthorized)
	})

	s.Run("ValidToken_ShouldResolveViewer", func() {
		rec := s.do(http.MethodGet, "/api/users/me", s.reader, nil)

		s.assert.StatusCode(rec, http.StatusOK)
		var me handlers.UserResponse
		s.assert.JSONResponse(rec, &me)
		s.Equal(s.reader, me.ID)
		s.Equal("reader", me.Username)
	})
}

func (s *APIServerTestSuite) TestRecipeLifecycle() {
	s.Run("Create_ShouldReturnFullRecipe", func() {
		rec := s.do(http.MethodPost, "/api/recipes", s.author, s.recipeBody(map[int64]int{s.flour: 500, s.salt: 10}))

		s.assert.StatusCode(rec, http.StatusCreated)
		var got handlers.RecipeResponse
		s.assert.JSONResponse(rec, &got)
		s.Equal("Bread", got.Name)
		s.Equal(s.author, got.Author.ID)
		s.Require().Len(got.Ingredients, 2)
		s.Equal("flour", got.Ingredients[0].Name)
		s.Equal(500, got.Ingredients[0].Amount)
		s.Require().Len(got.Tags, 1)
		s.Equal("lunch", got.Tags[0].Slug)
		s.False(got.IsFavorited)
		s.NotEmpty(rec.Header().Get("Location"))
	})

	s.Run("DuplicateIngredient_ShouldFailValidation", func() {
		body := s.recipeBody(nil)
		body["ingredients"] = []map[string]interface{}{
			{"id": s.flour, "amount": 1},
			{"id": s.flour, "amount": 2},
		}

		rec := s.do(http.MethodPost, "/api/recipes", s.author, body)

		s.assert.StatusCode(rec, http.StatusBadRequest)
		s.assert.ErrorCode(rec, errors.CodeValidationFailed)
		s.Equal(int64(0), testutils.CountRecords(s.T(), s.db, "recipes"))
	})

	s.Run("UnknownTag_ShouldBeNotFound", func() {
		body := s.recipeBody(map[int64]int{s.flour: 1})
		body["tags"] = []int64{s.lunch, 999}

		rec := s.do(http.MethodPost, "/api/recipes", s.author, body)

		s.assert.StatusCode(rec, http.StatusNotFound)
		s.assert.ErrorCode(rec, errors.CodeTagNotFound)
	})

	s.Run("Anonymous_ShouldBeUnauthorized", func() {
		rec := s.do(http.MethodPost, "/api/recipes", 0, s.recipeBody(map[int64]int{s.flour: 1}))

		s.assert.StatusCode(rec, http.StatusUnauthorized)
	})

	s.Run("UpdateByStranger_ShouldBeForbidden", func() {
		id := s.createRecipe(s.author, map[int64]int{s.flour: 1})

		rec := s.do(http.MethodPatch, "/api/recipes/"+itoa(id), s.reader, s.recipeBody(map[int64]int{s.salt: 1}))

		s.assert.StatusCode(rec, http.StatusForbidden)
		s.assert.ErrorCode(rec, errors.CodeNotRecipeAuthor)
	})

	s.Run("UpdateByAuthor_ShouldReplaceIngredients", func() {
		id := s.createRecipe(s.author, map[int64]int{s.flour: 1})

		rec := s.do(http.MethodPatch, "/api/recipes/"+itoa(id), s.author, s.recipeBody(map[int64]int{s.salt: 7}))

		s.assert.StatusCode(rec, http.StatusOK)
		var got handlers.RecipeResponse
		s.assert.JSONResponse(rec, &got)
		s.Require().Len(got.Ingredients, 1)
		s.Equal(s.salt, got.Ingredients[0].ID)
	})

	s.Run("Delete_ShouldRemoveRecipe", func() {
		id := s.createRecipe(s.author, map[int64]int{s.flour: 1})

		s.assert.StatusCode(s.do(http.MethodDelete, "/api/recipes/"+itoa(id), s.author, nil), http.StatusNoContent)
		rec := s.do(http.MethodGet, "/api/recipes/"+itoa(id), 0, nil)

		s.assert.StatusCode(rec, http.StatusNotFound)
		s.assert.ErrorCode(rec, errors.CodeRecipeNotFound)
	})
}

func (s *APIServerTestSuite) TestRecipeFilters() {
	s.Run("FavoritedFilter_ShouldUseViewer", func() {
		liked := s.createRecipe(s.author, map[int64]int{s.flour: 1})
		s.createRecipe(s.author, map[int64]int{s.salt: 1})
		s.fx.Relate(relation.KindFavorite, s.reader, liked)

		rec := s.do(http.MethodGet, "/api/recipes?is_favorited=1", s.reader, nil)

		s.assert.StatusCode(rec, http.StatusOK)
		var page struct {
			Count   int64                     `json:"count"`
			Results []handlers.RecipeResponse `json:"results"`
		}
		s.assert.JSONResponse(rec, &page)
		s.Equal(int64(1), page.Count)
		s.Require().Len(page.Results, 1)
		s.Equal(liked, page.Results[0].ID)
		s.True(page.Results[0].IsFavorited)
	})

	s.Run("AnonymousAuthorMe_ShouldBeUnauthorized", func() {
		rec := s.do(http.MethodGet, "/api/recipes?author=me", 0, nil)

		s.assert.StatusCode(rec, http.StatusUnauthorized)
	})

	s.Run("BadTriState_ShouldFailValidation", func() {
		rec := s.do(http.MethodGet, "/api/recipes?is_in_shopping_cart=maybe", s.reader, nil)

		s.assert.StatusCode(rec, http.StatusBadRequest)
		s.assert.ErrorCode(rec, errors.CodeValidationFailed)
	})

	s.Run("Pagination_ShouldLinkNextPage", func() {
		for i := 0; i < 3; i++ {
			s.createRecipe(s.author, map[int64]int{s.flour: 1})
		}

		rec := s.do(http.MethodGet, "/api/recipes?limit=2", 0, nil)

		var page handlers.PageResponse
		s.assert.JSONResponse(rec, &page)
		s.Equal(int64(3), page.Count)
		s.Require().NotNil(page.Next)
		s.Contains(*page.Next, "page=2")
		s.Nil(page.Previous)
	})
}

func (s *APIServerTestSuite) TestFavoritesAndCart() {
	s.Run("Favorite_ShouldReturnSummaryThenRejectDuplicate", func() {
		id := s.createRecipe(s.author, map[int64]int{s.flour: 1})

		rec := s.do(http.MethodPost, "/api/recipes/"+itoa(id)+"/favorite", s.reader, nil)
		s.assert.StatusCode(rec, http.StatusCreated)
		var summary handlers.RecipeSummaryResponse
		s.assert.JSONResponse(rec, &summary)
		s.Equal(id, summary.ID)
		s.Equal("Bread", summary.Name)

		rec = s.do(http.MethodPost, "/api/recipes/"+itoa(id)+"/favorite", s.reader, nil)
		s.assert.StatusCode(rec, http.StatusBadRequest)
		resp := s.assert.ErrorCode(rec, errors.CodeDuplicateRelation)
		s.Contains(resp.Error.Message, "already favorited")
	})

	s.Run("RemoveMissingCartEntry_ShouldBeNotFound", func() {
		id := s.createRecipe(s.author, map[int64]int{s.flour: 1})

		rec := s.do(http.MethodDelete, "/api/recipes/"+itoa(id)+"/shopping_cart", s.reader, nil)

		s.assert.StatusCode(rec, http.StatusNotFound)
		s.assert.ErrorCode(rec, errors.CodeRelationNotFound)
	})

	s.Run("Download_ShouldSumAcrossRecipes", func() {
		first := s.createRecipe(s.author, map[int64]int{s.flour: 200, s.salt: 5})
		second := s.createRecipe(s.author, map[int64]int{s.flour: 300})
		s.assert.StatusCode(s.do(http.MethodPost, "/api/recipes/"+itoa(first)+"/shopping_cart", s.reader, nil), http.StatusCreated)
		s.assert.StatusCode(s.do(http.MethodPost, "/api/recipes/"+itoa(second)+"/shopping_cart", s.reader, nil), http.StatusCreated)

		rec := s.do(http.MethodGet, "/api/recipes/download_shopping_cart", s.reader, nil)

		s.assert.StatusCode(rec, http.StatusOK)
		s.Equal("text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		s.Equal(`attachment; filename="shopping_cart.txt"`, rec.Header().Get("Content-Disposition"))
		s.Equal("Список покупок\n·flour (g)- 500\n·salt (g)- 5\n", rec.Body.String())
	})

	s.Run("DownloadEmptyCart_ShouldRenderHeaderOnly", func() {
		rec := s.do(http.MethodGet, "/api/recipes/download_shopping_cart", s.reader, nil)

		s.assert.StatusCode(rec, http.StatusOK)
		s.Equal("Список покупок\n", rec.Body.String())
	})
}

func (s *APIServerTestSuite) TestSubscriptions() {
	s.Run("Subscribe_ShouldReturnAuthorWithRecipes", func() {
		s.createRecipe(s.author, map[int64]int{s.flour: 1})
		s.createRecipe(s.author, map[int64]int{s.salt: 1})

		rec := s.do(http.MethodPost, "/api/users/"+itoa(s.author)+"/subscribe?recipes_limit=1", s.reader, nil)

		s.assert.StatusCode(rec, http.StatusCreated)
		var sub handlers.SubscriptionResponse
		s.assert.JSONResponse(rec, &sub)
		s.True(sub.IsSubscribed)
		s.Len(sub.Recipes, 1)
		s.Equal(int64(2), sub.RecipesCount)
	})

	s.Run("Self_ShouldBeBadRequest", func() {
		rec := s.do(http.MethodPost, "/api/users/"+itoa(s.reader)+"/subscribe", s.reader, nil)

		s.assert.StatusCode(rec, http.StatusBadRequest)
		s.assert.ErrorCode(rec, errors.CodeDuplicateRelation)
	})

	s.Run("NonIntegerRecipesLimit_ShouldFailValidation", func() {
		rec := s.do(http.MethodGet, "/api/users/subscriptions?recipes_limit=abc", s.reader, nil)

		s.assert.StatusCode(rec, http.StatusBadRequest)
		s.assert.ErrorCode(rec, errors.CodeValidationFailed)
	})

	s.Run("List_ShouldIncludeEmptyRecipePreview", func() {
		s.fx.Relate(relation.KindFollow, s.reader, s.author)

		rec := s.do(http.MethodGet, "/api/users/subscriptions", s.reader, nil)

		s.assert.StatusCode(rec, http.StatusOK)
		s.Contains(rec.Body.String(), `"recipes":[]`)
		s.Contains(rec.Body.String(), `"recipes_count":0`)
	})

	s.Run("Profile_ShouldShowSubscription", func() {
		s.fx.Relate(relation.KindFollow, s.reader, s.author)

		rec := s.do(http.MethodGet, "/api/users/"+itoa(s.author), s.reader, nil)

		var profile handlers.UserResponse
		s.assert.JSONResponse(rec, &profile)
		s.True(profile.IsSubscribed)
	})
}

func (s *APIServerTestSuite) TestCatalog() {
	s.Run("IngredientPrefix_ShouldBeCaseInsensitive", func() {
		rec := s.do(http.MethodGet, "/api/ingredients?name=FL", 0, nil)

		s.assert.StatusCode(rec, http.StatusOK)
		var got []handlers.IngredientResponse
		s.assert.JSONResponse(rec, &got)
		s.Require().Len(got, 1)
		s.Equal("flour", got[0].Name)
	})

	s.Run("UnknownTag_ShouldBeNotFound", func() {
		rec := s.do(http.MethodGet, "/api/tags/999", 0, nil)

		s.assert.StatusCode(rec, http.StatusNotFound)
		s.assert.ErrorCode(rec, errors.CodeTagNotFound)
	})

	s.Run("NonNumericID_ShouldBeNotFound", func() {
		rec := s.do(http.MethodGet, "/api/tags/lunch", 0, nil)

		s.assert.StatusCode(rec, http.StatusNotFound)
	})
}

func (s *APIServerTestSuite) TestOperationalEndpoints() {
	s.Run("Responses_ShouldCarrySecurityHeadersAndRequestID", func() {
		rec := s.do(http.MethodGet, "/api/tags", 0, nil)

		s.assert.StatusCode(rec, http.StatusOK)
		s.assert.SecurityHeaders(rec)
	})

	s.Run("Health_ShouldReportDatabase", func() {
		rec := s.do(http.MethodGet, "/health", 0, nil)

		s.assert.StatusCode(rec, http.StatusOK)
		s.Contains(rec.Body.String(), `"database"`)
	})

	s.Run("Metrics_ShouldExposeRouteLabels", func() {
		s.do(http.MethodGet, "/api/tags/1", 0, nil)

		rec := s.do(http.MethodGet, "/metrics", 0, nil)

		s.assert.StatusCode(rec, http.StatusOK)
		s.Contains(rec.Body.String(), `route="/api/tags/{id}"`)
	})

	s.Run("NonJSONBody_ShouldBeRejected", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader("username=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		s.handler.ServeHTTP(rec, req)

		s.assert.StatusCode(rec, http.StatusBadRequest)
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestAPIServerTestSuite(t *testing.T) {
	suite.Run(t, new(APIServerTestSuite))
}
