package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

// CacheRepositoryTestSuite exercises the degraded path against a Redis
// address nothing listens on.
type CacheRepositoryTestSuite struct {
	suite.Suite
	fallback *memory.CacheRepository
	repo     *CacheRepository
	ctx      context.Context
}

func (s *CacheRepositoryTestSuite) SetupTest() {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       []string{"127.0.0.1:1"},
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	s.fallback = memory.NewCacheRepository(0)
	s.repo = NewCacheRepository(client, s.fallback, BreakerSettings{MaxFailures: 2, Timeout: time.Minute}, zap.NewNop())
	s.ctx = context.Background()
}

func (s *CacheRepositoryTestSuite) TearDownTest() {
	_ = s.repo.Close()
	_ = s.fallback.Close()
}

func (s *CacheRepositoryTestSuite) TestUnavailableRedis_ServesFromFallback() {
	s.Require().NoError(s.repo.Set(s.ctx, "tags:all", []byte("[1]"), time.Minute))

	value, err := s.repo.Get(s.ctx, "tags:all")

	s.Require().NoError(err)
	s.Equal([]byte("[1]"), value)
}

func (s *CacheRepositoryTestSuite) TestUnavailableRedis_MissIsReported() {
	_, err := s.repo.Get(s.ctx, "nothing")
	s.ErrorIs(err, outbound.ErrCacheMiss)
}

func (s *CacheRepositoryTestSuite) TestBreakerOpensAfterConsecutiveFailures() {
	for i := 0; i < 3; i++ {
		_, _ = s.repo.Get(s.ctx, "k")
	}

	s.Equal(gobreaker.StateOpen, s.repo.State())

	// Still answers from the fallback while open.
	s.Require().NoError(s.fallback.Set(s.ctx, "k", []byte("v"), time.Minute))
	value, err := s.repo.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal("v", string(value))
}

func (s *CacheRepositoryTestSuite) TestDeleteByPrefix_ClearsFallback() {
	s.Require().NoError(s.repo.Set(s.ctx, "ingredients:a", []byte("1"), time.Minute))

	// Redis errors surface, but the fallback is already cleared.
	_ = s.repo.DeleteByPrefix(s.ctx, "ingredients:")

	_, err := s.fallback.Get(s.ctx, "ingredients:a")
	s.ErrorIs(err, outbound.ErrCacheMiss)
}

func TestCacheRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(CacheRepositoryTestSuite))
}
