package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

type CacheRepositoryTestSuite struct {
	suite.Suite
	repo *CacheRepository
	ctx  context.Context
}

func (s *CacheRepositoryTestSuite) SetupTest() {
	s.repo = NewCacheRepository(0)
	s.ctx = context.Background()
}

func (s *CacheRepositoryTestSuite) TearDownTest() {
	s.NoError(s.repo.Close())
}

func (s *CacheRepositoryTestSuite) TestGetSet() {
	s.Run("Missing_ShouldReturnCacheMiss", func() {
		_, err := s.repo.Get(s.ctx, "absent")
		s.ErrorIs(err, outbound.ErrCacheMiss)
	})

	s.Run("Stored_ShouldBeReturned", func() {
		s.Require().NoError(s.repo.Set(s.ctx, "tags:all", []byte("[]"), time.Minute))

		value, err := s.repo.Get(s.ctx, "tags:all")

		s.Require().NoError(err)
		s.Equal([]byte("[]"), value)
	})

	s.Run("Expired_ShouldBeEvicted", func() {
		s.Require().NoError(s.repo.Set(s.ctx, "short", []byte("x"), time.Nanosecond))
		time.Sleep(time.Millisecond)

		_, err := s.repo.Get(s.ctx, "short")

		s.ErrorIs(err, outbound.ErrCacheMiss)
		_, stillThere := s.repo.data["short"]
		s.False(stillThere)
	})
}

func (s *CacheRepositoryTestSuite) TestSet_CopiesValue() {
	value := []byte("abc")
	s.Require().NoError(s.repo.Set(s.ctx, "k", value, time.Minute))
	value[0] = 'z'

	stored, err := s.repo.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal("abc", string(stored))
}

func (s *CacheRepositoryTestSuite) TestDelete() {
	for _, key := range []string{"ingredients:su", "ingredients:sa", "tags:all"} {
		s.Require().NoError(s.repo.Set(s.ctx, key, []byte("1"), time.Minute))
	}

	s.Require().NoError(s.repo.DeleteByPrefix(s.ctx, "ingredients:"))
	s.Equal(1, s.repo.Len())

	s.Require().NoError(s.repo.Delete(s.ctx, "tags:all", "unknown"))
	s.Zero(s.repo.Len())
}

func (s *CacheRepositoryTestSuite) TestSweep() {
	s.Require().NoError(s.repo.Set(s.ctx, "old", []byte("1"), time.Millisecond))
	s.Require().NoError(s.repo.Set(s.ctx, "fresh", []byte("1"), time.Hour))

	s.repo.sweep(time.Now().Add(time.Minute))

	s.Equal(1, s.repo.Len())
}

func TestCacheRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(CacheRepositoryTestSuite))
}
