package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/EcoExpand-AI/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	client := NewClientFrom(db, logging.NewNopLogger())
	s.cache = NewRedisCache(client, logging.NewNopLogger(), WithPrefix("test:"), WithoutJitter())
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type reply struct {
	Response string `json:"response"`
}

func (s *CacheTestSuite) TestGet_CacheHit() {
	val := reply{Response: "Consider Vietnam."}
	data, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").SetVal(string(data))

	var dest reply
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGet_CacheMiss() {
	s.mock.ExpectGet("test:key1").RedisNil()

	var dest reply
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
	assert.Equal(s.T(), ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestGet_NullMarkerIsMiss() {
	s.mock.ExpectGet("test:key1").SetVal(nullMarker)

	var dest reply
	assert.Equal(s.T(), ErrCacheMiss, s.cache.Get(context.Background(), "key1", &dest))
}

func (s *CacheTestSuite) TestGet_CorruptValue() {
	s.mock.ExpectGet("test:key1").SetVal("{not json")

	var dest reply
	err := s.cache.Get(context.Background(), "key1", &dest)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestSet_UsesDefaultTTL() {
	data, _ := json.Marshal(reply{Response: "ok"})
	s.mock.ExpectSet("test:key1", data, 15*time.Minute).SetVal("OK")

	assert.NoError(s.T(), s.cache.Set(context.Background(), "key1", reply{Response: "ok"}, 0))
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)
	assert.NoError(s.T(), s.cache.Delete(context.Background(), "k1", "k2"))
	assert.NoError(s.T(), s.cache.Delete(context.Background()))
}

func (s *CacheTestSuite) TestExists() {
	s.mock.ExpectExists("test:k1").SetVal(1)

	exists, err := s.cache.Exists(context.Background(), "k1")
	assert.NoError(s.T(), err)
	assert.True(s.T(), exists)
}

func (s *CacheTestSuite) TestGetOrSet_Hit() {
	val := reply{Response: "cached"}
	data, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").SetVal(string(data))

	calls := 0
	var dest reply
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		calls++
		return reply{Response: "fresh"}, nil
	})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 0, calls)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_MissLoadsAndStores() {
	val := reply{Response: "fresh"}
	data, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").RedisNil()
	s.mock.ExpectSet("test:key1", data, time.Minute).SetVal("OK")

	var dest reply
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return val, nil
	})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_BackendErrorFallsThrough() {
	val := reply{Response: "fresh"}
	data, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").SetErr(errors.New("connection refused"))
	s.mock.ExpectSet("test:key1", data, time.Minute).SetErr(errors.New("connection refused"))

	var dest reply
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return val, nil
	})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_LoaderError() {
	s.mock.ExpectGet("test:key1").RedisNil()

	var dest reply
	boom := errors.New("upstream down")
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(s.T(), err, boom)
}

func (s *CacheTestSuite) TestGetOrSet_NilResultIsNegativeCached() {
	s.mock.ExpectGet("test:key1").RedisNil()
	s.mock.ExpectSet("test:key1", nullMarker, 30*time.Second).SetVal("OK")

	var dest reply
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})
	assert.Equal(s.T(), ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	s.mock.ExpectScan(0, "test:chat:*", 100).SetVal([]string{"test:chat:a", "test:chat:b"}, 7)
	s.mock.ExpectDel("test:chat:a", "test:chat:b").SetVal(2)
	s.mock.ExpectScan(7, "test:chat:*", 100).SetVal([]string{}, 0)

	n, err := s.cache.DeleteByPrefix(context.Background(), "chat:")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), n)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}
