package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"xpilot-copilot/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniStore(t *testing.T, opts Options) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewStore(rdb, opts, logger.NewTestLogger(t)), mr
}

func TestAppend_KeepsLastN(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniStore(t, Options{Size: 3, TTL: time.Minute})

	for _, p := range []string{"one", "two", "three", "four", " five "} {
		require.NoError(t, s.Append(ctx, "sess-1", p))
	}

	got, err := s.Recent(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "four", "five"}, got)
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"sess-1"))
}

func TestAppend_BlankIgnored(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniStore(t, Options{})

	require.NoError(t, s.Append(ctx, "", "hello"))
	require.NoError(t, s.Append(ctx, "sess", "   "))
	assert.Empty(t, mr.Keys())
}

func TestContext_Renders(t *testing.T) {
	ctx := context.Background()
	s, _ := newMiniStore(t, Options{})
	require.NoError(t, s.Append(ctx, "s", "list customers"))
	require.NoError(t, s.Append(ctx, "s", "what is a G/L account?"))

	got, err := s.Context(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "1. list customers\n2. what is a G/L account?", got)

	empty, err := s.Context(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s, _ := newMiniStore(t, Options{})
	require.NoError(t, s.Append(ctx, "s", "x"))
	require.NoError(t, s.Clear(ctx, "s"))

	got, err := s.Recent(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecent_RedisError(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	s := NewStore(rdb, Options{Size: 5}, logger.NewTestLogger(t))

	rmock.ExpectLRange(keyPrefix+"s", -5, -1).SetErr(errors.New("connection refused"))

	_, err := s.Recent(context.Background(), "s")
	assert.ErrorContains(t, err, "failed to read history")
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestRecent_Mocked(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	s := NewStore(rdb, Options{Size: 2}, logger.NewTestLogger(t))

	rmock.ExpectLRange(keyPrefix+"s", -2, -1).SetVal([]string{"a", "b"})

	got, err := s.Recent(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.NoError(t, rmock.ExpectationsWereMet())
}
