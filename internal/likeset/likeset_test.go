package likeset

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr
}

func testSet(t *testing.T, s Set) {
	t.Helper()
	ctx := context.Background()

	ok, err := s.Contains(ctx, "visitor-a", "posts:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Add(ctx, "visitor-a", "posts:1"))
	require.NoError(t, s.Add(ctx, "visitor-a", "posts:1"))

	ok, err = s.Contains(ctx, "visitor-a", "posts:1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Contains(ctx, "visitor-a", "posts:2")
	require.NoError(t, err)
	assert.False(t, ok, "other article")

	ok, err = s.Contains(ctx, "visitor-b", "posts:1")
	require.NoError(t, err)
	assert.False(t, ok, "other visitor")
}

func TestMemory(t *testing.T) {
	testSet(t, NewMemory())
}

func TestRedis(t *testing.T) {
	mr := newMiniredis(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisFromClient(client)
	defer s.Close()

	require.NoError(t, s.Ping(context.Background()))
	testSet(t, s)

	members, err := mr.Members("likedPosts:visitor-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"posts:1"}, members)
}

func TestRedisUnavailable(t *testing.T) {
	mr := newMiniredis(t)
	s := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer s.Close()
	mr.SetError("ERR unavailable")

	_, err := s.Contains(context.Background(), "v", "posts:1")
	assert.Error(t, err)
	assert.Error(t, s.Add(context.Background(), "v", "posts:1"))
}

func TestNewRedisBadURL(t *testing.T) {
	_, err := NewRedis("not a url")
	assert.Error(t, err)
}
