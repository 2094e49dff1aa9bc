package cachesvc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaramshGautam/collaBoard/core/whiteboard"
)

var ctx = context.Background()

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestCache(ttl time.Duration) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(ttl)
	c.now = clock.now
	return c, clock
}

func TestMemoryCache_Reactions(t *testing.T) {
	c, _ := newTestCache(0)

	counts, err := c.AddReaction(ctx, "room", "shape:1", "like")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"like": 1}, counts)
	counts, _ = c.AddReaction(ctx, "room", "shape:1", "like")
	assert.Equal(t, map[string]int{"like": 2}, counts)

	// returned maps are copies
	counts["like"] = 100
	got, err := c.Reactions(ctx, "room", "shape:1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"like": 2}, got)

	got, _ = c.Reactions(ctx, "room", "shape:2")
	assert.Empty(t, got)
	got, _ = c.Reactions(ctx, "other", "shape:1")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemoryCache_Comments(t *testing.T) {
	c, _ := newTestCache(0)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.AddComment(ctx, "room", whiteboard.Comment{ID: fmt.Sprint(i), ShapeID: "shape:1"}))
	}
	require.NoError(t, c.AddComment(ctx, "room", whiteboard.Comment{ID: "x", ShapeID: "shape:2"}))

	comments, err := c.Comments(ctx, "room", "shape:1")
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "0", comments[0].ID)
	assert.Equal(t, "2", comments[2].ID)

	comments, _ = c.Comments(ctx, "nowhere", "shape:1")
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
}

func TestMemoryCache_History(t *testing.T) {
	c, _ := newTestCache(0)
	for i := 0; i < 7; i++ {
		require.NoError(t, c.LogAction(ctx, "room", whiteboard.Action{Detail: fmt.Sprint(i)}, 5))
	}
	history, err := c.History(ctx, "room")
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, "2", history[0].Detail)
	assert.Equal(t, "6", history[4].Detail)

	require.NoError(t, c.LogAction(ctx, "unbounded", whiteboard.Action{}, 0))
	history, _ = c.History(ctx, "unbounded")
	assert.Len(t, history, 1)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, clock := newTestCache(time.Hour)
	_, err := c.AddReaction(ctx, "room", "shape:1", "like")
	require.NoError(t, err)

	clock.t = clock.t.Add(50 * time.Minute)
	require.NoError(t, c.AddComment(ctx, "room", whiteboard.Comment{ShapeID: "shape:1"}))

	// the comment pushed back the expiry
	clock.t = clock.t.Add(50 * time.Minute)
	got, _ := c.Reactions(ctx, "room", "shape:1")
	assert.Equal(t, 1, got["like"])

	clock.t = clock.t.Add(11 * time.Minute)
	got, _ = c.Reactions(ctx, "room", "shape:1")
	assert.Empty(t, got)
	comments, _ := c.Comments(ctx, "room", "shape:1")
	assert.Empty(t, comments)
}

func TestMemoryCache_Revoke(t *testing.T) {
	c, clock := newTestCache(0)

	require.NoError(t, c.Revoke(ctx, "t1", clock.t.Add(time.Hour)))
	require.NoError(t, c.Revoke(ctx, "expired", clock.t.Add(-time.Minute)))

	revoked, err := c.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, _ = c.IsRevoked(ctx, "expired")
	assert.False(t, revoked)
	revoked, _ = c.IsRevoked(ctx, "t2")
	assert.False(t, revoked)

	clock.t = clock.t.Add(2 * time.Hour)
	revoked, _ = c.IsRevoked(ctx, "t1")
	assert.False(t, revoked)

	// expired entries are dropped on the next revoke
	require.NoError(t, c.Revoke(ctx, "t3", clock.t.Add(time.Hour)))
	assert.Len(t, c.revoked, 1)
}
