// Package cachesvc keeps short-lived state: the whiteboard overlay and revoked session tokens.
package cachesvc

import (
	"context"
	"sync"
	"time"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/whiteboard"
)

type (
	// MemoryCache holds everything in process. Rooms expire ttl after their last write, 0 keeps them forever.
	MemoryCache struct {
		ttl time.Duration
		now func() time.Time

		mutex   sync.Mutex
		rooms   map[string]*roomState
		revoked map[string]time.Time // {tokenID: until}
	}

	roomState struct {
		expires   time.Time
		reactions map[string]map[string]int // {shapeID: {kind: count}}
		comments  map[string][]whiteboard.Comment
		history   []whiteboard.Action
	}
)

var (
	_ whiteboard.OverlayStore = (*MemoryCache)(nil)
	_ core.TokenDenylist      = (*MemoryCache)(nil)
)

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		rooms:   make(map[string]*roomState),
		revoked: make(map[string]time.Time),
	}
}

// room returns the live state of a room, nil when it does not exist or has expired.
func (c *MemoryCache) room(name string) *roomState {
	r, ok := c.rooms[name]
	if !ok {
		return nil
	}
	if c.ttl > 0 && c.now().After(r.expires) {
		delete(c.rooms, name)
		return nil
	}
	return r
}

// touch returns the state of a room for a write, creating it if needed, and pushes back its expiry.
func (c *MemoryCache) touch(name string) *roomState {
	r := c.room(name)
	if r == nil {
		r = &roomState{
			reactions: make(map[string]map[string]int),
			comments:  make(map[string][]whiteboard.Comment),
		}
		c.rooms[name] = r
	}
	r.expires = c.now().Add(c.ttl)
	return r
}

func (c *MemoryCache) AddReaction(_ context.Context, room, shapeID, kind string) (map[string]int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	r := c.touch(room)
	counts, ok := r.reactions[shapeID]
	if !ok {
		counts = make(map[string]int)
		r.reactions[shapeID] = counts
	}
	counts[kind]++
	return copyCounts(counts), nil
}

func (c *MemoryCache) Reactions(_ context.Context, room, shapeID string) (map[string]int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	r := c.room(room)
	if r == nil {
		return map[string]int{}, nil
	}
	return copyCounts(r.reactions[shapeID]), nil
}

func (c *MemoryCache) AddComment(_ context.Context, room string, cm whiteboard.Comment) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	r := c.touch(room)
	r.comments[cm.ShapeID] = append(r.comments[cm.ShapeID], cm)
	return nil
}

func (c *MemoryCache) Comments(_ context.Context, room, shapeID string) ([]whiteboard.Comment, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	r := c.room(room)
	if r == nil {
		return []whiteboard.Comment{}, nil
	}
	return append([]whiteboard.Comment{}, r.comments[shapeID]...), nil
}

func (c *MemoryCache) LogAction(_ context.Context, room string, a whiteboard.Action, limit int) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	r := c.touch(room)
	r.history = append(r.history, a)
	if limit > 0 && len(r.history) > limit {
		r.history = append([]whiteboard.Action{}, r.history[len(r.history)-limit:]...)
	}
	return nil
}

func (c *MemoryCache) History(_ context.Context, room string) ([]whiteboard.Action, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	r := c.room(room)
	if r == nil {
		return []whiteboard.Action{}, nil
	}
	return append([]whiteboard.Action{}, r.history...), nil
}

func (c *MemoryCache) Revoke(_ context.Context, tokenID string, until time.Time) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	for id, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, id)
		}
	}
	if until.After(now) {
		c.revoked[tokenID] = until
	}
	return nil
}

func (c *MemoryCache) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	until, ok := c.revoked[tokenID]
	return ok && c.now().Before(until), nil
}

func copyCounts(counts map[string]int) map[string]int {
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out
}
