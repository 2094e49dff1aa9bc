package cachesvc

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/whiteboard"
)

// RedisCache shares the overlay and the token denylist between API instances.
// Every overlay key expires ttl after its last write.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var (
	_ whiteboard.OverlayStore = (*RedisCache)(nil)
	_ core.TokenDenylist      = (*RedisCache)(nil)
)

// NewRedisClient connects to the configured server and checks it answers.
func NewRedisClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func reactionsKey(room, shapeID string) string {
	return fmt.Sprintf("overlay:%s:reactions:%s", room, shapeID)
}

func commentsKey(room, shapeID string) string {
	return fmt.Sprintf("overlay:%s:comments:%s", room, shapeID)
}

func historyKey(room string) string {
	return fmt.Sprintf("overlay:%s:history", room)
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("revoked:%s", tokenID)
}

func (c *RedisCache) expire(ctx context.Context, pipe redis.Pipeliner, key string) {
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
}

func (c *RedisCache) AddReaction(ctx context.Context, room, shapeID, kind string) (map[string]int, error) {
	key := reactionsKey(room, shapeID)
	var all *redis.MapStringStringCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, kind, 1)
		c.expire(ctx, pipe, key)
		all = pipe.HGetAll(ctx, key)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "adding reaction")
	}
	return parseCounts(all.Val())
}

func (c *RedisCache) Reactions(ctx context.Context, room, shapeID string) (map[string]int, error) {
	vals, err := c.client.HGetAll(ctx, reactionsKey(room, shapeID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "getting reactions")
	}
	return parseCounts(vals)
}

func (c *RedisCache) AddComment(ctx context.Context, room string, cm whiteboard.Comment) error {
	data, err := json.Marshal(cm)
	if err != nil {
		return errors.Wrap(err, "encoding comment")
	}
	key := commentsKey(room, cm.ShapeID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		c.expire(ctx, pipe, key)
		return nil
	})
	return errors.Wrap(err, "adding comment")
}

func (c *RedisCache) Comments(ctx context.Context, room, shapeID string) ([]whiteboard.Comment, error) {
	vals, err := c.client.LRange(ctx, commentsKey(room, shapeID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "listing comments")
	}
	comments := make([]whiteboard.Comment, 0, len(vals))
	for _, v := range vals {
		var cm whiteboard.Comment
		if err = json.Unmarshal([]byte(v), &cm); err != nil {
			return nil, errors.Wrap(err, "decoding comment")
		}
		comments = append(comments, cm)
	}
	return comments, nil
}

func (c *RedisCache) LogAction(ctx context.Context, room string, a whiteboard.Action, limit int) error {
	data, err := json.Marshal(a)
	if err != nil {
		return errors.Wrap(err, "encoding action")
	}
	key := historyKey(room)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		if limit > 0 {
			pipe.LTrim(ctx, key, int64(-limit), -1)
		}
		c.expire(ctx, pipe, key)
		return nil
	})
	return errors.Wrap(err, "logging action")
}

func (c *RedisCache) History(ctx context.Context, room string) ([]whiteboard.Action, error) {
	vals, err := c.client.LRange(ctx, historyKey(room), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "listing history")
	}
	actions := make([]whiteboard.Action, 0, len(vals))
	for _, v := range vals {
		var a whiteboard.Action
		if err = json.Unmarshal([]byte(v), &a); err != nil {
			return nil, errors.Wrap(err, "decoding action")
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func (c *RedisCache) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return errors.Wrap(c.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(), "revoking token")
}

func (c *RedisCache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := c.client.Get(ctx, revokedKey(tokenID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "checking token")
	}
	return true, nil
}

func parseCounts(vals map[string]string) (map[string]int, error) {
	counts := make(map[string]int, len(vals))
	for k, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s count", k)
		}
		counts[k] = n
	}
	return counts, nil
}
