package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

func ConnectRedis(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// CachedStore keeps each user's active therapy session in Redis. Cache
// errors are logged and the call falls through to the wrapped store.
type CachedStore struct {
	Store
	rdb    *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func NewCachedStore(base Store, rdb *redis.Client, ttl time.Duration, logger *log.Logger) *CachedStore {
	if logger == nil {
		logger = log.Default()
	}
	return &CachedStore{Store: base, rdb: rdb, ttl: ttl, logger: logger}
}

func activeKey(userID string) string {
	return "mindwave:active_session:" + userID
}

func (c *CachedStore) CreateTherapySession(ctx context.Context, userID string) (TherapySession, error) {
	ts, err := c.Store.CreateTherapySession(ctx, userID)
	if err != nil {
		return ts, err
	}
	c.remember(ctx, ts)
	return ts, nil
}

func (c *CachedStore) ActiveTherapySession(ctx context.Context, userID string) (TherapySession, error) {
	raw, err := c.rdb.Get(ctx, activeKey(userID)).Bytes()
	switch {
	case err == nil:
		var ts TherapySession
		if jsonErr := json.Unmarshal(raw, &ts); jsonErr == nil && ts.Active() {
			// the entry outlives an end whose evict failed
			current, err := c.Store.TherapySession(ctx, ts.ID)
			if err == nil && current.Active() && current.UserID == userID {
				return current, nil
			}
		}
		if err := c.rdb.Del(ctx, activeKey(userID)).Err(); err != nil {
			c.logger.Warn("session cache evict failed", "user", userID, "err", err)
		}
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("session cache read failed", "user", userID, "err", err)
	}

	ts, err := c.Store.ActiveTherapySession(ctx, userID)
	if err != nil {
		return ts, err
	}
	c.remember(ctx, ts)
	return ts, nil
}

func (c *CachedStore) EndTherapySession(ctx context.Context, id string, at time.Time) error {
	ts, lookupErr := c.Store.TherapySession(ctx, id)
	if err := c.Store.EndTherapySession(ctx, id, at); err != nil {
		return err
	}
	if lookupErr == nil {
		if err := c.rdb.Del(ctx, activeKey(ts.UserID)).Err(); err != nil {
			c.logger.Warn("session cache evict failed", "user", ts.UserID, "err", err)
		}
	}
	return nil
}

func (c *CachedStore) Close() {
	c.Store.Close()
	_ = c.rdb.Close()
}

func (c *CachedStore) remember(ctx context.Context, ts TherapySession) {
	raw, err := json.Marshal(ts)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, activeKey(ts.UserID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("session cache write failed", "user", ts.UserID, "err", err)
	}
}
