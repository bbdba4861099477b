package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionSafetyTTL bounds the lifetime of session entries in Redis, so a
// run that dies before purging cannot leak entries forever.
const sessionSafetyTTL = 24 * time.Hour

// redisStore is a Store backed by a shared Redis instance, for CI fleets
// where many workers want to reuse each other's query results. Entries are
// hashes holding the envelope bytes plus, for session entries, the run ID
// that wrote them; Get hides session entries from other runs.
// PurgeSession removes this run's session entries only — concurrent runs
// own theirs.
type redisStore struct {
	client *redis.Client
	prefix string
	runID  string
}

var _ Store = (*redisStore)(nil)

// NewRedisStore returns a Store on top of client. The caller owns the
// client lifecycle; Close does not close it. prefix namespaces all keys.
func NewRedisStore(client *redis.Client, prefix, runID string) Store {
	if prefix == "" {
		prefix = "cloudlint"
	}
	return &redisStore{client: client, prefix: prefix, runID: runID}
}

func (s *redisStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *redisStore) Get(ctx context.Context, key string) (bool, []byte, error) {
	vals, err := s.client.HMGet(ctx, s.key(key), "v", "r").Result()
	if err != nil {
		return false, nil, err
	}
	raw, ok := vals[0].(string)
	if !ok {
		return false, nil, nil
	}
	if runID, ok := vals[1].(string); ok && runID != "" && runID != s.runID {
		return false, nil, nil
	}
	return true, []byte(raw), nil
}

func (s *redisStore) Set(ctx context.Context, key string, data []byte, expire time.Duration) error {
	k := s.key(key)
	runID := ""
	if expire <= 0 {
		runID = s.runID
		expire = sessionSafetyTTL
	}
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, k, "v", data, "r", runID)
	pipe.Expire(ctx, k, expire)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisStore) PurgeSession(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		runID, err := s.client.HGet(ctx, k, "r").Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return err
		}
		if runID == s.runID {
			if err := s.client.Del(ctx, k).Err(); err != nil {
				return err
			}
		}
	}
	return iter.Err()
}

func (s *redisStore) Close() error {
	return nil
}
