package operators

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "relay:operators"

// redisStore keeps operators as a Redis list.
type redisStore struct {
	client *redis.Client
	key    string
}

// savedKey marks that Save ran; an empty list deletes the list key itself.
func (s *redisStore) savedKey() string { return s.key + ":saved" }

func (s *redisStore) Load(ctx context.Context) ([]int64, bool, error) {
	vals, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, false, err
	}
	n, err := s.client.Exists(ctx, s.savedKey()).Result()
	if err != nil {
		return nil, false, err
	}
	ids := make([]int64, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, false, err
		}
		ids = append(ids, id)
	}
	return ids, n > 0, nil
}

func (s *redisStore) Save(ctx context.Context, ids []int64) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.Set(ctx, s.savedKey(), 1, 0)
		if len(ids) > 0 {
			vals := make([]any, len(ids))
			for i, id := range ids {
				vals[i] = id
			}
			pipe.RPush(ctx, s.key, vals...)
		}
		return nil
	})
	return err
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
