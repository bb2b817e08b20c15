package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisDocPrefix = "joyeria:doc:"

// RedisDocumentStore keeps each collection under its own key. SaveAll uses
// MULTI/EXEC so all keys change together.
type RedisDocumentStore struct{ rdb *redis.Client }

func NewRedisDocumentStore(rdb *redis.Client) *RedisDocumentStore {
	return &RedisDocumentStore{rdb: rdb}
}

func (r *RedisDocumentStore) Load(ctx context.Context, coleccion string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, redisDocPrefix+coleccion).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (r *RedisDocumentStore) SaveAll(ctx context.Context, docs map[string][]byte) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for col, doc := range docs {
			pipe.Set(ctx, redisDocPrefix+col, doc, 0)
		}
		return nil
	})
	return err
}

func (r *RedisDocumentStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
