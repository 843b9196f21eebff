/*
Package redisstore provides an implementation of cache.NormStore
backed by redis, allowing several processes computing entries of
the same kernel matrix to share tree norms.
*/
package redisstore

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/pbanos/treekernel/cache"
	"github.com/zeebo/blake3"
	"gopkg.in/redis.v5"
)

type redisStore struct {
	rc     *redis.Client
	prefix string
}

/*
New builds a cache.NormStore backed by a redis DB. Norms are
kept as strings under keys made of the given prefix and the
hex BLAKE3 digest of the norm key, so keys have a fixed
length no matter the size of the tree it names.
*/
func New(rc *redis.Client, prefix string) cache.NormStore {
	return &redisStore{rc, prefix}
}

func (rs *redisStore) Get(ctx context.Context, key string) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	redisKey := rs.keyFor(key)
	data, err := rs.rc.Get(redisKey).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("retrieving norm %q from redis: %v", redisKey, err)
	}
	norm, err := strconv.ParseFloat(data, 64)
	if err != nil {
		return 0, false, fmt.Errorf("retrieving norm %q: decoding %q: %v", redisKey, data, err)
	}
	return norm, true, nil
}

func (rs *redisStore) SetIfAbsent(ctx context.Context, key string, norm float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	redisKey := rs.keyFor(key)
	ok, err := rs.rc.SetNX(redisKey, strconv.FormatFloat(norm, 'g', -1, 64), 0).Result()
	if err != nil {
		return 0, fmt.Errorf("storing norm %q in redis: %v", redisKey, err)
	}
	if ok {
		return norm, nil
	}
	stored, found, err := rs.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("storing norm %q in redis: key vanished after failed SETNX", redisKey)
	}
	return stored, nil
}

func (rs *redisStore) Len(ctx context.Context) (int, error) {
	var count int
	iter := rs.rc.Scan(0, fmt.Sprintf("%s:*", rs.prefix), 100).Iterator()
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("counting norms with prefix %q: %v", rs.prefix, err)
	}
	return count, nil
}

func (rs *redisStore) Close(ctx context.Context) error {
	return nil
}

func (rs *redisStore) keyFor(key string) string {
	return KeyFor(rs.prefix, key)
}

// KeyFor returns the redis key under which a store with the
// given prefix keeps the norm with the given key.
func KeyFor(prefix, key string) string {
	digest := blake3.Sum256([]byte(key))
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(digest[:]))
}
