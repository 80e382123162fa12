// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	redisRecordPrefix = "prefvec:profile:"
	redisIndexKey     = "prefvec:profiles"
)

// Redis is a go-redis backed store. Records are stored as JSON blobs
// under a key prefix; a set of known keys backs List.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the given address and verifies it with a ping.
func NewRedis(ctx context.Context, addr string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, Unavailable("redis connect", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Get(ctx context.Context, key string) (*Record, error) {
	data, err := r.client.Get(ctx, redisRecordPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, Unavailable("redis get", err)
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, Unavailable("redis decode", err)
	}
	return rec, nil
}

func (r *Redis) Upsert(ctx context.Context, key string, rec *Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return Unavailable("redis encode", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, redisRecordPrefix+key, data, 0)
	pipe.SAdd(ctx, redisIndexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Unavailable("redis upsert", err)
	}
	return nil
}

func (r *Redis) List(ctx context.Context) (map[string]*Record, error) {
	keys, err := r.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, Unavailable("redis list", err)
	}
	out := make(map[string]*Record, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = redisRecordPrefix + k
	}
	vals, err := r.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, Unavailable("redis list", err)
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// Index member without a record: skip rather than fail the scan.
			continue
		}
		rec, err := decodeRecord([]byte(s))
		if err != nil {
			return nil, Unavailable("redis decode", err)
		}
		out[keys[i]] = rec
	}
	return out, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
