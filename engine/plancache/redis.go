package plancache

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a plan cache backed by a Redis hash-free key/value store,
// gob-encoding each Plan under keyPrefix+key.
type Redis struct {
	client    *redis.Client
	ctx       context.Context
	keyPrefix string
	ttl       time.Duration
}

// NewRedis wraps an existing go-redis client. ttl of 0 means entries
// never expire.
func NewRedis(client *redis.Client, keyPrefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, ctx: context.Background(), keyPrefix: keyPrefix, ttl: ttl}
}

func (r *Redis) Get(key string) (*Plan, bool) {
	data, err := r.client.Get(r.ctx, r.keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var p Plan
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return nil, false
	}
	return &p, true
}

func (r *Redis) Put(key string, p *Plan) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return
	}
	r.client.Set(r.ctx, r.keyPrefix+key, buf.Bytes(), r.ttl)
}
