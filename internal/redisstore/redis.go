// Package redisstore keeps the item table as a single JSON value in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/erazemk/inventario/internal/model"
)

// DefaultKey is the Redis key holding the table.
const DefaultKey = "inventario:items"

// Store is an item table stored under one Redis key.
type Store struct {
	client redis.Cmdable
	key    string
}

// New returns a Store using client. An empty key selects DefaultKey.
func New(client redis.Cmdable, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// Dial connects to the Redis server at addr and checks that it answers.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Read implements inventory.Backend. A missing key is an empty table.
func (s *Store) Read(ctx context.Context) ([]model.Item, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.key, err)
	}
	return decode(data)
}

// Write implements inventory.Backend.
func (s *Store) Write(ctx context.Context, items []model.Item) error {
	data, err := encode(items)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", s.key, err)
	}
	return nil
}

func encode(items []model.Item) ([]byte, error) {
	if items == nil {
		items = []model.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding items: %w", err)
	}
	return data, nil
}

func decode(data []byte) ([]model.Item, error) {
	items := []model.Item{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}
	return items, nil
}
