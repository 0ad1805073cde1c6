package persistence

import (
	"context"
	"errors"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/workflows/pkg/api"
)

// RedisDefinitionStore is a DefinitionStore backed by Redis.
// It uses a simple key structure:
//
//	<prefix>def:<id>   => gob-encoded api.Definition
//	<prefix>idx:all    => SET of all definition IDs
//
// The index is best-effort; ListDefinitions skips ids whose payload is gone.
type RedisDefinitionStore struct {
	client *redis.Client
	prefix string
}

var _ DefinitionStore = (*RedisDefinitionStore)(nil)

// NewRedisDefinitionStore creates a RedisDefinitionStore.
// prefix is optional but recommended (e.g. "workflows:").
func NewRedisDefinitionStore(client *redis.Client, prefix string) *RedisDefinitionStore {
	if prefix == "" {
		prefix = "workflows:"
	}
	return &RedisDefinitionStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisDefinitionStore) keyDefinition(id string) string {
	return s.prefix + "def:" + id
}

func (s *RedisDefinitionStore) keyAll() string {
	return s.prefix + "idx:all"
}

func (s *RedisDefinitionStore) SaveDefinition(ctx context.Context, def api.Definition) error {
	data, err := EncodeDefinition(def)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keyDefinition(def.ID), data, 0)
	pipe.SAdd(ctx, s.keyAll(), def.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisDefinitionStore) GetDefinition(ctx context.Context, id string) (api.Definition, error) {
	data, err := s.client.Get(ctx, s.keyDefinition(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return api.Definition{}, ErrDefinitionNotFound
		}
		return api.Definition{}, err
	}
	return DecodeDefinition(data)
}

func (s *RedisDefinitionStore) ListDefinitions(ctx context.Context) ([]api.Definition, error) {
	ids, err := s.client.SMembers(ctx, s.keyAll()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []api.Definition{}, nil
		}
		return nil, err
	}
	if len(ids) == 0 {
		return []api.Definition{}, nil
	}
	slices.Sort(ids)

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, s.keyDefinition(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	defs := make([]api.Definition, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		def, err := DecodeDefinition(data)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (s *RedisDefinitionStore) DeleteDefinition(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.keyDefinition(id))
	pipe.SRem(ctx, s.keyAll(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrDefinitionNotFound
	}
	return nil
}
