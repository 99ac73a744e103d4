// Package redisstore stores record collections as JSON strings in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/study-scheduler/internal/persistence"
)

const (
	// DefaultKeyPrefix namespaces every key written by the store.
	DefaultKeyPrefix = "booking:"
	// sharedMember stands in for persistence.SharedOwnerKey in keys and the index.
	sharedMember = "shared"
	// ownerMemberPrefix tags real owner ids so none can read as sharedMember.
	ownerMemberPrefix = "owner:"
)

// Config holds configuration for the Redis record store.
type Config struct {
	RedisClient *redis.Client
	KeyPrefix   string
	// TTL expires collections; zero keeps them forever.
	TTL time.Duration
}

// Store implements persistence.RecordStore on a Redis client.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore validates cfg and pings the server.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if err := cfg.RedisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: cfg.RedisClient, prefix: prefix, ttl: cfg.TTL}, nil
}

// collectionKey is {prefix}{collection}:data:{member}. The index lives under
// a different segment so no owner id can address it.
func (s *Store) collectionKey(collection, ownerKey string) string {
	return fmt.Sprintf("%s%s:data:%s", s.prefix, collection, ownerKeyMember(ownerKey))
}

func (s *Store) indexKey(collection string) string {
	return fmt.Sprintf("%s%s:index", s.prefix, collection)
}

// Load implements persistence.RecordStore.
func (s *Store) Load(ctx context.Context, collection, ownerKey string) (persistence.RecordSet, error) {
	if err := persistence.ValidateCollection(collection); err != nil {
		return nil, err
	}

	payload, err := s.client.Get(ctx, s.collectionKey(collection, ownerKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return persistence.RecordSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: load %s: %w", collection, mapError(err))
	}

	records, err := persistence.DecodeRecordSet(payload)
	if err != nil {
		return nil, fmt.Errorf("redis: load %s: %w", collection, err)
	}
	return records, nil
}

// Save implements persistence.RecordStore. The payload and the owner index
// are written in one MULTI/EXEC pipeline.
func (s *Store) Save(ctx context.Context, collection, ownerKey string, records persistence.RecordSet) error {
	if err := persistence.ValidateCollection(collection); err != nil {
		return err
	}
	payload, err := persistence.EncodeRecordSet(records)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.collectionKey(collection, ownerKey), payload, s.ttl)
	pipe.SAdd(ctx, s.indexKey(collection), ownerKeyMember(ownerKey))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: save %s: %w", collection, mapError(err))
	}
	return nil
}

// Owners lists the owner keys that have saved the collection, in no particular order.
func (s *Store) Owners(ctx context.Context, collection string) ([]string, error) {
	if err := persistence.ValidateCollection(collection); err != nil {
		return nil, err
	}
	members, err := s.client.SMembers(ctx, s.indexKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: owners %s: %w", collection, mapError(err))
	}
	owners := make([]string, 0, len(members))
	for _, member := range members {
		switch {
		case member == sharedMember:
			owners = append(owners, persistence.SharedOwnerKey)
		case strings.HasPrefix(member, ownerMemberPrefix):
			owners = append(owners, strings.TrimPrefix(member, ownerMemberPrefix))
		}
	}
	return owners, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func ownerKeyMember(ownerKey string) string {
	if ownerKey == persistence.SharedOwnerKey {
		return sharedMember
	}
	return ownerMemberPrefix + ownerKey
}

func mapError(err error) error {
	if errors.Is(err, redis.ErrClosed) || (err != nil && strings.Contains(err.Error(), "client is closed")) {
		return fmt.Errorf("%w: %v", persistence.ErrStoreClosed, err)
	}
	return err
}
