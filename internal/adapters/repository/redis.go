package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// HistoryTTL bounds how long id-addressed snapshots are kept in redis.
const HistoryTTL = 24 * time.Hour

// RedisKeys derives key names from a prefix.
type RedisKeys struct {
	Prefix string
}

// Current is the key holding the latest snapshot.
func (k RedisKeys) Current() string { return k.Prefix + ":snapshot:current" }

// ByID is the key holding a specific snapshot.
func (k RedisKeys) ByID(id string) string { return fmt.Sprintf("%s:snapshot:%s", k.Prefix, id) }

// Channel announces new snapshot ids.
func (k RedisKeys) Channel() string { return k.Prefix + ":snapshot:updates" }

// NewRedisClient parses url and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisSource reads the snapshot another instance published.
type RedisSource struct {
	client redis.UniversalClient
	keys   RedisKeys
}

// NewRedisSource creates a source reading keys under prefix.
func NewRedisSource(client redis.UniversalClient, prefix string) *RedisSource {
	return &RedisSource{client: client, keys: RedisKeys{Prefix: prefix}}
}

// Name implements Source.
func (s *RedisSource) Name() string { return "redis" }

// Load implements Source.
func (s *RedisSource) Load(ctx context.Context) (*model.Snapshot, error) {
	data, err := s.client.Get(ctx, s.keys.Current()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrMissingTable, s.keys.Current())
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.keys.Current(), err)
	}
	return unmarshalSnapshot(data)
}

// LoadByID reads a previously published snapshot.
func (s *RedisSource) LoadByID(ctx context.Context, id string) (*model.Snapshot, error) {
	data, err := s.client.Get(ctx, s.keys.ByID(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: snapshot %s", ErrMissingTable, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return unmarshalSnapshot(data)
}

// Subscribe returns a channel of snapshot ids announced by publishers. The
// channel closes when ctx is done.
func (s *RedisSource) Subscribe(ctx context.Context) <-chan string {
	sub := s.client.Subscribe(ctx, s.keys.Channel())
	out := make(chan string)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func unmarshalSnapshot(data []byte) (*model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snap.Players == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingTable, TablePlayers)
	}
	return &snap, nil
}

// RedisPublisher writes accepted snapshots to redis so other instances can
// read them with RedisSource.
type RedisPublisher struct {
	client redis.UniversalClient
	keys   RedisKeys
	ttl    time.Duration
}

// NewRedisPublisher creates a publisher writing keys under prefix.
func NewRedisPublisher(client redis.UniversalClient, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, keys: RedisKeys{Prefix: prefix}, ttl: HistoryTTL}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	pipe := p.client.TxPipeline()
	pipe.Set(ctx, p.keys.Current(), data, 0)
	pipe.Set(ctx, p.keys.ByID(snap.ID), data, p.ttl)
	pipe.Publish(ctx, p.keys.Channel(), snap.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", snap.ID, err)
	}
	return nil
}
