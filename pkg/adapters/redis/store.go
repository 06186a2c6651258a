package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "vgl:"

// StatStore implements ports.StatStore on Redis.
//
// Layout:
//
//	<prefix>stats:<uuid>   hash    stat type -> {"id":..,"val":..}
//	<prefix>top:<stat>     zset    uuid scored by value
//	<prefix>stat_seq       string  row id sequence
type StatStore struct {
	client backend.UniversalClient
	prefix string
}

// Option configures the StatStore.
type Option func(*StatStore)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *StatStore) {
		s.prefix = prefix
	}
}

// New connects to the Redis server at addr.
func New(addr string, opts ...Option) *StatStore {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *StatStore {
	s := &StatStore{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *StatStore) Client() backend.UniversalClient { return s.client }

// Ping checks the connection.
func (s *StatStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *StatStore) Close() error { return s.client.Close() }

type storedRow struct {
	ID  int64   `json:"id"`
	Val float64 `json:"val"`
}

func (s *StatStore) userKey(id uuid.UUID) string    { return s.prefix + "stats:" + id.String() }
func (s *StatStore) topKey(statType string) string { return s.prefix + "top:" + statType }
func (s *StatStore) seqKey() string                { return s.prefix + "stat_seq" }

func (s *StatStore) Load(ctx context.Context, id uuid.UUID, statType string) (domain.StatRow, error) {
	raw, err := s.client.HGet(ctx, s.userKey(id), statType).Result()
	if errors.Is(err, backend.Nil) {
		return domain.StatRow{}, domain.ErrStatNotFound
	}
	if err != nil {
		return domain.StatRow{}, fmt.Errorf("redis load stat: %w", err)
	}
	return decodeRow(id, statType, raw)
}

func (s *StatStore) Save(ctx context.Context, rows ...*domain.StatRow) error {
	for _, row := range rows {
		if err := s.assignID(ctx, row); err != nil {
			return err
		}
		data, err := json.Marshal(storedRow{ID: row.ID, Val: row.Val})
		if err != nil {
			return err
		}

		pipe := s.client.TxPipeline()
		pipe.HSet(ctx, s.userKey(row.UUID), row.StatType, data)
		pipe.ZAdd(ctx, s.topKey(row.StatType), backend.Z{Score: row.Val, Member: row.UUID.String()})
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis save stat: %w", err)
		}
	}
	return nil
}

func (s *StatStore) assignID(ctx context.Context, row *domain.StatRow) error {
	existing, err := s.Load(ctx, row.UUID, row.StatType)
	switch {
	case err == nil:
		row.ID = existing.ID
		return nil
	case !errors.Is(err, domain.ErrStatNotFound):
		return err
	}
	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("redis stat id: %w", err)
	}
	row.ID = id
	return nil
}

func (s *StatStore) ListByUser(ctx context.Context, id uuid.UUID) ([]domain.StatRow, error) {
	all, err := s.client.HGetAll(ctx, s.userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list stats: %w", err)
	}
	rows := make([]domain.StatRow, 0, len(all))
	for statType, raw := range all {
		row, err := decodeRow(id, statType, raw)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StatType < rows[j].StatType })
	return rows, nil
}

func (s *StatStore) Top(ctx context.Context, statType string, limit int) ([]domain.StatRow, error) {
	stop := int64(limit) - 1
	if limit <= 0 {
		stop = -1
	}
	members, err := s.client.ZRevRangeWithScores(ctx, s.topKey(statType), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis top stats: %w", err)
	}

	rows := make([]domain.StatRow, 0, len(members))
	for _, z := range members {
		member, _ := z.Member.(string)
		id, err := uuid.Parse(member)
		if err != nil {
			return nil, fmt.Errorf("redis top stats: bad member %q: %w", member, err)
		}
		row, err := s.Load(ctx, id, statType)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *StatStore) Delete(ctx context.Context, id uuid.UUID, statType string) error {
	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, s.userKey(id), statType)
	pipe.ZRem(ctx, s.topKey(statType), id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete stat: %w", err)
	}
	return nil
}

func decodeRow(id uuid.UUID, statType, raw string) (domain.StatRow, error) {
	var stored storedRow
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return domain.StatRow{}, fmt.Errorf("decode stat %s: %w", statType, err)
	}
	return domain.StatRow{ID: stored.ID, UUID: id, StatType: statType, Val: stored.Val}, nil
}
