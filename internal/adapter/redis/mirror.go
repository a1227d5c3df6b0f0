// Package redis mirrors the zone collection into Redis so other instances
// see every commit, and reloads the local store when another instance
// announces a change.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Replacer receives a full collection after a remote change.
type Replacer interface {
	Replace(zones []domain.FloodZone)
}

// Mirror implements zone.Persister on a Redis hash plus a pub/sub change
// feed. Keys:
//
//	<prefix>:zones    hash of zone id -> JSON record
//	<prefix>:order    sorted set of zone id scored by first write
//	<prefix>:changed  channel announcing each write
type Mirror struct {
	client   *goredis.Client
	prefix   string
	instance string
	logger   *slog.Logger
}

// Open connects to Redis. It returns nil when addr is empty.
func Open(addr, password string, db int) *goredis.Client {
	if addr == "" {
		return nil
	}
	return goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
}

// NewMirror creates a Mirror. Each Mirror has its own instance id so it can
// ignore its own announcements.
func NewMirror(client *goredis.Client, prefix string, logger *slog.Logger) *Mirror {
	return &Mirror{
		client:   client,
		prefix:   prefix,
		instance: uuid.NewString(),
		logger:   logger,
	}
}

func (m *Mirror) zonesKey() string   { return m.prefix + ":zones" }
func (m *Mirror) orderKey() string   { return m.prefix + ":order" }
func (m *Mirror) changedKey() string { return m.prefix + ":changed" }

// change is the payload published on the change channel.
type change struct {
	Origin string `json:"origin"`
	ZoneID string `json:"zone_id"`
}

// Save writes the zone and announces it in one transaction.
func (m *Mirror) Save(ctx context.Context, z domain.FloodZone) error {
	record, err := json.Marshal(z)
	if err != nil {
		return fmt.Errorf("marshal zone: %w", err)
	}
	announcement, err := json.Marshal(change{Origin: m.instance, ZoneID: z.ID})
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	_, err = m.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, m.zonesKey(), z.ID, record)
		pipe.ZAddNX(ctx, m.orderKey(), goredis.Z{Score: float64(time.Now().UnixNano()), Member: z.ID})
		pipe.Publish(ctx, m.changedKey(), announcement)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save %s: %w", z.ID, err)
	}
	return nil
}

// LoadAll returns every mirrored zone in first-write order.
func (m *Mirror) LoadAll(ctx context.Context) ([]domain.FloodZone, error) {
	ids, err := m.client.ZRange(ctx, m.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zone order: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	values, err := m.client.HMGet(ctx, m.zonesKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zone records: %w", err)
	}
	return decodeZones(ids, values)
}

// Watch subscribes to the change channel and, for every announcement from
// another instance, reloads the full collection into r. It blocks until ctx
// is cancelled.
func (m *Mirror) Watch(ctx context.Context, r Replacer) error {
	sub := m.client.Subscribe(ctx, m.changedKey())
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("redis subscribe: %w", err)
	}
	m.logger.Info("watching zone changes", "channel", m.changedKey(), "instance", m.instance)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("redis change channel closed")
			}
			if !isRemote(msg.Payload, m.instance) {
				continue
			}
			zones, err := m.LoadAll(ctx)
			if err != nil {
				m.logger.Error("reload after remote change failed", "error", err)
				continue
			}
			r.Replace(zones)
		}
	}
}

// Ping reports whether Redis is reachable.
func (m *Mirror) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

// isRemote reports whether a change payload came from another instance.
// Unreadable payloads count as remote so the store still converges.
func isRemote(payload, self string) bool {
	var c change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return true
	}
	return c.Origin != self
}

// decodeZones pairs HMGET values with their ids, skipping ids whose record
// has gone missing.
func decodeZones(ids []string, values []any) ([]domain.FloodZone, error) {
	zones := make([]domain.FloodZone, 0, len(ids))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var z domain.FloodZone
		if err := json.Unmarshal([]byte(s), &z); err != nil {
			return nil, fmt.Errorf("decode zone %s: %w", ids[i], err)
		}
		zones = append(zones, z)
	}
	return zones, nil
}
