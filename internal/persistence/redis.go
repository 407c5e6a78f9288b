package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/claims-service/internal/config"
	"github.com/spec-kit/claims-service/internal/domain"
)

const snapshotKeyPrefix = "claims:snapshot:"

// ErrCacheMiss is returned when no snapshot is cached for a case.
var ErrCacheMiss = errors.New("snapshot not cached")

// Redis wraps the go-redis client and the case-snapshot cache built on it.
type Redis struct {
	Client      *redis.Client
	snapshotTTL time.Duration
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client, snapshotTTL: cfg.SnapshotTTL()}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// SetSnapshot caches the current snapshot of a case.
func (r *Redis) SetSnapshot(ctx context.Context, caseID int64, snapshot domain.Snapshot) error {
	if r == nil || r.Client == nil {
		return nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, snapshotKey(caseID), data, r.snapshotTTL).Err()
}

// GetSnapshot returns the cached snapshot for a case, or ErrCacheMiss.
func (r *Redis) GetSnapshot(ctx context.Context, caseID int64) (domain.Snapshot, error) {
	if r == nil || r.Client == nil {
		return nil, ErrCacheMiss
	}
	data, err := r.Client.Get(ctx, snapshotKey(caseID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func snapshotKey(caseID int64) string {
	return fmt.Sprintf("%s%d", snapshotKeyPrefix, caseID)
}
