package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/dropoff-location/internal/core/domain"
)

const dedupTTL = time.Hour

// DedupChecker remembers recently stored positions so an identical
// resubmission is acknowledged without a second insert.
// Key format: dedup:location:<timestamp_ms>:<lat>:<lng>
type DedupChecker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client, ttl: dedupTTL}
}

// IsDuplicate reports whether this exact reading has already been stored.
func (d *DedupChecker) IsDuplicate(ctx context.Context, pos domain.Position) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKey(pos)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this reading has been stored (expires after the TTL).
func (d *DedupChecker) Mark(ctx context.Context, pos domain.Position) error {
	return d.client.Set(ctx, dedupKey(pos), "1", d.ttl).Err()
}

func dedupKey(pos domain.Position) string {
	return fmt.Sprintf("dedup:location:%d:%s:%s",
		pos.Timestamp,
		strconv.FormatFloat(pos.Latitude, 'f', -1, 64),
		strconv.FormatFloat(pos.Longitude, 'f', -1, 64),
	)
}
