package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const claimTTL = 24 * time.Hour

// SyncClaimer is a fast idempotency guard for sync submissions. The unique
// index on sync_operations stays authoritative; a lost key only costs a
// round trip to Mongo.
// Key format: sync:claim:<company_id>:<device_id>:<client_op_id>
type SyncClaimer struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewSyncClaimer(client redis.Cmdable) *SyncClaimer {
	return &SyncClaimer{client: client, ttl: claimTTL}
}

// Claim reports true the first time a device sends a client op id.
func (c *SyncClaimer) Claim(ctx context.Context, companyID, deviceID, clientOpID string) (bool, error) {
	ok, err := c.client.SetNX(ctx, claimKey(companyID, deviceID, clientOpID), "1", c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("sync claim: %w", err)
	}
	return ok, nil
}

func claimKey(companyID, deviceID, clientOpID string) string {
	return fmt.Sprintf("sync:claim:%s:%s:%s", companyID, deviceID, clientOpID)
}
