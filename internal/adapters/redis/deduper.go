// Package redis remembers processed webhook deliveries in Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"evently/internal/domain"
)

const keyPrefix = "evently:webhook:delivery:"

// Values stored under a delivery key.
const (
	stateProcessing = "processing"
	stateDone       = "done"
)

// NewClient connects to the Redis server at addr.
func NewClient(addr string) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return client, nil
}

type deduper struct {
	client   rueidis.Client
	claimTTL time.Duration
	doneTTL  time.Duration
}

// NewDeduper returns a DeliveryDeduper backed by client. A claim is held for
// claimTTL while the delivery is processed and a completed delivery is
// remembered for doneTTL.
func NewDeduper(client rueidis.Client, claimTTL, doneTTL time.Duration) domain.DeliveryDeduper {
	return &deduper{client: client, claimTTL: atLeastSecond(claimTTL), doneTTL: atLeastSecond(doneTTL)}
}

func (d *deduper) Claim(ctx context.Context, deliveryID string) (domain.ClaimResult, error) {
	key := deliveryKey(deliveryID)
	set := d.client.B().Set().Key(key).Value(stateProcessing).Nx().ExSeconds(seconds(d.claimTTL)).Build()
	err := d.client.Do(ctx, set).Error()
	if err == nil {
		return domain.ClaimAcquired, nil
	}
	if !rueidis.IsRedisNil(err) {
		return domain.ClaimAcquired, fmt.Errorf("failed to claim delivery %s: %w", deliveryID, err)
	}

	state, err := d.client.Do(ctx, d.client.B().Get().Key(key).Build()).ToString()
	if err != nil && !rueidis.IsRedisNil(err) {
		return domain.ClaimAcquired, fmt.Errorf("failed to read delivery %s: %w", deliveryID, err)
	}
	return claimResult(state), nil
}

func (d *deduper) Complete(ctx context.Context, deliveryID string) error {
	cmd := d.client.B().Set().Key(deliveryKey(deliveryID)).Value(stateDone).ExSeconds(seconds(d.doneTTL)).Build()
	if err := d.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to complete delivery %s: %w", deliveryID, err)
	}
	return nil
}

func (d *deduper) Release(ctx context.Context, deliveryID string) error {
	cmd := d.client.B().Del().Key(deliveryKey(deliveryID)).Build()
	if err := d.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to release delivery %s: %w", deliveryID, err)
	}
	return nil
}

// claimResult maps the value found under an already-taken key. A key that
// expired between SET and GET is still reported as in progress so the sender
// retries instead of the delivery being dropped.
func claimResult(state string) domain.ClaimResult {
	if state == stateDone {
		return domain.ClaimDone
	}
	return domain.ClaimInProgress
}

func deliveryKey(deliveryID string) string {
	return keyPrefix + deliveryID
}

func atLeastSecond(d time.Duration) time.Duration {
	if d < time.Second {
		return time.Second
	}
	return d
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

// NoopDeduper claims every delivery. Used when no Redis is configured.
type NoopDeduper struct{}

func (NoopDeduper) Claim(context.Context, string) (domain.ClaimResult, error) {
	return domain.ClaimAcquired, nil
}

func (NoopDeduper) Complete(context.Context, string) error { return nil }

func (NoopDeduper) Release(context.Context, string) error { return nil }
