// internal/bus/consumer.go
package bus

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"dird-service/internal/domain/tenant"
	"dird-service/internal/repository/postgres"
)

const (
	tenantCreatedPattern = "auth.tenants.*.created"
	userDeletedPattern   = "auth.users.*.deleted"
	sourceEditedPattern  = "directory.sources.*.edited"
)

// DriverInvalidator drops cached source drivers on configuration change.
type DriverInvalidator interface {
	Invalidate(uuid string)
	InvalidateTenant(tenantUUID string)
}

// Consumer reacts to platform events published on the bus: a new tenant gets
// its default display, a deleted user gets its contacts and favorites purged,
// an edited source gets its cached driver dropped.
type Consumer struct {
	client    *redis.Client
	tenants   *postgres.TenantRepository
	users     *postgres.UserRepository
	displays  *postgres.DisplayRepository
	contacts  *postgres.ContactRepository
	favorites *postgres.FavoriteRepository
	registry  DriverInvalidator
	logger    *zap.Logger

	// collapses concurrent default-display creations for the same tenant
	group singleflight.Group
}

func NewConsumer(
	client *redis.Client,
	tenants *postgres.TenantRepository,
	users *postgres.UserRepository,
	displays *postgres.DisplayRepository,
	contacts *postgres.ContactRepository,
	favorites *postgres.FavoriteRepository,
	registry DriverInvalidator,
	logger *zap.Logger,
) *Consumer {
	return &Consumer{
		client:    client,
		tenants:   tenants,
		users:     users,
		displays:  displays,
		contacts:  contacts,
		favorites: favorites,
		registry:  registry,
		logger:    logger,
	}
}

// Run subscribes to the bus and dispatches events until ctx is cancelled.
// The subscription is re-established with exponential backoff when the
// connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0 // keep retrying until ctx is cancelled
	policy := backoff.WithContext(bo, ctx)

	return backoff.RetryNotify(func() error {
		return c.consume(ctx)
	}, policy, func(err error, wait time.Duration) {
		c.logger.Warn("bus subscription lost, retrying",
			zap.Error(err),
			zap.Duration("retry_in", wait))
	})
}

func (c *Consumer) consume(ctx context.Context) error {
	sub := c.client.PSubscribe(ctx, tenantCreatedPattern, userDeletedPattern, sourceEditedPattern)
	defer sub.Close()

	// Wait for the subscription confirmation before reading events.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	c.logger.Info("subscribed to bus events",
		zap.Strings("patterns", []string{tenantCreatedPattern, userDeletedPattern, sourceEditedPattern}))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return backoff.Permanent(ctx.Err())
		case msg, ok := <-ch:
			if !ok {
				return redis.ErrClosed
			}
			c.dispatch(ctx, msg)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg *redis.Message) {
	switch {
	case matchesPattern(msg.Channel, "auth.tenants.", ".created"):
		c.onTenantCreated(ctx, msg.Payload)
	case matchesPattern(msg.Channel, "auth.users.", ".deleted"):
		c.onUserDeleted(ctx, msg.Payload)
	case matchesPattern(msg.Channel, "directory.sources.", ".edited"):
		c.onSourceEdited(msg.Payload)
	default:
		c.logger.Debug("ignoring bus message", zap.String("channel", msg.Channel))
	}
}

func matchesPattern(channel, prefix, suffix string) bool {
	return strings.HasPrefix(channel, prefix) && strings.HasSuffix(channel, suffix)
}

func (c *Consumer) onTenantCreated(ctx context.Context, payload string) {
	uuid := gjson.Get(payload, "uuid").String()
	if uuid == "" {
		c.logger.Warn("tenant created event without uuid", zap.String("payload", payload))
		return
	}

	_, err, _ := c.group.Do(uuid, func() (any, error) {
		if err := c.tenants.Ensure(ctx, &tenant.Tenant{
			UUID:    uuid,
			Country: gjson.Get(payload, "country").String(),
		}); err != nil {
			return nil, err
		}
		return nil, c.displays.CreateDefault(ctx, uuid)
	})
	if err != nil {
		c.logger.Error("failed to provision tenant",
			zap.String("tenant_uuid", uuid),
			zap.Error(err))
		return
	}
	c.logger.Info("tenant provisioned with default display", zap.String("tenant_uuid", uuid))
}

// onSourceEdited drops the cached driver so the next lookup rebuilds it from
// the new configuration. A payload without a source uuid but with a tenant
// uuid flushes the whole tenant.
func (c *Consumer) onSourceEdited(payload string) {
	if uuid := gjson.Get(payload, "uuid").String(); uuid != "" {
		c.registry.Invalidate(uuid)
		c.logger.Info("invalidated source driver", zap.String("source_uuid", uuid))
		return
	}
	if tenantUUID := gjson.Get(payload, "tenant_uuid").String(); tenantUUID != "" {
		c.registry.InvalidateTenant(tenantUUID)
		c.logger.Info("invalidated tenant drivers", zap.String("tenant_uuid", tenantUUID))
	}
}

func (c *Consumer) onUserDeleted(ctx context.Context, payload string) {
	uuid := gjson.Get(payload, "uuid").String()
	if uuid == "" {
		c.logger.Warn("user deleted event without uuid", zap.String("payload", payload))
		return
	}

	if err := c.contacts.Purge(ctx, uuid); err != nil {
		c.logger.Error("failed to purge contacts of deleted user",
			zap.String("user_uuid", uuid),
			zap.Error(err))
	}
	if err := c.favorites.Purge(ctx, uuid); err != nil {
		c.logger.Error("failed to purge favorites of deleted user",
			zap.String("user_uuid", uuid),
			zap.Error(err))
	}
	if err := c.users.Delete(ctx, uuid); err != nil {
		c.logger.Error("failed to forget deleted user",
			zap.String("user_uuid", uuid),
			zap.Error(err))
	}
	c.logger.Info("cascaded user deletion", zap.String("user_uuid", uuid))
}
