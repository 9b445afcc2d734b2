// Package redis keeps stock levels in Redis, one integer key per product.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/outcome"
	goredis "github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "inventory:stock:"

// deductScript takes ARGV[1] units only when that many are available.
// Returns 1 on success and 0 when stock is short.
var deductScript = goredis.NewScript(`
local stock = tonumber(redis.call('GET', KEYS[1]) or '0')
local qty = tonumber(ARGV[1])
if stock < qty then
  return 0
end
redis.call('DECRBY', KEYS[1], qty)
return 1
`)

// Client is the part of a go-redis client the inventory uses. *goredis.Client
// and *goredis.ClusterClient both satisfy it.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	goredis.Scripter
}

// NewClient opens a single-node client.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

type Inventory struct {
	rdb    Client
	prefix string
}

func NewInventory(rdb Client, prefix string) *Inventory {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Inventory{rdb: rdb, prefix: prefix}
}

func (i *Inventory) key(productID string) string {
	return fmt.Sprintf("%s{%s}", i.prefix, productID)
}

// GetInventoryForProduct reads the stock key. A missing key is zero stock.
func (i *Inventory) GetInventoryForProduct(ctx context.Context, productID string) outcome.Outcome[inventory.Level, failure.Integration] {
	qty, err := i.rdb.Get(ctx, i.key(productID)).Int()
	switch {
	case errors.Is(err, goredis.Nil):
		return outcome.Success[inventory.Level, failure.Integration](inventory.Level{ProductID: productID})
	case err != nil:
		return outcome.Failure[inventory.Level, failure.Integration](classify("get stock", err))
	case qty < 0:
		return outcome.Failure[inventory.Level, failure.Integration](failure.DatabaseError{
			Message: fmt.Sprintf("negative stock %d for %s", qty, productID),
		})
	}
	return outcome.Success[inventory.Level, failure.Integration](inventory.Level{ProductID: productID, Quantity: qty})
}

// Set overwrites the stock level for a product.
func (i *Inventory) Set(ctx context.Context, productID string, quantity int) error {
	if quantity < 0 {
		return inventory.ErrNegativeStock
	}
	if err := i.rdb.Set(ctx, i.key(productID), quantity, 0).Err(); err != nil {
		return fmt.Errorf("redis inventory: set %s: %w", productID, err)
	}
	return nil
}

// Deduct atomically removes quantity units or fails with
// inventory.ErrInsufficientStock.
func (i *Inventory) Deduct(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}
	code, err := deductScript.Run(ctx, i.rdb, []string{i.key(productID)}, quantity).Int64()
	if err != nil {
		return fmt.Errorf("redis inventory: deduct %s: %w", productID, err)
	}
	if code == 0 {
		return inventory.ErrInsufficientStock
	}
	return nil
}

func classify(op string, err error) failure.Integration {
	if cerr, ok := failure.FromContext(err); ok {
		return cerr
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return failure.DatabaseError{Message: op + ": stock is not an integer", Err: err}
	}

	var redisErr goredis.Error
	if errors.As(err, &redisErr) {
		return failure.DatabaseError{Message: op, Err: err}
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return failure.ConnectionError{Code: "ECONNREFUSED", Err: err}
	case errors.Is(err, syscall.ECONNRESET):
		return failure.ConnectionError{Code: "ECONNRESET", Err: err}
	case errors.Is(err, goredis.ErrClosed):
		return failure.ConnectionError{Code: "CLIENT_CLOSED", Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		code := "NETWORK"
		if netErr.Timeout() {
			code = "ETIMEDOUT"
		}
		return failure.ConnectionError{Code: code, Err: err}
	}

	return failure.DatabaseError{Message: op, Err: err}
}
