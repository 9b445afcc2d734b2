package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application/checkout"
	"github.com/Zhima-Mochi/minishop-checkout/internal/config"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/mysql"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/psp"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/redis"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	httppresentation "github.com/Zhima-Mochi/minishop-checkout/internal/presentation/http"
)

// demoProduct is stock loaded at startup so the service can be exercised
// without external setup.
type demoProduct struct {
	product.Product
	stock int
}

var demoCatalog = []demoProduct{
	{Product: product.Product{ID: "p1", Name: "Espresso Machine", Price: 24900}, stock: 10},
	{Product: product.Product{ID: "p2", Name: "Milk Frother", Price: 3900}, stock: 0},
	{Product: product.Product{ID: "p3", Name: "Coffee Grinder", Price: 8900}, stock: 3},
}

type stockSetter interface {
	set(ctx context.Context, productID string, qty int) error
}

type memoryStock struct{ *memory.InventoryRepository }

func (m memoryStock) set(_ context.Context, productID string, qty int) error {
	return m.Set(productID, qty)
}

type redisStock struct{ *redis.Inventory }

func (r redisStock) set(ctx context.Context, productID string, qty int) error {
	return r.Set(ctx, productID, qty)
}

// stockStore is what the order store needs from inventory besides the
// connector contract.
type stockStore interface {
	checkout.InventoryConnector
	memory.StockDeductor
	stockSetter
}

// backends is everything main builds from config. closers run in reverse.
type backends struct {
	connectors checkout.Connectors
	orders     httppresentation.OrderReader
	closers    []func() error
}

func (b *backends) close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

func buildBackends(ctx context.Context, cfg config.Config, tracer observability.Tracer, log observability.Logger) (*backends, error) {
	b := &backends{}
	ids := id.NewUUIDGenerator()

	var stock stockStore
	switch cfg.InventoryDriver {
	case config.DriverRedis:
		rdb := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		b.closers = append(b.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis_unreachable", observability.F("addr", cfg.Redis.Addr), observability.F("error", err))
		}
		stock = redisStock{redis.NewInventory(rdb, cfg.Redis.KeyPrefix)}
	default:
		stock = memoryStock{memory.NewInventoryRepository()}
	}
	b.connectors.Inventory = stock

	switch cfg.CatalogDriver {
	case config.DriverMySQL:
		db, err := mysql.Open(cfg.MySQL.DSN, mysql.PoolOptions{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
		})
		if err != nil {
			return nil, b.abort(err)
		}
		b.closers = append(b.closers, func() error { return mysql.Close(db) })
		if cfg.MySQL.AutoMigrate {
			if err := mysql.Migrate(db); err != nil {
				return nil, b.abort(err)
			}
		}
		catalog := mysql.NewProductCatalog(db)
		orders := mysql.NewOrderRepository(db, ids, stock)
		b.connectors.Products, b.connectors.Orders, b.orders = catalog, orders, orders

		if cfg.SeedDemoData {
			for _, d := range demoCatalog {
				if err := catalog.Upsert(ctx, d.Product); err != nil {
					return nil, b.abort(fmt.Errorf("seed product %s: %w", d.ID, err))
				}
			}
		}
	default:
		catalog := memory.NewProductCatalog()
		orders := memory.NewOrderRepository(ids, stock)
		b.connectors.Products, b.connectors.Orders, b.orders = catalog, orders, orders

		if cfg.SeedDemoData {
			for _, d := range demoCatalog {
				if err := catalog.Put(d.Product); err != nil {
					return nil, b.abort(fmt.Errorf("seed product %s: %w", d.ID, err))
				}
			}
		}
	}

	if cfg.SeedDemoData {
		for _, d := range demoCatalog {
			if err := stock.set(ctx, d.ID, d.stock); err != nil {
				return nil, b.abort(fmt.Errorf("seed stock %s: %w", d.ID, err))
			}
		}
	}

	switch cfg.PSP.Driver {
	case config.DriverHTTP:
		b.connectors.PSP = psp.NewClient(cfg.PSP.BaseURL, nil, tracer)
	default:
		b.connectors.PSP = psp.NewSimulator(psp.SimulatorOptions{
			SuccessRate: cfg.PSP.SuccessRate,
			FraudRate:   cfg.PSP.FraudRate,
			Latency:     cfg.PSP.Latency,
		})
	}

	return b, nil
}

func (b *backends) abort(err error) error {
	if cerr := b.close(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}
