package checkout

import (
	"context"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/outcome"
)

// ProductConnector fetches a product from wherever the catalog lives.
type ProductConnector interface {
	GetProduct(ctx context.Context, productID string) outcome.Outcome[product.Product, failure.ProductLookup]
}

// InventoryConnector reads the current stock level. An unknown product is a
// zero-quantity success, not a failure.
type InventoryConnector interface {
	GetInventoryForProduct(ctx context.Context, productID string) outcome.Outcome[inventory.Level, failure.Integration]
}

// OrderConnector persists orders and their payments.
type OrderConnector interface {
	CreateOrder(ctx context.Context, draft order.Draft) outcome.Outcome[order.Order, failure.Integration]
	RecordPaymentForOrder(ctx context.Context, orderID, transactionID string, amount int64) outcome.Outcome[order.Order, failure.Integration]
}

// PSPConnector charges the customer. A decline reached the PSP and came back
// as InsufficientFunds or FraudSuspected; anything else is an integration failure.
type PSPConnector interface {
	MakePayment(ctx context.Context, orderID string, amount int64) outcome.Outcome[payment.Transaction, failure.Payment]
}

// Connectors bundles the collaborators the pipeline calls.
type Connectors struct {
	Products  ProductConnector
	Inventory InventoryConnector
	Orders    OrderConnector
	PSP       PSPConnector
}
