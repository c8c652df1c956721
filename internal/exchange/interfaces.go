package exchange

import (
	"context"

	"github.com/songzhibin97/orderflux/internal/orders"
)

// OrderPlacer defines methods for submitting validated orders to the venue
type OrderPlacer interface {
	// PlaceOrder submits one order and reports its outcome as a typed result
	PlaceOrder(ctx context.Context, order *orders.Order) Result
}
