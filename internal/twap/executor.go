package twap

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/songzhibin97/orderflux/internal/exchange"
	"github.com/songzhibin97/orderflux/internal/orders"
)

// Plan describes one time-weighted execution run: TotalQuantity split into
// Slices equal MARKET orders, one every Interval.
type Plan struct {
	Symbol        string
	Side          orders.Side
	TotalQuantity decimal.Decimal
	Slices        int
	Interval      time.Duration
}

// lotPrecision is the exchange lot-size assumption: quantities carry at most
// 8 decimal places.
const lotPrecision = 8

// SliceQuantity returns the per-slice quantity: total divided by slice count,
// rounded half-to-even to 8 decimals. The rounding residual is not
// redistributed across slices; callers reconcile leftovers out of band.
func (p Plan) SliceQuantity() decimal.Decimal {
	return p.TotalQuantity.
		Div(decimal.NewFromInt(int64(p.Slices))).
		RoundBank(lotPrecision)
}

func (p Plan) validate() error {
	if p.Slices < 1 {
		return &orders.ValidationError{Field: "slices", Reason: "must be >= 1"}
	}
	if p.Interval < 0 {
		return &orders.ValidationError{Field: "interval", Reason: "must not be negative"}
	}
	// Delegate symbol/side/quantity checks to the order builder so a bad plan
	// fails before the first dispatch, not on it.
	if _, err := orders.NewMarket(p.Symbol, p.Side, p.TotalQuantity, false); err != nil {
		return err
	}
	// A positive total can still round to a zero per-slice quantity at lot
	// precision; every slice would be rejected, so refuse the plan up front.
	if !p.SliceQuantity().IsPositive() {
		return &orders.ValidationError{Field: "quantity", Reason: "per-slice quantity rounds to zero at lot precision"}
	}
	return nil
}

// Executor runs TWAP plans sequentially against a single OrderPlacer. It is
// stateless across runs; concurrent Execute calls on separate plans are safe.
type Executor struct {
	placer exchange.OrderPlacer
	logger *slog.Logger
}

func NewExecutor(placer exchange.OrderPlacer, logger *slog.Logger) *Executor {
	return &Executor{placer: placer, logger: logger}
}

// Execute places plan.Slices market orders of the per-slice quantity, waiting
// plan.Interval between dispatches. Every slice is attempted regardless of
// earlier failures, and the returned log always has exactly plan.Slices
// entries. If ctx is cancelled at an inter-slice wait, the unexecuted slices
// are marked cancelled and ctx.Err() is returned alongside the log.
func (e *Executor) Execute(ctx context.Context, plan Plan) ([]exchange.Result, error) {
	if err := plan.validate(); err != nil {
		return nil, err
	}

	sliceQty := plan.SliceQuantity()
	log := make([]exchange.Result, 0, plan.Slices)

	e.logger.Info("starting TWAP run",
		"symbol", plan.Symbol,
		"side", plan.Side,
		"total_quantity", plan.TotalQuantity.String(),
		"slices", plan.Slices,
		"interval", plan.Interval,
	)

	for i := 0; i < plan.Slices; i++ {
		e.logger.Info("TWAP slice", "index", i+1, "of", plan.Slices, "quantity", sliceQty.String())

		order, err := orders.NewMarket(plan.Symbol, plan.Side, sliceQty, false)
		if err != nil {
			// validate() guarantees a positive per-slice quantity, so this
			// only trips on a programming error; fail the run rather than
			// dispatch a malformed slice.
			return log, err
		}

		result := e.placer.PlaceOrder(ctx, order)
		if !result.OK() {
			e.logger.Error("TWAP slice failed", "index", i+1, "err", result.Err)
		}
		log = append(log, result)

		if i == plan.Slices-1 {
			break
		}
		if err := e.wait(ctx, plan.Interval); err != nil {
			for j := i + 1; j < plan.Slices; j++ {
				log = append(log, exchange.Result{Err: exchange.Cancelled()})
			}
			e.logger.Warn("TWAP run cancelled", "completed", i+1, "of", plan.Slices)
			return log, err
		}
	}

	return log, nil
}

// wait blocks for the inter-slice interval or until ctx is done.
func (e *Executor) wait(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		// Still honor a cancellation that raced the previous slice.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
