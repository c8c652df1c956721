package orders

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Side 订单方向
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Kind 订单类型
type Kind string

const (
	KindMarket Kind = "MARKET"
	KindLimit  Kind = "LIMIT"
	KindStop   Kind = "STOP"
)

// ValidationError reports a malformed order field before any network call is
// made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ParseSide normalizes a side string to the wire enum.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(s)) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", invalid("side", fmt.Sprintf("must be BUY or SELL, got %q", s))
	}
}

// ParseKind normalizes an order type string to the wire enum.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(s)) {
	case KindMarket:
		return KindMarket, nil
	case KindLimit:
		return KindLimit, nil
	case KindStop:
		return KindStop, nil
	default:
		return "", invalid("type", fmt.Sprintf("unsupported order type %q", s))
	}
}

// Order is a validated order instruction. Kind-specific fields are only set by
// the constructor for that kind, so a constructed Order always carries every
// field its kind requires.
type Order struct {
	Symbol      string
	Side        Side
	Kind        Kind
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	StopPrice   decimal.Decimal
	TimeInForce string
	ReduceOnly  bool
}

// NewMarket builds a MARKET order.
func NewMarket(symbol string, side Side, quantity decimal.Decimal, reduceOnly bool) (*Order, error) {
	if err := validateCommon(symbol, quantity); err != nil {
		return nil, err
	}
	return &Order{
		Symbol:     strings.ToUpper(symbol),
		Side:       side,
		Kind:       KindMarket,
		Quantity:   quantity,
		ReduceOnly: reduceOnly,
	}, nil
}

// NewLimit builds a LIMIT order resting at price.
func NewLimit(symbol string, side Side, quantity, price decimal.Decimal, timeInForce string, reduceOnly bool) (*Order, error) {
	if err := validateCommon(symbol, quantity); err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, invalid("price", "must be positive")
	}
	if timeInForce == "" {
		return nil, invalid("timeInForce", "required for LIMIT orders")
	}
	return &Order{
		Symbol:      strings.ToUpper(symbol),
		Side:        side,
		Kind:        KindLimit,
		Quantity:    quantity,
		Price:       price,
		TimeInForce: timeInForce,
		ReduceOnly:  reduceOnly,
	}, nil
}

// NewStop builds a STOP order: stopPrice triggers a limit order at price.
func NewStop(symbol string, side Side, quantity, stopPrice, price decimal.Decimal, timeInForce string) (*Order, error) {
	if err := validateCommon(symbol, quantity); err != nil {
		return nil, err
	}
	if !stopPrice.IsPositive() {
		return nil, invalid("stopPrice", "must be positive")
	}
	if !price.IsPositive() {
		return nil, invalid("price", "must be positive")
	}
	if timeInForce == "" {
		return nil, invalid("timeInForce", "required for STOP orders")
	}
	return &Order{
		Symbol:      strings.ToUpper(symbol),
		Side:        side,
		Kind:        KindStop,
		Quantity:    quantity,
		Price:       price,
		StopPrice:   stopPrice,
		TimeInForce: timeInForce,
	}, nil
}

func validateCommon(symbol string, quantity decimal.Decimal) error {
	if strings.TrimSpace(symbol) == "" {
		return invalid("symbol", "must not be empty")
	}
	if !quantity.IsPositive() {
		return invalid("quantity", "must be positive")
	}
	return nil
}

// Params serializes the order into its wire parameter set. Field order matches
// the exchange's documented examples per kind; quantities and prices are
// decimal strings, booleans lowercase literals.
func (o *Order) Params() *Params {
	p := NewParams().
		Set("symbol", o.Symbol).
		Set("side", string(o.Side)).
		Set("type", string(o.Kind))

	switch o.Kind {
	case KindMarket:
		p.Set("quantity", o.Quantity.String())
		p.Set("reduceOnly", fmt.Sprintf("%t", o.ReduceOnly))
	case KindLimit:
		p.Set("timeInForce", o.TimeInForce)
		p.Set("quantity", o.Quantity.String())
		p.Set("price", o.Price.String())
		p.Set("reduceOnly", fmt.Sprintf("%t", o.ReduceOnly))
	case KindStop:
		p.Set("stopPrice", o.StopPrice.String())
		p.Set("price", o.Price.String())
		p.Set("timeInForce", o.TimeInForce)
		p.Set("quantity", o.Quantity.String())
	}
	return p
}
