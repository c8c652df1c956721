package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bitly/go-simplejson"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/songzhibin97/orderflux/internal/audit"
	"github.com/songzhibin97/orderflux/internal/orders"
	"github.com/songzhibin97/orderflux/internal/utils/request"
)

// DefaultTestnetBaseURL is the Binance USDT-M futures testnet endpoint.
// Mainnet keys do not work against it, and vice versa.
const DefaultTestnetBaseURL = "https://testnet.binancefuture.com"

const orderPath = "/fapi/v1/order"

// Client implements OrderPlacer against Binance futures signed REST endpoints.
// One Client reuses one transport session across all calls.
type Client struct {
	apiKey   string
	secret   []byte
	baseURL  string
	http     *resty.Client
	recorder audit.Recorder

	now func() time.Time
}

// NewClient creates a Client. An empty baseURL selects the testnet endpoint;
// a nil recorder disables the audit trail.
func NewClient(apiKey, secret, baseURL string, recorder audit.Recorder) *Client {
	if baseURL == "" {
		baseURL = DefaultTestnetBaseURL
	}
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Client{
		apiKey:   apiKey,
		secret:   []byte(secret),
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     request.Request,
		recorder: recorder,
		now:      time.Now,
	}
}

// sign appends the millisecond timestamp, encodes the canonical query string
// in parameter insertion order, and appends the HMAC-SHA256 signature over
// that exact string. The returned string must be transmitted byte-identical:
// any re-encoding or reordering after this point invalidates the signature.
func (c *Client) sign(params *orders.Params) string {
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	query := params.Encode()
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(query))
	return query + "&signature=" + hex.EncodeToString(mac.Sum(nil))
}

// send issues one signed request and normalizes the outcome. The API key
// travels only in the header; the audit trail sees the query without the
// signature.
func (c *Client) send(ctx context.Context, method, path string, params *orders.Params) Result {
	signedQuery := c.sign(params)
	url := c.baseURL + path

	c.recorder.Record(ctx, audit.Event{
		Time:   c.now(),
		Phase:  audit.PhaseRequest,
		Method: method,
		URL:    url,
		Query:  params.Encode(),
	})

	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-MBX-APIKEY", c.apiKey)

	var resp *resty.Response
	var err error
	switch method {
	case http.MethodPost:
		resp, err = req.Post(url + "?" + signedQuery)
	case http.MethodGet:
		resp, err = req.Get(url + "?" + signedQuery)
	default:
		err = fmt.Errorf("unsupported HTTP method: %s", method)
	}
	if err != nil {
		c.recorder.Record(ctx, audit.Event{
			Time:  c.now(),
			Phase: audit.PhaseError,
			Note:  err.Error(),
		})
		return Result{Err: transportError(err)}
	}

	c.recorder.Record(ctx, audit.Event{
		Time:   c.now(),
		Phase:  audit.PhaseResponse,
		Status: resp.StatusCode(),
		Body:   string(resp.Body()),
	})

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return Result{Err: statusError(resp.StatusCode(), string(resp.Body()))}
	}

	payload, err := simplejson.NewJson(resp.Body())
	if err != nil {
		return Result{Err: decodeError(err)}
	}
	return Result{Payload: payload}
}

// PlaceOrder implements OrderPlacer. Failures come back as a typed result so
// the caller owns continue/abort policy.
func (c *Client) PlaceOrder(ctx context.Context, order *orders.Order) Result {
	return c.send(ctx, http.MethodPost, orderPath, order.Params())
}

// PlaceMarketOrder validates and places a MARKET order, failing fast on any
// error. Single-shot convenience over PlaceOrder.
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, side orders.Side, quantity decimal.Decimal, reduceOnly bool) (*simplejson.Json, error) {
	order, err := orders.NewMarket(symbol, side, quantity, reduceOnly)
	if err != nil {
		return nil, err
	}
	return c.PlaceOrder(ctx, order).Unpack()
}

// PlaceLimitOrder validates and places a LIMIT order, failing fast on any
// error.
func (c *Client) PlaceLimitOrder(ctx context.Context, symbol string, side orders.Side, quantity, price decimal.Decimal, timeInForce string, reduceOnly bool) (*simplejson.Json, error) {
	order, err := orders.NewLimit(symbol, side, quantity, price, timeInForce, reduceOnly)
	if err != nil {
		return nil, err
	}
	return c.PlaceOrder(ctx, order).Unpack()
}

// PlaceStopOrder validates and places a STOP order, failing fast on any error.
func (c *Client) PlaceStopOrder(ctx context.Context, symbol string, side orders.Side, quantity, stopPrice, price decimal.Decimal, timeInForce string) (*simplejson.Json, error) {
	order, err := orders.NewStop(symbol, side, quantity, stopPrice, price, timeInForce)
	if err != nil {
		return nil, err
	}
	return c.PlaceOrder(ctx, order).Unpack()
}
