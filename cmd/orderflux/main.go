package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bitly/go-simplejson"
	"github.com/shopspring/decimal"

	"github.com/songzhibin97/orderflux/internal/audit"
	"github.com/songzhibin97/orderflux/internal/configs"
	"github.com/songzhibin97/orderflux/internal/exchange"
	"github.com/songzhibin97/orderflux/internal/orders"
	"github.com/songzhibin97/orderflux/internal/twap"
)

var (
	flagconf string

	flagSymbol      string
	flagSide        string
	flagType        string
	flagQuantity    float64
	flagPrice       float64
	flagStopPrice   float64
	flagTimeInForce string

	flagTwapSlices   int
	flagTwapInterval float64

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
)

func init() {
	flag.StringVar(&flagconf, "conf", "", "config path, eg: -conf config.yaml")
	flag.StringVar(&flagSymbol, "symbol", "", "trading symbol, e.g. BTCUSDT")
	flag.StringVar(&flagSide, "side", "", "order side: BUY or SELL")
	flag.StringVar(&flagType, "type", "", "order type: MARKET, LIMIT, STOP or TWAP")
	flag.Float64Var(&flagQuantity, "quantity", 0, "quantity (contracts/units)")
	flag.Float64Var(&flagPrice, "price", 0, "price for LIMIT or STOP orders")
	flag.Float64Var(&flagStopPrice, "stop-price", 0, "stop price for STOP orders")
	flag.StringVar(&flagTimeInForce, "time-in-force", "GTC", "time in force for LIMIT/STOP orders")
	flag.IntVar(&flagTwapSlices, "twap-slices", 0, "number of slices for TWAP (0 = config default)")
	flag.Float64Var(&flagTwapInterval, "twap-interval", -1, "interval in seconds between TWAP slices (-1 = config default)")
}

func main() {
	flag.Parse()

	config, err := configs.Load(flagconf)
	if err != nil {
		log.Error("Error loading config", "err", err)
		os.Exit(1)
	}

	if config.ExchangeConfig.APIKey == "" || config.ExchangeConfig.SecretKey == "" {
		log.Error("API key and secret are required; set BINANCE_API_KEY/BINANCE_API_SECRET or the config file")
		os.Exit(1)
	}

	side, err := orders.ParseSide(flagSide)
	if err != nil {
		log.Error("Argument validation failed", "err", err)
		os.Exit(1)
	}

	// Audit trail: always structured logs, plus Postgres when configured.
	var recorder audit.Recorder = audit.NewSlogRecorder(log)
	if config.AuditConfig.ConnStr != "" {
		store, err := audit.NewPostgresStore(config.AuditConfig.ConnStr, log)
		if err != nil {
			log.Error("Error creating audit store", "err", err)
			os.Exit(1)
		}
		defer store.Close()
		recorder = audit.NewMultiRecorder(recorder, store)
	}

	client := exchange.NewClient(
		config.ExchangeConfig.APIKey,
		config.ExchangeConfig.SecretKey,
		config.ExchangeConfig.BaseURL,
		recorder,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	quantity := decimal.NewFromFloat(flagQuantity)

	// TWAP is a CLI execution mode, not a wire order type: it fans out into
	// MARKET child orders.
	if strings.EqualFold(flagType, "TWAP") {
		slices := config.TwapConfig.Slices
		if flagTwapSlices > 0 {
			slices = flagTwapSlices
		}
		interval := config.TwapConfig.Interval
		if flagTwapInterval >= 0 {
			interval = flagTwapInterval
		}

		executor := twap.NewExecutor(client, log)
		outcomes, err := executor.Execute(ctx, twap.Plan{
			Symbol:        flagSymbol,
			Side:          side,
			TotalQuantity: quantity,
			Slices:        slices,
			Interval:      time.Duration(interval * float64(time.Second)),
		})
		if err != nil {
			log.Error("TWAP run did not complete", "err", err)
		}
		fmt.Println("TWAP outcomes:")
		for i, r := range outcomes {
			if r.OK() {
				encoded, _ := r.Payload.Encode()
				fmt.Printf("slice %d: %s\n", i+1, encoded)
			} else {
				fmt.Printf("slice %d: error: %s\n", i+1, r.Err)
			}
		}
		if err != nil {
			os.Exit(1)
		}
		return
	}

	kind, err := orders.ParseKind(flagType)
	if err != nil {
		log.Error("Argument validation failed", "err", err)
		os.Exit(1)
	}

	switch kind {
	case orders.KindMarket:
		resp, err := client.PlaceMarketOrder(ctx, flagSymbol, side, quantity, false)
		report(resp, err)
	case orders.KindLimit:
		price := decimal.NewFromFloat(flagPrice)
		resp, err := client.PlaceLimitOrder(ctx, flagSymbol, side, quantity, price, flagTimeInForce, false)
		report(resp, err)
	case orders.KindStop:
		stopPrice := decimal.NewFromFloat(flagStopPrice)
		price := decimal.NewFromFloat(flagPrice)
		resp, err := client.PlaceStopOrder(ctx, flagSymbol, side, quantity, stopPrice, price, flagTimeInForce)
		report(resp, err)
	}
}

func report(resp *simplejson.Json, err error) {
	if err != nil {
		log.Error("Error executing order", "err", err)
		fmt.Println("Execution failed:", err)
		os.Exit(1)
	}
	encoded, _ := resp.Encode()
	fmt.Println("Order response:", string(encoded))
}
