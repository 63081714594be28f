package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/execution-engine/pkg/logging"
	"github.com/joripage/execution-engine/pkg/marketdata"
	"github.com/joripage/execution-engine/pkg/oms"
	"github.com/joripage/execution-engine/pkg/oms/execution"
	"github.com/joripage/execution-engine/pkg/oms/model"
	"github.com/joripage/execution-engine/pkg/oms/risk"
)

const (
	numOrders = 200
	minQty    = 100
	maxQty    = 5000
)

var symbols = []string{"ABC", "DEF", "GHI"}

var orderTypes = []model.OrderType{
	model.OrderTypeMarket,
	model.OrderTypeLimit,
	model.OrderTypeIceberg,
	model.OrderTypeTWAP,
	model.OrderTypeVWAP,
}

func randomRequest(rng *rand.Rand, market *marketdata.Simulator, id int) *model.OrderRequest {
	side := model.OrderSideBuy
	if rng.Intn(2) == 0 {
		side = model.OrderSideSell
	}
	symbol := symbols[rng.Intn(len(symbols))]
	orderType := orderTypes[rng.Intn(len(orderTypes))]
	qty := int64(rng.Intn(maxQty-minQty+1) + minQty)

	req := &model.OrderRequest{
		ClientOrderID: fmt.Sprintf("BENCH-%06d", id),
		Symbol:        symbol,
		Side:          side,
		Type:          orderType,
		TimeInForce:   model.OrderTimeInForceDAY,
		Quantity:      decimal.NewFromInt(qty),
	}

	// park priced orders near the current tape so the collar passes
	last := market.Quote(symbol).Last
	switch orderType {
	case model.OrderTypeLimit, model.OrderTypeIceberg:
		offset := 1 + (rng.Float64()-0.5)*0.01
		req.Price = decimal.NewFromFloat(last * offset)
	}
	if orderType == model.OrderTypeIceberg {
		req.DisplayQuantity = decimal.NewFromInt(qty / 10)
	}
	return req
}

func main() {
	logger, err := logging.Init("benchmark", "warn")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	seed := time.Now().UnixNano()
	rng := rand.New(rand.NewSource(seed))
	market := marketdata.NewSimulator(seed)

	// millisecond horizons so a full run finishes in seconds
	engine := oms.NewOMS(&oms.Config{
		Risk: &risk.Config{
			MaxPositionSize:    10_000,
			MaxOrderValue:      100_000_000,
			MaxOrdersPerWindow: numOrders + 1,
		},
		Execution: &execution.Config{
			Seed:                seed,
			LimitPollIntervalMs: 5,
			DayWindowMs:         2000,
			IcebergMinDelayMs:   2,
			IcebergMaxDelayMs:   10,
			TWAPHorizonMs:       1000,
			VWAPHorizonMs:       1000,
		},
	}, market)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx)
	defer engine.Stop()

	start := time.Now()
	submitted := 0
	for i := 0; i < numOrders; i++ {
		req := randomRequest(rng, market, i+1)
		if _, err := engine.SubmitOrder(ctx, req); err != nil {
			continue
		}
		submitted++
	}

	// let slow algorithms drain
	time.Sleep(4 * time.Second)
	elapsed := time.Since(start)

	report := engine.Report()
	fmt.Println("--------")
	fmt.Printf("Total Orders     : %d (submitted %d)\n", report.Orders, submitted)
	fmt.Printf("Filled           : %d\n", report.Filled)
	fmt.Printf("Partially Filled : %d\n", report.PartiallyFilled)
	fmt.Printf("Cancelled        : %d\n", report.Cancelled)
	fmt.Printf("Rejected         : %d\n", report.Rejected)
	fmt.Printf("Total Trades     : %d\n", report.Trades)
	fmt.Printf("Mean Slippage    : %.6f\n", report.MeanSlippage)
	fmt.Printf("Median Slippage  : %.6f\n", report.MedianSlippage)
	fmt.Printf("P95 Slippage     : %.6f\n", report.P95Slippage)
	fmt.Printf("Mean Fill Rate   : %.4f\n", report.MeanFillRate)
	fmt.Printf("Total Commission : %.2f\n", report.TotalCommission)
	fmt.Printf("Time Taken       : %s\n", elapsed)
}
