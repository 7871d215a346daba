// Package scan implements the scan orchestrator: symbol universe
// resolution, timeframe discovery, cache-through data acquisition,
// fundamentals enrichment, per-symbol filter aggregation, and per-symbol
// failure isolation, fanned out across a bounded worker pool adapted from
// the teacher's internal/services/workerpool.
package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/irfndi/stockscreener/internal/cache"
	"github.com/irfndi/stockscreener/internal/eval"
	"github.com/irfndi/stockscreener/internal/filter"
	"github.com/irfndi/stockscreener/internal/indicator"
	zaplogrus "github.com/irfndi/stockscreener/internal/logging/zaplogrus"
	"github.com/irfndi/stockscreener/internal/marketdata"
	"github.com/irfndi/stockscreener/internal/model"
	"github.com/irfndi/stockscreener/internal/services/workerpool"
)

// Request is the caller-facing scan input: an explicit symbol list (or nil
// to pull the full universe), the filters to apply, and their aggregation
// logic.
type Request struct {
	Symbols []string
	Filters []*model.Filter
	Logic   model.FilterLogic
}

// Orchestrator runs scans: fetching data, enriching, evaluating, and
// aggregating per symbol with isolation between symbols.
type Orchestrator struct {
	market              marketdata.Provider
	cache               *cache.Cache
	evaluator           *filter.Evaluator
	pool                *workerpool.Pool
	logger              *zaplogrus.Logger
	symbolsUniverseSize int
}

// New builds an Orchestrator. The returned worker pool is started
// immediately and should be stopped via Close when the orchestrator is no
// longer needed.
func New(market marketdata.Provider, c *cache.Cache, provider indicator.Provider, workers, queueSize, symbolsUniverseSize int, logger *zaplogrus.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = zaplogrus.New()
	}
	if provider == nil {
		provider = indicator.NewStandardProvider()
	}
	pool := workerpool.New(workerpool.Config{Workers: workers, QueueSize: queueSize})
	if err := pool.Start(); err != nil {
		return nil, fmt.Errorf("scan: failed to start worker pool: %w", err)
	}
	return &Orchestrator{
		market:              market,
		cache:               c,
		evaluator:           filter.NewEvaluator(provider),
		pool:                pool,
		logger:              logger,
		symbolsUniverseSize: symbolsUniverseSize,
	}, nil
}

// Close stops the orchestrator's worker pool.
func (o *Orchestrator) Close() error {
	return o.pool.Stop()
}

// Run executes a scan per spec §4.6. It fails outright only for a request
// with no filters, or when the request names no symbols and the symbol
// universe cannot be fetched; otherwise it returns a successful envelope.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*model.ScanResult, error) {
	if len(req.Filters) == 0 {
		return nil, model.NewScreenError(model.InvalidInput, "scan: at least one filter is required", nil)
	}
	logic := req.Logic
	if logic != model.LogicAND && logic != model.LogicOR {
		logic = model.LogicAND
	}

	symbols := req.Symbols
	if len(symbols) == 0 {
		var err error
		symbols, err = o.market.FetchSymbolUniverse(ctx, o.symbolsUniverseSize)
		if err != nil {
			return nil, model.NewScreenError(model.UpstreamError, "scan: failed to resolve symbol universe", err)
		}
	}

	timeframes := discoverTimeframes(req.Filters)
	outputsize := "compact"
	if requiresFullHistory(req.Filters) {
		outputsize = "full"
	}
	needFundamentals := requiresFundamentals(req.Filters)

	var mu sync.Mutex
	matched := make([]model.MatchedRecord, 0, len(symbols))
	failed := make([]model.FailedRecord, 0)

	var wg sync.WaitGroup
	wg.Add(len(symbols))
	for _, symbol := range symbols {
		symbol := symbol
		task := workerpool.Task{
			ID: symbol,
			Execute: func() error {
				defer wg.Done()
				record, failRecord := o.runSymbol(ctx, symbol, req.Filters, logic, timeframes, outputsize, needFundamentals)
				mu.Lock()
				if failRecord != nil {
					failed = append(failed, *failRecord)
				} else if record != nil {
					matched = append(matched, *record)
				}
				mu.Unlock()
				return nil
			},
		}
		if err := o.pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			failed = append(failed, model.FailedRecord{Symbol: symbol, Error: err.Error()})
			mu.Unlock()
		}
	}
	wg.Wait()

	return &model.ScanResult{
		ScanID:         uuid.NewString(),
		Matched:        matched,
		Failed:         failed,
		TotalScanned:   len(symbols),
		FilterLogic:    logic,
		FiltersApplied: req.Filters,
		ScanTime:       time.Now(),
	}, nil
}

// runSymbol executes the per-symbol pipeline: data acquisition, enrichment,
// filter aggregation. Any panic is recovered and reported as a SymbolError
// failure so one symbol's bug never aborts the scan.
func (o *Orchestrator) runSymbol(ctx context.Context, symbol string, filters []*model.Filter, logic model.FilterLogic, timeframes []string, outputsize string, needFundamentals bool) (matched *model.MatchedRecord, failedRec *model.FailedRecord) {
	defer func() {
		if r := recover(); r != nil {
			failedRec = &model.FailedRecord{Symbol: symbol, Error: fmt.Sprintf("panic: %v", r)}
			matched = nil
		}
	}()

	dailyFrame, err := o.acquireFrame(ctx, symbol, "daily", outputsize)
	if err != nil {
		return nil, &model.FailedRecord{Symbol: symbol, Error: err.Error()}
	}

	frames := eval.Frames{"": dailyFrame, "daily": dailyFrame}
	for _, tf := range timeframes {
		if tf == "daily" {
			continue
		}
		frame, err := o.acquireFrame(ctx, symbol, tf, outputsize)
		if err != nil {
			o.logger.WithField("symbol", symbol).WithField("timeframe", tf).Warn("scan: non-daily fetch failed, continuing without it")
			continue
		}
		frames[tf] = frame
	}

	var fundamentals map[string]float64
	var stringFields map[string]string
	if needFundamentals {
		fundamentals, stringFields, err = o.market.FetchFundamentals(ctx, symbol)
		if err != nil {
			o.logger.WithField("symbol", symbol).Warn("scan: fundamentals fetch failed, financial filters will miss")
			fundamentals = map[string]float64{}
			stringFields = map[string]string{}
		}
		for k, v := range fundamentals {
			dailyFrame.SetScalar(k, v)
		}
	}

	details := make([]model.FilterDetail, 0, len(filters))
	passCount := 0
	for _, f := range filters {
		res := o.evaluator.Evaluate(f, frames, fundamentals, stringFields)
		if res.Passed {
			passCount++
		}
		details = append(details, model.FilterDetail{
			Filter: f, Type: f.Type, Field: f.Field, Passed: res.Passed, Details: res.Details,
		})
	}

	overallPassed := passCount == len(filters)
	if logic == model.LogicOR {
		overallPassed = passCount > 0
	}
	if !overallPassed {
		return nil, nil
	}

	closeVal, _ := dailyFrame.At("close", -1)
	volVal, _ := dailyFrame.At("volume", -1)
	return &model.MatchedRecord{
		Symbol:              symbol,
		Close:               decimalFromFloat(closeVal),
		Volume:              decimalFromFloat(volVal),
		Date:                dailyFrame.DateString(-1),
		MatchedFiltersCount: passCount,
		TotalFilters:        len(filters),
		FilterDetails:       details,
	}, nil
}

// acquireFrame is the cache-through candle fetch: a hit returns the cached
// frame, a miss fetches live (with mock fallback per spec §4.1) and caches
// the result.
func (o *Orchestrator) acquireFrame(ctx context.Context, symbol, timeframe, outputsize string) (*model.Frame, error) {
	key := cache.StockKey(symbol, timeframe, outputsize)

	var cf cachedFrame
	if o.cache.Get(ctx, key, &cf) {
		frame, err := cf.toFrame()
		if err == nil {
			return frame, nil
		}
	}

	frame := marketdata.FrameWithFallback(ctx, o.market, symbol, timeframe, outputsize)
	if frame == nil {
		return nil, model.NewScreenError(model.SymbolError, "scan: no candle data for "+symbol, nil)
	}

	_ = o.cache.Set(ctx, key, toCachedFrame(frame), o.cache.TTLFor(cache.RoleStock))
	return frame, nil
}
