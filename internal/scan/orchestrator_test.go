package scan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfndi/stockscreener/internal/cache"
	"github.com/irfndi/stockscreener/internal/config"
	"github.com/irfndi/stockscreener/internal/indicator"
	"github.com/irfndi/stockscreener/internal/model"
	"github.com/irfndi/stockscreener/internal/testutil"
)

type fakeMarket struct {
	frames       map[string]*model.Frame
	fundamentals map[string]float64
	strings_     map[string]string
	universe     []string
	err          error
}

func (f *fakeMarket) FetchCandles(ctx context.Context, symbol, interval, outputsize string) (*model.Frame, error) {
	if f.err != nil {
		return nil, f.err
	}
	if frame, ok := f.frames[symbol+":"+interval]; ok {
		return frame, nil
	}
	return nil, nil
}

func (f *fakeMarket) FetchFundamentals(ctx context.Context, symbol string) (map[string]float64, map[string]string, error) {
	return f.fundamentals, f.strings_, nil
}

func (f *fakeMarket) FetchSymbolUniverse(ctx context.Context, take int) ([]string, error) {
	return f.universe, nil
}

func linspaceFrame(t *testing.T, symbol string, n int, startClose float64) *model.Frame {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closeP := make([]float64, n)
	volume := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = base.AddDate(0, 0, i)
		price := startClose + float64(i)
		open[i] = price
		high[i] = price + 1
		low[i] = price - 1
		closeP[i] = price
		volume[i] = 1000
	}
	f, err := model.NewFrame(symbol, "daily", times, open, high, low, closeP, volume)
	require.NoError(t, err)
	return f
}

func newTestOrchestrator(t *testing.T, market *fakeMarket) *Orchestrator {
	t.Helper()
	rdb := testutil.NewMiniredisClient(t)
	cfg := config.CacheConfig{CandleTTLSeconds: 3600, IndicatorTTLSeconds: 1800, ScanTTLSeconds: 300}
	c := cache.New(rdb, cfg, nil)

	o, err := New(market, c, indicator.NewStandardProvider(), 4, 100, 5000, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func TestRun_MatchesSymbolAboveThreshold(t *testing.T) {
	market := &fakeMarket{frames: map[string]*model.Frame{
		"AAPL:daily": linspaceFrame(t, "AAPL", 30, 100),
		"MSFT:daily": linspaceFrame(t, "MSFT", 30, 10),
	}}
	o := newTestOrchestrator(t, market)

	filters := []*model.Filter{
		{Type: model.FilterPrice, Field: "close", Operator: model.OpGT, Value: &model.Value{IsScalar: true, Scalar: 50}},
	}
	result, err := o.Run(context.Background(), Request{Symbols: []string{"AAPL", "MSFT"}, Filters: filters, Logic: model.LogicAND})
	require.NoError(t, err)

	var matchedSymbols []string
	for _, m := range result.Matched {
		matchedSymbols = append(matchedSymbols, m.Symbol)
	}
	assert.Contains(t, matchedSymbols, "AAPL")
	assert.NotContains(t, matchedSymbols, "MSFT")
	assert.Equal(t, 2, result.TotalScanned)
}

func TestRun_NoFiltersIsInvalidInput(t *testing.T) {
	o := newTestOrchestrator(t, &fakeMarket{})
	_, err := o.Run(context.Background(), Request{Symbols: []string{"AAPL"}})
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.InvalidInput))
}

func TestRun_EmptySymbolsPullsUniverse(t *testing.T) {
	market := &fakeMarket{
		frames:   map[string]*model.Frame{"AAPL:daily": linspaceFrame(t, "AAPL", 30, 100)},
		universe: []string{"AAPL"},
	}
	o := newTestOrchestrator(t, market)
	filters := []*model.Filter{{Type: model.FilterPrice, Field: "close", Operator: model.OpGT, Value: &model.Value{IsScalar: true, Scalar: 1}}}
	result, err := o.Run(context.Background(), Request{Filters: filters})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalScanned)
}

func TestRun_ORLogicMatchesOnAnyPass(t *testing.T) {
	market := &fakeMarket{frames: map[string]*model.Frame{"AAPL:daily": linspaceFrame(t, "AAPL", 30, 100)}}
	o := newTestOrchestrator(t, market)

	filters := []*model.Filter{
		{Type: model.FilterPrice, Field: "close", Operator: model.OpGT, Value: &model.Value{IsScalar: true, Scalar: 99999}}, // fails
		{Type: model.FilterPrice, Field: "close", Operator: model.OpGT, Value: &model.Value{IsScalar: true, Scalar: 1}},     // passes
	}
	result, err := o.Run(context.Background(), Request{Symbols: []string{"AAPL"}, Filters: filters, Logic: model.LogicOR})
	require.NoError(t, err)
	require.Len(t, result.Matched, 1)
	assert.Equal(t, 1, result.Matched[0].MatchedFiltersCount)
}

func TestRunPreset_UnknownPresetErrors(t *testing.T) {
	o := newTestOrchestrator(t, &fakeMarket{})
	_, err := o.RunPreset(context.Background(), "not_a_real_preset", []string{"AAPL"})
	require.Error(t, err)
}

func TestRunPreset_RSIOversoldRunsScanPath(t *testing.T) {
	market := &fakeMarket{frames: map[string]*model.Frame{"AAPL:daily": linspaceFrame(t, "AAPL", 30, 100)}}
	o := newTestOrchestrator(t, market)
	result, err := o.RunPreset(context.Background(), "rsi_oversold", []string{"AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalScanned)
}

func TestDiscoverTimeframes_AlwaysIncludesDaily(t *testing.T) {
	tfs := discoverTimeframes([]*model.Filter{{Type: model.FilterPrice, Field: "close"}})
	assert.Contains(t, tfs, "daily")
}

func TestDiscoverTimeframes_IncludesCompareToTimeframe(t *testing.T) {
	tfs := discoverTimeframes([]*model.Filter{{Type: model.FilterPrice, CompareToTimeframe: "weekly"}})
	assert.Contains(t, tfs, "weekly")
}
