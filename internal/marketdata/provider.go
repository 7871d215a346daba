package marketdata

import (
	"context"

	"github.com/irfndi/stockscreener/internal/model"
)

// Provider is the narrow surface internal/scan depends on, letting tests
// substitute a fake without standing up an HTTP server.
type Provider interface {
	FetchCandles(ctx context.Context, symbol, interval, outputsize string) (*model.Frame, error)
	FetchFundamentals(ctx context.Context, symbol string) (numeric map[string]float64, strings_ map[string]string, err error)
	FetchSymbolUniverse(ctx context.Context, take int) ([]string, error)
}

// FrameWithFallback calls FetchCandles and substitutes a deterministic mock
// frame when the upstream call errors or returns no candles, per spec
// §4.1's fallback rule. The orchestrator, not the client, decides to call
// this rather than surfacing the error directly.
func FrameWithFallback(ctx context.Context, p Provider, symbol, interval, outputsize string) *model.Frame {
	frame, err := p.FetchCandles(ctx, symbol, interval, outputsize)
	if err != nil || frame == nil || frame.Len() == 0 {
		return FetchMockCandles(symbol)
	}
	return frame
}
