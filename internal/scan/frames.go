package scan

import (
	"time"

	"github.com/irfndi/stockscreener/internal/model"
)

// cachedFrame is the JSON-serializable mirror of model.Frame used as the
// cache wire format, since Frame itself keeps its series unexported.
type cachedFrame struct {
	Symbol    string      `json:"symbol"`
	Timeframe string      `json:"timeframe"`
	Times     []time.Time `json:"times"`
	Open      []float64   `json:"open"`
	High      []float64   `json:"high"`
	Low       []float64   `json:"low"`
	Close     []float64   `json:"close"`
	Volume    []float64   `json:"volume"`
}

func toCachedFrame(f *model.Frame) cachedFrame {
	return cachedFrame{
		Symbol:    f.Symbol,
		Timeframe: f.Timeframe,
		Times:     f.Times,
		Open:      f.Open(),
		High:      f.High(),
		Low:       f.Low(),
		Close:     f.Close(),
		Volume:    f.Volume(),
	}
}

func (cf cachedFrame) toFrame() (*model.Frame, error) {
	return model.NewFrame(cf.Symbol, cf.Timeframe, cf.Times, cf.Open, cf.High, cf.Low, cf.Close, cf.Volume)
}
