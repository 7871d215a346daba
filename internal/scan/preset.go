package scan

import (
	"context"
	"fmt"

	"github.com/irfndi/stockscreener/internal/model"
)

// Preset is a named, canned filter set, mirroring the original Python
// server's run_preset_scan tool: a shortcut so callers don't have to hand-
// build filter JSON for common screens.
type Preset struct {
	Name        string
	Description string
	Filters     []*model.Filter
	Logic       model.FilterLogic
}

func scalarFilter(typ model.FilterType, field string, op model.Operator, value float64, timePeriod int) *model.Filter {
	return &model.Filter{
		Type:       typ,
		Field:      field,
		Operator:   op,
		Value:      &model.Value{IsScalar: true, Scalar: value},
		TimePeriod: timePeriod,
	}
}

// presets is the built-in preset table. Each preset's filters use their
// type's own defaults for anything not set here (period, lookback, etc).
var presets = map[string]func() Preset{
	"rsi_oversold": func() Preset {
		return Preset{
			Name:        "rsi_oversold",
			Description: "RSI(14) below 30",
			Logic:       model.LogicAND,
			Filters:     []*model.Filter{scalarFilter(model.FilterIndicator, "rsi", model.OpLT, 30, 14)},
		}
	},
	"rsi_overbought": func() Preset {
		return Preset{
			Name:        "rsi_overbought",
			Description: "RSI(14) above 70",
			Logic:       model.LogicAND,
			Filters:     []*model.Filter{scalarFilter(model.FilterIndicator, "rsi", model.OpGT, 70, 14)},
		}
	},
	"high_volume": func() Preset {
		return Preset{
			Name:        "high_volume",
			Description: "Volume more than double its 20-period average",
			Logic:       model.LogicAND,
			Filters: []*model.Filter{
				{Type: model.FilterVolume, AvgPeriod: 20, Multiplier: 2},
			},
		}
	},
	"breakout_52week": func() Preset {
		return Preset{
			Name:        "breakout_52week",
			Description: "Within 2% of the 52-week high",
			Logic:       model.LogicAND,
			Filters: []*model.Filter{
				{
					Type:         model.FilterPrice52Week,
					Metric:       "distance_from_high_pct",
					Operator:     model.OpLTE,
					Value:        &model.Value{IsScalar: true, Scalar: 2},
					LookbackDays: 252,
				},
			},
		}
	},
	"strong_momentum": func() Preset {
		return Preset{
			Name:        "strong_momentum",
			Description: "RSI(14) above 60 and ADX(14) above 25",
			Logic:       model.LogicAND,
			Filters: []*model.Filter{
				scalarFilter(model.FilterIndicator, "rsi", model.OpGT, 60, 14),
				scalarFilter(model.FilterIndicator, "adx", model.OpGT, 25, 14),
			},
		}
	},
	"breakout_candidate": func() Preset {
		return Preset{
			Name:        "breakout_candidate",
			Description: "Within 5% of the 52-week high on above-average volume",
			Logic:       model.LogicAND,
			Filters: []*model.Filter{
				{
					Type:         model.FilterPrice52Week,
					Metric:       "distance_from_high_pct",
					Operator:     model.OpLTE,
					Value:        &model.Value{IsScalar: true, Scalar: 5},
					LookbackDays: 252,
				},
				{Type: model.FilterVolume, AvgPeriod: 20, Multiplier: 1.5},
			},
		}
	},
	"bullish_crossover": func() Preset {
		return Preset{
			Name:        "bullish_crossover",
			Description: "Close crosses above SMA(50)",
			Logic:       model.LogicAND,
			Filters: []*model.Filter{
				{
					Type:     model.FilterPrice,
					Field:    "close",
					Operator: model.OpCrossedAbove,
					Value:    &model.Value{Measure: &model.Measure{Type: model.MeasureIndicator, Field: "sma", TimePeriod: 50}},
				},
			},
		}
	},
	"bearish_crossover": func() Preset {
		return Preset{
			Name:        "bearish_crossover",
			Description: "Close crosses below SMA(50)",
			Logic:       model.LogicAND,
			Filters: []*model.Filter{
				{
					Type:     model.FilterPrice,
					Field:    "close",
					Operator: model.OpCrossedBelow,
					Value:    &model.Value{Measure: &model.Measure{Type: model.MeasureIndicator, Field: "sma", TimePeriod: 50}},
				},
			},
		}
	},
}

// PresetNames lists the built-in presets, for a tool surface's discovery
// endpoint.
func PresetNames() []string {
	out := make([]string, 0, len(presets))
	for name := range presets {
		out = append(out, name)
	}
	return out
}

// LookupPreset returns the named preset, or false if unknown.
func LookupPreset(name string) (Preset, bool) {
	build, ok := presets[name]
	if !ok {
		return Preset{}, false
	}
	return build(), true
}

// RunPreset resolves a named preset and runs it through the same scan path
// as an explicit filter list — no new evaluation semantics, just a named
// shortcut, per the original tool's run_preset_scan.
func (o *Orchestrator) RunPreset(ctx context.Context, name string, symbols []string) (*model.ScanResult, error) {
	preset, ok := LookupPreset(name)
	if !ok {
		return nil, model.NewScreenError(model.InvalidInput, fmt.Sprintf("scan: unknown preset %q", name), nil)
	}
	return o.Run(ctx, Request{Symbols: symbols, Filters: preset.Filters, Logic: preset.Logic})
}
