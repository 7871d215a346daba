package indicator

import "fmt"

// Provider defines the interface for technical indicator calculations.
// This abstraction lets the resolver and filter evaluator depend on
// indicator computation without binding to this package's concrete
// functions, mirroring how trading engines decouple strategy code from a
// specific indicator backend.
type Provider interface {
	// Trend Indicators
	SMA(values []float64, period int) []float64
	EMA(values []float64, period int) []float64
	WMA(values []float64, period int) []float64

	// Momentum Indicators
	RSI(values []float64, period int) []float64
	// StochasticK's period/smooth are accepted for interface compatibility;
	// StandardProvider's implementation doesn't thread them through (see
	// internal/indicator/cinar.go).
	StochasticK(high, low, close []float64, period, smooth int) []float64
	ROC(values []float64, period int) []float64
	CCI(high, low, close []float64, period int) []float64
	WilliamsR(high, low, close []float64, period int) []float64

	// Trend/Momentum composites
	MACD(values []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram []float64)
	ADX(high, low, close []float64, period int) (plusDI, minusDI, dx, adx []float64)
	Aroon(high, low []float64, period int) (up, down, oscillator []float64)
	Ichimoku(high, low, close []float64, tenkanPeriod, kijunPeriod, senkouPeriod int) (tenkan, kijun, senkouA, senkouB, chikou []float64)

	// Volatility Indicators
	Bollinger(values []float64, period int, multiplier float64) (upper, middle, lower, percentB, width []float64)
	ATR(high, low, close []float64, period int) []float64
	Supertrend(high, low, close []float64, period int, multiplier float64) []float64
	ParabolicSAR(high, low []float64, step, maxStep float64) []float64

	// Volume Indicators
	OBV(close, volume []float64) []float64
	VWAP(high, low, close, volume []float64) []float64
	MFI(high, low, close, volume []float64, period int) []float64

	// Provider metadata
	Name() string
	Version() string
}

// StandardProvider is the package's own Provider backed directly by its
// pure functions.
type StandardProvider struct{}

// NewStandardProvider returns the default indicator provider.
func NewStandardProvider() *StandardProvider { return &StandardProvider{} }

func (StandardProvider) SMA(values []float64, period int) []float64 { return SMA(values, period) }
func (StandardProvider) EMA(values []float64, period int) []float64 { return EMA(values, period) }
func (StandardProvider) WMA(values []float64, period int) []float64 { return WMA(values, period) }
func (StandardProvider) RSI(values []float64, period int) []float64 { return RSI(values, period) }
func (StandardProvider) ROC(values []float64, period int) []float64 { return ROC(values, period) }

func (StandardProvider) StochasticK(high, low, close []float64, period, smooth int) []float64 {
	return StochasticK(high, low, close, period, smooth)
}

func (StandardProvider) CCI(high, low, close []float64, period int) []float64 {
	return CCI(high, low, close, period)
}

func (StandardProvider) WilliamsR(high, low, close []float64, period int) []float64 {
	return WilliamsR(high, low, close, period)
}

func (StandardProvider) MACD(values []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram []float64) {
	return MACD(values, fastPeriod, slowPeriod, signalPeriod)
}

func (StandardProvider) ADX(high, low, close []float64, period int) (plusDI, minusDI, dx, adx []float64) {
	return ADX(high, low, close, period)
}

func (StandardProvider) Aroon(high, low []float64, period int) (up, down, oscillator []float64) {
	return Aroon(high, low, period)
}

func (StandardProvider) Ichimoku(high, low, close []float64, tenkanPeriod, kijunPeriod, senkouPeriod int) (tenkan, kijun, senkouA, senkouB, chikou []float64) {
	return Ichimoku(high, low, close, tenkanPeriod, kijunPeriod, senkouPeriod)
}

func (StandardProvider) Bollinger(values []float64, period int, multiplier float64) (upper, middle, lower, percentB, width []float64) {
	return Bollinger(values, period, multiplier)
}

func (StandardProvider) ATR(high, low, close []float64, period int) []float64 {
	return ATR(high, low, close, period)
}

func (StandardProvider) Supertrend(high, low, close []float64, period int, multiplier float64) []float64 {
	return Supertrend(high, low, close, period, multiplier)
}

func (StandardProvider) ParabolicSAR(high, low []float64, step, maxStep float64) []float64 {
	return ParabolicSAR(high, low, step, maxStep)
}

func (StandardProvider) OBV(close, volume []float64) []float64 { return OBV(close, volume) }

func (StandardProvider) VWAP(high, low, close, volume []float64) []float64 {
	return VWAP(high, low, close, volume)
}

func (StandardProvider) MFI(high, low, close, volume []float64, period int) []float64 {
	return MFI(high, low, close, volume, period)
}

func (StandardProvider) Name() string    { return "standard" }
func (StandardProvider) Version() string { return "1.0.0" }

// Error is returned by callers that validate indicator inputs before
// delegating to a Provider (e.g. the resolver, on malformed period args).
type Error struct {
	Indicator string
	Message   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("indicator %s: %s", e.Indicator, e.Message)
}

func NewError(indicator, message string) *Error {
	return &Error{Indicator: indicator, Message: message}
}
