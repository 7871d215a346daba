package scan

import "github.com/irfndi/stockscreener/internal/model"

// discoverTimeframes returns the union of every timeframe referenced by
// filters, per spec §4.6(b): a filter's own timeframe, its
// compareToTimeframe, any nested measure's timeframe, and any timeframe
// named inside an expression AST — always including "daily" for enrichment
// and the match record's reported close.
func discoverTimeframes(filters []*model.Filter) []string {
	set := map[string]bool{"daily": true}

	add := func(tf string) {
		if tf != "" {
			set[tf] = true
		}
	}

	for _, f := range filters {
		add(f.Timeframe)
		add(f.CompareToTimeframe)
		addValueTimeframe(f.Value, set)
		addValueTimeframe(f.ArithmeticValue, set)
		if f.Type == model.FilterExpression {
			collectNodeTimeframes(f.Expression, set)
		}
	}

	out := make([]string, 0, len(set))
	for tf := range set {
		out = append(out, tf)
	}
	return out
}

func addValueTimeframe(v *model.Value, set map[string]bool) {
	if v == nil || v.Measure == nil || v.Measure.Timeframe == "" {
		return
	}
	set[v.Measure.Timeframe] = true
}

func collectNodeTimeframes(n *model.Node, set map[string]bool) {
	if n == nil {
		return
	}
	if n.Timeframe != "" {
		set[n.Timeframe] = true
	}
	collectNodeTimeframes(n.FieldNode, set)
	collectNodeTimeframes(n.Left, set)
	collectNodeTimeframes(n.Right, set)
	collectNodeTimeframes(n.Operand, set)
	for _, arg := range n.Args {
		collectNodeTimeframes(arg, set)
	}
}

// requiresFullHistory reports whether any filter needs a full-range
// outputsize fetch (price_52week's lookback routinely exceeds a compact
// window).
func requiresFullHistory(filters []*model.Filter) bool {
	for _, f := range filters {
		if f.Type == model.FilterPrice52Week {
			return true
		}
	}
	return false
}

// requiresFundamentals reports whether any filter references the
// fundamentals payload, so the orchestrator only fetches it when needed.
func requiresFundamentals(filters []*model.Filter) bool {
	for _, f := range filters {
		if f.Type == model.FilterFinancial {
			return true
		}
	}
	return false
}
