// Package eval implements the expression AST evaluator: given a model.Node
// and the set of frames available to a scan (keyed by timeframe, with the
// filter's default timeframe stored under the empty-string key), it
// produces a single float64 following the spec's truthy/boolean-as-float
// convention.
package eval

import (
	"math"
	"strings"

	"github.com/irfndi/stockscreener/internal/indicator"
	"github.com/irfndi/stockscreener/internal/model"
	"github.com/irfndi/stockscreener/internal/resolver"
)

// Frames maps a timeframe name to its frame. The caller's current/default
// frame (the one a node with no explicit timeframe should use) is stored
// under the empty string key.
type Frames map[string]*model.Frame

// Eval evaluates node at idx (negative, relative to the end of the default
// frame) against frames, delegating indicator math to provider.
func Eval(node *model.Node, frames Frames, idx int, provider indicator.Provider) (float64, error) {
	if node == nil {
		return 0, model.NewScreenError(model.EvalError, "eval: nil node", nil)
	}
	effectiveIdx := idx - node.Offset

	switch node.Type {
	case model.NodeConstant:
		return node.Value, nil

	case model.NodeAttribute:
		if node.FieldNode != nil {
			return Eval(node.FieldNode, frames, effectiveIdx, provider)
		}
		frame, err := frameFor(node, frames)
		if err != nil {
			return 0, err
		}
		v, ok := frame.At(node.Field, effectiveIdx)
		if !ok {
			return 0, model.NewScreenError(model.MissingField, "eval: missing attribute "+node.Field, nil)
		}
		return v, nil

	case model.NodeIndicator:
		if node.FieldNode != nil {
			return Eval(node.FieldNode, frames, effectiveIdx, provider)
		}
		frame, err := frameFor(node, frames)
		if err != nil {
			return 0, err
		}
		v, ok, err := resolver.Resolve(provider, frame, node.Field, node.TimePeriod, effectiveIdx, resolver.Params(node.Params))
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, model.NewScreenError(model.MissingField, "eval: missing indicator value for "+node.Field, nil)
		}
		return v, nil

	case model.NodeBinary:
		return evalBinary(node, frames, effectiveIdx, provider)

	case model.NodeUnary:
		return evalUnary(node, frames, effectiveIdx, provider)

	case model.NodeFunction:
		return evalFunction(node, frames, effectiveIdx, provider)
	}

	return 0, model.NewScreenError(model.EvalError, "eval: unknown node type", nil)
}

func frameFor(node *model.Node, frames Frames) (*model.Frame, error) {
	f, ok := frames[node.Timeframe]
	if !ok || f == nil {
		return nil, model.NewScreenError(model.MissingTimeframe, "eval: missing frame for timeframe "+node.Timeframe, nil)
	}
	return f, nil
}

func evalBinary(node *model.Node, frames Frames, idx int, provider indicator.Provider) (float64, error) {
	switch node.Operator {
	case "crossed_above", "crossed_below":
		return evalCrossover(node, frames, idx, provider)
	}

	left, err := Eval(node.Left, frames, idx, provider)
	if err != nil {
		return 0, err
	}
	right, err := Eval(node.Right, frames, idx, provider)
	if err != nil {
		return 0, err
	}

	switch node.Operator {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, nil
		}
		return left / right, nil
	case ">":
		return boolFloat(left > right), nil
	case ">=":
		return boolFloat(left >= right), nil
	case "<":
		return boolFloat(left < right), nil
	case "<=":
		return boolFloat(left <= right), nil
	case "==", "eq":
		return boolFloat(left == right), nil
	case "!=", "neq":
		return boolFloat(left != right), nil
	case "and", "&&":
		return boolFloat(truthy(left) && truthy(right)), nil
	case "or", "||":
		return boolFloat(truthy(left) || truthy(right)), nil
	}

	return 0, model.NewScreenError(model.EvalError, "eval: unknown binary operator "+node.Operator, nil)
}

// evalCrossover evaluates both operands at idx and idx-1 on the same frame
// set, per the spec's crossover semantics.
func evalCrossover(node *model.Node, frames Frames, idx int, provider indicator.Provider) (float64, error) {
	leftNow, err := Eval(node.Left, frames, idx, provider)
	if err != nil {
		return 0, err
	}
	rightNow, err := Eval(node.Right, frames, idx, provider)
	if err != nil {
		return 0, err
	}
	leftPrev, err := Eval(node.Left, frames, idx-1, provider)
	if err != nil {
		return 0, err
	}
	rightPrev, err := Eval(node.Right, frames, idx-1, provider)
	if err != nil {
		return 0, err
	}

	switch node.Operator {
	case "crossed_above":
		return boolFloat(leftPrev <= rightPrev && leftNow > rightNow), nil
	case "crossed_below":
		return boolFloat(leftPrev >= rightPrev && leftNow < rightNow), nil
	}
	return 0, model.NewScreenError(model.EvalError, "eval: unknown crossover operator "+node.Operator, nil)
}

func evalUnary(node *model.Node, frames Frames, idx int, provider indicator.Provider) (float64, error) {
	operand, err := Eval(node.Operand, frames, idx, provider)
	if err != nil {
		return 0, err
	}
	switch node.Operator {
	case "-", "neg":
		return -operand, nil
	case "!", "not":
		return boolFloat(!truthy(operand)), nil
	}
	return 0, model.NewScreenError(model.EvalError, "eval: unknown unary operator "+node.Operator, nil)
}

func evalFunction(node *model.Node, frames Frames, idx int, provider indicator.Provider) (float64, error) {
	args := make([]float64, len(node.Args))
	for i, a := range node.Args {
		v, err := Eval(a, frames, idx, provider)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	switch strings.ToLower(node.Name) {
	case "abs":
		if len(args) != 1 {
			return 0, model.NewScreenError(model.EvalError, "eval: Abs takes exactly one argument", nil)
		}
		return math.Abs(args[0]), nil
	case "max":
		if len(args) == 0 {
			return 0, model.NewScreenError(model.EvalError, "eval: Max takes at least one argument", nil)
		}
		m := args[0]
		for _, v := range args[1:] {
			if v > m {
				m = v
			}
		}
		return m, nil
	case "min":
		if len(args) == 0 {
			return 0, model.NewScreenError(model.EvalError, "eval: Min takes at least one argument", nil)
		}
		m := args[0]
		for _, v := range args[1:] {
			if v < m {
				m = v
			}
		}
		return m, nil
	}

	return 0, model.NewScreenError(model.EvalError, "eval: unknown function "+node.Name, nil)
}

func boolFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func truthy(v float64) bool { return v != 0 }
