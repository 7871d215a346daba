package model

import (
	"encoding/json"
	"fmt"
)

// NodeType discriminates an expression AST node.
type NodeType string

const (
	NodeConstant  NodeType = "constant"
	NodeAttribute NodeType = "attribute"
	NodeIndicator NodeType = "indicator"
	NodeBinary    NodeType = "binary"
	NodeUnary     NodeType = "unary"
	NodeFunction  NodeType = "function"
)

// Node is a tagged variant covering every expression AST shape in the spec.
// Only the fields relevant to Type are populated; unused fields are zero.
type Node struct {
	Type NodeType

	// constant
	Value float64

	// attribute / indicator
	Field      string
	FieldNode  *Node // attribute.field may itself be a nested node
	Offset     int
	Timeframe  string
	TimePeriod int
	Params     map[string]float64

	// binary
	Operator string
	Left     *Node
	Right    *Node

	// unary
	Operand *Node

	// function
	Name string
	Args []*Node
}

// wireNode mirrors the JSON shape so UnmarshalJSON can recurse into nested
// nodes without fighting Go's lack of union types.
type wireNode struct {
	Type       string             `json:"type"`
	Value      json.Number        `json:"value"`
	Field      json.RawMessage    `json:"field"`
	Offset     json.RawMessage    `json:"offset"`
	Timeframe  string             `json:"timeframe"`
	TimePeriod int                `json:"time_period"`
	Params     map[string]float64 `json:"params"`
	Operator   string             `json:"operator"`
	Left       json.RawMessage    `json:"left"`
	Right      json.RawMessage    `json:"right"`
	Operand    json.RawMessage    `json:"operand"`
	Name       string             `json:"name"`
	Args       []json.RawMessage  `json:"args"`
}

// UnmarshalJSON decodes a node from its wire form, resolving the `field`
// property (a plain string for most nodes, but potentially a nested node for
// dynamic attribute lookups) and the `offset` property (int, "latest", or
// "Nd_ago" forms handled by ParseOffset).
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	n.Type = NodeType(w.Type)
	n.Timeframe = w.Timeframe
	n.TimePeriod = w.TimePeriod
	n.Params = w.Params
	n.Operator = w.Operator
	n.Name = w.Name

	if len(w.Value) > 0 {
		f, err := w.Value.Float64()
		if err != nil {
			return fmt.Errorf("model: invalid constant value: %w", err)
		}
		n.Value = f
	}

	if len(w.Field) > 0 {
		var s string
		if err := json.Unmarshal(w.Field, &s); err == nil {
			n.Field = s
		} else {
			nested := &Node{}
			if err := json.Unmarshal(w.Field, nested); err != nil {
				return fmt.Errorf("model: invalid field node: %w", err)
			}
			n.FieldNode = nested
		}
	}

	if len(w.Offset) > 0 {
		off, err := ParseOffset(w.Offset)
		if err != nil {
			return err
		}
		n.Offset = off
	}

	var err error
	if n.Left, err = decodeChild(w.Left); err != nil {
		return err
	}
	if n.Right, err = decodeChild(w.Right); err != nil {
		return err
	}
	if n.Operand, err = decodeChild(w.Operand); err != nil {
		return err
	}
	for _, raw := range w.Args {
		child, err := decodeChild(raw)
		if err != nil {
			return err
		}
		if child != nil {
			n.Args = append(n.Args, child)
		}
	}

	switch n.Type {
	case NodeConstant, NodeAttribute, NodeIndicator, NodeBinary, NodeUnary, NodeFunction:
	default:
		return fmt.Errorf("model: unknown node type %q", w.Type)
	}
	return nil
}

func decodeChild(raw json.RawMessage) (*Node, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	child := &Node{}
	if err := json.Unmarshal(raw, child); err != nil {
		return nil, err
	}
	return child, nil
}
