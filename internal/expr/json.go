package expr

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
)

type node struct {
	Kind     Kind     `json:"kind"`
	ID       string   `json:"$id,omitempty"`
	Type     string   `json:"type,omitempty"`
	Op       string   `json:"op,omitempty"`
	Value    any      `json:"value,omitempty"`
	Key      string   `json:"key,omitempty"`
	Index    *int     `json:"index,omitempty"`
	Method   string   `json:"method,omitempty"`
	Args     []any    `json:"args,omitempty"`
	Name     string   `json:"name,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
	Count    *int     `json:"count,omitempty"`
	Keys     []string `json:"keys,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Expr     *node    `json:"expr,omitempty"`
	KeyExpr  *node    `json:"keyExpr,omitempty"`
	Children []*node  `json:"children,omitempty"`
}

// Named is an expression bound to the name of the top-level type it checks.
type Named struct {
	Name string
	Expr Expr
}

// MarshalIndent serializes a list of named expressions as one JSON object
// keyed by type name, in the given order.
func MarshalIndent(types []Named) ([]byte, error) {
	buf := []byte("{")

	for i, t := range types {
		if i > 0 {
			buf = append(buf, ',')
		}

		key, err := json.Marshal(t.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode name %s", t.Name)
		}

		value, err := json.Marshal(toNode(t.Expr))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode expression %s", t.Name)
		}

		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, value...)
	}

	buf = append(buf, '}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf, "", "  "); err != nil {
		return nil, errors.Wrap(err, "failed to indent expressions")
	}

	return out.Bytes(), nil
}

// Marshal serializes a single expression tree.
func Marshal(e Expr) ([]byte, error) {
	out, err := json.Marshal(toNode(e))
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode expression")
	}

	return out, nil
}

func toNode(e Expr) *node {
	if e == nil {
		return nil
	}

	n := &node{Kind: e.Kind(), ID: e.ID()}

	switch x := e.(type) {
	case *FalseExpr:
		n.Reason = x.Reason
	case *IsExpr:
		n.Type = string(x.Type)
	case *CompareExpr:
		n.Op = string(x.Op)
		n.Value = x.Value
	case *MultipleOfExpr:
		n.Value = x.Value
	case *PropertyExpr:
		n.Key = x.Key
		n.Expr = toNode(x.Expr)
	case *HasKeyExpr:
		n.Key = x.Key
	case *IndexExpr:
		i := x.Index
		n.Index = &i
		n.Expr = toNode(x.Expr)
	case *CallExpr:
		n.Method = x.Method
		n.Args = x.Args
		n.Expr = toNode(x.Expr)
	case *InstanceOfExpr:
		n.Name = x.Name
	case *AndExpr:
		n.Children = toNodes(x.Children)
	case *OrExpr:
		n.Children = toNodes(x.Children)
	case *NotExpr:
		n.Expr = toNode(x.Expr)
	case *RefExpr:
		n.Name = x.Name
	case *PatternExpr:
		n.Pattern = x.Pattern
	case *KeyCountExpr:
		n.Op = string(x.Op)
		c := x.Count
		n.Count = &c
	case *KnownKeysExpr:
		n.Keys = x.Keys
	case *EntriesExpr:
		n.KeyExpr = toNode(x.Key)
		n.Expr = toNode(x.Value)
	}

	return n
}

func toNodes(es []Expr) []*node {
	out := make([]*node, len(es))

	for i, e := range es {
		out[i] = toNode(e)
	}

	return out
}
