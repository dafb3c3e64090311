package gen

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/model"
)

type Target string

const (
	TargetTypeBox    Target = "typebox"
	TargetZod        Target = "zod"
	TargetYup        Target = "yup"
	TargetIoTs       Target = "iots"
	TargetArkType    Target = "arktype"
	TargetValibot    Target = "valibot"
	TargetJSONSchema Target = "jsonschema"
	TargetTypeScript Target = "typescript"
	TargetJavaScript Target = "javascript"
	TargetValue      Target = "value"
	TargetExpression Target = "expression"
	TargetGrpc       Target = "grpc"
	TargetYrel       Target = "yrel"
	TargetGo         Target = "go"
	TargetSQL        Target = "sql"
	TargetOpenAPI    Target = "openapi"
)

// Targets lists every target in presentation order.
var Targets = []Target{
	TargetTypeBox,
	TargetZod,
	TargetYup,
	TargetIoTs,
	TargetArkType,
	TargetValibot,
	TargetJSONSchema,
	TargetTypeScript,
	TargetJavaScript,
	TargetValue,
	TargetExpression,
	TargetGrpc,
	TargetYrel,
	TargetGo,
	TargetSQL,
	TargetOpenAPI,
}

var ErrUnknownTarget = errors.New("unknown target")

func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(s)))

	if _, ok := backends[t]; !ok {
		return "", errors.WithHintf(
			errors.Wrapf(ErrUnknownTarget, `"%s"`, s),
			"valid targets are %s", joinTargets(),
		)
	}

	return t, nil
}

func joinTargets() string {
	names := make([]string, len(Targets))
	for i, t := range Targets {
		names[i] = string(t)
	}

	return strings.Join(names, ", ")
}

type BoundPolicy int

const (
	// BoundStrict renders exclusive bounds with strict comparisons.
	BoundStrict BoundPolicy = iota
	// BoundOffset renders exclusiveMinimum n as the inclusive bound n+1 and
	// exclusiveMaximum n as n-1. This only preserves meaning for integers.
	BoundOffset
)

func ParseBoundPolicy(s string) (BoundPolicy, error) {
	switch s {
	case "strict":
		return BoundStrict, nil
	case "offset":
		return BoundOffset, nil
	}

	return BoundStrict, errors.Newf(`invalid bound policy "%s", expected strict or offset`, s)
}

func (p BoundPolicy) String() string {
	if p == BoundOffset {
		return "offset"
	}

	return "strict"
}

type Options struct {
	// ExclusiveBounds overrides the exclusive bound policy per target.
	ExclusiveBounds map[Target]BoundPolicy
	GrpcPackage     string
	GoPackage       string
	SQLSchema       string
}

// Bounds returns the exclusive bound policy of t. Yrel defaults to offsets,
// every other target to strict comparisons.
func (o Options) Bounds(t Target) BoundPolicy {
	if p, ok := o.ExclusiveBounds[t]; ok {
		return p
	}

	if t == TargetYrel {
		return BoundOffset
	}

	return BoundStrict
}

type Result struct {
	Text string
	// Unsupported describes every node that was rendered as the target's
	// unsupported sentinel.
	Unsupported []string
}

type backend func(m *model.Model, opts Options) (*Result, error)

var backends = map[Target]backend{
	TargetTypeBox:    generateTypeBox,
	TargetZod:        generateZod,
	TargetYup:        generateYup,
	TargetIoTs:       generateIoTs,
	TargetArkType:    generateArkType,
	TargetValibot:    generateValibot,
	TargetJSONSchema: generateJSONSchema,
	TargetTypeScript: generateTypeScript,
	TargetJavaScript: generateJavaScript,
	TargetValue:      generateValue,
	TargetExpression: generateExpression,
	TargetGrpc:       generateGrpc,
	TargetYrel:       generateYrel,
	TargetGo:         generateGo,
	TargetSQL:        generateSQL,
	TargetOpenAPI:    generateOpenAPI,
}

// Generate renders m for target. Nodes the target cannot express degrade to
// its unsupported sentinel and are listed in the result; only an unknown
// target or a failure to assemble the document is an error.
func Generate(m *model.Model, target Target, opts Options) (*Result, error) {
	b, ok := backends[target]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTarget, `"%s"`, target)
	}

	if m == nil {
		m = &model.Model{}
	}

	res, err := b(m, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate %s", target)
	}

	return res, nil
}
