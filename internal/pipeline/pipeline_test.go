package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/format"
	"github.com/koskimas/typeshift/internal/gen"
	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/model/typescript"
	"github.com/prometheus/client_golang/prometheus/testutil"
	assert "github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const source = `export type User = { name: string, age?: number }`

func newPipeline(t *testing.T, opts Options) *Pipeline {
	return New(zaptest.NewLogger(t).Sugar(), opts)
}

func TestTransform(t *testing.T) {
	p := newPipeline(t, Options{Format: true})

	out := p.Transform(context.Background(), source, gen.TargetZod)
	assert.NoError(t, out.Err)
	assert.True(t, out.Formatted)
	assert.Empty(t, out.Unsupported)
	assert.Contains(t, out.Text, "export const User = z.object(")

	cached, ok, err := p.cache.Get("last:zod")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, out.Text, cached)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.transforms.WithLabelValues("zod", outcomeOK)))
}

func TestTransformWithoutFormatting(t *testing.T) {
	p := newPipeline(t, Options{})

	out := p.Transform(context.Background(), source, gen.TargetTypeBox)
	assert.NoError(t, out.Err)
	assert.False(t, out.Formatted)
	assert.True(t, strings.HasPrefix(out.Text, "import { Type, Static } from '@sinclair/typebox'"))
}

func TestParseErrorKeepsPreviousOutput(t *testing.T) {
	p := newPipeline(t, Options{Format: true})

	good := p.Transform(context.Background(), source, gen.TargetZod)
	assert.NoError(t, good.Err)

	out := p.Transform(context.Background(), "export type User = {", gen.TargetZod)

	var perr *typescript.ParseError
	assert.True(t, errors.As(out.Err, &perr))
	assert.True(t, strings.HasPrefix(out.Text, "// error: "))
	assert.True(t, strings.HasSuffix(out.Text, good.Text))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.transforms.WithLabelValues("zod", outcomeParseError)))
}

func TestParseErrorWithoutPreviousOutput(t *testing.T) {
	p := newPipeline(t, Options{})

	out := p.Transform(context.Background(), "type = ", gen.TargetSQL)
	assert.Error(t, out.Err)
	assert.True(t, strings.HasPrefix(out.Text, "-- error: "))
	assert.Equal(t, 1, strings.Count(out.Text, "\n"))
}

func TestUnknownTarget(t *testing.T) {
	p := newPipeline(t, Options{})

	out := p.Transform(context.Background(), source, gen.Target("flow"))
	assert.True(t, errors.Is(out.Err, gen.ErrUnknownTarget))
	assert.Contains(t, out.Text, "unknown target")
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.transforms.WithLabelValues("flow", outcomeUnknownTarget)))
}

func TestFormatErrorShowsUnformattedText(t *testing.T) {
	p := newPipeline(t, Options{Format: true})
	p.generate = func(m *model.Model, target gen.Target, opts gen.Options) (*gen.Result, error) {
		return &gen.Result{Text: "export const A = z.object({"}, nil
	}

	out := p.Transform(context.Background(), source, gen.TargetZod)

	var serr *format.SyntaxError
	assert.True(t, errors.As(out.Err, &serr))
	assert.True(t, strings.HasPrefix(out.Text, "// error: "))
	assert.True(t, strings.HasSuffix(out.Text, "\nexport const A = z.object({"))
	assert.False(t, out.Formatted)

	_, ok, err := p.cache.Get("last:zod")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestPanicIsRecovered(t *testing.T) {
	p := newPipeline(t, Options{})
	p.generate = func(m *model.Model, target gen.Target, opts gen.Options) (*gen.Result, error) {
		panic("boom")
	}

	out := p.Transform(context.Background(), source, gen.TargetYup)
	assert.Error(t, out.Err)
	assert.Equal(t, "// error: internal error: boom\n", out.Text)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.transforms.WithLabelValues("yup", outcomePanic)))
}

func TestUnsupportedNodesAreCounted(t *testing.T) {
	p := newPipeline(t, Options{})

	out := p.Transform(context.Background(), `type A = { x: T extends string ? 1 : 2 }`, gen.TargetZod)
	assert.NoError(t, out.Err)
	assert.Len(t, out.Unsupported, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.unsupported.WithLabelValues("zod")))
}

func TestCanceledContext(t *testing.T) {
	p := newPipeline(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := p.Transform(ctx, source, gen.TargetZod)
	assert.True(t, errors.Is(out.Err, context.Canceled))
}

func TestEachRunHasFreshState(t *testing.T) {
	p := newPipeline(t, Options{})

	first := p.Transform(context.Background(), `type Node = { next?: Node }`, gen.TargetZod)
	p.Transform(context.Background(), `type Other = { a: string }`, gen.TargetZod)
	again := p.Transform(context.Background(), `type Node = { next?: Node }`, gen.TargetZod)

	assert.Equal(t, first.Text, again.Text)
}
