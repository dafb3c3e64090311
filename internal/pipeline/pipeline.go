package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/format"
	"github.com/koskimas/typeshift/internal/gen"
	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/model/typescript"
	"github.com/koskimas/typeshift/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type Options struct {
	Gen gen.Options
	// Format runs the target's formatter over the generated text.
	Format bool
	// Cache holds the last good output of each target. Defaults to an
	// in-memory cache.
	Cache store.ContentCache
	// Registry receives the pipeline metrics. Defaults to a private registry.
	Registry *prometheus.Registry
}

// Output is the result of one transform. Text is always displayable: when
// Err is set it starts with a one line error banner.
type Output struct {
	Text        string
	Err         error
	Unsupported []string
	Formatted   bool
}

// Pipeline runs source text through the front end, a back end and the
// target's formatter.
type Pipeline struct {
	log      *zap.SugaredLogger
	opts     Options
	cache    store.ContentCache
	registry *prometheus.Registry
	metrics  *metrics

	generate func(m *model.Model, target gen.Target, opts gen.Options) (*gen.Result, error)
}

func New(log *zap.SugaredLogger, opts Options) *Pipeline {
	p := &Pipeline{
		log:      log,
		opts:     opts,
		cache:    opts.Cache,
		registry: opts.Registry,
		generate: gen.Generate,
	}

	if p.cache == nil {
		p.cache = store.NewMemoryCache()
	}

	if p.registry == nil {
		p.registry = prometheus.NewRegistry()
	}

	p.metrics = newMetrics(p.registry)
	return p
}

func (p *Pipeline) Registry() *prometheus.Registry {
	return p.registry
}

func cacheKey(target gen.Target) string {
	return "last:" + string(target)
}

// Transform never panics and never returns an empty result for a failure;
// errors are reported in Output.Err and as a banner in Output.Text.
func (p *Pipeline) Transform(ctx context.Context, source string, target gen.Target) (out Output) {
	start := time.Now()
	outcome := outcomeOK

	defer func() {
		if r := recover(); r != nil {
			outcome = outcomePanic
			out = p.fail(target, errors.Newf("internal error: %v", r))
			p.log.Errorw("Transform panicked", "target", target, "panic", r)
		}

		p.metrics.transforms.WithLabelValues(string(target), outcome).Inc()
		p.metrics.duration.WithLabelValues(string(target)).Observe(time.Since(start).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		outcome = outcomeError
		return p.fail(target, err)
	}

	stage := time.Now()
	m, err := typescript.Parse(source)
	p.log.Debugw("parse", "target", target, "duration", time.Since(stage))
	if err != nil {
		outcome = outcomeParseError
		return p.fail(target, err)
	}

	stage = time.Now()
	res, err := p.generate(m, target, p.opts.Gen)
	p.log.Debugw("generate", "target", target, "duration", time.Since(stage))
	if err != nil {
		outcome = outcomeError
		if errors.Is(err, gen.ErrUnknownTarget) {
			outcome = outcomeUnknownTarget
		}
		return p.fail(target, err)
	}

	out.Text = res.Text
	out.Unsupported = res.Unsupported

	if n := len(res.Unsupported); n > 0 {
		p.metrics.unsupported.WithLabelValues(string(target)).Add(float64(n))
		p.log.Warnw("Unsupported nodes", "target", target, "count", n, "first", res.Unsupported[0])
	}

	if p.opts.Format {
		stage = time.Now()
		formatted, err := format.For(target).Format(res.Text)
		p.log.Debugw("format", "target", target, "duration", time.Since(stage))

		if err != nil {
			outcome = outcomeFormatError
			out.Err = err
			out.Text = banner(target, err) + "\n" + res.Text
			return out
		}

		out.Text = formatted
		out.Formatted = true
	}

	if err := p.cache.Set(cacheKey(target), out.Text); err != nil {
		p.log.Warnw("Failed to cache output", "target", target, "error", err)
	}

	return out
}

// fail renders err as a banner above the last good output of target.
func (p *Pipeline) fail(target gen.Target, err error) Output {
	text := banner(target, err)

	previous, ok, cerr := p.cache.Get(cacheKey(target))
	if cerr != nil {
		p.log.Warnw("Failed to read cached output", "target", target, "error", cerr)
	}

	if ok {
		text += "\n" + previous
	} else {
		text += "\n"
	}

	return Output{Text: text, Err: err}
}

func banner(target gen.Target, err error) string {
	comment := "//"
	if target == gen.TargetSQL {
		comment = "--"
	}

	msg := strings.Join(strings.Fields(err.Error()), " ")
	return fmt.Sprintf("%s error: %s", comment, msg)
}
