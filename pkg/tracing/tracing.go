package tracing

import (
	"context"
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
)

var (
	serviceName = "default"
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

type Config struct {
	Host string
	Port int
}

// InitTracer ставит глобальный jaeger-трейсер. Пустой Host: noop-трейсер.
func InitTracer(conf Config) (opentracing.Tracer, io.Closer, error) {
	if conf.Host == "" {
		return opentracing.NoopTracer{}, nopCloser{}, nil
	}
	cfg := &jCfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jCfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jCfg.ReporterConfig{
			LogSpans:           false,
			LocalAgentHostPort: fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		},
	}

	tracer, closer, err := cfg.NewTracer(
		jCfg.Metrics(metrics.NullFactory),
	)
	if err != nil {
		return nil, nil, err
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// StartSpan opens a child of whatever span ctx carries.
func StartSpan(ctx context.Context, operation string, tags ...opentracing.Tag) (opentracing.Span, context.Context) {
	opts := make([]opentracing.StartSpanOption, 0, len(tags))
	for _, t := range tags {
		opts = append(opts, t)
	}
	return opentracing.StartSpanFromContext(ctx, operation, opts...)
}

// Finish tags the span as failed when err != nil.
func Finish(span opentracing.Span, err error) {
	if err != nil {
		span.SetTag("error", true)
		span.LogKV("event", "error", "message", err.Error())
	}
	span.Finish()
}
