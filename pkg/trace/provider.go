// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package trace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/go-arcade/navmanager/pkg/version"
	"github.com/google/wire"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

// ProviderSet 提供 TracerProvider
var ProviderSet = wire.NewSet(ProvideTracerProvider)

// ProvideTracerProvider 安装全局 TracerProvider，cleanup 负责 flush
func ProvideTracerProvider(conf Conf) (*sdktrace.TracerProvider, func(), error) {
	return InitTracerProvider(context.Background(), conf)
}

// Conf OTLP 上报配置，时间单位为秒
type Conf struct {
	Enabled            bool              `mapstructure:"enabled"`
	Endpoint           string            `mapstructure:"endpoint"` // host:port，grpc 默认 4317，http 默认 4318
	Protocol           string            `mapstructure:"protocol"` // grpc | http
	ServiceName        string            `mapstructure:"serviceName"`
	Insecure           bool              `mapstructure:"insecure"`
	Headers            map[string]string `mapstructure:"headers"`
	SampleRatio        float64           `mapstructure:"sampleRatio"` // 0 或 >=1 表示全采样
	BatchTimeout       int               `mapstructure:"batchTimeout"`
	ExportTimeout      int               `mapstructure:"exportTimeout"`
	MaxExportBatchSize int               `mapstructure:"maxExportBatchSize"`
}

func (c *Conf) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "navmanager"
	}
	if c.Protocol == "" {
		c.Protocol = ProtocolHTTP
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 5
	}
	if c.ExportTimeout <= 0 {
		c.ExportTimeout = 30
	}
	if c.MaxExportBatchSize <= 0 {
		c.MaxExportBatchSize = 512
	}
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
		if c.Protocol == ProtocolGRPC {
			c.Endpoint = "localhost:4317"
		}
	}
}

func (c *Conf) Validate() error {
	switch c.Protocol {
	case "", ProtocolGRPC, ProtocolHTTP:
		return nil
	}
	return fmt.Errorf("unsupported trace protocol %q", c.Protocol)
}

func (c *Conf) sampler() sdktrace.Sampler {
	if c.SampleRatio <= 0 || c.SampleRatio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
}

// InitTracerProvider installs the global provider and W3C propagators.
// A disabled config still gets a local provider so spans carry trace ids
// for the access log.
func InitTracerProvider(ctx context.Context, conf Conf) (*sdktrace.TracerProvider, func(), error) {
	conf.SetDefaults()
	if err := conf.Validate(); err != nil {
		return nil, nil, err
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !conf.Enabled {
		tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(conf.sampler()))
		otel.SetTracerProvider(tp)
		return tp, func() { _ = tp.Shutdown(context.Background()) }, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(conf.ServiceName),
		semconv.ServiceVersionKey.String(version.Version),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("trace resource: %w", err)
	}

	exporter, err := otlptrace.New(ctx, newClient(conf))
	if err != nil {
		return nil, nil, fmt.Errorf("trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(seconds(conf.BatchTimeout)),
			sdktrace.WithExportTimeout(seconds(conf.ExportTimeout)),
			sdktrace.WithMaxExportBatchSize(conf.MaxExportBatchSize),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(conf.sampler()),
	)
	otel.SetTracerProvider(tp)
	log.Infow("tracing enabled", "protocol", conf.Protocol, "endpoint", conf.Endpoint)

	cleanup := func() {
		// 给未发送的 span 留出一次导出的时间
		timeout := seconds(conf.ExportTimeout) + 5*time.Second
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Warnw("tracer shutdown timed out, spans dropped", "timeout", timeout)
				return
			}
			log.Warnw("tracer shutdown failed", "error", err)
		}
	}
	return tp, cleanup, nil
}

func newClient(conf Conf) otlptrace.Client {
	if conf.Protocol == ProtocolGRPC {
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(conf.Endpoint),
			otlptracegrpc.WithHeaders(conf.Headers),
			otlptracegrpc.WithTimeout(seconds(conf.ExportTimeout)),
		}
		if conf.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.NewClient(opts...)
	}
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(conf.Endpoint),
		otlptracehttp.WithHeaders(conf.Headers),
		otlptracehttp.WithTimeout(seconds(conf.ExportTimeout)),
	}
	if conf.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.NewClient(opts...)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
