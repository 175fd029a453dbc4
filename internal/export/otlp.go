// Package export pushes ingested samples to an OpenTelemetry collector as
// gauge metrics, so a device stream can feed an existing telemetry stack.
package export

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/tinytelemetry/splot/internal/model"
)

const (
	// DefaultPushInterval is how often buffered points are exported.
	DefaultPushInterval = 5 * time.Second

	// pushTimeout bounds one export RPC.
	pushTimeout = 10 * time.Second

	scopeName = "github.com/tinytelemetry/splot"
)

// point is one buffered observation awaiting export.
type point struct {
	position int
	sample   model.Sample
	observed time.Time
}

// Exporter buffers observed samples and pushes them as OTLP gauge metrics
// over gRPC. It satisfies ingest.SampleObserver.
type Exporter struct {
	conn     *grpc.ClientConn
	client   colmetricspb.MetricsServiceClient
	interval time.Duration

	mu      sync.Mutex
	pending []point
}

// NewExporter dials the collector at endpoint (host:port, plaintext).
func NewExporter(endpoint string, interval time.Duration) (*Exporter, error) {
	if interval <= 0 {
		interval = DefaultPushInterval
	}
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("export: dialing collector %s: %w", endpoint, err)
	}
	return &Exporter{
		conn:     conn,
		client:   colmetricspb.NewMetricsServiceClient(conn),
		interval: interval,
	}, nil
}

// ObserveSample buffers one merged sample for the next push.
func (e *Exporter) ObserveSample(position int, sample model.Sample) {
	e.mu.Lock()
	e.pending = append(e.pending, point{position: position, sample: sample, observed: time.Now()})
	e.mu.Unlock()
}

// Run pushes buffered points until ctx is cancelled, then flushes once.
func (e *Exporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.push(context.Background())
			return ctx.Err()
		case <-ticker.C:
			e.push(ctx)
		}
	}
}

// Close tears down the collector connection.
func (e *Exporter) Close() error {
	return e.conn.Close()
}

func (e *Exporter) push(ctx context.Context) {
	e.mu.Lock()
	points := e.pending
	e.pending = nil
	e.mu.Unlock()

	if len(points) == 0 {
		return
	}

	req := buildExportRequest(points)

	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	if _, err := e.client.Export(ctx, req); err != nil {
		// The stream is lossy by nature; drop the batch and keep going.
		log.Printf("export: pushing %d points failed: %v", len(points), err)
	}
}

// buildExportRequest groups points into one gauge metric per series.
func buildExportRequest(points []point) *colmetricspb.ExportMetricsServiceRequest {
	byMetric := map[string][]*metricspb.NumberDataPoint{}
	var order []string

	for _, p := range points {
		name := p.sample.Name
		if name == "" {
			name = fmt.Sprintf("series_%02d", p.position)
		}
		if _, seen := byMetric[name]; !seen {
			order = append(order, name)
		}
		byMetric[name] = append(byMetric[name], &metricspb.NumberDataPoint{
			TimeUnixNano: uint64(p.observed.UnixNano()),
			Value:        &metricspb.NumberDataPoint_AsDouble{AsDouble: p.sample.Value},
			Attributes: []*commonpb.KeyValue{
				{
					Key:   "splot.position",
					Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: int64(p.position)}},
				},
				{
					Key:   "splot.device_time_seconds",
					Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: p.sample.Time}},
				},
			},
		})
	}

	metrics := make([]*metricspb.Metric, 0, len(order))
	for _, name := range order {
		metrics = append(metrics, &metricspb.Metric{
			Name: name,
			Data: &metricspb.Metric_Gauge{
				Gauge: &metricspb.Gauge{DataPoints: byMetric[name]},
			},
		})
	}

	return &colmetricspb.ExportMetricsServiceRequest{
		ResourceMetrics: []*metricspb.ResourceMetrics{
			{
				Resource: &resourcepb.Resource{
					Attributes: []*commonpb.KeyValue{
						{
							Key:   "service.name",
							Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "splot"}},
						},
					},
				},
				ScopeMetrics: []*metricspb.ScopeMetrics{
					{
						Scope:   &commonpb.InstrumentationScope{Name: scopeName},
						Metrics: metrics,
					},
				},
			},
		},
	}
}
