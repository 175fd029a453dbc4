package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tinytelemetry/splot/internal/duckdb"
	"github.com/tinytelemetry/splot/internal/export"
	"github.com/tinytelemetry/splot/internal/httpserver"
	"github.com/tinytelemetry/splot/internal/ingest"
	"github.com/tinytelemetry/splot/internal/model"
	"github.com/tinytelemetry/splot/internal/serialport"
	"github.com/tinytelemetry/splot/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// runApp connects to the configured device and runs the plotter until the
// user quits or a signal arrives.
func runApp(cfg appConfig) error {
	unit, err := model.ParseTimeUnit(cfg.TimeUnit)
	if err != nil {
		return err
	}
	opts, err := portOptions(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Optional sinks observe samples as the session merges them.
	var observers multiObserver

	var insertBuffer *duckdb.InsertBuffer
	if cfg.RecordPath != "" {
		store, err := duckdb.NewStore(cfg.RecordPath, defaultQueryTimeout)
		if err != nil {
			return fmt.Errorf("failed to initialize DuckDB: %w", err)
		}
		defer store.Close()

		insertBuffer = duckdb.NewInsertBuffer(store, duckdb.InsertBufferConfig{
			BatchSize:      cfg.InsertBatchSize,
			FlushInterval:  cfg.InsertFlushInterval,
			FlushQueueSize: cfg.InsertFlushQueue,
		})
		defer insertBuffer.Close()
		observers = append(observers, recorderObserver{buf: insertBuffer})
	}

	var exporter *export.Exporter
	if cfg.OTLPEndpoint != "" {
		exporter, err = export.NewExporter(cfg.OTLPEndpoint, cfg.OTLPPushInterval)
		if err != nil {
			return fmt.Errorf("failed to initialize OTLP exporter: %w", err)
		}
		defer exporter.Close()
		observers = append(observers, exporter)
	}

	sessionCfg := ingest.Config{
		TimeUnit:       unit,
		ValueSeparator: []rune(cfg.ValueSeparator)[0],
		SampleBuffer:   cfg.SampleBuffer,
		MonitorBuffer:  cfg.MonitorBuffer,
	}
	if len(observers) > 0 {
		sessionCfg.Observer = observers
	}
	session := ingest.NewSession(sessionCfg)

	conn := buildConnection(cfg)
	defer conn.Close(context.Background())

	portLabel, err := connect(ctx, conn, cfg, opts)
	if err != nil {
		return err
	}
	session.RestartClock()

	reader := ingest.NewReader(conn, session, cfg.ReadChunk)

	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, session)
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return reader.Run(ctx)
	})
	if exporter != nil {
		g.Go(func() error {
			return exporter.Run(ctx)
		})
	}

	p := tea.NewProgram(tui.New(session, reader, portLabel, cfg.UpdateInterval), tea.WithAltScreen())
	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
				return fmt.Errorf("plotter requires a real terminal")
			}
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	})
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildConnection picks the transport variant the config asks for.
func buildConnection(cfg appConfig) serialport.Connection {
	switch {
	case cfg.Demo:
		return serialport.NewDemoPort()
	case cfg.BridgeAddr != "":
		return serialport.NewBridgePort(cfg.BridgeAddr)
	default:
		return serialport.NewNativePort()
	}
}

// connect opens the selected port and returns a label for the header line.
func connect(ctx context.Context, conn serialport.Connection, cfg appConfig, opts serialport.Options) (string, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	ports, err := conn.AvailablePorts(connectCtx)
	if err != nil {
		return "", fmt.Errorf("listing ports: %w", err)
	}
	if len(ports) == 0 {
		return "", fmt.Errorf("no serial ports detected")
	}

	index := 0
	if cfg.Port != "" {
		index = -1
		for i, name := range ports {
			if name == cfg.Port {
				index = i
				break
			}
		}
		if index < 0 {
			return "", fmt.Errorf("port %q not found (available: %s)", cfg.Port, strings.Join(ports, ", "))
		}
	}

	if err := conn.TryConnect(connectCtx, index, opts); err != nil {
		return "", fmt.Errorf("opening %s: %w", ports[index], err)
	}
	log.Printf("splot: connected to %s", ports[index])
	return ports[index], nil
}

func portOptions(cfg appConfig) (serialport.Options, error) {
	opts := serialport.DefaultOptions()
	opts.Baudrate = cfg.Baudrate
	opts.Timeout = cfg.ConnectTimeout

	var err error
	if opts.DataBits, err = serialport.ParseDataBits(cfg.DataBits); err != nil {
		return opts, err
	}
	if opts.Parity, err = serialport.ParseParity(cfg.Parity); err != nil {
		return opts, err
	}
	if opts.StopBits, err = serialport.ParseStopBits(cfg.StopBits); err != nil {
		return opts, err
	}
	if opts.FlowControl, err = serialport.ParseFlowControl(cfg.FlowControl); err != nil {
		return opts, err
	}
	return opts, nil
}

// multiObserver fans one sample out to every configured sink.
type multiObserver []ingest.SampleObserver

func (m multiObserver) ObserveSample(position int, sample model.Sample) {
	for _, o := range m {
		o.ObserveSample(position, sample)
	}
}

// recorderObserver feeds merged samples into the batched DuckDB writer.
type recorderObserver struct {
	buf *duckdb.InsertBuffer
}

func (r recorderObserver) ObserveSample(position int, sample model.Sample) {
	r.buf.Add(duckdb.SampleRow{
		Series:     position,
		Name:       sample.Name,
		Time:       sample.Time,
		Value:      sample.Value,
		ReceivedAt: time.Now(),
	})
}
