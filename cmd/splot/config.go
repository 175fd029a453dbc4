package main

import (
	"time"

	"github.com/tinytelemetry/splot/internal/model"
)

const (
	defaultBaudrate       = model.DefaultBaudrate
	defaultConnectTimeout = model.DefaultConnectTimeout
	defaultUpdateInterval = model.DefaultUpdateInterval
	defaultSampleBuffer   = model.DefaultSampleBuffer
	defaultMonitorBuffer  = model.DefaultMonitorBuffer
	defaultReadChunk      = model.DefaultReadChunk
	defaultBindHost       = "127.0.0.1"
	defaultAPIPort        = 3000

	defaultInsertBatchSize     = 2000
	defaultInsertFlushInterval = 500 * time.Millisecond
	defaultInsertFlushQueue    = 16
	defaultQueryTimeout        = 30 * time.Second
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Port                string        `mapstructure:"port"`
	Baudrate            int           `mapstructure:"baudrate"`
	ConnectTimeout      time.Duration `mapstructure:"connect-timeout"`
	DataBits            int           `mapstructure:"data-bits"`
	Parity              string        `mapstructure:"parity"`
	StopBits            int           `mapstructure:"stop-bits"`
	FlowControl         string        `mapstructure:"flow-control"`
	TimeUnit            string        `mapstructure:"time-unit"`
	ValueSeparator      string        `mapstructure:"value-separator"`
	SampleBuffer        int           `mapstructure:"sample-buffer"`
	MonitorBuffer       int           `mapstructure:"monitor-buffer"`
	ReadChunk           int           `mapstructure:"read-chunk"`
	Constrained         bool          `mapstructure:"constrained"`
	Demo                bool          `mapstructure:"demo"`
	BridgeAddr          string        `mapstructure:"bridge-addr"`
	UpdateInterval      time.Duration `mapstructure:"update-interval"`
	APIEnabled          bool          `mapstructure:"api-enabled"`
	APIPort             int           `mapstructure:"api-port"`
	APIAddr             string        `mapstructure:"api-addr"`
	RecordPath          string        `mapstructure:"record-path"`
	InsertBatchSize     int           `mapstructure:"insert-batch-size"`
	InsertFlushInterval time.Duration `mapstructure:"insert-flush-interval"`
	InsertFlushQueue    int           `mapstructure:"insert-flush-queue-size"`
	OTLPEndpoint        string        `mapstructure:"otlp-endpoint"`
	OTLPPushInterval    time.Duration `mapstructure:"otlp-push-interval"`
	ConfigPath          string        `mapstructure:"-"` // not from config file
}
