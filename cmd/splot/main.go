package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tinytelemetry/splot/internal/model"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var showVersion bool
	var demo bool
	var port string
	var writeConfig bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/splot/config.yml)")
	flag.StringVar(&port, "port", "", "serial port to open (default is the first detected port)")
	flag.BoolVar(&demo, "demo", false, "plot a built-in demo signal instead of a serial device")
	flag.BoolVar(&writeConfig, "write-config", false, "write the resolved configuration to the config file and exit")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Splot - Serial Plotter\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if demo {
		cfg.Demo = true
	}
	if port != "" {
		cfg.Port = port
	}

	if writeConfig {
		if err := saveConfig(cfg, cfg.ConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", cfg.ConfigPath)
		return
	}

	if err := runApp(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("SPLOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("port", "")
	v.SetDefault("baudrate", defaultBaudrate)
	v.SetDefault("connect-timeout", defaultConnectTimeout)
	v.SetDefault("data-bits", 8)
	v.SetDefault("parity", "none")
	v.SetDefault("stop-bits", 1)
	v.SetDefault("flow-control", "none")
	v.SetDefault("time-unit", string(model.DefaultTimeUnit))
	v.SetDefault("value-separator", string(model.DefaultValueSeparator))
	v.SetDefault("sample-buffer", defaultSampleBuffer)
	v.SetDefault("monitor-buffer", defaultMonitorBuffer)
	v.SetDefault("read-chunk", defaultReadChunk)
	v.SetDefault("constrained", false)
	v.SetDefault("demo", false)
	v.SetDefault("bridge-addr", "")
	v.SetDefault("update-interval", defaultUpdateInterval)
	v.SetDefault("api-enabled", false)
	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("record-path", "")
	v.SetDefault("insert-batch-size", defaultInsertBatchSize)
	v.SetDefault("insert-flush-interval", defaultInsertFlushInterval)
	v.SetDefault("insert-flush-queue-size", defaultInsertFlushQueue)
	v.SetDefault("otlp-endpoint", "")
	v.SetDefault("otlp-push-interval", 0)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		defaultConfigPath := filepath.Join(home, ".config", "splot", "config.yml")
		v.SetConfigFile(defaultConfigPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if cfg.Baudrate <= 0 {
		return cfg, fmt.Errorf("invalid baudrate: %d", cfg.Baudrate)
	}
	if _, err := model.ParseTimeUnit(cfg.TimeUnit); err != nil {
		return cfg, err
	}
	if utf8.RuneCountInString(cfg.ValueSeparator) != 1 {
		return cfg, fmt.Errorf("value-separator must be a single character, got %q", cfg.ValueSeparator)
	}
	if cfg.SampleBuffer <= 0 {
		return cfg, fmt.Errorf("invalid sample-buffer: %d", cfg.SampleBuffer)
	}
	if cfg.MonitorBuffer <= 0 {
		return cfg, fmt.Errorf("invalid monitor-buffer: %d", cfg.MonitorBuffer)
	}
	if cfg.ReadChunk <= 0 {
		return cfg, fmt.Errorf("invalid read-chunk: %d", cfg.ReadChunk)
	}
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}

	// Constrained mode shrinks buffers unless the user picked explicit sizes.
	if cfg.Constrained {
		if cfg.SampleBuffer == defaultSampleBuffer {
			cfg.SampleBuffer = model.ConstrainedSampleBuffer
		}
		if cfg.MonitorBuffer == defaultMonitorBuffer {
			cfg.MonitorBuffer = model.ConstrainedMonitorBuffer
		}
	}

	// Expand ~ in record-path
	if strings.HasPrefix(cfg.RecordPath, "~/") {
		cfg.RecordPath = filepath.Join(home, cfg.RecordPath[2:])
	}

	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}

// saveConfig persists the resolved settings so the next run starts from them.
func saveConfig(cfg appConfig, path string) error {
	out := map[string]any{
		"port":            cfg.Port,
		"baudrate":        cfg.Baudrate,
		"connect-timeout": cfg.ConnectTimeout.String(),
		"data-bits":       cfg.DataBits,
		"parity":          cfg.Parity,
		"stop-bits":       cfg.StopBits,
		"flow-control":    cfg.FlowControl,
		"time-unit":       cfg.TimeUnit,
		"value-separator": cfg.ValueSeparator,
		"sample-buffer":   cfg.SampleBuffer,
		"monitor-buffer":  cfg.MonitorBuffer,
		"read-chunk":      cfg.ReadChunk,
		"constrained":     cfg.Constrained,
		"demo":            cfg.Demo,
		"bridge-addr":     cfg.BridgeAddr,
		"update-interval": cfg.UpdateInterval.String(),
		"api-enabled":     cfg.APIEnabled,
		"api-port":        cfg.APIPort,
		"record-path":     cfg.RecordPath,
		"otlp-endpoint":   cfg.OTLPEndpoint,
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
