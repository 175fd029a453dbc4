package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/tinytelemetry/splot/internal/duckdb"
	"github.com/tinytelemetry/splot/internal/httpserver"
	"github.com/tinytelemetry/splot/internal/ingest"
	"github.com/tinytelemetry/splot/internal/model"
	"github.com/tinytelemetry/splot/internal/serialport"
)

// recordingObserver mirrors the cmd wiring: every merged sample goes to the
// batched DuckDB writer.
type recordingObserver struct {
	buf *duckdb.InsertBuffer
}

func (r recordingObserver) ObserveSample(position int, sample model.Sample) {
	r.buf.Add(duckdb.SampleRow{
		Series:     position,
		Name:       sample.Name,
		Time:       sample.Time,
		Value:      sample.Value,
		ReceivedAt: time.Now(),
	})
}

// freeAddr reserves a loopback port for the API server.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

// TestDemoDeviceToAPIAndStore runs the full pipeline: demo device, reader
// loop, session merge, DuckDB recording and the HTTP API.
func TestDemoDeviceToAPIAndStore(t *testing.T) {
	store, err := duckdb.NewStore("", 5*time.Second)
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	defer store.Close()

	insert := duckdb.NewInsertBuffer(store, duckdb.InsertBufferConfig{
		BatchSize:      64,
		FlushInterval:  20 * time.Millisecond,
		FlushQueueSize: 4,
	})

	session := ingest.NewSession(ingest.Config{
		TimeUnit:       model.TimeUnitSeconds,
		ValueSeparator: ',',
		SampleBuffer:   1024,
		MonitorBuffer:  128,
		Observer:       recordingObserver{buf: insert},
	})

	conn := serialport.NewDemoPort()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := conn.TryConnect(ctx, 0, serialport.DefaultOptions()); err != nil {
		t.Fatalf("connecting demo port: %v", err)
	}
	defer conn.Close(context.Background())
	session.RestartClock()

	reader := ingest.NewReader(conn, session, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = reader.Run(ctx)
	}()

	apiAddr := freeAddr(t)
	api := httpserver.NewServer(apiAddr, session)
	if err := api.Start(); err != nil {
		t.Fatalf("starting API server: %v", err)
	}
	defer api.Stop()

	// The demo device streams three values per frame at 60 Hz; wait for a
	// handful of frames to arrive.
	deadline := time.Now().Add(5 * time.Second)
	for session.SamplesReceived() < 30 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for samples, got %d", session.SamplesReceived())
		}
		time.Sleep(10 * time.Millisecond)
	}

	snap := session.Snapshot()
	if len(snap.Appearances) != 4 {
		t.Fatalf("expected 4 series (time slot plus three signals), got %d", len(snap.Appearances))
	}
	wantNames := []string{"Samples 00", "square", "sin_1", "sin_2"}
	for i, want := range wantNames {
		if snap.Appearances[i].Name != want {
			t.Errorf("series %d named %q, want %q", i, snap.Appearances[i].Name, want)
		}
	}
	if len(snap.Series[0]) != 0 {
		t.Errorf("time slot series should stay empty, has %d samples", len(snap.Series[0]))
	}
	if len(snap.Series[1]) == 0 {
		t.Error("square series received no samples")
	}
	if len(snap.MonitorLines) == 0 {
		t.Error("monitor echo is empty")
	}

	var health struct {
		Status          string `json:"status"`
		SeriesCount     int    `json:"series_count"`
		SamplesReceived uint64 `json:"samples_received"`
	}
	httpGetJSON(t, fmt.Sprintf("http://%s/api/health", apiAddr), &health)
	if health.Status != "ok" {
		t.Errorf("health status %q, want ok", health.Status)
	}
	if health.SeriesCount != 4 {
		t.Errorf("health reports %d series, want 4", health.SeriesCount)
	}
	if health.SamplesReceived < 30 {
		t.Errorf("health reports %d samples, want at least 30", health.SamplesReceived)
	}

	var seriesResp struct {
		Series []struct {
			Position int    `json:"position"`
			Name     string `json:"name"`
		} `json:"series"`
	}
	httpGetJSON(t, fmt.Sprintf("http://%s/api/series", apiAddr), &seriesResp)
	if len(seriesResp.Series) != 4 {
		t.Fatalf("API returned %d series, want 4", len(seriesResp.Series))
	}
	if seriesResp.Series[1].Name != "square" {
		t.Errorf("API series 1 named %q, want square", seriesResp.Series[1].Name)
	}

	// Stop ingesting, then make sure the recorder drained into DuckDB.
	cancel()
	wg.Wait()
	insert.Close()

	count, err := store.TotalSampleCount()
	if err != nil {
		t.Fatalf("counting recorded samples: %v", err)
	}
	if count < 30 {
		t.Errorf("store holds %d samples, want at least 30", count)
	}

	rows, err := store.RecentSamples(1, 5)
	if err != nil {
		t.Fatalf("querying recent samples: %v", err)
	}
	for _, row := range rows {
		if row.Name != "square" {
			t.Errorf("series 1 row named %q, want square", row.Name)
		}
	}
}

func httpGetJSON(t *testing.T, url string, out any) {
	t.Helper()

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decoding %s response: %v", url, err)
	}
}
