package api

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/alsaprobe/internal/api/models"
	"github.com/smazurov/alsaprobe/internal/audio"
	"github.com/smazurov/alsaprobe/internal/events"
	"github.com/smazurov/alsaprobe/internal/logging"
	"github.com/smazurov/alsaprobe/internal/probe"
)

type fakeProber struct {
	mu      sync.Mutex
	results []probe.ProbeResult
	err     error
	calls   int
}

func (f *fakeProber) Run(_ context.Context) ([]probe.ProbeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.results, f.err
}

func sampleResults() []probe.ProbeResult {
	loadErr := errors.New("no such device")
	return []probe.ProbeResult{
		{
			Handle:    0,
			Address:   "hw:0",
			ShortName: "PCH",
			LongName:  "HDA Intel PCH",
			Steps: []probe.StepResult{
				{Step: probe.StepCardName},
				{Step: probe.StepCardLongName},
				{Step: probe.StepMixerOpen},
				{Step: probe.StepMixerAttach, Elapsed: 1500 * time.Microsecond},
				{Step: probe.StepSelemRegister},
				{Step: probe.StepMixerLoad},
			},
			MixerReleased: true,
			Elements:      []string{"Master", "Capture"},
		},
		{
			Handle:    1,
			Address:   "hw:1",
			ShortName: "USB",
			Steps: []probe.StepResult{
				{Step: probe.StepCardName},
				{Step: probe.StepCardLongName, Code: -19, Error: "no such device", Err: loadErr},
				{Step: probe.StepMixerOpen},
				{Step: probe.StepMixerAttach},
				{Step: probe.StepSelemRegister},
				{Step: probe.StepMixerLoad},
			},
			MixerReleased: true,
		},
	}
}

func newTestServer(opts *Options) *Server {
	if opts.Backend == "" {
		opts.Backend = "fake"
	}
	return NewServer(opts)
}

func doRequest(t *testing.T, h http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndVersion(t *testing.T) {
	server := newTestServer(&Options{Backend: "ioctl"})

	rec := doRequest(t, server.Handler(), http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, body %s", rec.Code, rec.Body.String())
	}
	var health models.HealthData
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.Backend != "ioctl" {
		t.Errorf("unexpected health %+v", health)
	}

	rec = doRequest(t, server.Handler(), http.MethodGet, "/api/version", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("version status = %d", rec.Code)
	}
	var v models.VersionData
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.Version == "" || v.GoVersion == "" || v.Platform == "" {
		t.Errorf("incomplete version %+v", v)
	}
}

func TestProbeCards(t *testing.T) {
	prober := &fakeProber{results: sampleResults()}
	server := newTestServer(&Options{Prober: prober})

	rec := doRequest(t, server.Handler(), http.MethodGet, "/api/cards", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var data models.CardsData
	if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Count != 2 || data.Failed != 1 || len(data.Cards) != 2 {
		t.Fatalf("unexpected counts %+v", data)
	}

	first := data.Cards[0]
	if !first.OK || first.Address != "hw:0" || len(first.Steps) != 6 || len(first.Elements) != 2 {
		t.Errorf("unexpected first card %+v", first)
	}
	if first.Steps[3].ElapsedMS != 1.5 {
		t.Errorf("ElapsedMS = %v, want 1.5", first.Steps[3].ElapsedMS)
	}

	second := data.Cards[1]
	if second.OK || second.LongName != "" || second.Steps[1].Code != -19 || second.Steps[1].Error != "no such device" {
		t.Errorf("unexpected second card %+v", second)
	}
	if prober.calls != 1 {
		t.Errorf("prober called %d times", prober.calls)
	}
}

func TestProbeCardsErrors(t *testing.T) {
	tests := []struct {
		name   string
		prober Prober
		want   int
	}{
		{
			name:   "no backend",
			prober: nil,
			want:   http.StatusServiceUnavailable,
		},
		{
			name: "initial enumeration failure",
			prober: &fakeProber{err: &probe.EnumerationError{
				Initial: true, After: probe.NoDevice, Err: &audio.Error{Op: "snd_card_next", Code: -13, Msg: "permission denied"},
			}},
			want: http.StatusServiceUnavailable,
		},
		{
			name:   "cancelled",
			prober: &fakeProber{results: sampleResults()[:1], err: context.Canceled},
			want:   http.StatusRequestTimeout,
		},
		{
			name:   "unexpected",
			prober: &fakeProber{err: errors.New("boom")},
			want:   http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(&Options{Prober: tt.prober})
			rec := doRequest(t, server.Handler(), http.MethodGet, "/api/cards", nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestListPCM(t *testing.T) {
	devices := []audio.Device{
		{CardNumber: 0, CardID: "PCH", DeviceNumber: 0, Type: "both", ALSADevice: "hw:0,0", SupportedRates: []int{44100, 48000}},
		{CardNumber: 1, CardID: "USB", DeviceNumber: 0, Type: "capture", ALSADevice: "hw:1,0"},
	}
	server := newTestServer(&Options{ListPCM: func() ([]audio.Device, error) { return devices, nil }})

	rec := doRequest(t, server.Handler(), http.MethodGet, "/api/pcm", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var data models.PCMDevicesData
	if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Count != 2 || data.Devices[0].ALSADevice != "hw:0,0" || len(data.Devices[0].SupportedRates) != 2 {
		t.Errorf("unexpected devices %+v", data)
	}

	failing := newTestServer(&Options{ListPCM: func() ([]audio.Device, error) { return nil, errors.New("no /dev/snd") }})
	rec = doRequest(t, failing.Handler(), http.MethodGet, "/api/pcm", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	server := newTestServer(&Options{
		Prober:       &fakeProber{},
		AuthUsername: "admin",
		AuthPassword: "secret",
	})
	good := base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	bad := base64.StdEncoding.EncodeToString([]byte("admin:wrong"))

	tests := []struct {
		name   string
		path   string
		header http.Header
		want   int
	}{
		{"health needs no auth", "/api/health", nil, http.StatusOK},
		{"cards without credentials", "/api/cards", nil, http.StatusUnauthorized},
		{"cards with header", "/api/cards", http.Header{"Authorization": {"Basic " + good}}, http.StatusOK},
		{"cards with wrong password", "/api/cards", http.Header{"Authorization": {"Basic " + bad}}, http.StatusUnauthorized},
		{"cards with bearer", "/api/cards", http.Header{"Authorization": {"Bearer " + good}}, http.StatusUnauthorized},
		{"cards with query", "/api/cards?auth=" + good, nil, http.StatusOK},
		{"cards with garbage query", "/api/cards?auth=!!!", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, server.Handler(), http.MethodGet, tt.path, tt.header)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestMetricsMountAndCORS(t *testing.T) {
	server := newTestServer(&Options{
		PrometheusHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("alsaprobe_cards 2\n"))
		}),
	})

	rec := doRequest(t, server.Handler(), http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "alsaprobe_cards 2") {
		t.Errorf("metrics status = %d body %q", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, server.Handler(), http.MethodOptions, "/api/cards", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, OPTIONS" {
		t.Errorf("Allow-Methods = %q", got)
	}
}

func TestStreamRoutesNeedBus(t *testing.T) {
	server := newTestServer(&Options{})
	rec := doRequest(t, server.Handler(), http.MethodGet, "/api/probe/stream", nil)
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want stream route to be absent without a bus", rec.Code)
	}
}

// readData collects SSE data lines from body.
func readData(body *bufio.Scanner) <-chan string {
	lines := make(chan string, 32)
	go func() {
		defer close(lines)
		for body.Scan() {
			if line := body.Text(); strings.HasPrefix(line, "data:") {
				lines <- line
			}
		}
	}()
	return lines
}

func nextData(t *testing.T, lines <-chan string, contains string) string {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed waiting for %q", contains)
			}
			if strings.Contains(line, contains) {
				return line
			}
		case <-timeout:
			t.Fatalf("timeout waiting for %q", contains)
		}
	}
}

func TestProbeStream(t *testing.T) {
	bus := events.New()
	server := newTestServer(&Options{EventBus: bus})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/probe/stream")
	if err != nil {
		t.Fatalf("Failed to connect to SSE: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("Expected SSE content type, got %s", resp.Header.Get("Content-Type"))
	}

	lines := readData(bufio.NewScanner(resp.Body))
	nextData(t, lines, "SSE connection established")

	bus.Publish(events.DeviceProbedEvent{Result: sampleResults()[1], Timestamp: "2026-01-27T10:30:00Z"})
	line := nextData(t, lines, `"address":"hw:1"`)
	if !strings.Contains(line, `"card_longname"`) {
		t.Errorf("expected step data in event, got %s", line)
	}

	bus.Publish(events.CardHotplugEvent{Card: 2, Action: "add", DevName: "snd/controlC2"})
	nextData(t, lines, "snd/controlC2")

	bus.Publish(events.ProbeRunEvent{Cards: 3, Failed: 1})
	nextData(t, lines, `"cards":3`)
}

func TestLogStreamReplaysHistory(t *testing.T) {
	logging.Initialize(logging.Config{Level: "info", Format: "text"})
	logging.GetLogger("probe").Info("history entry before connect")

	bus := events.New()
	server := newTestServer(&Options{EventBus: bus})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/logs/stream")
	if err != nil {
		t.Fatalf("Failed to connect to SSE: %v", err)
	}
	defer resp.Body.Close()

	lines := readData(bufio.NewScanner(resp.Body))
	nextData(t, lines, "history entry before connect")

	bus.Publish(events.LogEntryEvent{Seq: ^uint64(0), Level: "warn", Module: "probe", Message: "live entry"})
	nextData(t, lines, "live entry")
}

func TestLogEvent(t *testing.T) {
	entry := logging.LogEntry{
		Seq:        7,
		Timestamp:  time.Date(2026, 1, 27, 10, 30, 0, 0, time.UTC),
		Level:      "warn",
		Module:     "probe",
		Message:    "Probe step failed",
		Attributes: map[string]any{"card": 1},
	}
	ev := LogEvent(entry)
	if ev.Seq != 7 || ev.Timestamp != "2026-01-27T10:30:00Z" || ev.Module != "probe" || ev.Attributes["card"] != 1 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		method string
		status int
		want   slog.Level
	}{
		{http.MethodOptions, http.StatusNoContent, slog.LevelDebug},
		{http.MethodGet, http.StatusOK, slog.LevelInfo},
		{http.MethodGet, http.StatusUnauthorized, slog.LevelWarn},
		{http.MethodGet, http.StatusServiceUnavailable, slog.LevelError},
	}
	for _, tt := range tests {
		if got := requestLevel(tt.method, tt.status); got != tt.want {
			t.Errorf("requestLevel(%s, %d) = %v, want %v", tt.method, tt.status, got, tt.want)
		}
	}
}

func TestRedactQuery(t *testing.T) {
	q := url.Values{"auth": {"YWRtaW46c2VjcmV0"}, "since": {"5"}}
	got := redactQuery(q)
	if strings.Contains(got, "YWRtaW46c2VjcmV0") || !strings.Contains(got, "auth=REDACTED") || !strings.Contains(got, "since=5") {
		t.Errorf("redactQuery() = %q", got)
	}
}
