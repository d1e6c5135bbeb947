package exporters

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/smazurov/alsaprobe/internal/metrics"
	"github.com/smazurov/alsaprobe/internal/probe"
)

func TestHTTPHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	rec.ObserveDevice(probe.ProbeResult{
		Handle:        0,
		Steps:         []probe.StepResult{{Step: probe.StepMixerOpen}},
		MixerReleased: true,
	})

	handler := HTTPHandler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	for _, want := range []string{
		`alsaprobe_steps_total{result="ok",step="mixer_open"} 1`,
		"alsaprobe_mixer_releases_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in response:\n%s", want, body)
		}
	}
}

func TestHTTPHandlerDefaultRegistry(t *testing.T) {
	if HTTPHandler(nil) == nil {
		t.Fatal("expected non-nil handler")
	}
}
