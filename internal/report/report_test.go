package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/alsaprobe/internal/audio"
	"github.com/smazurov/alsaprobe/internal/probe"
)

func okResult(card int, short, long string, elements ...string) probe.ProbeResult {
	h := probe.DeviceHandle(card)
	return probe.ProbeResult{
		Handle:    h,
		Address:   h.Address(),
		ShortName: short,
		LongName:  long,
		Steps: []probe.StepResult{
			{Step: probe.StepCardName},
			{Step: probe.StepCardLongName},
			{Step: probe.StepMixerOpen},
			{Step: probe.StepMixerAttach},
			{Step: probe.StepSelemRegister},
			{Step: probe.StepMixerLoad},
		},
		MixerReleased: true,
		Elements:      elements,
	}
}

func openFailedResult(card int) probe.ProbeResult {
	h := probe.DeviceHandle(card)
	stepErr := &probe.StepError{Handle: h, Step: probe.StepMixerOpen, Code: -12, Err: errors.New("out of memory")}
	return probe.ProbeResult{
		Handle:    h,
		Address:   h.Address(),
		ShortName: "USB",
		LongName:  "USB Audio",
		Steps: []probe.StepResult{
			{Step: probe.StepCardName},
			{Step: probe.StepCardLongName},
			{Step: probe.StepMixerOpen, Code: -12, Error: "out of memory", Err: stepErr},
		},
	}
}

func TestTraceRun(t *testing.T) {
	var buf bytes.Buffer
	trace := NewTrace(&buf)
	var _ probe.Sink = trace

	trace.DeviceProbed(okResult(0, "PCH", "HDA Intel PCH", "Master", "Capture"))
	trace.DeviceProbed(openFailedResult(1))
	trace.RunFinished(probe.RunSummary{Cards: 2, Failed: 1})

	if err := trace.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	out := buf.String()
	wantLines := []string{
		"card 0 (hw:0)",
		`  card_name          0  "PCH"`,
		`  card_longname      0  "HDA Intel PCH"`,
		"  mixer_attach       0  hw:0",
		"  mixer_load         0  Master, Capture",
		"  mixer released",
		"card 1 (hw:1)",
		"  mixer_open       -12  out of memory",
		"  no mixer to release",
		"Done.",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("trace missing line %q\n%s", line, out)
		}
	}
	if got := strings.Count(out, "card "); got != 2 {
		t.Errorf("expected 2 card headers, got %d\n%s", got, out)
	}
	if !strings.HasSuffix(out, "Done.\n") {
		t.Errorf("trace should end with Done.\n%s", out)
	}
}

func TestTraceRunFinished(t *testing.T) {
	tests := []struct {
		name    string
		summary probe.RunSummary
		want    string
		notWant string
	}{
		{
			name:    "no cards",
			summary: probe.RunSummary{},
			want:    "No sound cards found.\nDone.\n",
		},
		{
			name:    "fatal enumeration",
			summary: probe.RunSummary{Err: &probe.EnumerationError{Initial: true, After: probe.NoDevice, Err: errors.New("permission denied")}},
			want:    "card enumeration failed: permission denied\n",
			notWant: "Done.",
		},
		{
			name:    "cancelled",
			summary: probe.RunSummary{Cards: 1, Err: context.Canceled},
			want:    "Interrupted after 1 card(s).\n",
			notWant: "Done.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewTrace(&buf).RunFinished(tt.summary)
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
			if tt.notWant != "" && strings.Contains(buf.String(), tt.notWant) {
				t.Errorf("output should not contain %q", tt.notWant)
			}
		})
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write([]byte) (int, error) {
	w.calls++
	return 0, errors.New("broken pipe")
}

func TestTraceStopsAfterWriteError(t *testing.T) {
	w := &failingWriter{}
	trace := NewTrace(w)
	trace.DeviceProbed(okResult(0, "PCH", "HDA Intel PCH"))
	trace.RunFinished(probe.RunSummary{Cards: 1})

	if trace.Err() == nil {
		t.Fatal("expected write error")
	}
	if w.calls != 1 {
		t.Errorf("writer called %d times after failing, want 1", w.calls)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" toml ", FormatTOML, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	results := []probe.ProbeResult{okResult(0, "PCH", "HDA Intel PCH", "Master"), openFailedResult(1)}
	if err := Encode(&buf, FormatJSON, results); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var doc struct {
		Cards []struct {
			Card          int    `json:"card"`
			Address       string `json:"address"`
			ShortName     string `json:"short_name"`
			MixerReleased bool   `json:"mixer_released"`
			Steps         []struct {
				Step  string `json:"step"`
				Code  int    `json:"code"`
				Error string `json:"error"`
			} `json:"steps"`
			Elements []string `json:"elements"`
		} `json:"cards"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(doc.Cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(doc.Cards))
	}
	if c := doc.Cards[0]; c.Address != "hw:0" || c.ShortName != "PCH" || !c.MixerReleased || len(c.Steps) != 6 {
		t.Errorf("unexpected first card %+v", c)
	}
	last := doc.Cards[1].Steps[len(doc.Cards[1].Steps)-1]
	if last.Step != "mixer_open" || last.Code != -12 || last.Error != "out of memory" {
		t.Errorf("unexpected failed step %+v", last)
	}
	if !strings.Contains(buf.String(), "\n  \"cards\"") {
		t.Error("JSON output should be indented")
	}
}

func TestEncodeEmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatJSON, nil); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"cards": []`) {
		t.Errorf("expected empty cards array, got %s", buf.String())
	}
}

func TestEncodeTOML(t *testing.T) {
	var buf bytes.Buffer
	results := []probe.ProbeResult{okResult(0, "PCH", "HDA Intel PCH", "Master"), openFailedResult(1)}
	if err := Encode(&buf, FormatTOML, results); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := strings.Count(buf.String(), "[[card]]"); got != 2 {
		t.Errorf("expected 2 [[card]] tables, got %d\n%s", got, buf.String())
	}

	var doc struct {
		Card []struct {
			Card      int    `toml:"card"`
			Address   string `toml:"address"`
			ShortName string `toml:"short_name"`
			Steps     []struct {
				Step string `toml:"step"`
				Code int    `toml:"code"`
			} `toml:"steps"`
		} `toml:"card"`
	}
	if err := toml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid TOML: %v\n%s", err, buf.String())
	}
	if len(doc.Card) != 2 || doc.Card[1].Address != "hw:1" || doc.Card[1].Steps[2].Code != -12 {
		t.Errorf("unexpected decoded document %+v", doc)
	}
}

func TestEncodeText(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, FormatText, nil); err == nil {
		t.Error("Encode(FormatText) should fail")
	}
}

func TestCollector(t *testing.T) {
	c := &Collector{}
	probe.Sinks{c}.DeviceProbed(okResult(3, "Loopback", "Loopback 1"))
	probe.Sinks{c}.RunFinished(probe.RunSummary{Cards: 1})

	if len(c.Results) != 1 || c.Results[0].Handle != 3 || c.Summary.Cards != 1 {
		t.Errorf("unexpected collector state %+v", c)
	}
}

func TestEncodePCM(t *testing.T) {
	devices := []audio.Device{
		{CardNumber: 0, CardID: "PCH", DeviceNumber: 0, DeviceName: "ALC892 Analog", Type: "both", ALSADevice: "hw:0,0",
			SupportedRates: []int{44100, 48000}, MinChannels: 2, MaxChannels: 2, SupportedFormats: []string{"S16_LE", "S32_LE"}},
		{CardNumber: 1, CardID: "USB", DeviceNumber: 0, DeviceName: "USB Audio", Type: "capture", ALSADevice: "hw:1,0",
			MinChannels: 1, MaxChannels: 2},
	}

	tests := []struct {
		name     string
		format   Format
		devices  []audio.Device
		contains []string
	}{
		{
			name:     "text table",
			format:   FormatText,
			devices:  devices,
			contains: []string{"DEVICE", "hw:0,0", "44100,48000", "S16_LE,S32_LE", "1-2", "hw:1,0"},
		},
		{
			name:     "text empty",
			format:   FormatText,
			contains: []string{"No PCM devices found."},
		},
		{
			name:     "json",
			format:   FormatJSON,
			devices:  devices,
			contains: []string{`"devices": [`, `"alsa_device": "hw:1,0"`},
		},
		{
			name:     "json empty",
			format:   FormatJSON,
			contains: []string{`"devices": []`},
		},
		{
			name:     "toml",
			format:   FormatTOML,
			devices:  devices,
			contains: []string{"[[device]]", "alsa_device = ", "hw:0,0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodePCM(&buf, tt.format, tt.devices); err != nil {
				t.Fatalf("EncodePCM() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestChannelRange(t *testing.T) {
	tests := []struct {
		lo, hi int
		want   string
	}{
		{0, 0, "-"},
		{2, 2, "2"},
		{1, 8, "1-8"},
	}
	for _, tt := range tests {
		if got := channelRange(tt.lo, tt.hi); got != tt.want {
			t.Errorf("channelRange(%d, %d) = %q, want %q", tt.lo, tt.hi, got, tt.want)
		}
	}
}
