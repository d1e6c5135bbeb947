package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/alsaprobe/internal/audio"
	"github.com/smazurov/alsaprobe/internal/probe"
)

// Format selects how a run is reported.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatTOML}

// ParseFormat validates a format name. An empty name is FormatText.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatTOML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or toml)", name)
	}
}

// Document is the machine-readable form of a run.
type Document struct {
	Cards []probe.ProbeResult `json:"cards" toml:"card"`
}

// Encode writes results in a structured format. Text output is produced
// incrementally by Trace, so FormatText is rejected here.
func Encode(w io.Writer, format Format, results []probe.ProbeResult) error {
	if results == nil {
		results = []probe.ProbeResult{}
	}
	return encode(w, format, Document{Cards: results}, "report")
}

// PCMDocument is the machine-readable form of a PCM listing.
type PCMDocument struct {
	Devices []audio.Device `json:"devices" toml:"device"`
}

// EncodePCM writes a PCM device listing. FormatText is a table.
func EncodePCM(w io.Writer, format Format, devices []audio.Device) error {
	if format == FormatText {
		return writePCMTable(w, devices)
	}
	if devices == nil {
		devices = []audio.Device{}
	}
	return encode(w, format, PCMDocument{Devices: devices}, "pcm listing")
}

func encode(w io.Writer, format Format, doc any, what string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json %s: %w", what, err)
		}
		return nil
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode toml %s: %w", what, err)
		}
		return nil
	default:
		return fmt.Errorf("format %q cannot be encoded", format)
	}
}

func writePCMTable(w io.Writer, devices []audio.Device) error {
	if len(devices) == 0 {
		_, err := fmt.Fprintln(w, "No PCM devices found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tCARD\tNAME\tTYPE\tCHANNELS\tRATES\tFORMATS")
	for _, d := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ALSADevice, d.CardID, d.DeviceName, d.Type,
			channelRange(d.MinChannels, d.MaxChannels), joinInts(d.SupportedRates), strings.Join(d.SupportedFormats, ","))
	}
	return tw.Flush()
}

func channelRange(lo, hi int) string {
	switch {
	case hi == 0:
		return "-"
	case lo == hi:
		return strconv.Itoa(lo)
	default:
		return fmt.Sprintf("%d-%d", lo, hi)
	}
}

func joinInts(values []int) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Collector is a probe.Sink that keeps results for a later Encode.
type Collector struct {
	Results []probe.ProbeResult
	Summary probe.RunSummary
}

// DeviceProbed implements probe.Sink.
func (c *Collector) DeviceProbed(result probe.ProbeResult) {
	c.Results = append(c.Results, result)
}

// RunFinished implements probe.Sink.
func (c *Collector) RunFinished(summary probe.RunSummary) {
	c.Summary = summary
}
