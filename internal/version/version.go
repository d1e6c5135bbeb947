// Package version reports build metadata injected with -ldflags, falling back
// to the VCS stamp the Go toolchain embeds.
package version

import (
	"runtime"
	"runtime/debug"
)

const unknown = "unknown"

// Set via -ldflags "-X github.com/smazurov/alsaprobe/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = unknown
	BuildDate = unknown
	BuildID   = unknown
)

// Info contains version and build metadata.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	BuildID   string `json:"build_id"`
	GoVersion string `json:"go_version"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

var readBuildInfo = debug.ReadBuildInfo

// Get returns version and build information.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		BuildID:   BuildID,
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.GitCommit == unknown:
			info.GitCommit = shortRevision(s.Value)
		case s.Key == "vcs.time" && info.BuildDate == unknown:
			info.BuildDate = s.Value
		}
	}
	return info
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// String returns the application version string.
func String() string {
	return Get().Version
}
