// Package version reports build metadata.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the semantic version (set by ldflags during build)
	Version = "dev"
	// Commit is the git commit hash (set by ldflags during build)
	Commit = "unknown"
	// Date is the build date (set by ldflags during build)
	Date = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version     string `json:"version" yaml:"version"`
	Commit      string `json:"commit" yaml:"commit"`
	Date        string `json:"date" yaml:"date"`
	GoVersion   string `json:"goVersion" yaml:"goVersion"`
	Platform    string `json:"platform" yaml:"platform"`
	SaveVersion int    `json:"saveVersion" yaml:"saveVersion"`
}

// GetInfo returns the build metadata. saveVersion is the save schema
// version the binary writes. A "dev" version falls back to the module
// version recorded by `go install`.
func GetInfo(saveVersion int) Info {
	v := Version
	if v == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}
	return Info{
		Version:     v,
		Commit:      Commit,
		Date:        Date,
		GoVersion:   runtime.Version(),
		Platform:    fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SaveVersion: saveVersion,
	}
}

// String returns a formatted version string
func (i Info) String() string {
	commitShort := i.Commit
	if len(commitShort) > 8 {
		commitShort = commitShort[:8]
	}
	return fmt.Sprintf("idleforge %s (%s) built %s with %s for %s, save format v%d",
		i.Version, commitShort, i.Date, i.GoVersion, i.Platform, i.SaveVersion)
}
