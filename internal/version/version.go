// Package version reports build metadata injected through ldflags, e.g.
//
//	go build -ldflags "-X github.com/svasthya/svasthya/internal/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const develVersion = "dev"

var (
	Version   = develVersion
	GitCommit = ""
	BuildDate = ""
)

type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func Get() Info {
	return Info{
		Version:   GetVersion(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetVersion prefers the ldflags value, then the module version recorded by
// `go install`, and finally "dev".
func GetVersion() string {
	if Version != "" && Version != develVersion {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return develVersion
}

// GetShortVersion appends the abbreviated commit hash when known
func GetShortVersion() string {
	if len(GitCommit) < 7 {
		return GetVersion()
	}

	return fmt.Sprintf("%s-%s", GetVersion(), GitCommit[:7])
}
