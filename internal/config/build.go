package config

import (
	"fmt"
	"runtime/debug"
)

// Release metadata, overridden at link time:
//
//	go build -ldflags "-X biotwin/internal/config.version=v1.4.0 \
//	    -X biotwin/internal/config.commit=$(git rev-parse --short HEAD) \
//	    -X biotwin/internal/config.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// NewBuildInfo reports the release metadata. A binary linked without a
// commit falls back to the VCS revision and time stamped by the toolchain.
func NewBuildInfo() BuildInfo {
	info := BuildInfo{Version: version, Commit: commit, BuildTime: buildTime}
	if info.Commit != "none" {
		return info
	}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

// String renders the build as "version (commit, time)" for startup logs.
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", b.Version, b.Commit, b.BuildTime)
}
