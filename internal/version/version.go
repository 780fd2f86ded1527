package version

import (
	"runtime/debug"
	"strings"
)

// Version is the build version. Release builds set it with
// -ldflags "-X github.com/papertriage/papertriage/internal/version.Version=v1.2.3";
// other builds report the short VCS revision.
var Version = "dev"

func init() {
	if Version == "dev" {
		Version = fromBuildInfo()
	}
}

func fromBuildInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return "dev"
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}

// Full returns the version followed by the commit time when known.
func Full() string {
	parts := []string{Version}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.time" {
				parts = append(parts, s.Value)
				break
			}
		}
	}
	return strings.Join(parts, " ")
}

// UserAgent is sent with every backend request.
func UserAgent() string {
	return "papertriage/" + Version
}
