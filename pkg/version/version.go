// Package version reports the build revision baked into the binary.
package version

import (
	"runtime/debug"
	"sync"
)

// AppName identifies the binary in logs and version strings.
const AppName = "calliope"

// commitOverride is set with -ldflags for container builds where the VCS
// metadata is unavailable.
var commitOverride string

// Commit returns the short git revision of the build, or "dev" when no
// override and no VCS metadata are present (go test, non-git checkouts).
var Commit = sync.OnceValue(func() string {
	if commitOverride != "" {
		return shorten(commitOverride)
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return shorten(s.Value)
			}
		}
	}
	return "dev"
})

func shorten(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}

// Full returns "calliope/<commit>" for startup logs and user agents.
func Full() string {
	return AppName + "/" + Commit()
}
