// Package version reports which build of addesso is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version can be set at build time with something like:
// go build -ldflags "-X github.com/albertobarberis/addesso-synth/version.Version=$(git describe --dirty)"
var Version string

// Revision is the short VCS hash of the build, with a -dirty suffix if the
// tree had local modifications. Empty when built without VCS info.
var Revision = revision(readSettings())

func readSettings() []debug.BuildSetting {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return info.Settings
}

func revision(settings []debug.BuildSetting) string {
	var hash string
	modified := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			hash = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if len(hash) > 7 {
		hash = hash[:7]
	}
	if hash != "" && modified {
		hash += "-dirty"
	}
	return hash
}

// String returns Version, or the revision if no version was set.
func String() string {
	if Version != "" {
		return Version
	}
	if Revision != "" {
		return Revision
	}
	return "devel"
}

// Long adds the Go toolchain and platform to String.
func Long() string {
	return fmt.Sprintf("addesso %s (%s, %s/%s)", String(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
