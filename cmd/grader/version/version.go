package version

import (
	"embed"
	"io"
	"runtime/debug"
	"strings"
)

//go:embed version.*
var versions embed.FS

var (
	// Version is the build version
	Version = "unable to get version"
	// Revision is the vcs revision the binary was built from, if known
	Revision = ""
)

func init() {
	inf, ok := debug.ReadBuildInfo()
	if ok {
		for _, s := range inf.Settings {
			if s.Key == "vcs.revision" {
				Revision = s.Value
			}
		}
	}

	f, err := versions.Open("version.txt")
	if err != nil {
		// go generate was not run, take the module version
		if ok {
			Version = inf.Main.Version
		}
		return
	}
	s, err := io.ReadAll(f)
	if err != nil {
		return
	}
	Version = strings.TrimSpace(string(s))
}
