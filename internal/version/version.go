package version

import (
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
)

// Version information for the irgraph CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with its major, minor and patch parts colored.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := versionMajorColor.Sprint(parts[0]) + "." + versionMinorColor.Sprint(parts[1]) + "." + versionPatchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Fingerprint describes the build: version, commit, date and the module
// versions of the parser backends.
type Fingerprint struct {
	Version   string            `json:"version"`
	GitCommit string            `json:"git_commit,omitempty"`
	BuildDate string            `json:"build_date,omitempty"`
	GoVersion string            `json:"go_version,omitempty"`
	Deps      map[string]string `json:"deps,omitempty"`
}

var trackedDeps = []string{
	"github.com/llir/llvm",
	"github.com/vmihailenco/msgpack/v5",
}

// Current collects the Fingerprint of the running binary. Commit falls back
// to the VCS revision stamped by the go tool.
func Current() Fingerprint {
	fp := Fingerprint{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fp
	}
	fp.GoVersion = info.GoVersion
	for _, dep := range info.Deps {
		for _, want := range trackedDeps {
			if dep.Path == want {
				if fp.Deps == nil {
					fp.Deps = make(map[string]string)
				}
				fp.Deps[dep.Path] = dep.Version
			}
		}
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if fp.GitCommit == "" {
				fp.GitCommit = s.Value
			}
		case "vcs.time":
			if fp.BuildDate == "" {
				fp.BuildDate = s.Value
			}
		}
	}
	return fp
}
