package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"
)

// Build information, overridable with
// -ldflags "-X typematch/internal/version.Version=...".
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Info is the serialisable build description.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

// Current returns the build information of the running binary.
func Current() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// Colored renders the version with its major, minor and patch parts
// highlighted; anything that is not x.y.z[-suffix] is returned unchanged.
func Colored(v string) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return v
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// String renders one line such as "typematch 0.1.0 (abc123, 2026-01-02)".
func (i Info) String() string {
	var extra []string
	if i.GitCommit != "" {
		extra = append(extra, i.GitCommit)
	}
	if i.BuildDate != "" {
		extra = append(extra, i.BuildDate)
	}
	s := "typematch " + Colored(i.Version)
	if len(extra) > 0 {
		s += fmt.Sprintf(" (%s)", strings.Join(extra, ", "))
	}
	return s
}
