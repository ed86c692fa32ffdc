package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build metadata of the castor CLI, overridable via -ldflags.
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

// String renders "castor <version> (<commit>, <date>)" with the version
// components coloured unless color.NoColor is set.
func String() string {
	var sb strings.Builder
	sb.WriteString("castor ")
	sb.WriteString(colorize(Version))
	var meta []string
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		meta = append(meta, commit)
	}
	if BuildDate != "" {
		meta = append(meta, BuildDate)
	}
	if len(meta) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(meta, ", "))
		sb.WriteByte(')')
	}
	return sb.String()
}

// colorize paints major.minor.patch and leaves any -suffix plain.
func colorize(v string) string {
	core, suffix, hasSuffix := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}
