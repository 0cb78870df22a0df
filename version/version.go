package version

import (
	"fmt"
	"io"
	"runtime/debug"
)

// Set with -ldflags "-X .../version.Version=v1.2.3" and friends.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info describes the running build
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Package string `json:"package"`
}

// GetVersion returns the release version of the binary
func GetVersion() string {
	return GetInfo().Version
}

// GetInfo resolves every field from the link-time variables first and the
// module build info second.
func GetInfo() Info {
	info := Info{
		Version: linked(Version, "dev"),
		Commit:  linked(Commit, "unknown"),
		Date:    linked(Date, "unknown"),
		Package: "dendra-dirindex",
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		if info.Version == "" {
			info.Version = "development"
		}
		fillUnknown(&info)
		return info
	}
	if info.Version == "" {
		info.Version = "development"
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			info.Version = v
		}
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "":
			info.Date = s.Value
		}
	}
	fillUnknown(&info)
	return info
}

// linked returns v unless it is empty or still the placeholder.
func linked(v, placeholder string) string {
	if v == placeholder {
		return ""
	}
	return v
}

func fillUnknown(info *Info) {
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
}

// GetFullVersion returns the version with a short commit and build date
// when they are known.
func GetFullVersion() string {
	info := GetInfo()
	if info.Commit == "unknown" || len(info.Commit) <= 7 {
		return info.Version
	}
	if info.Date == "unknown" {
		return fmt.Sprintf("%s (%s)", info.Version, info.Commit[:7])
	}
	return fmt.Sprintf("%s (%s, built %s)", info.Version, info.Commit[:7], info.Date)
}

// PrintVersion writes human-readable version information to w
func PrintVersion(w io.Writer, appName string) {
	info := GetInfo()
	fmt.Fprintf(w, "%s version %s\n", appName, GetFullVersion())
	fmt.Fprintf(w, "Package: %s\n", info.Package)
	fmt.Fprintf(w, "Commit: %s\n", info.Commit)
	fmt.Fprintf(w, "Build Date: %s\n", info.Date)
}
