package version

import "fmt"

// Set at build time with -ldflags "-X github.com/TFMV/randcsv/version.Version=...".
var Version = "0.1"
var BuildDate = "2026-10-14"

func GetVersion() string {
	return Version
}

func GetBuildDate() string {
	return BuildDate
}

// String returns the version line printed by the CLI.
func String() string {
	return fmt.Sprintf("randcsv %s (built %s)", Version, BuildDate)
}
