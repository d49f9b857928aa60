// Package version carries the release metadata stamped into the fingrid
// binary.
package version

// Overridden at link time, e.g.
//
//	go build -ldflags "-X fingrid/internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// Version is the fingrid release.
	Version = "0.1.0"

	// BuildTime is when the binary was linked, in UTC.
	BuildTime = "unknown"

	// GitCommit is the short hash of the commit the binary was built from.
	GitCommit = "unknown"
)
