// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/aretw0/wikicard/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/aretw0/wikicard/pkg/buildinfo.Commit=$(git rev-parse HEAD)"
package buildinfo

import "fmt"

// Name identifies the application in user agents and banners.
const Name = "wikicard"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"
)

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("%s version %s (commit %s)", Name, Version, Commit)
}
