// Package version reports build information for iterkit binaries.
//
// Version, git commit, branch and build time are set at compile time:
//
//	go build -ldflags "-X github.com/kbukum/iterkit/version.Version=1.0.0" ./cmd/iterbench
package version
