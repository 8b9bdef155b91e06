// Package version records the build identity of the vhip binary.
//
// Version is the single source of truth for the project version. Release
// tags follow the v<Version> convention and the release workflow refuses
// to publish a tag that disagrees with the version compiled into the tree.
package version

import (
	"fmt"
	"strings"
)

var (
	// Version is the current project version. Populated by the build
	// system (ldflags); the fallback must match the latest release.
	Version = "0.1.2"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// Tag returns the release tag corresponding to Version.
func Tag() string {
	return "v" + Version
}

// Full renders the complete build identity for --version output.
func Full() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}

// VerifyTag checks that a release tag names exactly this source tree.
// Tags must be of the form v<Version>; anything else is a release
// configuration error and the caller is expected to abort the release.
func VerifyTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("release tag is empty (expected %s)", Tag())
	}
	if !strings.HasPrefix(tag, "v") {
		return fmt.Errorf("release tag %q is missing the v prefix (expected %s)", tag, Tag())
	}
	if tag != Tag() {
		return fmt.Errorf("release tag %q does not match project version %q (expected %s)", tag, Version, Tag())
	}
	return nil
}
