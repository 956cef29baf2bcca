package version

import "testing"

func TestBuild(t *testing.T) {
	if Build == "" {
		t.Error("Build should not be empty")
	}

	// Default value should be "unknown" until set by build
	if Build != "unknown" {
		// In tests, version should be "unknown" unless explicitly set via ldflags
		t.Logf("Build is: %s (expected 'unknown' or version set via ldflags)", Build)
	}
}

func TestBuildInfo(t *testing.T) {
	// Build info variables should exist (even if set to "unknown")
	if BuildTime == "" {
		t.Error("BuildTime should be initialized")
	}

	if GitCommit == "" {
		t.Error("GitCommit should be initialized")
	}
}
