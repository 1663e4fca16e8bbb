package app

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestBuildVersion_IncludesVersion(t *testing.T) {
	t.Parallel()

	if got := BuildVersion(); !strings.HasPrefix(got, Version+" (commit: ") {
		t.Errorf("BuildVersion() = %q, want prefix %q", got, Version)
	}
}

func TestVCSStamp(t *testing.T) {
	t.Parallel()

	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-10-14T09:00:00Z"},
	}

	tests := []struct {
		name       string
		commit     string
		built      string
		wantCommit string
		wantBuilt  string
	}{
		{"fills unknown", "unknown", "unknown", "0123456789ab", "2026-10-14T09:00:00Z"},
		{"keeps ldflags", "abc123", "yesterday", "abc123", "yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			commit, built := vcsStamp(settings, tt.commit, tt.built)
			if commit != tt.wantCommit || built != tt.wantBuilt {
				t.Errorf("vcsStamp() = (%q, %q), want (%q, %q)", commit, built, tt.wantCommit, tt.wantBuilt)
			}
		})
	}
}
