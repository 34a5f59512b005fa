package version

import (
	"runtime/debug"
	"testing"
)

func TestInfoString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "1.2.0"}, "1.2.0"},
		{Info{Version: "1.2.0", Commit: "abc"}, "1.2.0 (abc)"},
		{Info{Version: "1.2.0", Commit: "0123456789abcdef"}, "1.2.0 (0123456789ab)"},
	}
	for _, tt := range tests {
		if got := tt.info.String(); got != tt.want {
			t.Fatalf("got %q, want %q", got, tt.want)
		}
	}
}

func TestFillFromBuildInfo(t *testing.T) {
	t.Parallel()

	bi := &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Main:      debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "deadbeef"},
			{Key: "vcs.time", Value: "2026-10-01T00:00:00Z"},
		},
	}
	got := fill(Info{}, bi)
	if got.Version != "0.3.1" || got.Commit != "deadbeef" || got.BuildTime != "2026-10-01T00:00:00Z" || got.Go != "go1.26.0" {
		t.Fatalf("unexpected info %+v", got)
	}

	pinned := fill(Info{Version: "9.9.9", Commit: "cafe"}, bi)
	if pinned.Version != "9.9.9" || pinned.Commit != "cafe" {
		t.Fatalf("ldflags values must win: %+v", pinned)
	}
}

func TestFillIgnoresDevelVersion(t *testing.T) {
	t.Parallel()

	got := fill(Info{}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got.Version != "" {
		t.Fatalf("expected empty version, got %q", got.Version)
	}
}

func TestResolveNeverEmpty(t *testing.T) {
	t.Parallel()

	if Resolve().Version == "" {
		t.Fatal("expected non-empty version")
	}
}
