package version

import (
	"strings"
	"testing"
	"time"
)

func stamp(t *testing.T, version, commit, branch, built, goVersion string) {
	t.Helper()
	orig := []string{Version, GitCommit, GitBranch, BuildTime, GoVersion}
	t.Cleanup(func() {
		Version, GitCommit, GitBranch, BuildTime, GoVersion = orig[0], orig[1], orig[2], orig[3], orig[4]
	})
	Version, GitCommit, GitBranch, BuildTime, GoVersion = version, commit, branch, built, goVersion
}

func TestGet_Dev(t *testing.T) {
	stamp(t, "dev", "", "", "", "")

	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
	if info.BuildDate.IsZero() {
		t.Error("BuildDate should default to now")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion should fall back to the build info")
	}
}

func TestGet_Stamped(t *testing.T) {
	stamp(t, "1.4.0", "abc1234def", "main", "2026-03-01T10:30:00Z", "go1.25.0")

	info := Get()
	if !info.IsRelease {
		t.Error("1.4.0 should be a release")
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected commit shortened to 'abc1234', got %q", info.GitCommit)
	}
	if info.GoVersion != "go1.25.0" {
		t.Errorf("expected 'go1.25.0', got %q", info.GoVersion)
	}
	if !info.BuildDate.Equal(time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected build date %v", info.BuildDate)
	}
}

func TestGet_DirtyIsNotRelease(t *testing.T) {
	stamp(t, "1.4.0-dirty", "", "", "", "")
	if Get().IsRelease {
		t.Error("dirty version should not be a release")
	}
}

func TestInfo_Short(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"no commit", Info{Version: "dev"}, "dev"},
		{"commit", Info{Version: "1.4.0", GitCommit: "abc1234"}, "1.4.0-abc1234"},
		{"dirty", Info{Version: "1.4.0", GitCommit: "abc1234", IsDirty: true}, "1.4.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.Short(); got != tc.want {
				t.Errorf("Short() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInfo_String(t *testing.T) {
	built := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	s := Info{Version: "1.4.0", GitCommit: "abc1234", GitBranch: "main", BuildDate: built}.String()
	if s != "1.4.0-abc1234 (built 2026-03-01T10:30:00Z)" {
		t.Errorf("unexpected string %q", s)
	}

	s = Info{Version: "1.4.0", GitBranch: "feature/routes"}.String()
	if !strings.Contains(s, "feature/routes") {
		t.Errorf("expected feature branch in %q", s)
	}
}
