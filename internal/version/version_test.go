package version

import (
	"strings"
	"testing"
)

func override(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = version, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestLine(t *testing.T) {
	tests := []struct {
		name                  string
		version, commit, date string
		want                  string
	}{
		{name: "bare", version: "1.2.3", want: "blfmt 1.2.3"},
		{name: "commit", version: "1.2.3", commit: "abc123", want: "blfmt 1.2.3 (abc123)"},
		{
			name:    "commit and date",
			version: "0.1.0-dev",
			commit:  "abc123",
			date:    "2024-01-15T10:30:00Z",
			want:    "blfmt 0.1.0-dev (abc123) built 2024-01-15T10:30:00Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			override(t, tt.version, tt.commit, tt.date)
			if got := Line(false); got != tt.want {
				t.Errorf("Line(false) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColored(t *testing.T) {
	override(t, "1.2.3-rc.1", "", "")
	got := Colored()
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected escape codes in %q", got)
	}
	if !strings.HasSuffix(got, "-rc.1") {
		t.Errorf("suffix lost: %q", got)
	}
}

func TestColoredNonSemver(t *testing.T) {
	override(t, "nightly", "", "")
	if got := Colored(); got != "nightly" {
		t.Errorf("Colored() = %q, want %q", got, "nightly")
	}
}
