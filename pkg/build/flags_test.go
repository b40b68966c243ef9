// SPDX-License-Identifier: MIT
package build

import (
	"os"
	"strings"
	"testing"
)

var (
	origName    string
	origTime    string
	origCommit  string
	origVersion string
	origFlags   ldFlags
)

func TestMain(m *testing.M) {
	origName = buildName
	origTime = buildTime
	origCommit = buildCommit
	origVersion = buildVersion
	if buildFlags != nil {
		origFlags = *buildFlags
	}

	exitCode := m.Run()

	buildName = origName
	buildTime = origTime
	buildCommit = origCommit
	buildVersion = origVersion
	if buildFlags != nil {
		*buildFlags = origFlags
	}

	os.Exit(exitCode)
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name        string
		buildName   string
		buildTime   string
		buildCommit string
		buildVer    string
		wantErrs    []string
		want        ldFlags
	}{
		{
			"Missing BuildName",
			"", "2025-04-13", "abcdef123", "v1.0.0",
			[]string{"BuildName is required"},
			ldFlags{Name: DefaultName, Time: "2025-04-13", Commit: "abcdef123", Version: "v1.0.0"},
		},
		{
			"Missing BuildCommit",
			"testapp", "2025-04-13", "", "v1.0.0",
			[]string{"BuildCommit is required"},
			ldFlags{Name: "testapp", Time: "2025-04-13", Commit: unknown, Version: "v1.0.0"},
		},
		{
			"Development Build",
			"", "", "", "",
			[]string{"BuildName is required", "BuildTime is required", "BuildCommit is required", "BuildVersion is required"},
			ldFlags{Name: DefaultName, Time: unknown, Commit: unknown, Version: DefaultVersion},
		},
		{
			"Success Case",
			"testapp", "2025-04-13", "abcdef123", "v1.0.0",
			nil,
			ldFlags{Name: "testapp", Time: "2025-04-13", Commit: "abcdef123", Version: "v1.0.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buildFlags = defaultFlags()

			buildName = tt.buildName
			buildTime = tt.buildTime
			buildCommit = tt.buildCommit
			buildVersion = tt.buildVer

			err := Initialize()

			if len(tt.wantErrs) == 0 && err != nil {
				t.Errorf("Initialize() unexpected error: %v", err)
			}
			if len(tt.wantErrs) > 0 {
				if err == nil {
					t.Fatal("Initialize() expected error, got nil")
				}
				for _, want := range tt.wantErrs {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("Initialize() error = %v, missing %q", err, want)
					}
				}
			}

			if *buildFlags != tt.want {
				t.Errorf("buildFlags = %+v, want %+v", *buildFlags, tt.want)
			}
		})
	}
}

func TestGetBuildFlags(t *testing.T) {
	expected := ldFlags{
		Name:    "testapp",
		Time:    "2025-04-13",
		Commit:  "abcdef123",
		Version: "v1.0.0",
	}
	buildFlags = &expected

	flags := GetBuildFlags()

	if *flags != expected {
		t.Errorf("GetBuildFlags() = %+v, want %+v", flags, expected)
	}
	if got := flags.String(); got != "v1.0.0 (commit abcdef123, built 2025-04-13)" {
		t.Errorf("String() = %q", got)
	}
	if flags.Development() {
		t.Error("Development() = true for a versioned build")
	}
	if !defaultFlags().Development() {
		t.Error("Development() = false for the defaults")
	}
}
