// SPDX-License-Identifier: MIT
//
// Package build carries the metadata injected at link time:
//
//	go build -ldflags "-X barscope/pkg/build.buildName=barscope \
//	  -X barscope/pkg/build.buildVersion=0.3.0 ..."
//
// Development builds run without ldflags; they keep the defaults below and
// Initialize reports which values are missing.
package build

import (
	"errors"
	"fmt"
)

// Defaults for builds without ldflags.
const (
	DefaultName    = "barscope"
	DefaultVersion = "dev"
	unknown        = "unknown"
)

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// String formats the version line shown by --version.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", f.Version, f.Commit, f.Time)
}

// Development reports whether the binary was built without a version.
func (f *ldFlags) Development() bool {
	return f.Version == DefaultVersion
}

// Package-level variables populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = defaultFlags()
)

func defaultFlags() *ldFlags {
	return &ldFlags{
		Name:    DefaultName,
		Time:    unknown,
		Commit:  unknown,
		Version: DefaultVersion,
	}
}

// Initialize copies every ldflags value that was set into the build
// information. It returns an error naming each missing value; the defaults
// stay in place for those, so a development build can continue.
func Initialize() error {
	var errs []error
	set := func(dst *string, val, name string) {
		if val == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
			return
		}
		*dst = val
	}

	set(&buildFlags.Name, buildName, "BuildName")
	set(&buildFlags.Time, buildTime, "BuildTime")
	set(&buildFlags.Commit, buildCommit, "BuildCommit")
	set(&buildFlags.Version, buildVersion, "BuildVersion")

	return errors.Join(errs...)
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
