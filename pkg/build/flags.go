// SPDX-License-Identifier: MIT
//
// Package build exposes the metadata embedded at link time:
//
//	go build -ldflags "-X sigbench/pkg/build.buildName=sigbench \
//	  -X sigbench/pkg/build.buildVersion=v0.3.0 \
//	  -X sigbench/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	  -X sigbench/pkg/build.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Development builds leave the variables empty and report "unknown".
package build

import (
	"errors"
	"fmt"
)

const unknown = "unknown"

// Description is the one-line summary shown by the CLI.
const Description = "Run denoising and detection methods over signals"

// Info holds build-time information.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// String formats the info for `--version` output.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

// Package-level variables for build information. These are populated by -ldflags
// during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildInfo    = defaultInfo()
)

func defaultInfo() *Info {
	return &Info{
		Name:    "sigbench",
		Time:    unknown,
		Commit:  unknown,
		Version: unknown,
	}
}

// Initialize copies the ldflags variables into the build info. Flags that
// were not set keep their defaults and are reported in the returned error,
// which callers may treat as a warning for development builds.
func Initialize() error {
	var missing []error
	set := func(dst *string, val, flag string) {
		if val == "" {
			missing = append(missing, fmt.Errorf("%s is required", flag))
			return
		}
		*dst = val
	}

	set(&buildInfo.Name, buildName, "BuildName")
	set(&buildInfo.Time, buildTime, "BuildTime")
	set(&buildInfo.Commit, buildCommit, "BuildCommit")
	set(&buildInfo.Version, buildVersion, "BuildVersion")

	return errors.Join(missing...)
}

// GetBuildInfo returns the current build information.
func GetBuildInfo() *Info {
	return buildInfo
}
