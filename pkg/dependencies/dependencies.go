// Package dependencies checks that the external tools a run needs are
// installed and recent enough before any work starts.
package dependencies

import (
	"os/exec"
	"regexp"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"

	"github.com/pedeps/dllgather/pkg/log"
	"github.com/pedeps/dllgather/util/executil"
	"github.com/pedeps/dllgather/util/regexutil"
)

var ErrDeps = errors.New("unable to run due to missing or outdated external tools")

type Key string

const (
	Objdump Key = "objdump"
	UPX     Key = "upx"

	MessageVersion = "dllgather requires %s %s or higher, have %s"
	MessageMissing = "dllgather requires %s, but it is not installed"
)

// Dependency represents a single external tool.
type Dependency struct {
	Key        Key
	MinVersion semver.Version
	// Path overrides where the tool is looked up. Empty means
	// searching PATH for the key.
	Path string

	GetVersion func(*Dependency) (*semver.Version, error)
	Installed  func(*Dependency) bool
}

type Dependencies map[Key]*Dependency

// toolPath returns the binary to invoke for this dependency.
func (dep *Dependency) toolPath() string {
	if dep.Path != "" {
		return dep.Path
	}
	return string(dep.Key)
}

// checkVersion compares MinVersion against GetVersion.
func (dep *Dependency) checkVersion() bool {
	currentVersion, err := dep.GetVersion(dep)
	if err != nil {
		log.Warnf("Unable to get current version for %s, message: %v", dep.Key, err)
		// we want to be lenient if we were not able to extract the version
		return true
	}

	if currentVersion.Compare(&dep.MinVersion) == -1 {
		log.Warnf(MessageVersion, dep.Key, dep.MinVersion.String(), currentVersion.String())
		return false
	}
	return true
}

func (dep *Dependency) checkLookPath() bool {
	_, err := exec.LookPath(dep.toolPath())
	return err == nil
}

/*
Note: the "patch" part of the parsed semver is optional to be lenient
when a tool reports something like 2.38 instead of 2.38.0
*/
var (
	objdumpRegex = regexp.MustCompile(`(?m)^GNU objdump \(.*\) (?P<version>\d+\.\d+(\.\d+)?)`)
	upxRegex     = regexp.MustCompile(`(?m)upx (?P<version>\d+\.\d+(\.\d+)?)`)
)

// Define returns fresh definitions for the specified tools.
func Define(keys []Key) (Dependencies, error) {
	deps := Dependencies{}
	all := Dependencies{
		Objdump: {
			Key: Objdump,
			// PE private header support is stable since this binutils line
			MinVersion: *semver.MustParse("2.22.0"),
			GetVersion: func(dep *Dependency) (*semver.Version, error) {
				return getVersionFromCommand(dep.toolPath(), []string{"--version"}, objdumpRegex, dep.Key)
			},
			Installed: func(dep *Dependency) bool {
				return dep.checkLookPath()
			},
		},
		UPX: {
			Key:        UPX,
			MinVersion: *semver.MustParse("0.0.0"),
			GetVersion: func(dep *Dependency) (*semver.Version, error) {
				return getVersionFromCommand(dep.toolPath(), []string{"--version"}, upxRegex, dep.Key)
			},
			Installed: func(dep *Dependency) bool {
				return dep.checkLookPath()
			},
		},
	}

	for _, key := range keys {
		dep, found := all[key]
		if !found {
			return nil, errors.Errorf("undefined dependency %s", key)
		}
		deps[key] = dep
	}
	return deps, nil
}

// Check verifies that all specified tools are installed and meet their
// minimum version.
func Check(keys []Key, deps Dependencies) error {
	allFine := true
	for _, key := range keys {
		dep, found := deps[key]
		if !found {
			return errors.Errorf("undefined dependency %s", key)
		}

		if !dep.Installed(dep) {
			log.Warnf(MessageMissing, dep.Key)
			allFine = false
			continue
		}

		if dep.MinVersion.Equal(semver.MustParse("0.0.0")) {
			log.Debugf("Checking dependency: %s", dep.Key)
		} else {
			log.Debugf("Checking dependency: %s version >= %s", dep.Key, dep.MinVersion.String())
		}

		if !dep.checkVersion() {
			allFine = false
		}
	}

	if !allFine {
		return ErrDeps
	}
	return nil
}

// takes a command + args and parses the output for a semver
func getVersionFromCommand(cmdPath string, args []string, re *regexp.Regexp, key Key) (*semver.Version, error) {
	output, err := executil.Command(cmdPath, args...).Output()
	if err != nil {
		return nil, err
	}
	return extractVersion(string(output), re, key)
}

func extractVersion(output string, re *regexp.Regexp, key Key) (*semver.Version, error) {
	match, found := regexutil.FindNamedGroupsMatch(re, output)
	if !found {
		return nil, errors.Errorf("no matching version string for %s", key)
	}

	version, err := semver.NewVersion(match["version"])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return version, nil
}
