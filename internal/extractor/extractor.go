// Package extractor extracts the library names a PE binary references.
// Reading the import table is delegated to objdump, this package only
// interprets its output.
package extractor

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/pedeps/dllgather/util/executil"
	"github.com/pedeps/dllgather/util/regexutil"
	"github.com/pedeps/dllgather/util/sliceutil"
)

// Extractor returns the names of all libraries a binary references
// directly. The resolver only depends on this interface so that it can
// be tested against scripted dependency graphs.
type Extractor interface {
	DirectDependencies(path string) ([]string, error)
}

// An import table entry, e.g. "	DLL Name: KERNEL32.dll".
var importRegex = regexp.MustCompile(`(?m)^\s*DLL Name:\s*(?P<name>\S+)`)

// A forwarded export, e.g. "	[ 4] EnterCriticalSection Forwarder RVA -- NTDLL.RtlEnterCriticalSection".
// The binary never lists the forward target in its import table, but
// the loader still needs it, so it is a dependency edge like any other.
var forwarderRegex = regexp.MustCompile(`Forwarder RVA --\s*(?P<dll>[^.\s]+)\.`)

// Objdump extracts dependencies by running objdump -p on the binary.
type Objdump struct {
	// Path of the objdump binary to invoke. Empty means looking up
	// "objdump" in PATH.
	Path string
}

func NewObjdump(path string) *Objdump {
	if path == "" {
		path = "objdump"
	}
	return &Objdump{Path: path}
}

func (o *Objdump) DirectDependencies(path string) ([]string, error) {
	out, err := executil.Command(o.Path, "-p", path).Output()
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to extract the dependencies of %s", path)
	}
	return parseObjdumpOutput(string(out)), nil
}

// parseObjdumpOutput collects direct imports and forwarder targets
// from the private headers dump. Forwarder targets are named without
// their suffix, which is always .dll for libraries exporting symbols.
func parseObjdumpOutput(output string) []string {
	var names []string

	matches, _ := regexutil.FindAllNamedGroupsMatches(importRegex, output)
	for _, match := range matches {
		names = append(names, match["name"])
	}

	matches, _ = regexutil.FindAllNamedGroupsMatches(forwarderRegex, output)
	for _, match := range matches {
		names = append(names, match["dll"]+".dll")
	}

	return sliceutil.RemoveDuplicates(names)
}
