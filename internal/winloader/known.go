package winloader

import (
	"strings"

	"github.com/pedeps/dllgather/pkg/log"
	"github.com/pedeps/dllgather/util/envutil"
)

// Libraries every supported Windows version provides but which are not
// part of the KnownDLLs registry list. Resolving them would pull half
// of system32 into the bundle.
var alwaysPresent = []string{
	"crypt32.dll",
	"d3d9.dll",
	"dnsapi.dll",
	"mpr.dll",
	"ntdll.dll",
	"iphlpapi.dll",
	"version.dll",
	"winmm.dll",
	"winspool.drv",
	"wsock32.dll",
}

// KnownDLLs returns the lowercased names of all libraries the loader
// satisfies without consulting the search path. A failure to read the
// registry list is not fatal: the set only shrinks, which can at worst
// cause system DLLs to be copied unnecessarily.
func KnownDLLs(env []string) map[string]struct{} {
	names, err := registeredKnownDLLs()
	if err != nil {
		log.Warnf("Failed to enumerate the KnownDLLs registry list: %v\n"+
			"System libraries might get treated as dependencies and copied unnecessarily.", err)
	}
	return knownSetFromNames(names, env)
}

func knownSetFromNames(names []string, env []string) map[string]struct{} {
	known := make(map[string]struct{})
	for _, name := range names {
		name = strings.ToLower(envutil.ExpandPlaceholders(name, env))
		if name == "" {
			continue
		}
		known[name] = struct{}{}
	}
	for _, name := range alwaysPresent {
		known[name] = struct{}{}
	}
	return known
}

// AddKnown inserts additional library names into the set, normalized
// the same way as the registry entries.
func AddKnown(known map[string]struct{}, names []string) {
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		known[name] = struct{}{}
	}
}
