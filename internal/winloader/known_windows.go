package winloader

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows/registry"

	"github.com/pedeps/dllgather/util/sliceutil"
)

const knownDLLsKey = `SYSTEM\CurrentControlSet\Control\Session Manager\KnownDLLs`

// Value names under the KnownDLLs key which describe the known-DLL
// search directories instead of naming a library.
var directoryValues = []string{"DllDirectory", "DllDirectory32"}

// registeredKnownDLLs reads the KnownDLLs list the session manager
// publishes in the registry. The values may contain %VAR% references,
// expansion is left to the caller.
func registeredKnownDLLs() ([]string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, knownDLLsKey, registry.READ)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer key.Close()

	valueNames, err := key.ReadValueNames(-1)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var names []string
	for _, valueName := range valueNames {
		if sliceutil.Contains(directoryValues, valueName) {
			continue
		}
		name, _, err := key.GetStringValue(valueName)
		if err != nil {
			return names, errors.WithStack(err)
		}
		names = append(names, name)
	}
	return names, nil
}
