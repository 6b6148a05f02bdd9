package winloader

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/pedeps/dllgather/pkg/log"
	"github.com/pedeps/dllgather/util/envutil"
)

const sessionManagerKey = `SYSTEM\CurrentControlSet\Control\Session Manager`

// NewLoaderConfig gathers the loader state from the running system:
// the SafeDllSearchMode setting, the system directories and the PATH
// entries from the specified environment.
func NewLoaderConfig(env []string) *LoaderConfig {
	config := &LoaderConfig{
		SafeSearchMode: safeSearchModeEnabled(),
		PathDirs:       filepath.SplitList(envutil.Getenv(env, "PATH")),
	}

	var err error
	config.SystemDir, err = windows.GetSystemDirectory()
	if err != nil {
		log.Warnf("Failed to query the system directory: %v", err)
	}
	config.WindowsDir, err = windows.GetWindowsDirectory()
	if err != nil {
		log.Warnf("Failed to query the Windows directory: %v", err)
	}
	config.WorkingDir, err = os.Getwd()
	if err != nil {
		log.Warnf("Failed to query the working directory: %v", err)
	}

	return config
}

// safeSearchModeEnabled reads the SafeDllSearchMode registry value.
// The setting is on by default, so a missing value or an unreadable
// key counts as enabled.
func safeSearchModeEnabled() bool {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, sessionManagerKey, registry.QUERY_VALUE)
	if err != nil {
		log.Debugf("Failed to open the session manager key, assuming safe DLL search mode: %v", err)
		return true
	}
	defer key.Close()

	value, _, err := key.GetIntegerValue("SafeDllSearchMode")
	if err != nil {
		return true
	}
	return value != 0
}
