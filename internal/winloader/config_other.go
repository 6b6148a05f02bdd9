//go:build !windows

package winloader

import (
	"os"
	"path/filepath"

	"github.com/pedeps/dllgather/pkg/log"
	"github.com/pedeps/dllgather/util/envutil"
)

// NewLoaderConfig builds a degraded loader config for platforms
// without a registry, e.g. when inspecting a cross-compiled binary
// whose DLLs sit next to it or in directories on PATH. Safe search
// mode is the documented default. The system directories are unknown
// and left empty, SearchPath skips them.
func NewLoaderConfig(env []string) *LoaderConfig {
	config := &LoaderConfig{
		SafeSearchMode: true,
		PathDirs:       filepath.SplitList(envutil.Getenv(env, "PATH")),
	}

	var err error
	config.WorkingDir, err = os.Getwd()
	if err != nil {
		log.Warnf("Failed to query the working directory: %v", err)
	}

	return config
}
