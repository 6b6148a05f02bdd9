// Package winloader replicates the parts of the Windows DLL loader
// which decide where a dependency is loaded from: the ordered search
// path and the set of known DLLs which are never resolved from disk.
package winloader

// SelfMarker is the search path entry standing for the directory of
// the binary whose dependencies are currently being resolved. It has
// to stay a placeholder because that directory differs per binary.
const SelfMarker = ""

// LoaderConfig captures the machine state which determines how the
// loader locates a DLL. It is gathered once at startup and passed
// around explicitly, no global state is consulted afterwards.
type LoaderConfig struct {
	// SafeSearchMode reflects the SafeDllSearchMode setting. With safe
	// mode enabled the working directory is searched after the system
	// directories, with it disabled it is searched right after the
	// binary's own directory.
	SafeSearchMode bool

	SystemDir  string
	WindowsDir string
	WorkingDir string

	// PathDirs are the entries of the PATH environment variable, in
	// the listed order.
	PathDirs []string

	// ExtraDirs are user-configured directories which are probed right
	// after the binary's own directory, before any OS directory.
	ExtraDirs []string
}

// SearchPath returns the directories the loader would probe for a DLL,
// in order. The first entry is always SelfMarker. Directories the
// config couldn't determine are skipped, an absent PATH simply
// contributes nothing.
func (c *LoaderConfig) SearchPath() []string {
	searchPath := []string{SelfMarker}
	searchPath = append(searchPath, c.ExtraDirs...)

	if c.SafeSearchMode {
		searchPath = appendDirs(searchPath, c.SystemDir, c.WindowsDir, c.WorkingDir)
	} else {
		searchPath = appendDirs(searchPath, c.WorkingDir, c.SystemDir, c.WindowsDir)
	}

	return appendDirs(searchPath, c.PathDirs...)
}

func appendDirs(searchPath []string, dirs ...string) []string {
	for _, dir := range dirs {
		if dir != "" {
			searchPath = append(searchPath, dir)
		}
	}
	return searchPath
}
