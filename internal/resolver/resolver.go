// Package resolver computes the transitive closure of non-system DLL
// dependencies of a PE binary, emulating the loader's search order.
package resolver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/pedeps/dllgather/internal/extractor"
	"github.com/pedeps/dllgather/internal/winloader"
	"github.com/pedeps/dllgather/pkg/log"
	"github.com/pedeps/dllgather/util/fileutil"
)

// UnresolvedDependencyError means a required library was not found in
// any search path directory. The whole run is aborted on it, an
// incomplete closure is unsafe to ship.
type UnresolvedDependencyError struct {
	Name string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("failed to locate %s in any search path directory.\n"+
		"If %[1]s is a library the OS always provides, add it to the known-dlls list.", e.Name)
}

// Resolver holds the state shared by all steps of one resolution run.
// Library names are compared lowercased throughout, file names on
// Windows are case-insensitive.
type Resolver struct {
	searchPath []string
	known      map[string]struct{}
	extractor  extractor.Extractor
}

func New(searchPath []string, known map[string]struct{}, extractor extractor.Extractor) *Resolver {
	return &Resolver{
		searchPath: searchPath,
		known:      known,
		extractor:  extractor,
	}
}

// Resolve returns the paths of all libraries the binary at rootPath
// transitively depends on, excluding known libraries and the root
// binary itself. Every distinct library name appears exactly once, in
// the order it was first resolved.
func (r *Resolver) Resolve(rootPath string) ([]string, error) {
	// The root counts as visited from the start: it never belongs to
	// its own closure, and a dependency cycling back to it must not
	// resolve it again.
	visited := map[string]struct{}{
		strings.ToLower(filepath.Base(rootPath)): {},
	}
	var closure []string

	err := r.process(rootPath, visited, &closure)
	if err != nil {
		return nil, err
	}
	return closure, nil
}

func (r *Resolver) process(path string, visited map[string]struct{}, closure *[]string) error {
	deps, err := r.extractor.DirectDependencies(path)
	if err != nil {
		return err
	}

	for _, dep := range deps {
		name := strings.ToLower(dep)

		if _, known := r.known[name]; known {
			log.Debugf("Skipping %s, known library", name)
			continue
		}
		if _, seen := visited[name]; seen {
			continue
		}

		depPath, err := r.locate(path, dep)
		if err != nil {
			return err
		}

		// Mark the library as visited before recursing into it, that
		// is what terminates dependency cycles.
		visited[name] = struct{}{}
		*closure = append(*closure, depPath)

		err = r.process(depPath, visited, closure)
		if err != nil {
			return err
		}
	}
	return nil
}

// locate probes the search path directories in order and returns the
// first existing candidate. The loader never consults later
// directories once a match was found, even if they hold a file of the
// same name, and neither do we.
func (r *Resolver) locate(loadingBinary string, dep string) (string, error) {
	for _, dir := range r.searchPath {
		if dir == winloader.SelfMarker {
			dir = filepath.Dir(loadingBinary)
		}
		candidate := filepath.Join(dir, dep)
		exists, err := fileutil.Exists(candidate)
		if err != nil {
			return "", err
		}
		if exists {
			log.Debugf("Resolved %s to %s", dep, candidate)
			if !fileutil.IsDLL(candidate) {
				// .drv and friends are legitimate, but worth seeing
				// when chasing an unexpected closure entry
				log.Debugf("Note: %s is not a .dll file", candidate)
			}
			return candidate, nil
		}
	}
	return "", errors.WithStack(&UnresolvedDependencyError{Name: dep})
}
