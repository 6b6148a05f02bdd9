package resolver

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedeps/dllgather/internal/winloader"
	"github.com/pedeps/dllgather/pkg/log"
	"github.com/pedeps/dllgather/util/fileutil"
)

// fakeExtractor serves a scripted dependency graph keyed by the
// lowercased base name of the inspected binary.
type fakeExtractor struct {
	graph map[string][]string
}

func (e *fakeExtractor) DirectDependencies(path string) ([]string, error) {
	deps, found := e.graph[strings.ToLower(filepath.Base(path))]
	if !found {
		return nil, errors.Errorf("failed to extract the dependencies of %s", path)
	}
	return deps, nil
}

func createFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, fileutil.Touch(filepath.Join(dir, name)))
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, "app.exe", "a.dll", "b.dll")

	extractor := &fakeExtractor{graph: map[string][]string{
		"app.exe": {"a.dll"},
		"a.dll":   {"b.dll", "KERNEL32.dll"},
		"b.dll":   {},
	}}
	known := map[string]struct{}{"kernel32.dll": {}}

	resolver := New([]string{winloader.SelfMarker}, known, extractor)
	closure, err := resolver.Resolve(filepath.Join(dir, "app.exe"))
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.dll"),
		filepath.Join(dir, "b.dll"),
	}, closure)
}

func TestResolve_Deterministic(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, "app.exe", "a.dll", "b.dll", "c.dll")

	extractor := &fakeExtractor{graph: map[string][]string{
		"app.exe": {"a.dll", "b.dll"},
		"a.dll":   {"c.dll"},
		"b.dll":   {"c.dll"},
		"c.dll":   {},
	}}

	resolver := New([]string{winloader.SelfMarker}, nil, extractor)
	first, err := resolver.Resolve(filepath.Join(dir, "app.exe"))
	require.NoError(t, err)
	second, err := resolver.Resolve(filepath.Join(dir, "app.exe"))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestResolve_CycleTerminates(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, "a.dll", "b.dll")

	extractor := &fakeExtractor{graph: map[string][]string{
		"a.dll": {"b.dll"},
		"b.dll": {"a.dll"},
	}}

	resolver := New([]string{winloader.SelfMarker}, nil, extractor)
	closure, err := resolver.Resolve(filepath.Join(dir, "a.dll"))
	require.NoError(t, err)
	// a.dll is the root: its own path must not reappear even though
	// b.dll depends back on it
	require.Equal(t, []string{filepath.Join(dir, "b.dll")}, closure)
	require.NotContains(t, closure, filepath.Join(dir, "a.dll"))
}

func TestResolve_CycleBackToRootInDifferentCase(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, "App.exe", "plugin.dll")

	extractor := &fakeExtractor{graph: map[string][]string{
		"app.exe":    {"plugin.dll"},
		"plugin.dll": {"APP.EXE"},
	}}

	resolver := New([]string{winloader.SelfMarker}, nil, extractor)
	closure, err := resolver.Resolve(filepath.Join(dir, "App.exe"))
	require.NoError(t, err)
	// the back reference only differs in case, it is still the root
	require.Equal(t, []string{filepath.Join(dir, "plugin.dll")}, closure)
}

func TestResolve_SharedDependencyResolvedOnce(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, "app.exe", "a.dll", "b.dll", "c.dll")

	extractor := &fakeExtractor{graph: map[string][]string{
		"app.exe": {"a.dll", "b.dll"},
		"a.dll":   {"c.dll"},
		"b.dll":   {"c.dll"},
		"c.dll":   {},
	}}

	resolver := New([]string{winloader.SelfMarker}, nil, extractor)
	closure, err := resolver.Resolve(filepath.Join(dir, "app.exe"))
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.dll"),
		filepath.Join(dir, "c.dll"),
		filepath.Join(dir, "b.dll"),
	}, closure)
}

func TestResolve_CaseInsensitiveNames(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, "app.exe", "A.DLL", "b.dll")

	extractor := &fakeExtractor{graph: map[string][]string{
		"app.exe": {"A.DLL", "b.dll"},
		"a.dll":   {},
		"b.dll":   {"a.dll"},
	}}

	resolver := New([]string{winloader.SelfMarker}, nil, extractor)
	closure, err := resolver.Resolve(filepath.Join(dir, "app.exe"))
	require.NoError(t, err)
	// b.dll references a.dll again in different case, it must not be
	// resolved a second time
	require.Equal(t, []string{
		filepath.Join(dir, "A.DLL"),
		filepath.Join(dir, "b.dll"),
	}, closure)
}

func TestResolve_KnownLibraryNeverResolved(t *testing.T) {
	dir := t.TempDir()
	// kernel32.dll exists on disk, the known set must still win
	createFiles(t, dir, "app.exe", "kernel32.dll")

	extractor := &fakeExtractor{graph: map[string][]string{
		"app.exe": {"KERNEL32.dll"},
	}}
	known := map[string]struct{}{"kernel32.dll": {}}

	resolver := New([]string{winloader.SelfMarker}, known, extractor)
	closure, err := resolver.Resolve(filepath.Join(dir, "app.exe"))
	require.NoError(t, err)
	require.Empty(t, closure)
}

func TestResolve_SearchOrderPrecedence(t *testing.T) {
	rootDir := t.TempDir()
	earlier := t.TempDir()
	later := t.TempDir()
	createFiles(t, rootDir, "app.exe")
	createFiles(t, earlier, "x.dll")
	createFiles(t, later, "x.dll")

	extractor := &fakeExtractor{graph: map[string][]string{
		"app.exe": {"x.dll"},
		"x.dll":   {},
	}}

	resolver := New([]string{winloader.SelfMarker, earlier, later}, nil, extractor)
	closure, err := resolver.Resolve(filepath.Join(rootDir, "app.exe"))
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(earlier, "x.dll")}, closure)
}

func TestResolve_SelfMarkerIsPerBinary(t *testing.T) {
	rootDir := t.TempDir()
	libDir := t.TempDir()
	createFiles(t, rootDir, "app.exe")
	createFiles(t, libDir, "a.dll", "sibling.dll")

	extractor := &fakeExtractor{graph: map[string][]string{
		"app.exe":     {"a.dll"},
		"a.dll":       {"sibling.dll"},
		"sibling.dll": {},
	}}

	// a.dll only resolves through libDir, but its sibling must then be
	// found in a.dll's own directory, not the root's
	resolver := New([]string{winloader.SelfMarker, libDir}, nil, extractor)
	closure, err := resolver.Resolve(filepath.Join(rootDir, "app.exe"))
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(libDir, "a.dll"),
		filepath.Join(libDir, "sibling.dll"),
	}, closure)
}

func TestResolve_NotesNonDLLEntries(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, "app.exe", "legacy.drv")

	extractor := &fakeExtractor{graph: map[string][]string{
		"app.exe":    {"legacy.drv"},
		"legacy.drv": {},
	}}

	var logOutput bytes.Buffer
	oldOutput := log.Output
	log.Output = &logOutput
	viper.Set("verbose", true)
	defer func() {
		log.Output = oldOutput
		viper.Set("verbose", false)
	}()

	resolver := New([]string{winloader.SelfMarker}, nil, extractor)
	closure, err := resolver.Resolve(filepath.Join(dir, "app.exe"))
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "legacy.drv")}, closure)
	require.Contains(t, logOutput.String(), "legacy.drv is not a .dll file")
}

func TestResolve_UnresolvedDependency(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, "app.exe")

	extractor := &fakeExtractor{graph: map[string][]string{
		"app.exe": {"missing.dll"},
	}}

	resolver := New([]string{winloader.SelfMarker}, nil, extractor)
	_, err := resolver.Resolve(filepath.Join(dir, "app.exe"))
	require.Error(t, err)

	var unresolvedErr *UnresolvedDependencyError
	require.ErrorAs(t, err, &unresolvedErr)
	assert.Equal(t, "missing.dll", unresolvedErr.Name)
	assert.Contains(t, err.Error(), "missing.dll")
	assert.Contains(t, err.Error(), "known-dlls")
}

func TestResolve_ExtractionFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, "app.exe", "broken.dll")

	// broken.dll exists but has no entry in the scripted graph, the
	// fake extractor fails on it like objdump would on a corrupt file
	extractor := &fakeExtractor{graph: map[string][]string{
		"app.exe": {"broken.dll"},
	}}

	resolver := New([]string{winloader.SelfMarker}, nil, extractor)
	_, err := resolver.Resolve(filepath.Join(dir, "app.exe"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken.dll")
}
