//go:build !windows

package winloader

// Off Windows there is no registry to enumerate, only the built-in
// always-present list applies. Useful for inspecting cross-compiled
// binaries and for tests.
func registeredKnownDLLs() ([]string, error) {
	return nil, nil
}
