package envutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetenv(t *testing.T) {
	var val string

	val = Getenv([]string{}, "foo")
	require.Equal(t, val, "")

	val = Getenv([]string{"foo=bar"}, "foo")
	require.Equal(t, val, "bar")
}

func TestLookupEnv(t *testing.T) {
	val, found := LookupEnv([]string{"foo=bar"}, "foo")
	require.True(t, found)
	require.Equal(t, "bar", val)

	_, found = LookupEnv([]string{"foo=bar"}, "baz")
	require.False(t, found)
}

func TestToMap(t *testing.T) {
	require.Equal(t, map[string]string{"FOO": "foo", "BAR": "bar"}, ToMap([]string{"FOO=foo", "BAR=bar", "malformed"}))
}

func TestExpandPlaceholders(t *testing.T) {
	env := []string{"SystemRoot=C:\\Windows", "EMPTY="}

	require.Equal(t, "C:\\Windows\\system32\\ole32.dll",
		ExpandPlaceholders("%SystemRoot%\\system32\\ole32.dll", env))
	// unresolved variables expand to the empty string
	require.Equal(t, "\\foo.dll", ExpandPlaceholders("%NOT_SET%\\foo.dll", env))
	require.Equal(t, "", ExpandPlaceholders("%EMPTY%", env))
	// no placeholders, nothing to do
	require.Equal(t, "kernel32.dll", ExpandPlaceholders("kernel32.dll", env))
	// unbalanced '%' is left alone
	require.Equal(t, "100% broken", ExpandPlaceholders("100% broken", env))
}
