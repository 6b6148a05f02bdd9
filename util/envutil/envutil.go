package envutil

import (
	"regexp"
	"strings"
)

var placeholderRegex = regexp.MustCompile(`%([^%]*)%`)

// Like os.LookupEnv but uses the specified environment instead of the
// current process environment.
func LookupEnv(env []string, key string) (string, bool) {
	envMap := ToMap(env)
	val, ok := envMap[key]
	return val, ok
}

// Like os.Getenv but uses the specified environment instead of the
// current process environment.
func Getenv(env []string, key string) string {
	envMap := ToMap(env)
	return envMap[key]
}

// ToMap converts the specified strings representing an environment in
// the form "key=value" to a map.
func ToMap(env []string) map[string]string {
	res := make(map[string]string)
	for _, e := range env {
		s := strings.SplitN(e, "=", 2)
		if len(s) != 2 {
			continue
		}
		key, val := s[0], s[1]
		res[key] = val
	}
	return res
}

// ExpandPlaceholders expands Windows-style %VAR% references in s
// against the specified environment. Registry values like the KnownDLLs
// list embed such references. Variables which are not set expand to the
// empty string, same as the ExpandEnvironmentStrings API with an empty
// lookup result. Text without a closing '%' is left untouched.
func ExpandPlaceholders(s string, env []string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	envMap := ToMap(env)
	return placeholderRegex.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.Trim(match, "%")
		return envMap[name]
	})
}
