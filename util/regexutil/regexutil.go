package regexutil

import "regexp"

// FindNamedGroupsMatch finds the first match of a regex with named
// groups and returns the sub-matches as a map keyed by group name.
func FindNamedGroupsMatch(regexp *regexp.Regexp, text string) (map[string]string, bool) {
	if match := regexp.FindStringSubmatch(text); match != nil {
		result := make(map[string]string)
		for i, name := range regexp.SubexpNames() {
			if i != 0 && name != "" {
				result[name] = match[i]
			}
		}
		return result, true
	}
	return nil, false
}

// FindAllNamedGroupsMatches finds all matches of a regex with named
// groups and returns one map of sub-matches per match.
func FindAllNamedGroupsMatches(regexp *regexp.Regexp, text string) ([]map[string]string, bool) {
	var results []map[string]string

	for _, match := range regexp.FindAllStringSubmatch(text, -1) {
		result := make(map[string]string)
		for i, name := range regexp.SubexpNames() {
			if i != 0 && name != "" {
				result[name] = match[i]
			}
		}
		results = append(results, result)
	}

	return results, len(results) > 0
}
