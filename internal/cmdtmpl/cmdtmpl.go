// Package cmdtmpl expands placeholder tokens such as %INPUT% inside
// command argument lists.
package cmdtmpl

import (
	"cmp"
	"slices"
	"strings"
)

const (
	Input  = "%INPUT%"
	Output = "%OUTPUT%"
	Answer = "%ANSWER%"
)

// Expand returns a copy of template with every occurrence of every key in
// vars replaced by its value. Keys are substituted in a fixed order so the
// result does not depend on map iteration.
func Expand(template []string, vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	// longest first so that a key never clobbers a longer one containing it
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	res := make([]string, len(template))
	for i, arg := range template {
		for _, k := range keys {
			arg = strings.ReplaceAll(arg, k, vars[k])
		}
		res[i] = arg
	}
	return res
}

// Missing lists the names that occur in no argument of template.
func Missing(template []string, names ...string) []string {
	var missing []string
	for _, name := range names {
		found := false
		for _, arg := range template {
			if strings.Contains(arg, name) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	return missing
}
