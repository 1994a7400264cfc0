// Package stacktrace trims debug.Stack output down to the frames that belong
// to this module.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame under
// an internal directory, innermost first.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.Lines(string(stack)) {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, marker) {
			continue
		}

		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		loc := line
		if end := strings.IndexByte(line[idx:], ' '); end != -1 {
			loc = line[:idx+end]
		}

		if at := strings.Index(loc, marker); at != -1 {
			paths = append(paths, loc[at+1:])
		}
	}
	return paths
}
