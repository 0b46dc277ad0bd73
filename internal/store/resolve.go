package store

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizePath puts a library path in the form it is stored and matched
// in: NFC-normalized, without trailing slashes. "/" is kept as is.
func normalizePath(p string) string {
	p = norm.NFC.String(p)
	if len(p) > 1 {
		if trimmed := strings.TrimRight(p, "/"); trimmed != "" {
			p = trimmed
		} else {
			p = "/"
		}
	}
	return p
}

// candidatePaths returns the paths tried for an exact match: the path
// itself, then the path with each implicit extension configured for the
// entry type. The root path has no candidates beyond itself.
func (s *Store) candidatePaths(entryType, p string) []string {
	candidates := []string{p}
	if p == "" {
		return candidates
	}
	for _, ext := range s.library.ExtensionsFor(entryType) {
		if strings.HasSuffix(p, ext) {
			continue
		}
		candidates = append(candidates, p+ext)
	}
	return candidates
}
