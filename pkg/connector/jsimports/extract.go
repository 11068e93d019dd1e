// Package jsimports extracts module specifiers from JavaScript source text.
//
// It is a lexical scan, not a parser: a single pass masks comments, regular
// expression literals and every string literal that does not sit in a specifier
// position, then a fixed set of patterns picks up CommonJS require calls and ES
// import/export forms. The package exposes a single function so it can be
// replaced by a real tokenizer without touching its callers.
package jsimports

import (
	"regexp"
	"sort"
)

var patterns = []*regexp.Regexp{
	// require('x'), require("x")
	regexp.MustCompile(`\brequire\s*\(\s*['"]([^'"\n]+)['"]\s*\)`),
	// import a from 'x', import {a, b} from 'x', import * as a from 'x'
	regexp.MustCompile(`\bimport\s+[^'";()]*?\bfrom\s*['"]([^'"\n]+)['"]`),
	// import 'x'
	regexp.MustCompile(`\bimport\s*['"]([^'"\n]+)['"]`),
	// import('x')
	regexp.MustCompile(`\bimport\s*\(\s*['"]([^'"\n]+)['"]\s*\)`),
	// export {a} from 'x', export * from 'x'
	regexp.MustCompile(`\bexport\s+[^'";()]*?\bfrom\s*['"]([^'"\n]+)['"]`),
}

// Extract returns the module specifiers referenced by source, in order of first
// appearance, without duplicates. Specifiers are returned verbatim: relative paths,
// node: URLs and deep imports are left for the caller to interpret.
func Extract(source string) []string {
	clean := mask(source)

	type match struct {
		pos  int
		spec string
	}
	var matches []match
	for _, re := range patterns {
		for _, loc := range re.FindAllStringSubmatchIndex(clean, -1) {
			matches = append(matches, match{pos: loc[2], spec: clean[loc[2]:loc[3]]})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m.spec] {
			continue
		}
		seen[m.spec] = true
		out = append(out, m.spec)
	}
	return out
}
