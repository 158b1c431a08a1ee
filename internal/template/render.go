package template

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches {{ident}} with optional surrounding
// whitespace and optional dotted paths.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Placeholders returns the set of distinct identifiers referenced in s.
func Placeholders(s string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(s, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		ident := m[1]
		if _, ok := seen[ident]; ok {
			continue
		}
		seen[ident] = struct{}{}
		out = append(out, ident)
	}
	return out
}

// Render substitutes {{ident}} in s with the value of the matching
// variable. Missing variables render as empty string; declared-but-unused
// variables are simply never looked up. Dotted paths are resolved
// against nested map[string]interface{} values one level at a time.
//
// This is a pure function of template + variables. It intentionally
// does not use text/template, which errors on missing identifiers
// instead of rendering empty.
func Render(s string, variables map[string]interface{}) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := placeholderPattern.FindStringSubmatch(match)
		ident := sub[1]
		val, ok := lookup(variables, ident)
		if !ok {
			return ""
		}
		return toString(val)
	})
}

func lookup(variables map[string]interface{}, ident string) (interface{}, bool) {
	parts := strings.Split(ident, ".")
	var cur interface{} = variables
	for _, part := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
