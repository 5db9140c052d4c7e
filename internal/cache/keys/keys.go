// Package keys builds heat cache keys from waste-type selections and the
// namespaced keys used in the shared Redis tier.
package keys

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const (
	// All is the key for the unfiltered data set.
	All = "all"
	// InitialPreload holds the first early-exit result of an unfiltered load.
	InitialPreload = "initial_preload"
)

// NormalizeSelection trims, drops empty entries, dedupes and sorts the
// selected types. The input slice is not modified.
func NormalizeSelection(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// CacheKey is the sorted selection joined with "_", or All when empty.
func CacheKey(types []string) string {
	sel := NormalizeSelection(types)
	if len(sel) == 0 {
		return All
	}
	return strings.Join(sel, "_")
}

// RedisKey namespaces a cache key. The readable part is sanitized and capped;
// the xxhash suffix keeps distinct keys distinct after sanitizing.
func RedisKey(prefix, key string) string {
	safe := sanitizeForKey(strings.TrimSpace(key))
	const maxKeyTextLen = 160
	if len(safe) > maxKeyTextLen {
		safe = safe[:maxKeyTextLen]
	}
	sum := xxhash.Sum64String(key)
	p := sanitizeForKey(strings.TrimSpace(prefix))
	if p == "" {
		p = "heat"
	}
	return fmt.Sprintf("%s:%s:h=%016x", p, safe, sum)
}

func sanitizeForKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		var out rune
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-':
			out = r
		default:
			// any other rune (including non-ASCII) becomes '-'
			out = '-'
		}
		if out == '-' && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r < unicode.MaxASCII && unicode.IsDigit(r))
}
