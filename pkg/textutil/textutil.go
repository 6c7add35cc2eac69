package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var nonWordRegex = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeName lowercases a name into single space separated words of
// letters and digits, "&" is spelled out so "Science & Engineering" and
// "Science and Engineering" normalize the same.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "&", " and ")
	name = nonWordRegex.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// MatchName reports whether name contains one of the matchers starting at a
// word boundary, or is at least `threshold` similar to one of them
// (Jaro-Winkler, 0 to 1).
func MatchName(name string, matchers []string, threshold float64) bool {
	name = NormalizeName(name)
	if name == "" {
		return false
	}
	compact := strings.ReplaceAll(name, " ", "")
	for _, m := range matchers {
		m = NormalizeName(m)
		if m == "" {
			continue
		}
		if strings.Contains(" "+name, " "+m) {
			return true
		}
		if matchr.JaroWinkler(compact, strings.ReplaceAll(m, " ", ""), false) >= threshold {
			return true
		}
	}
	return false
}
