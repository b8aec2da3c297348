package surface

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Capitalize upper-cases the first letter of a member name, leaving the rest
// as written: "doublePress" becomes "DoublePress".
func Capitalize(name string) string {
	if name == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(name)
	// A Caser keeps state, so each call gets its own.
	title := cases.Title(language.Und, cases.NoLower)
	return title.String(name[:size]) + name[size:]
}

// singularSuffixes are tried in order; the first match wins. Only whole
// words may match with an empty stem.
var singularSuffixes = []struct {
	suffix, replacement string
	word                bool
}{
	{"children", "child", true},
	{"ies", "y", false},
	{"ves", "f", false},
	{"oes", "o", false},
	{"ses", "s", false},
	{"ches", "ch", false},
	{"shes", "sh", false},
	{"xes", "x", false},
	{"s", "", false},
}

// GuessSingular derives the singular of an aggregation or association name.
func GuessSingular(name string) string {
	for _, rule := range singularSuffixes {
		if stem, ok := strings.CutSuffix(name, rule.suffix); ok && (stem != "" || rule.word) {
			return stem + rule.replacement
		}
	}
	return name
}
