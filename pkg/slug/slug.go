package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate turns a display label into a URL selector: accents are folded to
// ASCII, runs of anything that is not a letter or digit become one hyphen.
//
//	"Graphic Tees"   -> "graphic-tees"
//	"Limited Edition!" -> "limited-edition"
//	"Café Crème"     -> "cafe-creme"
func Generate(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(strings.TrimSpace(name)),
	)
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(name))
	}
	return strings.Trim(nonAlnum.ReplaceAllString(folded, "-"), "-")
}

// Equal reports whether two labels produce the same selector.
func Equal(a, b string) bool {
	return Generate(a) == Generate(b)
}
