// Package slug derives the identifier shared by a post's stored object and its metadata row.
package slug

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make lowercases s, folds accented letters to ASCII, collapses every run of
// other characters into a single hyphen and trims hyphens from both ends.
func Make(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// Resolve picks the slug for a post: the explicit frontmatter value verbatim,
// else the slugified file name stem, else the slugified title.
func Resolve(explicit, filePath, title string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	if s := Make(stem(filePath)); s != "" {
		return s
	}
	return Make(title)
}

// Normalize strips directories and the extension from a storage object name or
// slug so bucket and table entries can be compared.
func Normalize(name string) string {
	return stem(name)
}

func stem(p string) string {
	if p == "" {
		return ""
	}
	base := filepath.Base(p)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
