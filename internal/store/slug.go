package store

import (
	"strconv"
	"strings"
	"unicode"
)

// slugify lowercases s and joins runs of letters and digits with dashes.
// Non-Latin letters are kept so Persian or Arabic names still produce a slug.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "menu"
	}
	return out
}

// uniqueSlug appends -1, -2, ... to base until taken reports false.
func uniqueSlug(base string, taken func(string) (bool, error)) (string, error) {
	slug := base
	for n := 1; ; n++ {
		exists, err := taken(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}
