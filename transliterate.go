package multicode

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	// Ukrainian and Belarusian
	'є': "ye", 'і': "i", 'ї': "yi", 'ґ': "g", 'ў': "u",
}

func init() {
	// Upper case entries are the lower case ones with a capital first letter
	for r, s := range cyrillic {
		upper := unicode.ToUpper(r)
		if upper == r {
			continue
		}
		if s == "" {
			cyrillic[upper] = ""
			continue
		}
		cyrillic[upper] = strings.ToUpper(s[:1]) + s[1:]
	}
}

// Transliterate converts an arbitrary display name into an ASCII
// identifier fragment. Cyrillic letters go through a fixed table, spaces
// become underscores, accented Latin letters lose their marks and any
// other character outside [A-Za-z0-9_] is dropped.
//
// The result is not guaranteed to be unique or non-empty; callers add
// suffixes derived from node ids when they need that.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case isIdentRune(r):
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		default:
			if mapped, ok := cyrillic[r]; ok {
				b.WriteString(mapped)
				continue
			}
			if r < unicode.MaxLatin1 || unicode.Is(unicode.Latin, r) {
				for _, d := range norm.NFD.String(string(r)) {
					if isIdentRune(d) {
						b.WriteRune(d)
					}
				}
			}
		}
	}
	return b.String()
}

// IsIdentSafe reports whether s only contains [A-Za-z0-9_]
func IsIdentSafe(s string) bool {
	for _, r := range s {
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

func isIdentRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
