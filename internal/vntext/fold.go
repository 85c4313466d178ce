// Package vntext parses the Vietnamese free text this pipeline lives
// on: prices ("3 tỷ 200 triệu"), areas ("85,5m²"), phone numbers,
// locations and property types. Everything here is a pure function.
package vntext

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold strips diacritics and lowercases: "Cầu Giấy" → "cau giay".
// The basis of every diacritic-insensitive comparison. The transform
// chain is built per call; chained transformers carry state and must
// not be shared across goroutines.
func Fold(s string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)
	// đ survives NFD; it is a base letter, not a combining mark.
	out = strings.ReplaceAll(out, "đ", "d")
	return out
}

// Slug folds and hyphenates: "Hà Nội" → "ha-noi". Fallback slug form
// for cities missing from a platform's slug table.
func Slug(s string) string {
	return strings.Join(strings.Fields(Fold(s)), "-")
}

// Compact folds and removes spaces: "Hà Nội" → "hanoi". Key form of
// the per-platform slug and region tables.
func Compact(s string) string {
	return strings.Join(strings.Fields(Fold(s)), "")
}

// ContainsPhrase reports whether the folded haystack contains the
// folded phrase bounded by non-alphanumeric runes, so "ha dong" does
// not fire inside "nha dong so huu" and "quan 1" does not fire inside
// "quan 10". Both arguments must already be folded.
func ContainsPhrase(haystack, phrase string) bool {
	if phrase == "" {
		return false
	}
	for from := 0; ; {
		idx := strings.Index(haystack[from:], phrase)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(phrase)
		if boundaryBefore(haystack, start) && boundaryAfter(haystack, end) {
			return true
		}
		from = start + 1
	}
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
