package vntext

import (
	"regexp"
	"strings"

	"github.com/jian131/agent-bds/internal/constants"
)

var (
	rePhoneSeparated = regexp.MustCompile(`0\d{2,3}[\s.-]?\d{3}[\s.-]?\d{3,4}`)
	rePhoneIntl      = regexp.MustCompile(`\+?84[\s.-]?\d{2,3}[\s.-]?\d{3}[\s.-]?\d{3,4}`)
	rePhoneBare      = regexp.MustCompile(`\d{10,11}`)

	rePhoneJunk = regexp.MustCompile(`[\s.\-()]`)

	reZaloPhone = regexp.MustCompile(`zalo[:\s]+(0\d{9,10})`)
	reZaloLink  = regexp.MustCompile(`zalo\.me/(\d+)`)

	reEmail = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
)

// NormalizePhone canonicalizes a Vietnamese phone number to the local
// leading-zero form: strips separators, rewrites +84/84 prefixes, and
// accepts 10-11 digits starting with a known carrier or area prefix.
//
//	"+84 912 345 678" → "0912345678"
//	"0912.345.678"    → "0912345678"
func NormalizePhone(raw string) (string, bool) {
	p := rePhoneJunk.ReplaceAllString(raw, "")

	if strings.HasPrefix(p, "+84") {
		p = "0" + p[3:]
	} else if strings.HasPrefix(p, "84") && len(p) >= 11 {
		p = "0" + p[2:]
	}

	if len(p) != 10 && len(p) != 11 {
		return "", false
	}
	if !strings.HasPrefix(p, "0") {
		return "", false
	}
	for _, digit := range p {
		if digit < '0' || digit > '9' {
			return "", false
		}
	}

	for _, prefix := range constants.ValidPhonePrefixes {
		if strings.HasPrefix(p, prefix) {
			return p, true
		}
	}
	return "", false
}

// ExtractPhones scans free text for phone numbers in local, spaced and
// international spellings, normalizes them and drops duplicates
// preserving first-seen order.
func ExtractPhones(text string) []string {
	if text == "" {
		return nil
	}

	var candidates []string
	candidates = append(candidates, rePhoneSeparated.FindAllString(text, -1)...)
	candidates = append(candidates, rePhoneIntl.FindAllString(text, -1)...)
	candidates = append(candidates, rePhoneBare.FindAllString(text, -1)...)

	var phones []string
	seen := make(map[string]struct{})
	for _, c := range candidates {
		p, ok := NormalizePhone(c)
		if !ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		phones = append(phones, p)
	}
	return phones
}

// ExtractZalo picks Zalo contacts out of free text, either "zalo:
// 0912..." phrases or zalo.me links.
func ExtractZalo(text string) []string {
	if text == "" {
		return nil
	}

	t := strings.ToLower(text)

	var out []string
	seen := make(map[string]struct{})

	add := func(v string) {
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	for _, m := range reZaloPhone.FindAllStringSubmatch(t, -1) {
		if p, ok := NormalizePhone(m[1]); ok {
			add(p)
		}
	}
	for _, m := range reZaloLink.FindAllStringSubmatch(t, -1) {
		add(m[1])
	}
	return out
}

// ExtractEmails scans free text for email addresses, deduplicated in
// first-seen order.
func ExtractEmails(text string) []string {
	if text == "" {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	for _, m := range reEmail.FindAllString(text, -1) {
		e := strings.ToLower(m)
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
