package dedup

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds s for identity comparison: diacritics are removed, letters
// are lowercased and everything except letters and digits is dropped.
func Normalize(s string) string {
	// transform.Chain is stateful, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// CleanPhone canonicalises a phone number. UAE numbers written with a
// 00971, 971 or trunk 0 prefix become +971 numbers; others keep their
// digits and a leading + if one was given.
func CleanPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if d == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(d, "00971"):
		return "+971" + d[5:]
	case strings.HasPrefix(d, "971") && len(d) >= 11:
		return "+" + d
	case strings.HasPrefix(d, "0") && !strings.HasPrefix(d, "00") && (len(d) == 9 || len(d) == 10):
		return "+971" + d[1:]
	case strings.HasPrefix(phone, "+"):
		return "+" + d
	case strings.HasPrefix(d, "00"):
		return "+" + d[2:]
	default:
		return d
	}
}

// CanonicalWebsite reduces a website to its lowercased host without scheme,
// port or a leading "www.".
func CanonicalWebsite(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}
	if !strings.Contains(website, "://") {
		website = "http://" + website
	}
	u, err := url.Parse(website)
	if err != nil || u.Hostname() == "" {
		return strings.ToLower(strings.TrimSpace(website))
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

const noContact = "no-contact"

// Key builds the identity key of a listing. The contact part is the phone,
// else the website, else the literal "no-contact". With nameOnly set the key
// is the normalised name alone.
func Key(name, phone, website string, nameOnly bool) string {
	n := Normalize(name)
	if nameOnly {
		return n
	}
	return n + "|" + contactPart(phone, website)
}

func contactPart(phone, website string) string {
	if p := Normalize(CleanPhone(phone)); p != "" {
		return p
	}
	if w := Normalize(CanonicalWebsite(website)); w != "" {
		return w
	}
	return noContact
}
