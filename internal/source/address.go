package source

import "strings"

// knownAreas are Dubai districts recognised in free-form addresses, longest
// names first so "Bur Dubai" wins over "Dubai".
var knownAreas = []string{
	"Dubai Investment Park",
	"International City",
	"Knowledge Village",
	"Sheikh Zayed Road",
	"Jumeirah Lake Towers",
	"Dubai Silicon Oasis",
	"Arabian Ranches",
	"Downtown Dubai",
	"Festival City",
	"Academic City",
	"Internet City",
	"Emirates Hills",
	"Dubai Marina",
	"Business Bay",
	"Trade Centre",
	"Al Khawaneej",
	"Nad Al Sheba",
	"Sports City",
	"Motor City",
	"Media City",
	"The Greens",
	"Al Barsha",
	"Al Quoz",
	"Al Mizhar",
	"Al Warqa",
	"Bur Dubai",
	"Jumeirah",
	"Karama",
	"Mirdif",
	"Deira",
	"DIFC",
	"JBR",
	"JLT",
}

// emirates in the order they are checked.
var emirates = []string{
	"Abu Dhabi",
	"Dubai",
	"Sharjah",
	"Ajman",
	"Ras Al Khaimah",
	"Fujairah",
	"Umm Al Quwain",
}

// ParseArea returns the first known district mentioned in addr.
func ParseArea(addr string) string {
	lower := strings.ToLower(addr)
	for _, a := range knownAreas {
		if containsToken(lower, strings.ToLower(a)) {
			return a
		}
	}
	return ""
}

// ParseEmirate returns the emirate mentioned in addr.
func ParseEmirate(addr string) string {
	lower := strings.ToLower(addr)
	for _, e := range emirates {
		if strings.Contains(lower, strings.ToLower(e)) {
			return e
		}
	}
	return ""
}

// containsToken matches needle on word boundaries so "JBR" does not match
// inside "JBRoad".
func containsToken(haystack, needle string) bool {
	for i := 0; ; {
		j := strings.Index(haystack[i:], needle)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(needle)
		if boundary(haystack, start-1) && boundary(haystack, end) {
			return true
		}
		i = start + 1
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}
