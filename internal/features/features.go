package features

import (
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ipv4Pattern matches a dotted quad anywhere in the string.
	// Octet ranges are not checked.
	ipv4Pattern = regexp.MustCompile(`(?:[0-9]{1,3}\.){3}[0-9]{1,3}`)

	// ipv6Pattern matches colon-separated hex groups anywhere in the string.
	ipv6Pattern = regexp.MustCompile(`(?:[0-9a-fA-F]{1,4}:){1,7}[0-9a-fA-F]{1,4}`)

	// embeddedDomainPattern matches domain-like substrings: dot-separated
	// labels (hyphens allowed inside a label) ending in a 2-6 letter TLD.
	embeddedDomainPattern = regexp.MustCompile(`(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,6}`)
)

// lowerCase lower-cases s with Unicode rules.
// A Caser keeps state, so a new one is created per call.
func lowerCase(s string) string {
	return cases.Lower(language.Und).String(s)
}

// boolToInt converts a predicate into the 0/1 encoding used by binary features.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// IPUse returns 1 if the string contains an IPv4 or IPv6 literal anywhere.
func IPUse(rawURL string) int {
	return boolToInt(ipv4Pattern.MatchString(rawURL) || ipv6Pattern.MatchString(rawURL))
}

// URLEntropy returns the base-2 Shannon entropy of the character distribution.
// Terms are summed in order of first occurrence so the result is bit-for-bit
// stable across calls and matches the training pipeline.
func URLEntropy(rawURL string) float64 {
	if rawURL == "" {
		return 0.0
	}

	freq := make(map[rune]int)
	var order []rune
	n := 0
	for _, r := range rawURL {
		if freq[r] == 0 {
			order = append(order, r)
		}
		freq[r]++
		n++
	}

	entropy := 0.0
	total := float64(n)
	for _, r := range order {
		p := float64(freq[r]) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// numericDigits holds the characters with Numeric_Type=Digit, such as
// superscripts and circled digits. Together with category Nd they form the
// digit set the training pipeline counted.
var numericDigits = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00b2, Hi: 0x00b3, Stride: 1},
		{Lo: 0x00b9, Hi: 0x00b9, Stride: 1},
		{Lo: 0x1369, Hi: 0x1371, Stride: 1},
		{Lo: 0x19da, Hi: 0x19da, Stride: 1},
		{Lo: 0x2070, Hi: 0x2070, Stride: 1},
		{Lo: 0x2074, Hi: 0x2079, Stride: 1},
		{Lo: 0x2080, Hi: 0x2089, Stride: 1},
		{Lo: 0x2460, Hi: 0x2468, Stride: 1},
		{Lo: 0x2474, Hi: 0x247c, Stride: 1},
		{Lo: 0x2488, Hi: 0x2490, Stride: 1},
		{Lo: 0x24ea, Hi: 0x24ea, Stride: 1},
		{Lo: 0x24f5, Hi: 0x24fd, Stride: 1},
		{Lo: 0x24ff, Hi: 0x24ff, Stride: 1},
		{Lo: 0x2776, Hi: 0x277e, Stride: 1},
		{Lo: 0x2780, Hi: 0x2788, Stride: 1},
		{Lo: 0x278a, Hi: 0x2792, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x10a40, Hi: 0x10a43, Stride: 1},
		{Lo: 0x10e60, Hi: 0x10e68, Stride: 1},
		{Lo: 0x11052, Hi: 0x1105a, Stride: 1},
		{Lo: 0x1f100, Hi: 0x1f10a, Stride: 1},
	},
	LatinOffset: 2,
}

// NumDigits counts digit characters: decimal digits of any script plus
// the Numeric_Type=Digit characters in numericDigits.
func NumDigits(rawURL string) int {
	count := 0
	for _, r := range rawURL {
		if unicode.IsDigit(r) || unicode.Is(numericDigits, r) {
			count++
		}
	}
	return count
}

// NumLetters counts alphabetic characters.
func NumLetters(rawURL string) int {
	count := 0
	for _, r := range rawURL {
		if unicode.IsLetter(r) {
			count++
		}
	}
	return count
}

// NumQueryParameters counts the distinct keys of the query string.
func NumQueryParameters(rawURL string) int {
	return numQueryParameters(Parse(rawURL))
}

// numQueryParameters counts distinct keys among "key=value" pairs with a
// non-empty value. Pairs without '=' or with an empty value are ignored.
func numQueryParameters(parts URLParts) int {
	if parts.Query == "" {
		return 0
	}

	keys := make(map[string]struct{})
	for _, pair := range strings.Split(parts.Query, "&") {
		key, value, found := strings.Cut(pair, "=")
		if !found || value == "" {
			continue
		}
		keys[unescapeQueryKey(key)] = struct{}{}
	}
	return len(keys)
}

// unescapeQueryKey decodes a query key. Keys with invalid escapes are kept
// with only '+' translated, so malformed input still yields a key.
func unescapeQueryKey(key string) string {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return strings.ReplaceAll(key, "+", " ")
	}
	return decoded
}

// NumFragments counts '#' characters.
func NumFragments(rawURL string) int {
	return strings.Count(rawURL, "#")
}

// NumPercent20 counts non-overlapping "%20" sequences.
func NumPercent20(rawURL string) int {
	return strings.Count(rawURL, "%20")
}

// NumAtSigns counts '@' characters.
func NumAtSigns(rawURL string) int {
	return strings.Count(rawURL, "@")
}

// HasHTTP returns 1 if the string starts with "http://" in any letter case.
func HasHTTP(rawURL string) int {
	return boolToInt(strings.HasPrefix(lowerCase(rawURL), "http://"))
}

// HasHTTPS returns 1 if the string starts with "https://" in any letter case.
func HasHTTPS(rawURL string) int {
	return boolToInt(strings.HasPrefix(lowerCase(rawURL), "https://"))
}

// DotNumber counts '.' characters.
func DotNumber(rawURL string) int {
	return strings.Count(rawURL, ".")
}

// NumWWW counts non-overlapping occurrences of "www" in any letter case.
func NumWWW(rawURL string) int {
	return strings.Count(lowerCase(rawURL), "www")
}

// DirectoryNum counts the non-empty path segments.
func DirectoryNum(rawURL string) int {
	return len(Parse(rawURL).PathSegments())
}

// EmbedDomainNumber counts domain-like substrings in the path and query.
func EmbedDomainNumber(rawURL string) int {
	return embedDomainNumber(Parse(rawURL))
}

// embedDomainNumber scans path and query separately so that the text on
// both sides of '?' never joins into a single match.
func embedDomainNumber(parts URLParts) int {
	count := 0
	for _, section := range []string{parts.Path, parts.Query} {
		if section == "" {
			continue
		}
		count += len(embeddedDomainPattern.FindAllStringIndex(section, -1))
	}
	return count
}

// SuspiciousURL returns 1 if a suspicious keyword occurs in the URL.
func SuspiciousURL(rawURL string) int {
	return boolToInt(suspiciousMatcher.MatchAny(lowerCase(rawURL)))
}

// CountPercent counts '%' characters.
func CountPercent(rawURL string) int {
	return strings.Count(rawURL, "%")
}

// CountDash counts '-' characters.
func CountDash(rawURL string) int {
	return strings.Count(rawURL, "-")
}

// IsShortened returns 1 if the URL contains a known shortener domain.
func IsShortened(rawURL string) int {
	return boolToInt(shortenerMatcher.MatchAny(rawURL))
}

// HostnameLength returns the length of the network location.
func HostnameLength(rawURL string) int {
	return utf8.RuneCountInString(Parse(rawURL).Netloc)
}

// FirstDirectoryLength returns the length of the first non-empty path segment.
func FirstDirectoryLength(rawURL string) int {
	return firstDirectoryLength(Parse(rawURL))
}

func firstDirectoryLength(parts URLParts) int {
	segments := parts.PathSegments()
	if len(segments) == 0 {
		return 0
	}
	return utf8.RuneCountInString(segments[0])
}

// TopLevelDomainLength returns the length of the text after the last '.'
// of the network location, or 0 when it has no '.'.
func TopLevelDomainLength(rawURL string) int {
	return topLevelDomainLength(Parse(rawURL))
}

func topLevelDomainLength(parts URLParts) int {
	i := strings.LastIndexByte(parts.Netloc, '.')
	if i < 0 {
		return 0
	}
	return utf8.RuneCountInString(parts.Netloc[i+1:])
}

// NumSubdomains counts the dots of the network location once a leading
// "www." is removed.
func NumSubdomains(rawURL string) int {
	return numSubdomains(Parse(rawURL))
}

func numSubdomains(parts URLParts) int {
	host := parts.Netloc
	if len(host) >= 4 && strings.EqualFold(host[:4], "www.") {
		host = host[4:]
	}
	return strings.Count(host, ".")
}
