package features

import "strings"

// URLParts holds the components of a URL as split by Parse.
// Every field may be empty. Netloc keeps userinfo and port untouched.
type URLParts struct {
	// Scheme is lower-cased, without the trailing colon.
	Scheme string

	// Netloc is the authority section found after "//".
	Netloc string

	// Path excludes the query, the fragment, and ";params" of the last segment.
	Path string

	// Params is the ";params" suffix of the last path segment, without ';'.
	Params string

	// Query is everything after the first '?', without it.
	Query string

	// Fragment is everything after the first '#', without it.
	Fragment string
}

// schemesWithParams lists the schemes whose last path segment may carry
// ";params". The empty scheme is included so bare hosts behave like http.
var schemesWithParams = map[string]bool{
	"":         true,
	"ftp":      true,
	"hdl":      true,
	"prospero": true,
	"http":     true,
	"imap":     true,
	"https":    true,
	"shttp":    true,
	"rtsp":     true,
	"rtsps":    true,
	"rtspu":    true,
	"sip":      true,
	"sips":     true,
	"mms":      true,
	"sftp":     true,
	"tel":      true,
}

// Parse splits raw into its URL components.
//
// Parse never fails. Input that is not a well-formed URL degrades to
// empty components: a string without "scheme://" has no netloc and is
// treated as a path. The rules are fixed because trained models depend
// on them:
//  1. Leading ASCII control characters and spaces are trimmed and
//     tabs, CR and LF are removed.
//  2. A scheme is the text before the first ':' when it starts with an
//     ASCII letter and contains only letters, digits, '+', '-' and '.'.
//  3. A netloc follows "//" and runs to the next '/', '?' or '#'.
//  4. The fragment follows the first '#', then the query the first '?'.
//  5. The rest is the path.
func Parse(raw string) URLParts {
	var parts URLParts

	rest := sanitize(raw)

	if i := strings.IndexByte(rest, ':'); i > 0 && isSchemeCandidate(rest[:i]) {
		parts.Scheme = strings.ToLower(rest[:i])
		rest = rest[i+1:]
	}

	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexAny(rest, "/?#")
		if end < 0 {
			end = len(rest)
		}
		parts.Netloc = rest[:end]
		rest = rest[end:]
	}

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		parts.Fragment = rest[i+1:]
		rest = rest[:i]
	}

	if i := strings.IndexByte(rest, '?'); i >= 0 {
		parts.Query = rest[i+1:]
		rest = rest[:i]
	}

	if schemesWithParams[parts.Scheme] {
		rest, parts.Params = splitParams(rest)
	}
	parts.Path = rest

	return parts
}

// PathSegments returns the non-empty '/'-separated segments of the path.
func (p URLParts) PathSegments() []string {
	segments := make([]string, 0)
	for _, s := range strings.Split(p.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// Host returns the netloc without userinfo and port.
// IPv6 literals are returned without brackets.
func (p URLParts) Host() string {
	host := p.Netloc
	if i := strings.LastIndexByte(host, '@'); i >= 0 {
		host = host[i+1:]
	}

	if strings.HasPrefix(host, "[") {
		if end := strings.IndexByte(host, ']'); end > 0 {
			return host[1:end]
		}
		return strings.TrimPrefix(host, "[")
	}

	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return strings.ToLower(host)
}

// sanitize removes leading control characters and spaces and the
// tab/newline characters that may appear anywhere.
func sanitize(raw string) string {
	trimmed := strings.TrimLeftFunc(raw, func(r rune) bool {
		return r <= ' '
	})
	if !strings.ContainsAny(trimmed, "\t\r\n") {
		return trimmed
	}
	return strings.NewReplacer("\t", "", "\r", "", "\n", "").Replace(trimmed)
}

// isSchemeCandidate reports whether s is a syntactically valid scheme.
func isSchemeCandidate(s string) bool {
	if s == "" || !isASCIILetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !isASCIILetter(c) && !isASCIIDigit(c) && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

// splitParams separates ";params" from the last path segment.
func splitParams(path string) (string, string) {
	start := 0
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		start = i
	}
	i := strings.IndexByte(path[start:], ';')
	if i < 0 {
		return path, ""
	}
	i += start
	return path[:i], path[i+1:]
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
