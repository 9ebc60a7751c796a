package features

import (
	"slices"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
)

// suspiciousKeywords are matched case-insensitively anywhere in the URL.
// Duplicates are harmless; they are removed when the matcher is built.
var suspiciousKeywords = []string{
	"paypal", "bank", "credit", "login", "confirm",
	"free", "lucky", "prize", "amazon", "secure",
	"verification", "account", "update", "ebay",
	"appleid", "gift", "win", "bonus", "btc", "bitcoin", "login", "account", "service", "bonus",
}

// shortenerPatterns are known URL-shortener domains.
// They are matched as case-sensitive substrings of the raw URL.
var shortenerPatterns = []string{
	"bit.ly", "goo.gl", "shorte.st", "go2l.ink", "x.co", "ow.ly", "t.co", "tinyurl",
	"tr.im", "is.gd", "cli.gs", "yfrog.com", "migre.me", "ff.im", "tiny.cc",
	"url4.eu", "twit.ac", "su.pr", "twurl.nl", "snipurl.com", "short.to",
	"BudURL.com", "ping.fm", "post.ly", "Just.as", "bkite.com", "snipr.com",
	"fic.kr", "loopt.us", "doiop.com", "short.ie", "kl.am", "wp.me", "rubyurl.com",
	"om.ly", "to.ly", "bit.do", "lnkd.in", "db.tt", "qr.ae", "adf.ly",
	"bitly.com", "cur.lv", "tinyurl.com", "ity.im", "q.gs", "po.st", "bc.vc",
	"twitthis.com", "u.to", "j.mp", "buzurl.com", "cutt.us", "u.bb", "yourls.org",
	"prettylinkpro.com", "scrnch.me", "filoops.info", "vzturl.com", "qr.net",
	"1url.com", "tweez.me", "v.gd", "link.zip.net", "rebrand.ly", "cutt.ly",
	"shorturl.at", "rb.gy", "tiny.one", "clck.ru",
}

// SuspiciousKeywords returns a copy of the keyword list used by SuspiciousURL.
func SuspiciousKeywords() []string {
	return slices.Clone(suspiciousKeywords)
}

// ShortenerPatterns returns a copy of the pattern list used by IsShortened.
func ShortenerPatterns() []string {
	return slices.Clone(shortenerPatterns)
}

var (
	suspiciousMatcher = newSubstringMatcher(lowerAll(suspiciousKeywords))
	shortenerMatcher  = newSubstringMatcher(shortenerPatterns)
)

// substringMatcher reports whether any of a fixed set of patterns occurs
// in a text. It is built once and only read afterwards, so it is safe for
// concurrent use.
type substringMatcher struct {
	// machine is the Aho-Corasick automaton over patterns.
	// It is nil when the automaton could not be built.
	machine *goahocorasick.Machine

	// patterns are the sorted, unique, non-empty patterns.
	patterns []string
}

// newSubstringMatcher builds a matcher over patterns.
// The automaton requires sorted unique keys, so patterns are normalized first.
func newSubstringMatcher(patterns []string) *substringMatcher {
	unique := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p != "" {
			unique = append(unique, p)
		}
	}
	slices.SortFunc(unique, func(a, b string) int {
		return slices.Compare([]rune(a), []rune(b))
	})
	unique = slices.Compact(unique)

	m := &substringMatcher{patterns: unique}
	if len(unique) == 0 {
		return m
	}

	keys := make([][]rune, len(unique))
	for i, p := range unique {
		keys[i] = []rune(p)
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(keys); err != nil {
		// Fall back to a linear scan; results are identical.
		return m
	}
	m.machine = machine
	return m
}

// MatchAny reports whether at least one pattern occurs in text.
func (m *substringMatcher) MatchAny(text string) bool {
	if text == "" || len(m.patterns) == 0 {
		return false
	}

	if m.machine != nil {
		return len(m.machine.MultiPatternSearch([]rune(text), true)) > 0
	}

	for _, p := range m.patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// lowerAll returns the lower-cased copy of every string in list.
func lowerAll(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = lowerCase(s)
	}
	return out
}
