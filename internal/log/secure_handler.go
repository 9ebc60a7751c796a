package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces every masked value.
const MaskValue = "***REDACTED***"

// secretNames are attribute keys and query parameter names whose values are
// always masked. Names are compared lower-cased.
var secretNames = map[string]struct{}{
	"authorization":    {},
	"cookie":           {},
	"pass":             {},
	"pwd":              {},
	"api_key":          {},
	"apikey":           {},
	"client_secret":    {},
	"code_verifier":    {},
	"sid":              {},
	"jsessionid":       {},
	"phpsessid":        {},
	"sig":              {},
	"otp":              {},
	"x-amz-credential": {},
}

// secretFragments mask any key that contains one of them, which covers
// names such as user_password, access_token and X-Amz-Signature.
var secretFragments = []string{
	"password", "passwd", "secret", "token", "session", "signature", "credential", "auth",
}

// secretValues match values that are credentials whatever their key.
var secretValues = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
	regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`),                              // Authorization header value
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),                                     // AWS access key ID
	regexp.MustCompile(`^AIza[0-9A-Za-z_-]{35}$`),                                // Google API key
}

// SecureHandler is an slog.Handler that masks credentials before records
// reach the wrapped handler.
//
// Classified URLs are logged as given, so phishing links keep their host and
// path. Only the userinfo password and the values of secret query parameters
// are replaced with MaskValue.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps handler. A nil handler means slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled implements slog.Handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs implements slog.Handler.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(masked)}
}

// WithGroup implements slog.Handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr masks a single attribute, descending into groups.
func maskAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		masked := make([]slog.Attr, len(group))
		for i, ga := range group {
			masked[i] = maskAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	if isSecretName(a.Key) {
		return slog.String(a.Key, MaskValue)
	}
	if a.Value.Kind() != slog.KindString {
		return a
	}

	s := a.Value.String()
	if isSecretValue(s) {
		return slog.String(a.Key, MaskValue)
	}
	if masked, changed := maskURL(s); changed {
		return slog.String(a.Key, masked)
	}
	return a
}

// isSecretName reports whether values under name must be masked.
// A bare "key" is not secret: cache_key or sort_key carry no credential.
func isSecretName(name string) bool {
	name = strings.ToLower(name)
	if _, ok := secretNames[name]; ok {
		return true
	}
	for _, fragment := range secretFragments {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}

func isSecretValue(s string) bool {
	for _, re := range secretValues {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// maskURL masks the userinfo password and the secret query values of a URL.
// The rest of the string is kept byte for byte, so malformed URLs survive.
// It reports whether anything was masked.
func maskURL(s string) (string, bool) {
	changed := false

	if i := strings.Index(s, "://"); i >= 0 {
		start := i + len("://")
		end := len(s)
		if j := strings.IndexAny(s[start:], "/?#"); j >= 0 {
			end = start + j
		}
		authority := s[start:end]
		if at := strings.LastIndex(authority, "@"); at >= 0 {
			if colon := strings.Index(authority[:at], ":"); colon >= 0 && colon+1 < at {
				s = s[:start+colon+1] + MaskValue + s[start+at:]
				changed = true
			}
		}
	}

	q := strings.Index(s, "?")
	if q < 0 {
		return s, changed
	}
	end := len(s)
	if f := strings.Index(s[q:], "#"); f >= 0 {
		end = q + f
	}

	queryChanged := false
	pairs := strings.Split(s[q+1:end], "&")
	for i, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || value == "" || !isSecretName(name) {
			continue
		}
		pairs[i] = name + "=" + MaskValue
		queryChanged = true
	}
	if !queryChanged {
		return s, changed
	}
	return s[:q+1] + strings.Join(pairs, "&") + s[end:], true
}

// NewSecureLogger returns a text logger on w that masks credentials.
// verbose lowers the level from Warn to Debug.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	text := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewSecureHandler(text))
}
