// Package log builds the slog logger used by urlguard.
//
// Classified URLs end up in debug and warning logs, and some of them carry
// credentials: a userinfo password, a session ID or an OAuth token in the
// query. SecureHandler masks those values and keeps the rest of the URL, so
// the host and path of a phishing link stay readable.
//
//	logger := log.NewSecureLogger(os.Stderr, true)
//	logger.Warn("skipping sample",
//	    "url", "https://user:pw@example.com/?token=x", // pw and x are masked
//	)
package log
