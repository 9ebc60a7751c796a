// Package features derives the lexical and structural feature vector of a URL.
//
// The extractor only looks at the URL string. It never resolves hosts, never
// fetches content, and never fails: every feature is a total function over
// all strings, including the empty string and malformed input.
//
// The package contains:
//   - Parse: a forgiving URL splitter (scheme, netloc, path, query, fragment)
//   - One exported function per feature (IPUse, URLEntropy, NumDigits, ...)
//   - Vector: the canonical, ordered record consumed by classifiers
//   - Extract: computes a Vector from a URL string
//
// The same Extract function is used when building training tables and at
// prediction time. Changing a feature definition or the order of Vector
// fields requires bumping SchemaVersion and retraining every model.
//
// # Usage
//
//	v := features.Extract("https://www.example.com/a/b?x=1#frag")
//	fmt.Println(v.HasHTTPS, v.NumSubdomains) // 1 1
//
//	// Project into a model's column order
//	x, err := v.Project([]string{"has_https", "dot_number"})
package features
