// Package main provides the entry point for the urlguard CLI.
//
// urlguard classifies URLs as benign or malicious (phishing, defacement,
// malware) from lexical features only. It never connects to the URL.
//
// Usage:
//
//	urlguard predict <url>
//	urlguard predict --list <file>
//	urlguard evaluate --dataset <file.csv>
//
// See --help for all available options.
package main

// main is the entry point for urlguard.
func main() {
	Execute()
}
