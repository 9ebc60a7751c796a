package features

import "unicode/utf8"

// Extract computes the feature vector of rawURL.
// It never fails and has no side effects; the URL is parsed once.
func Extract(rawURL string) Vector {
	parts := Parse(rawURL)

	return Vector{
		IPUse:                IPUse(rawURL),
		URLEntropy:           URLEntropy(rawURL),
		NumDigits:            NumDigits(rawURL),
		NumQueryParameters:   numQueryParameters(parts),
		NumFragments:         NumFragments(rawURL),
		NumPercent20:         NumPercent20(rawURL),
		NumAtSigns:           NumAtSigns(rawURL),
		HasHTTP:              HasHTTP(rawURL),
		HasHTTPS:             HasHTTPS(rawURL),
		DotNumber:            DotNumber(rawURL),
		NumWWW:               NumWWW(rawURL),
		DirectoryNum:         len(parts.PathSegments()),
		EmbedDomainNumber:    embedDomainNumber(parts),
		SuspiciousURL:        SuspiciousURL(rawURL),
		CountPercent:         CountPercent(rawURL),
		CountDash:            CountDash(rawURL),
		IsShortened:          IsShortened(rawURL),
		HostnameLength:       utf8.RuneCountInString(parts.Netloc),
		FirstDirectoryLength: firstDirectoryLength(parts),
		TopLevelDomainLength: topLevelDomainLength(parts),
		NumLetters:           NumLetters(rawURL),
		NumSubdomains:        numSubdomains(parts),
	}
}
