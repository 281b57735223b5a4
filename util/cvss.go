// Package util provides utility functions for Package URLs (PURLs), version
// comparison for vulnerability checking, CVSS scoring, and environment handling.
//
//revive:disable-next-line:var-naming
package util

import (
	"strings"

	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
)

// CalculateCVSSScore calculates the CVSS base score from a vector string
func CalculateCVSSScore(vectorStr string) float64 {
	if vectorStr == "" || !strings.HasPrefix(vectorStr, "CVSS:") {
		return 0
	}
	if strings.HasPrefix(vectorStr, "CVSS:3.1") || strings.HasPrefix(vectorStr, "CVSS:3.0") {
		if cvss31, err := gocvss31.ParseVector(vectorStr); err == nil {
			return cvss31.BaseScore()
		}
	}
	if strings.HasPrefix(vectorStr, "CVSS:4.0") {
		if cvss40, err := gocvss40.ParseVector(vectorStr); err == nil {
			return cvss40.Score()
		}
	}
	return 0
}

// SeverityFromScore bands a CVSS base score into a title-cased severity.
// A score of zero carries no severity information and yields "".
func SeverityFromScore(score float64) string {
	switch {
	case score >= 9.0:
		return "Critical"
	case score >= 7.0:
		return "High"
	case score >= 4.0:
		return "Medium"
	case score > 0:
		return "Low"
	default:
		return ""
	}
}

// SeverityRank orders severities CRITICAL > HIGH > MEDIUM > LOW. Unrecognized
// severities rank below LOW so a junk rating can never win the tie-break.
func SeverityRank(severity string) int {
	switch strings.ToUpper(strings.TrimSpace(severity)) {
	case "CRITICAL":
		return 4
	case "HIGH":
		return 3
	case "MEDIUM":
		return 2
	case "LOW":
		return 1
	default:
		return 0
	}
}

// TitleSeverity renders a severity rating title-cased for the export surface.
func TitleSeverity(severity string) string {
	s := strings.ToLower(strings.TrimSpace(severity))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// HighestSeverity returns the title-cased highest severity among the given
// ratings, or "" when none of them is recognized.
func HighestSeverity(severities []string) string {
	best := ""
	bestRank := 0
	for _, s := range severities {
		if r := SeverityRank(s); r > bestRank {
			bestRank = r
			best = s
		}
	}
	return TitleSeverity(best)
}
