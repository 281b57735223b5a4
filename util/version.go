// Package util provides utility functions for Package URLs (PURLs), version
// comparison for vulnerability checking, CVSS scoring, and environment handling.
//
//revive:disable-next-line:var-naming
package util

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	npm "github.com/aquasecurity/go-npm-version/pkg"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/google/osv-scanner/pkg/models"
)

// IsNewerVersion reports whether candidate is strictly newer than installed,
// using the ecosystem-specific parser where one exists. Unparsable versions
// fall back to string inequality: a differing latest version always counts
// as an available update.
func IsNewerVersion(ecosystem, installed, candidate string) bool {
	if installed == "" || candidate == "" || installed == candidate {
		return false
	}

	switch ecosystem {
	case EcosystemNPM:
		iv, err1 := npm.NewVersion(installed)
		cv, err2 := npm.NewVersion(candidate)
		if err1 == nil && err2 == nil {
			return cv.GreaterThan(iv)
		}
	case EcosystemPyPI:
		iv, err1 := pep440.Parse(installed)
		cv, err2 := pep440.Parse(candidate)
		if err1 == nil && err2 == nil {
			return cv.GreaterThan(iv)
		}
	}

	iv, err1 := semver.NewVersion(installed)
	cv, err2 := semver.NewVersion(candidate)
	if err1 == nil && err2 == nil {
		return cv.GreaterThan(iv)
	}

	return installed != candidate
}

// IsVersionAffectedAny checks if a version is affected by any of the provided
// affected ranges
func IsVersionAffectedAny(version string, allAffected []models.Affected) bool {
	for _, affected := range allAffected {
		if IsVersionAffected(version, affected) {
			return true
		}
	}
	return false
}

// IsVersionAffected checks if a version is affected by OSV ranges.
// Uses ecosystem-specific version parsers for accurate comparison.
func IsVersionAffected(version string, affected models.Affected) bool {
	for _, v := range affected.Versions {
		if version == v {
			return true
		}
	}

	for _, vrange := range affected.Ranges {
		if vrange.Type != models.RangeEcosystem && vrange.Type != models.RangeSemVer {
			continue
		}
		if isVersionInRange(version, vrange, string(affected.Package.Ecosystem)) {
			return true
		}
	}

	return false
}

// rangeBounds collects the boundary events of one OSV range. OSV's "0" means
// "from the beginning of time".
type rangeBounds struct {
	introduced   string
	fixed        string
	lastAffected string
}

func boundsOf(vrange models.Range) rangeBounds {
	var b rangeBounds
	for _, event := range vrange.Events {
		if event.Introduced != "" {
			b.introduced = event.Introduced
		}
		if event.Fixed != "" {
			b.fixed = event.Fixed
		}
		if event.LastAffected != "" {
			b.lastAffected = event.LastAffected
		}
	}
	return b
}

// complete requires both a lower and an upper bound; incomplete range data
// cannot reliably place a version and must not produce false positives.
func (b rangeBounds) complete() bool {
	return b.introduced != "" && (b.fixed != "" || b.lastAffected != "")
}

func isVersionInRange(version string, vrange models.Range, ecosystem string) bool {
	switch strings.ToLower(ecosystem) {
	case "npm":
		return isVersionInRangeNPM(version, vrange)
	case "pypi":
		return isVersionInRangePython(version, vrange)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return isVersionInRangeString(version, vrange)
	}

	b := boundsOf(vrange)
	if !b.complete() {
		return false
	}

	if b.introduced != "0" {
		if intro, err := semver.NewVersion(b.introduced); err == nil && v.LessThan(intro) {
			return false
		}
	}
	if b.fixed != "" {
		if fix, err := semver.NewVersion(b.fixed); err == nil && !v.LessThan(fix) {
			return false
		}
	}
	if b.lastAffected != "" {
		if last, err := semver.NewVersion(b.lastAffected); err == nil && v.GreaterThan(last) {
			return false
		}
	}
	return true
}

func isVersionInRangeNPM(version string, vrange models.Range) bool {
	v, err := npm.NewVersion(version)
	if err != nil {
		return isVersionInRangeString(version, vrange)
	}

	b := boundsOf(vrange)
	if !b.complete() {
		return false
	}

	if b.introduced != "0" {
		if intro, err := npm.NewVersion(b.introduced); err == nil && v.LessThan(intro) {
			return false
		}
	}
	if b.fixed != "" {
		if fix, err := npm.NewVersion(b.fixed); err == nil && !v.LessThan(fix) {
			return false
		}
	}
	if b.lastAffected != "" {
		if last, err := npm.NewVersion(b.lastAffected); err == nil && v.GreaterThan(last) {
			return false
		}
	}
	return true
}

func isVersionInRangePython(version string, vrange models.Range) bool {
	v, err := pep440.Parse(version)
	if err != nil {
		return isVersionInRangeString(version, vrange)
	}

	b := boundsOf(vrange)
	if !b.complete() {
		return false
	}

	if b.introduced != "0" {
		if intro, err := pep440.Parse(b.introduced); err == nil && v.LessThan(intro) {
			return false
		}
	}
	if b.fixed != "" {
		if fix, err := pep440.Parse(b.fixed); err == nil && !v.LessThan(fix) {
			return false
		}
	}
	if b.lastAffected != "" {
		if last, err := pep440.Parse(b.lastAffected); err == nil && v.GreaterThan(last) {
			return false
		}
	}
	return true
}

// isVersionInRangeString performs string-based comparison as a last resort
func isVersionInRangeString(version string, vrange models.Range) bool {
	b := boundsOf(vrange)
	if !b.complete() {
		return false
	}

	if b.introduced != "0" && version < b.introduced {
		return false
	}
	if b.fixed != "" && version >= b.fixed {
		return false
	}
	if b.lastAffected != "" && version > b.lastAffected {
		return false
	}
	return true
}

// ExtractApplicableFixedVersion checks all affected entries and returns the
// fix version for the range the current version falls into. When no range
// matches, all known fixed versions are returned as a fallback so the caller
// can still surface a remediation hint.
func ExtractApplicableFixedVersion(currentVersion string, allAffected []models.Affected) []string {
	for _, affected := range allAffected {
		for _, vrange := range affected.Ranges {
			if vrange.Type != models.RangeEcosystem && vrange.Type != models.RangeSemVer {
				continue
			}
			b := boundsOf(vrange)
			if b.fixed == "" {
				continue
			}
			if isVersionInRange(currentVersion, vrange, string(affected.Package.Ecosystem)) {
				return []string{b.fixed}
			}
		}
	}
	return extractAllFixed(allAffected)
}

func extractAllFixed(allAffected []models.Affected) []string {
	var fixedVersions []string
	seen := make(map[string]bool)
	for _, affected := range allAffected {
		for _, vrange := range affected.Ranges {
			for _, event := range vrange.Events {
				if event.Fixed != "" && !seen[event.Fixed] {
					fixedVersions = append(fixedVersions, event.Fixed)
					seen[event.Fixed] = true
				}
			}
		}
	}
	return fixedVersions
}
