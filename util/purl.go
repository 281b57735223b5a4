// Package util provides utility functions for Package URLs (PURLs), version
// comparison for vulnerability checking, CVSS scoring, and environment handling.
//
//revive:disable-next-line:var-naming
package util

import (
	"fmt"
	"strings"

	"github.com/package-url/packageurl-go"
)

// Package ecosystems the enrichment pipeline understands. The names follow the
// OSV ecosystem naming so they can be passed to the vulnerability source as-is.
const (
	EcosystemNPM     = "npm"
	EcosystemPyPI    = "PyPI"
	EcosystemMaven   = "Maven"
	EcosystemUnknown = ""
)

// EcosystemToPurlType converts an OSV ecosystem name to a PURL type
func EcosystemToPurlType(ecosystem string) string {
	mapping := map[string]string{
		"npm":       "npm",
		"PyPI":      "pypi",
		"Maven":     "maven",
		"Go":        "golang",
		"NuGet":     "nuget",
		"RubyGems":  "gem",
		"crates.io": "cargo",
		"Packagist": "composer",
	}

	if purlType, exists := mapping[ecosystem]; exists {
		return purlType
	}

	// Fallback: try case-insensitive
	for key, value := range mapping {
		if strings.EqualFold(key, ecosystem) {
			return value
		}
	}

	return strings.ToLower(ecosystem)
}

// PurlTypeToEcosystem maps a PURL type back to an ecosystem name.
// Types outside the supported set map to the unknown ecosystem.
func PurlTypeToEcosystem(purlType string) string {
	switch strings.ToLower(purlType) {
	case "npm":
		return EcosystemNPM
	case "pypi":
		return EcosystemPyPI
	case "maven":
		return EcosystemMaven
	default:
		return EcosystemUnknown
	}
}

// ParsePURL parses a PURL string and returns the parsed PackageURL
func ParsePURL(purlStr string) (*packageurl.PackageURL, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// CleanPURL removes qualifiers (after ?) but preserves the subpath (after #)
// to maintain module identity
func CleanPURL(purlStr string) (string, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return "", err
	}

	cleaned := packageurl.PackageURL{
		Type:      parsed.Type,
		Namespace: parsed.Namespace,
		Name:      parsed.Name,
		Version:   parsed.Version,
		Subpath:   parsed.Subpath,
	}

	return strings.ToLower(cleaned.ToString()), nil
}

// SynthesizePURL builds a PURL from ecosystem, name and optional group/version.
// The group is only meaningful for namespaced ecosystems (Maven, scoped npm).
func SynthesizePURL(ecosystem, group, name, version string) string {
	if name == "" {
		return ""
	}

	purlType := EcosystemToPurlType(ecosystem)
	if ecosystem == EcosystemUnknown {
		purlType = "generic"
	}

	purl := packageurl.PackageURL{
		Type:      purlType,
		Namespace: group,
		Name:      name,
		Version:   version,
	}
	return purl.ToString()
}

// SupplierSlug normalizes a supplier name into a PURL path segment.
func SupplierSlug(supplier string) string {
	slug := strings.ToLower(strings.TrimSpace(supplier))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "/", "-")
	if slug == "" {
		slug = "unknown"
	}
	return slug
}

// SupplierPURL re-derives a PURL with a synthetic supplier segment inserted
// after the pkg: scheme: pkg:npm/lodash@4.17.21 -> pkg:open-source/npm/lodash@4.17.21
func SupplierPURL(purlStr, supplier string) string {
	rest, ok := strings.CutPrefix(purlStr, "pkg:")
	if !ok || rest == "" {
		return purlStr
	}
	return fmt.Sprintf("pkg:%s/%s", SupplierSlug(supplier), rest)
}
