// Package model defines the document wrapper and the external-record value
// types flowing through the enrichment pipeline.
package model

// CERT-In property names written into enriched components. The names mirror
// the annexure columns of the CERT-In SBOM guidelines.
const (
	PropPatchStatus        = "cert-in:patch-status"
	PropCriticality        = "cert-in:criticality"
	PropReleaseDate        = "cert-in:release-date"
	PropEndOfLifeDate      = "cert-in:end-of-life-date"
	PropUsageRestrictions  = "cert-in:usage-restrictions"
	PropComponentOrigin    = "cert-in:component-origin"
	PropSupplier           = "cert-in:supplier"
	PropUniqueIdentifier   = "cert-in:unique-identifier"
	PropComments           = "cert-in:comments"
	PropExecutableProperty = "cert-in:executable-property"
	PropArchiveProperty    = "cert-in:archive-property"
	PropStructuredProperty = "cert-in:structured-property"
)

// PropertyNames lists every CERT-In property in annexure column order.
var PropertyNames = []string{
	PropUniqueIdentifier,
	PropSupplier,
	PropComponentOrigin,
	PropPatchStatus,
	PropReleaseDate,
	PropEndOfLifeDate,
	PropCriticality,
	PropUsageRestrictions,
	PropExecutableProperty,
	PropArchiveProperty,
	PropStructuredProperty,
	PropComments,
}

// PropertySet maps CERT-In property names to derived string values for one
// component. An absent key renders as no value.
type PropertySet map[string]string

// PackageMetadata is the package registry lookup result.
type PackageMetadata struct {
	ReleaseDate   string `json:"release_date,omitempty"`
	License       string `json:"license,omitempty"`
	LatestVersion string `json:"latest_version,omitempty"`
	Author        string `json:"author,omitempty"`
	Description   string `json:"description,omitempty"`
}

// VulnerabilityAggregate is the external vulnerability lookup result.
type VulnerabilityAggregate struct {
	HasVulnerabilities  bool     `json:"has_vulnerabilities"`
	TotalVulns          int      `json:"total_vulns"`
	FixedVersions       []string `json:"fixed_versions,omitempty"`
	MaxCvssScore        float64  `json:"max_cvss_score,omitempty"`
	CategoricalSeverity string   `json:"categorical_severity,omitempty"`
}

// RepositoryMetadata is the source-repository lookup result.
type RepositoryMetadata struct {
	ReleaseDate string `json:"release_date,omitempty"`
	License     string `json:"license,omitempty"`
	Stars       int    `json:"stars,omitempty"`
}
