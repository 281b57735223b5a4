package enrich

import (
	"fmt"
	"regexp"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/util"
)

// sourceData bundles one component with everything the external sources
// produced for it. Any pointer may be nil: a failed source contributes an
// absent record, never an abort.
type sourceData struct {
	comp      *cdx.Component
	ecosystem string
	affecting []cdx.Vulnerability
	pkg       *model.PackageMetadata
	vuln      *model.VulnerabilityAggregate
	repo      *model.RepositoryMetadata
	eol       string
}

var proprietaryLicense = regexp.MustCompile(`(?i)proprietary|commercial|all rights reserved`)

// derive merges the source records into the CERT-In property set. The rule
// order is fixed; every rule must tolerate absent sources.
func derive(d sourceData) model.PropertySet {
	props := model.PropertySet{}

	patchStatus := derivePatchStatus(d)
	props[model.PropPatchStatus] = patchStatus

	if criticality := deriveCriticality(d); criticality != "" {
		props[model.PropCriticality] = criticality
	}

	props[model.PropReleaseDate] = deriveReleaseDate(d)
	props[model.PropEndOfLifeDate] = util.GetStringOrDefault(d.eol, "NA")
	props[model.PropUsageRestrictions] = deriveUsageRestrictions(licenseOf(d))

	supplier, origin := deriveSupplierOrigin(d)
	props[model.PropSupplier] = supplier
	props[model.PropComponentOrigin] = origin
	props[model.PropUniqueIdentifier] = deriveUniqueIdentifier(d, supplier)
	props[model.PropComments] = deriveComments(d, patchStatus)

	applyFixedPolicy(props, d.ecosystem)
	return props
}

func derivePatchStatus(d sourceData) string {
	if d.vuln != nil && d.vuln.HasVulnerabilities {
		if len(d.vuln.FixedVersions) > 0 {
			return fmt.Sprintf("Update available (>= %s)", d.vuln.FixedVersions[0])
		}
		return "Update available (>= NA)"
	}
	if d.pkg != nil && d.pkg.LatestVersion != "" &&
		util.IsNewerVersion(d.ecosystem, d.comp.Version, d.pkg.LatestVersion) {
		return fmt.Sprintf("Update available (latest %s)", d.pkg.LatestVersion)
	}
	return "Up to date"
}

// deriveCriticality: in-document ratings win over the external aggregate's
// CVSS banding, which wins over the source's own categorical rating.
func deriveCriticality(d sourceData) string {
	if s := util.HighestSeverity(model.RatingSeverities(d.affecting)); s != "" {
		return s
	}
	if d.vuln != nil {
		if s := util.SeverityFromScore(d.vuln.MaxCvssScore); s != "" {
			return s
		}
		if d.vuln.CategoricalSeverity != "" {
			return util.TitleSeverity(d.vuln.CategoricalSeverity)
		}
	}
	return ""
}

func deriveReleaseDate(d sourceData) string {
	if d.pkg != nil && d.pkg.ReleaseDate != "" {
		return d.pkg.ReleaseDate
	}
	if d.repo != nil && d.repo.ReleaseDate != "" {
		return d.repo.ReleaseDate
	}
	return "NA"
}

func licenseOf(d sourceData) string {
	if d.pkg != nil && d.pkg.License != "" {
		return d.pkg.License
	}
	if d.repo != nil {
		return d.repo.License
	}
	return ""
}

func deriveUsageRestrictions(license string) string {
	l := strings.ToLower(license)
	switch {
	case strings.Contains(l, "agpl"):
		return "Strong copyleft: network use requires source disclosure (AGPL)"
	case strings.Contains(l, "gpl"):
		return "Copyleft: derivative works must carry the same license (GPL)"
	case strings.Contains(l, "mit"), strings.Contains(l, "apache"):
		return "Permissive license: reuse allowed with attribution"
	default:
		return "NA"
	}
}

func deriveSupplierOrigin(d sourceData) (supplier, origin string) {
	if d.repo != nil && d.repo.Stars > 0 {
		return "Open-source", "Open-source"
	}

	supplier = "Third-party"
	if d.pkg != nil && d.pkg.Author != "" {
		supplier = "Vendor"
	}

	origin = "Open-source"
	if proprietaryLicense.MatchString(licenseOf(d)) {
		origin = "Proprietary"
	}
	return supplier, origin
}

func deriveUniqueIdentifier(d sourceData, supplier string) string {
	switch {
	case d.comp.PackageURL != "":
		return util.SupplierPURL(d.comp.PackageURL, supplier)
	case d.ecosystem != util.EcosystemUnknown && d.comp.Name != "":
		return util.SynthesizePURL(d.ecosystem, d.comp.Group, d.comp.Name, d.comp.Version)
	case d.comp.Name != "":
		return d.comp.Name
	default:
		return "NA"
	}
}

func deriveComments(d sourceData, patchStatus string) string {
	var parts []string
	if d.pkg != nil && d.pkg.Description != "" {
		parts = append(parts, d.pkg.Description)
	}
	if d.vuln != nil && d.vuln.TotalVulns > 0 {
		parts = append(parts, fmt.Sprintf("%d known vulnerabilities", d.vuln.TotalVulns))
	}
	if d.repo != nil && d.repo.Stars > 100 {
		parts = append(parts, fmt.Sprintf("Popular repository (%d stars)", d.repo.Stars))
	}
	comments := strings.Join(parts, "; ")

	// The recommendation note is appended after the fact whenever the patch
	// status indicates an update is needed.
	if strings.HasPrefix(patchStatus, "Update available") {
		rec := "NA"
		if d.vuln != nil && len(d.vuln.FixedVersions) > 0 {
			rec = d.vuln.FixedVersions[0]
		}
		note := "Recommended version: " + rec
		if comments == "" {
			comments = note
		} else {
			comments += "; " + note
		}
	}

	return util.GetStringOrDefault(comments, "NA")
}

// applyFixedPolicy sets the fixed-policy properties: only npm packages are
// treated as executable, nothing is an archive, everything is structured.
func applyFixedPolicy(props model.PropertySet, ecosystem string) {
	executable := "No"
	if ecosystem == util.EcosystemNPM {
		executable = "Yes"
	}
	props[model.PropExecutableProperty] = executable
	props[model.PropArchiveProperty] = "No"
	props[model.PropStructuredProperty] = "Yes"
}

// degradedProperties is the merge-failure fallback: a complete property set
// with explicit sentinels, cached like any other result so a failing
// component is not re-fetched every run.
func degradedProperties(comp *cdx.Component, ecosystem string) model.PropertySet {
	id := comp.PackageURL
	if id == "" {
		id = comp.Name
	}
	if id == "" {
		id = "NA"
	}

	props := model.PropertySet{
		model.PropPatchStatus:       "Unknown",
		model.PropCriticality:       "Unknown",
		model.PropReleaseDate:       "NA",
		model.PropEndOfLifeDate:     "NA",
		model.PropUsageRestrictions: "NA",
		model.PropSupplier:          "Unknown",
		model.PropComponentOrigin:   "Unknown",
		model.PropUniqueIdentifier:  id,
		model.PropComments:          "NA",
	}
	applyFixedPolicy(props, ecosystem)
	return props
}
