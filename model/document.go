// Package model defines the document wrapper and the external-record value
// types flowing through the enrichment pipeline.
package model

import (
	"io"
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/util"
)

// Document wraps an uploaded CycloneDX BOM together with its bookkeeping.
type Document struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
	BOM        *cdx.BOM  `json:"bom"`
}

// DecodeBOM parses a CycloneDX JSON document.
func DecodeBOM(r io.Reader) (*cdx.BOM, error) {
	var bom cdx.BOM
	if err := cdx.NewBOMDecoder(r, cdx.BOMFileFormatJSON).Decode(&bom); err != nil {
		return nil, err
	}
	return &bom, nil
}

// EncodeBOM writes a BOM as pretty-printed CycloneDX JSON.
func EncodeBOM(w io.Writer, bom *cdx.BOM) error {
	enc := cdx.NewBOMEncoder(w, cdx.BOMFileFormatJSON)
	enc.SetPretty(true)
	return enc.Encode(bom)
}

// Components returns the component slice of a BOM, never nil.
func Components(bom *cdx.BOM) []cdx.Component {
	if bom == nil || bom.Components == nil {
		return nil
	}
	return *bom.Components
}

// Vulnerabilities returns the document-scoped vulnerability records, never nil.
func Vulnerabilities(bom *cdx.BOM) []cdx.Vulnerability {
	if bom == nil || bom.Vulnerabilities == nil {
		return nil
	}
	return *bom.Vulnerabilities
}

// EcosystemOf determines a component's package ecosystem: the purl type when
// a purl is present, otherwise name/group heuristics. Unrecognized components
// map to the unknown ecosystem and skip registry and vulnerability lookups.
func EcosystemOf(comp *cdx.Component) string {
	if comp.PackageURL != "" {
		if purl, err := util.ParsePURL(comp.PackageURL); err == nil {
			if eco := util.PurlTypeToEcosystem(purl.Type); eco != util.EcosystemUnknown {
				return eco
			}
		}
	}
	if strings.HasPrefix(comp.Name, "@") {
		return util.EcosystemNPM
	}
	if comp.Group != "" && strings.Contains(comp.Group, ".") {
		return util.EcosystemMaven
	}
	return util.EcosystemUnknown
}

// RepositoryURLOf returns the first external reference typed as a VCS or
// repository link, or "" when the component carries none.
func RepositoryURLOf(comp *cdx.Component) string {
	if comp.ExternalReferences == nil {
		return ""
	}
	for _, ref := range *comp.ExternalReferences {
		if ref.Type == cdx.ERTypeVCS || strings.EqualFold(string(ref.Type), "repository") {
			return ref.URL
		}
	}
	return ""
}

// AffectingVulnerabilities selects the document vulnerability records whose
// affects list references the component's bom-ref.
func AffectingVulnerabilities(bom *cdx.BOM, comp *cdx.Component) []cdx.Vulnerability {
	if comp.BOMRef == "" {
		return nil
	}
	var affecting []cdx.Vulnerability
	for _, vuln := range Vulnerabilities(bom) {
		if vuln.Affects == nil {
			continue
		}
		for _, affect := range *vuln.Affects {
			if affect.Ref == comp.BOMRef {
				affecting = append(affecting, vuln)
				break
			}
		}
	}
	return affecting
}

// RatingSeverities flattens the severity strings of a vulnerability's ratings.
func RatingSeverities(vulns []cdx.Vulnerability) []string {
	var severities []string
	for _, vuln := range vulns {
		if vuln.Ratings == nil {
			continue
		}
		for _, rating := range *vuln.Ratings {
			if rating.Severity != "" {
				severities = append(severities, string(rating.Severity))
			}
		}
	}
	return severities
}
