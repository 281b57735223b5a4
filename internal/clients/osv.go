package clients

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/osv-scanner/pkg/models"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/util"
)

const defaultOSVBase = "https://api.osv.dev"

// OSVClient queries the OSV vulnerability database for known advisories
// affecting a specific package version.
type OSVClient struct {
	client *http.Client
	base   string
}

// NewOSVClient builds an OSV client; base defaults to the public API and can
// be overridden through CERTIN_OSV_URL.
func NewOSVClient(client *http.Client) *OSVClient {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &OSVClient{
		client: client,
		base:   util.GetEnvDefault("CERTIN_OSV_URL", defaultOSVBase),
	}
}

type osvQuery struct {
	Version string `json:"version"`
	Package struct {
		Name      string `json:"name"`
		Ecosystem string `json:"ecosystem"`
	} `json:"package"`
}

type osvResponse struct {
	Vulns []models.Vulnerability `json:"vulns"`
}

// FetchVulnerabilities queries OSV and folds the advisories into an
// aggregate. Unknown ecosystems return (nil, nil) as OSV cannot match them.
func (c *OSVClient) FetchVulnerabilities(ctx context.Context, ecosystem, name, version string) (*model.VulnerabilityAggregate, error) {
	if ecosystem == util.EcosystemUnknown || name == "" || version == "" {
		return nil, nil
	}

	query := osvQuery{Version: version}
	query.Package.Name = name
	query.Package.Ecosystem = ecosystem

	var resp osvResponse
	if err := postJSON(ctx, c.client, c.base+"/v1/query", query, &resp); err != nil {
		return nil, err
	}

	return aggregate(resp.Vulns, version), nil
}

// aggregate reduces the advisory list to the fields the derivation rules
// consume: count, applicable fixed versions, the maximum CVSS score across
// all severity vectors, and a categorical severity when one is published.
func aggregate(vulns []models.Vulnerability, version string) *model.VulnerabilityAggregate {
	agg := &model.VulnerabilityAggregate{
		HasVulnerabilities: len(vulns) > 0,
		TotalVulns:         len(vulns),
	}

	seen := make(map[string]bool)
	for _, vuln := range vulns {
		for _, fixed := range util.ExtractApplicableFixedVersion(version, vuln.Affected) {
			if !seen[fixed] {
				seen[fixed] = true
				agg.FixedVersions = append(agg.FixedVersions, fixed)
			}
		}
		for _, sev := range vuln.Severity {
			if score := util.CalculateCVSSScore(string(sev.Score)); score > agg.MaxCvssScore {
				agg.MaxCvssScore = score
			}
		}
		if agg.CategoricalSeverity == "" {
			agg.CategoricalSeverity = categoricalSeverity(vuln)
		}
	}
	return agg
}

// categoricalSeverity pulls a textual severity out of database_specific,
// which several OSV sources publish instead of a CVSS vector.
func categoricalSeverity(vuln models.Vulnerability) string {
	raw, ok := vuln.DatabaseSpecific["severity"]
	if !ok {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(s))
}
