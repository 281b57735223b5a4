package clients

import (
	"os"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"gopkg.in/yaml.v2"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
)

// defaultEOLTable covers widely deployed packages whose support windows are
// published by their maintainers. Entries are keyed "name@major" for
// per-release dates, falling back to a bare "name" key.
var defaultEOLTable = map[string]string{
	"angular@12":         "2022-11-12",
	"angular@13":         "2023-05-04",
	"angular@14":         "2023-11-18",
	"bootstrap@3":        "2019-07-24",
	"bootstrap@4":        "2023-01-01",
	"django@3":           "2024-04-01",
	"jquery@1":           "2016-01-08",
	"jquery@2":           "2016-01-08",
	"log4j@1":            "2015-08-05",
	"python@2":           "2020-01-01",
	"spring-framework@4": "2020-12-31",
	"vue@2":              "2023-12-31",
}

// LifecycleTable answers end-of-life lookups from an in-memory table. It is
// a purely local source so lookups are synchronous and never fail.
type LifecycleTable struct {
	entries map[string]string
}

// NewLifecycleTable loads the built-in table, merged with an optional YAML
// override file of "key: date" pairs. A missing or unreadable override file
// leaves the defaults in place.
func NewLifecycleTable(overridePath string) *LifecycleTable {
	entries := make(map[string]string, len(defaultEOLTable))
	for k, v := range defaultEOLTable {
		entries[strings.ToLower(k)] = v
	}

	if overridePath != "" {
		if data, err := os.ReadFile(overridePath); err == nil {
			var overrides map[string]string
			if err := yaml.Unmarshal(data, &overrides); err != nil {
				logger.Sugar().Warnf("Ignoring malformed EOL override file %s: %v", overridePath, err)
			} else {
				for k, v := range overrides {
					entries[strings.ToLower(k)] = v
				}
			}
		}
	}
	return &LifecycleTable{entries: entries}
}

// LookupEOL returns the end-of-life date for the component, or "" when the
// table has no entry. The major version comes from the component version.
func (t *LifecycleTable) LookupEOL(comp *cdx.Component, _ *model.PackageMetadata) string {
	if comp == nil || comp.Name == "" {
		return ""
	}
	name := strings.ToLower(comp.Name)

	if major := majorOf(comp.Version); major != "" {
		if date, ok := t.entries[name+"@"+major]; ok {
			return date
		}
	}
	return t.entries[name]
}

func majorOf(version string) string {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	if version == "" {
		return ""
	}
	if i := strings.IndexAny(version, ".-+"); i > 0 {
		version = version[:i]
	}
	for _, r := range version {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return version
}
