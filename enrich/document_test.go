package enrich

import (
	"context"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
)

func propValue(comp *cdx.Component, name string) string {
	if comp.Properties == nil {
		return ""
	}
	for _, p := range *comp.Properties {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

func TestResolveDocumentEnrichesEveryComponent(t *testing.T) {
	registry := &fakeRegistry{pkg: &model.PackageMetadata{LatestVersion: "9.9.9"}}
	vulns := &fakeVulnSource{agg: &model.VulnerabilityAggregate{}}
	c := newTestCache(t)
	orch := NewOrchestrator(c, registry, vulns, &fakeRepoSource{}, &fakeLifecycle{})
	resolver := NewDocumentResolver(orch, c, 4)

	bom := bomWith(
		cdx.Component{BOMRef: "a", Name: "lodash", Version: "4.17.20", PackageURL: "pkg:npm/lodash@4.17.20"},
		cdx.Component{BOMRef: "b", Name: "express", Version: "4.18.0", PackageURL: "pkg:npm/express@4.18.0"},
	)

	comps, err := resolver.ResolveDocument(context.Background(), bom)
	require.NoError(t, err)
	require.Len(t, comps, 2)

	// Output order matches input order regardless of resolution order.
	assert.Equal(t, "lodash", comps[0].Name)
	assert.Equal(t, "express", comps[1].Name)
	for i := range comps {
		for _, name := range model.PropertyNames {
			assert.NotEmpty(t, propValue(&comps[i], name), "component %d missing %s", i, name)
		}
	}
}

func TestResolveDocumentCachedShortCircuit(t *testing.T) {
	c := newTestCache(t)

	registry := &fakeRegistry{pkg: &model.PackageMetadata{LatestVersion: "4.17.21"}}
	vulns := &fakeVulnSource{agg: &model.VulnerabilityAggregate{}}
	orch := NewOrchestrator(c, registry, vulns, &fakeRepoSource{}, &fakeLifecycle{})
	resolver := NewDocumentResolver(orch, c, 4)

	comp := lodashComponent()
	first, err := resolver.ResolveDocument(context.Background(), bomWith(comp))
	require.NoError(t, err)
	require.Equal(t, 1, registry.callCount())

	// A field-equal document resolved through fresh collaborators must be
	// served wholly from the cache.
	registry2 := &fakeRegistry{}
	vulns2 := &fakeVulnSource{}
	orch2 := NewOrchestrator(c, registry2, vulns2, &fakeRepoSource{}, &fakeLifecycle{})
	resolver2 := NewDocumentResolver(orch2, c, 4)

	second, err := resolver2.ResolveDocument(context.Background(), bomWith(lodashComponent()))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Zero(t, registry2.callCount())
	assert.Zero(t, vulns2.callCount())
}

func TestMergePropertiesPreservesExisting(t *testing.T) {
	existing := []cdx.Property{
		{Name: model.PropReleaseDate, Value: "2020-01-01"},
		{Name: "custom:tag", Value: "keep-me"},
	}
	comp := cdx.Component{Name: "x", Properties: &existing}

	mergeProperties(&comp, model.PropertySet{
		model.PropReleaseDate: "NA",
		model.PropPatchStatus: "Up to date",
	})

	// The NA sentinel never clobbers a real value already present.
	assert.Equal(t, "2020-01-01", propValue(&comp, model.PropReleaseDate))
	assert.Equal(t, "keep-me", propValue(&comp, "custom:tag"))
	assert.Equal(t, "Up to date", propValue(&comp, model.PropPatchStatus))
}

func TestMergePropertiesOverwritesWithRealValue(t *testing.T) {
	existing := []cdx.Property{
		{Name: model.PropPatchStatus, Value: "Unknown"},
	}
	comp := cdx.Component{Name: "x", Properties: &existing}

	mergeProperties(&comp, model.PropertySet{
		model.PropPatchStatus: "Update available (>= 2.0.0)",
	})

	assert.Equal(t, "Update available (>= 2.0.0)", propValue(&comp, model.PropPatchStatus))
}

func TestMergePropertiesAppendsInAnnexureOrder(t *testing.T) {
	comp := cdx.Component{Name: "x"}
	full := model.PropertySet{}
	for _, name := range model.PropertyNames {
		full[name] = "v"
	}
	mergeProperties(&comp, full)

	require.NotNil(t, comp.Properties)
	require.Len(t, *comp.Properties, len(model.PropertyNames))
	for i, p := range *comp.Properties {
		assert.Equal(t, model.PropertyNames[i], p.Name)
	}
}
