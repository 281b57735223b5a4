// Package enrich implements the fetch/merge orchestration pipeline: deciding
// per component and per document whether a cached enrichment result can be
// reused, and otherwise querying the external data sources, merging their
// partial results deterministically, and memoizing the outcome.
package enrich

import (
	"context"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
)

// PackageRegistry looks up package metadata for an ecosystem/name pair.
// A failed or empty lookup returns (nil, err) / (nil, nil); the orchestrator
// degrades either to an absent source.
type PackageRegistry interface {
	FetchPackage(ctx context.Context, ecosystem, name, group string) (*model.PackageMetadata, error)
}

// VulnerabilitySource aggregates known vulnerabilities for a package version.
type VulnerabilitySource interface {
	FetchVulnerabilities(ctx context.Context, ecosystem, name, version string) (*model.VulnerabilityAggregate, error)
}

// RepositorySource looks up source-repository metadata. An empty URL yields
// (nil, nil).
type RepositorySource interface {
	FetchRepository(ctx context.Context, repoURL string) (*model.RepositoryMetadata, error)
}

// LifecycleSource resolves end-of-life dates. The lookup is synchronous and
// local; it never fails. An empty string means no lifecycle data.
type LifecycleSource interface {
	LookupEOL(comp *cdx.Component, pkg *model.PackageMetadata) string
}

// State is the terminal state of a component resolution.
type State string

// Terminal resolution states.
const (
	StateResolved           State = "Resolved"
	StateResolvedWithErrors State = "ResolvedWithErrors"
)

// Result is the outcome of resolving one component.
type Result struct {
	Properties model.PropertySet
	State      State
}
