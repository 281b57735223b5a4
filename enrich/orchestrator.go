package enrich

import (
	"context"
	"sync"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"golang.org/x/sync/singleflight"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/cache"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/fingerprint"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/util"
)

var logger = util.InitLogger() // setup the logger

// Orchestrator resolves enrichment for single components against the result
// cache and the external sources.
type Orchestrator struct {
	cache     *cache.ResultCache
	registry  PackageRegistry
	vulns     VulnerabilitySource
	repos     RepositorySource
	lifecycle LifecycleSource

	// flight coalesces concurrent resolutions of the same component
	// fingerprint so the external work happens once.
	flight singleflight.Group
}

// NewOrchestrator wires the orchestrator to its cache and sources.
func NewOrchestrator(c *cache.ResultCache, registry PackageRegistry, vulns VulnerabilitySource, repos RepositorySource, lifecycle LifecycleSource) *Orchestrator {
	return &Orchestrator{
		cache:     c,
		registry:  registry,
		vulns:     vulns,
		repos:     repos,
		lifecycle: lifecycle,
	}
}

// lookupKeys holds the per-source lookup fingerprints that apply to one
// component. An empty key means the lookup is not applicable.
type lookupKeys struct {
	pkg  string
	vuln string
	repo string
}

func lookupKeysFor(comp *cdx.Component, ecosystem, repoURL string) lookupKeys {
	var keys lookupKeys
	if ecosystem != util.EcosystemUnknown {
		keys.pkg = fingerprint.Lookup("registry", map[string]string{
			"ecosystem": ecosystem,
			"name":      comp.Name,
			"group":     comp.Group,
		})
		keys.vuln = fingerprint.Lookup("osv", map[string]string{
			"ecosystem": ecosystem,
			"name":      comp.Name,
			"version":   comp.Version,
		})
	}
	if repoURL != "" {
		keys.repo = fingerprint.Lookup("repo", map[string]string{"url": repoURL})
	}
	return keys
}

// ResolveComponent resolves one component to its CERT-In property set.
//
// Fast path: a cached whole-result for the component fingerprint is returned
// with zero external calls. Otherwise concurrent resolutions of the same
// fingerprint are coalesced and resolveUncached runs once.
func (o *Orchestrator) ResolveComponent(ctx context.Context, comp *cdx.Component, bom *cdx.BOM) (Result, error) {
	affecting := model.AffectingVulnerabilities(bom, comp)
	fp := fingerprint.Component(comp, affecting)

	var props model.PropertySet
	if o.cache.Get(fp, &props) {
		return Result{Properties: props, State: StateResolved}, nil
	}

	v, err, _ := o.flight.Do(fp, func() (any, error) {
		return o.resolveUncached(ctx, comp, affecting, fp), nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

func (o *Orchestrator) resolveUncached(ctx context.Context, comp *cdx.Component, affecting []cdx.Vulnerability, fp string) Result {
	ecosystem := model.EcosystemOf(comp)
	repoURL := model.RepositoryURLOf(comp)
	keys := lookupKeysFor(comp, ecosystem, repoURL)

	d := sourceData{comp: comp, ecosystem: ecosystem, affecting: affecting}

	if o.dependenciesResolved(keys, &d) {
		// Every applicable lookup is cache-resident: combine synchronously,
		// no concurrency and no external calls.
		d.eol = o.lifecycle.LookupEOL(comp, d.pkg)
		return o.finish(fp, d)
	}

	o.fetchAll(ctx, comp, ecosystem, repoURL, keys, &d)
	d.eol = o.lifecycle.LookupEOL(comp, d.pkg)
	return o.finish(fp, d)
}

// dependenciesResolved reads every applicable lookup result from the cache,
// reporting false as soon as one is missing.
func (o *Orchestrator) dependenciesResolved(keys lookupKeys, d *sourceData) bool {
	if keys.pkg != "" {
		var pkg model.PackageMetadata
		if !o.cache.Get(keys.pkg, &pkg) {
			return false
		}
		d.pkg = &pkg
	}
	if keys.vuln != "" {
		var vuln model.VulnerabilityAggregate
		if !o.cache.Get(keys.vuln, &vuln) {
			return false
		}
		d.vuln = &vuln
	}
	if keys.repo != "" {
		var repo model.RepositoryMetadata
		if !o.cache.Get(keys.repo, &repo) {
			return false
		}
		d.repo = &repo
	}
	return true
}

// fetchAll issues the external calls concurrently and joins them all. A
// single source's failure degrades that source to absent and never cancels
// its siblings. Successful per-source results are memoized under their own
// lookup fingerprints so later components (or runs) can resolve without
// concurrency.
func (o *Orchestrator) fetchAll(ctx context.Context, comp *cdx.Component, ecosystem, repoURL string, keys lookupKeys, d *sourceData) {
	var wg sync.WaitGroup

	if keys.pkg != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pkg, err := o.registry.FetchPackage(ctx, ecosystem, comp.Name, comp.Group)
			if err != nil {
				logger.Sugar().Debugf("Package lookup failed for %s: %v", comp.Name, err)
				return
			}
			if pkg != nil {
				d.pkg = pkg
				o.memoize(keys.pkg, pkg)
			}
		}()
	}

	if keys.vuln != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vuln, err := o.vulns.FetchVulnerabilities(ctx, ecosystem, comp.Name, comp.Version)
			if err != nil {
				logger.Sugar().Debugf("Vulnerability lookup failed for %s: %v", comp.Name, err)
				return
			}
			if vuln != nil {
				d.vuln = vuln
				o.memoize(keys.vuln, vuln)
			}
		}()
	}

	if keys.repo != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo, err := o.repos.FetchRepository(ctx, repoURL)
			if err != nil {
				logger.Sugar().Debugf("Repository lookup failed for %s: %v", repoURL, err)
				return
			}
			if repo != nil {
				d.repo = repo
				o.memoize(keys.repo, repo)
			}
		}()
	}

	wg.Wait()
}

func (o *Orchestrator) memoize(key string, value any) {
	if err := o.cache.Set(key, value); err != nil {
		logger.Sugar().Warnf("Failed to cache lookup result %q: %v", key, err)
	}
}

// finish derives the property set, falling back to the degraded set when the
// merge itself fails, and memoizes the outcome either way under the
// component fingerprint.
func (o *Orchestrator) finish(fp string, d sourceData) Result {
	props, state := deriveSafe(d)
	o.memoize(fp, props)
	return Result{Properties: props, State: state}
}

func deriveSafe(d sourceData) (props model.PropertySet, state State) {
	state = StateResolved
	defer func() {
		if r := recover(); r != nil {
			logger.Sugar().Warnf("Merge failed for component %q: %v", d.comp.Name, r)
			props = degradedProperties(d.comp, d.ecosystem)
			state = StateResolvedWithErrors
		}
	}()
	props = derive(d)
	return props, state
}
