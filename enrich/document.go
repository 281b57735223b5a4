package enrich

import (
	"context"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"golang.org/x/sync/errgroup"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/cache"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/fingerprint"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
)

// DefaultMaxConcurrent bounds the per-document resolution fan-out, sized for
// the external APIs' rate limits.
const DefaultMaxConcurrent = 8

// DocumentResolver wraps the per-component orchestrator for whole documents.
type DocumentResolver struct {
	orch          *Orchestrator
	cache         *cache.ResultCache
	maxConcurrent int
}

// NewDocumentResolver builds a resolver with a bounded fan-out. A limit of
// zero or less falls back to DefaultMaxConcurrent.
func NewDocumentResolver(orch *Orchestrator, c *cache.ResultCache, maxConcurrent int) *DocumentResolver {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &DocumentResolver{orch: orch, cache: c, maxConcurrent: maxConcurrent}
}

// ResolveDocument enriches every component of the document. A cached
// whole-document result short-circuits all per-component work. Results are
// re-associated by index, so output order always matches input order.
func (r *DocumentResolver) ResolveDocument(ctx context.Context, bom *cdx.BOM) ([]cdx.Component, error) {
	fp := fingerprint.Document(bom)

	var cached []cdx.Component
	if r.cache.Get(fp, &cached) {
		return cached, nil
	}

	source := model.Components(bom)
	comps := make([]cdx.Component, len(source))
	copy(comps, source)

	results := make([]model.PropertySet, len(comps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrent)
	for i := range comps {
		i := i
		g.Go(func() error {
			res, err := r.orch.ResolveComponent(gctx, &comps[i], bom)
			if err != nil {
				return err
			}
			results[i] = res.Properties
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range comps {
		mergeProperties(&comps[i], results[i])
	}

	if err := r.cache.Set(fp, comps); err != nil {
		logger.Sugar().Warnf("Failed to cache document result: %v", err)
	}
	return comps, nil
}

// mergeProperties folds a derived property set into a component's existing
// properties. An existing named property is only overwritten when the
// derived value is present and not the NA sentinel; missing properties are
// appended in annexure column order.
func mergeProperties(comp *cdx.Component, props model.PropertySet) {
	if len(props) == 0 {
		return
	}

	var existing []cdx.Property
	if comp.Properties != nil {
		existing = append(existing, *comp.Properties...)
	}

	index := make(map[string]int, len(existing))
	for i, p := range existing {
		index[p.Name] = i
	}

	for _, name := range model.PropertyNames {
		value, ok := props[name]
		if !ok || value == "" {
			continue
		}
		if i, present := index[name]; present {
			if value != "NA" {
				existing[i].Value = value
			}
			continue
		}
		index[name] = len(existing)
		existing = append(existing, cdx.Property{Name: name, Value: value})
	}

	comp.Properties = &existing
}
