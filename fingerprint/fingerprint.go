// Package fingerprint derives deterministic content-addressed identity keys
// for components, whole documents, and external lookups. Two field-equal
// inputs always produce the same key regardless of field insertion order;
// any relevant field change produces a different key with overwhelming
// probability (64-bit digest space).
package fingerprint

import (
	"encoding/json"
	"fmt"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/dchest/siphash"
)

// Fixed SipHash key: this is content addressing, not authentication, so the
// key only has to be stable across processes.
const (
	hashKey0 = 0x736272d1c1848923
	hashKey1 = 0x9f1a237e6ba00cd5
)

type refShape struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type ratingShape struct {
	Severity string   `json:"severity,omitempty"`
	Score    *float64 `json:"score,omitempty"`
	Vector   string   `json:"vector,omitempty"`
}

type vulnShape struct {
	ID      string        `json:"id"`
	Affects []string      `json:"affects,omitempty"`
	Ratings []ratingShape `json:"ratings,omitempty"`
}

func refShapes(comp *cdx.Component) []refShape {
	if comp.ExternalReferences == nil {
		return nil
	}
	refs := make([]refShape, 0, len(*comp.ExternalReferences))
	for _, ref := range *comp.ExternalReferences {
		refs = append(refs, refShape{Type: string(ref.Type), URL: ref.URL})
	}
	return refs
}

func vulnShapes(vulns []cdx.Vulnerability) []vulnShape {
	shapes := make([]vulnShape, 0, len(vulns))
	for _, vuln := range vulns {
		shape := vulnShape{ID: vuln.ID}
		if vuln.Affects != nil {
			for _, affect := range *vuln.Affects {
				shape.Affects = append(shape.Affects, affect.Ref)
			}
		}
		if vuln.Ratings != nil {
			for _, rating := range *vuln.Ratings {
				shape.Ratings = append(shape.Ratings, ratingShape{
					Severity: string(rating.Severity),
					Score:    rating.Score,
					Vector:   rating.Vector,
				})
			}
		}
		shapes = append(shapes, shape)
	}
	return shapes
}

// digest canonicalizes via encoding/json, which serializes map keys in sorted
// order, so struct-field or map insertion order never leaks into the key.
func digest(prefix string, canonical map[string]any) string {
	data, err := json.Marshal(canonical)
	if err != nil {
		// Only unmarshalable values (channels etc.) can land here; the shapes
		// above are all plain data.
		data = []byte(fmt.Sprintf("%v", canonical))
	}
	sum := siphash.Hash(hashKey0, hashKey1, data)
	return fmt.Sprintf("%s:%016x", prefix, sum)
}

// Component derives the whole-result fingerprint for one component, folding
// in the document vulnerability records that affect it.
func Component(comp *cdx.Component, affecting []cdx.Vulnerability) string {
	return digest("component", map[string]any{
		"name":               comp.Name,
		"version":            comp.Version,
		"purl":               comp.PackageURL,
		"group":              comp.Group,
		"externalReferences": refShapes(comp),
		"vulnerabilities":    vulnShapes(affecting),
	})
}

// Document derives the whole-document fingerprint: identity fields of every
// component, the full vulnerability list, and the document metadata.
func Document(bom *cdx.BOM) string {
	var comps []map[string]any
	if bom.Components != nil {
		for i := range *bom.Components {
			comp := &(*bom.Components)[i]
			comps = append(comps, map[string]any{
				"name":               comp.Name,
				"version":            comp.Version,
				"purl":               comp.PackageURL,
				"group":              comp.Group,
				"externalReferences": refShapes(comp),
				"bomRef":             comp.BOMRef,
			})
		}
	}

	var vulns []cdx.Vulnerability
	if bom.Vulnerabilities != nil {
		vulns = *bom.Vulnerabilities
	}

	meta := map[string]any{}
	if bom.Metadata != nil {
		meta["timestamp"] = bom.Metadata.Timestamp
	}
	meta["version"] = bom.Version

	return digest("file", map[string]any{
		"components":      comps,
		"vulnerabilities": vulnShapes(vulns),
		"metadata":        meta,
	})
}

// Lookup derives the fingerprint of one external lookup (source name plus the
// request parameters), used to cache per-source results independently of the
// merged component result.
func Lookup(source string, fields map[string]string) string {
	canonical := make(map[string]any, len(fields))
	for k, v := range fields {
		canonical[k] = v
	}
	return digest(source, canonical)
}
