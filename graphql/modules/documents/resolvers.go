// Package documents implements the resolvers for enriched document data.
package documents

import (
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
)

// documentView flattens a stored document into the GraphQL shape.
func documentView(doc *model.Document) map[string]interface{} {
	comps := model.Components(doc.BOM)
	views := make([]map[string]interface{}, 0, len(comps))
	for i := range comps {
		views = append(views, componentView(&comps[i]))
	}
	return map[string]interface{}{
		"id":         doc.ID,
		"fileName":   doc.FileName,
		"uploadedAt": doc.UploadedAt.UTC().Format(time.RFC3339),
		"components": views,
	}
}

func componentView(comp *cdx.Component) map[string]interface{} {
	props := []map[string]interface{}{}
	if comp.Properties != nil {
		for _, p := range *comp.Properties {
			props = append(props, map[string]interface{}{
				"name":  p.Name,
				"value": p.Value,
			})
		}
	}
	return map[string]interface{}{
		"name":       comp.Name,
		"version":    comp.Version,
		"purl":       comp.PackageURL,
		"group":      comp.Group,
		"ecosystem":  model.EcosystemOf(comp),
		"properties": props,
	}
}
