// Package documents defines the GraphQL queries for enriched SBOM documents.
package documents

import (
	"github.com/graphql-go/graphql"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/cache"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/internal/store"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
)

// GetQueryFields returns the document queries to be mounted in the root schema.
func GetQueryFields(docs *store.DocumentStore, results *cache.ResultCache) graphql.Fields {
	return graphql.Fields{
		"documents": &graphql.Field{
			Type: graphql.NewList(DocumentType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				all := docs.List()
				views := make([]map[string]interface{}, 0, len(all))
				for _, doc := range all {
					views = append(views, documentView(doc))
				}
				return views, nil
			},
		},
		"document": &graphql.Field{
			Type: DocumentType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				id := p.Args["id"].(string)
				doc, err := docs.Get(id)
				if err != nil {
					return nil, nil
				}
				return documentView(doc), nil
			},
		},
		"componentProperties": &graphql.Field{
			Type: graphql.NewList(PropertyType),
			Args: graphql.FieldConfigArgument{
				"id":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"ref": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				doc, err := docs.Get(p.Args["id"].(string))
				if err != nil {
					return nil, nil
				}
				ref := p.Args["ref"].(string)
				for _, comp := range model.Components(doc.BOM) {
					if comp.BOMRef != ref && comp.PackageURL != ref {
						continue
					}
					view := componentView(&comp)
					return view["properties"], nil
				}
				return nil, nil
			},
		},
		"cacheStats": &graphql.Field{
			Type: CacheStatsType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				stats := results.Stats()
				return map[string]interface{}{
					"entryCount":            stats.EntryCount,
					"sessionDurationMillis": int(stats.SessionDurationMillis),
					"keys":                  stats.Keys,
				}, nil
			},
		},
	}
}
