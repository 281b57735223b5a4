// Package graphql assembles the root schema from the module query fields.
package graphql

import (
	gql "github.com/graphql-go/graphql"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/cache"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/graphql/modules/documents"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/internal/store"
)

var (
	docStore    *store.DocumentStore
	resultCache *cache.ResultCache
)

// InitStores wires the shared stores into the schema resolvers. Call before
// CreateSchema.
func InitStores(docs *store.DocumentStore, results *cache.ResultCache) {
	docStore = docs
	resultCache = results
}

// CreateSchema builds the root query schema.
func CreateSchema() (gql.Schema, error) {
	fields := gql.Fields{}
	for name, field := range documents.GetQueryFields(docStore, resultCache) {
		fields[name] = field
	}

	rootQuery := gql.NewObject(gql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})

	return gql.NewSchema(gql.SchemaConfig{Query: rootQuery})
}
