// Package documents defines the GraphQL types for enriched SBOM documents.
package documents

import (
	"github.com/graphql-go/graphql"
)

// PropertyType represents a single compliance property on a component.
var PropertyType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Property",
	Fields: graphql.Fields{
		"name":  &graphql.Field{Type: graphql.String},
		"value": &graphql.Field{Type: graphql.String},
	},
})

// ComponentType represents one SBOM component with its enrichment.
var ComponentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Component",
	Fields: graphql.Fields{
		"name":       &graphql.Field{Type: graphql.String},
		"version":    &graphql.Field{Type: graphql.String},
		"purl":       &graphql.Field{Type: graphql.String},
		"group":      &graphql.Field{Type: graphql.String},
		"ecosystem":  &graphql.Field{Type: graphql.String},
		"properties": &graphql.Field{Type: graphql.NewList(PropertyType)},
	},
})

// DocumentType represents an uploaded SBOM document.
var DocumentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Document",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.String},
		"fileName":   &graphql.Field{Type: graphql.String},
		"uploadedAt": &graphql.Field{Type: graphql.String},
		"components": &graphql.Field{Type: graphql.NewList(ComponentType)},
	},
})

// CacheStatsType reports the state of the enrichment result cache.
var CacheStatsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CacheStats",
	Fields: graphql.Fields{
		"entryCount":            &graphql.Field{Type: graphql.Int},
		"sessionDurationMillis": &graphql.Field{Type: graphql.Int},
		"keys":                  &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})
