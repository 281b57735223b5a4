// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/cache"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/enrich"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/internal/store"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/restapi/modules/cachectl"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/restapi/modules/documents"
)

// Services bundles the collaborators the handlers need.
type Services struct {
	Docs     *store.DocumentStore
	Resolver *enrich.DocumentResolver
	Cache    *cache.ResultCache
}

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, svc Services, schema graphql.Schema) {
	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL Route - mounted within the api group to inherit path prefixes
	api.Post("/graphql", GraphQLHandler(schema))

	// Document Routes
	docGroup := api.Group("/documents")
	docGroup.Post("/", documents.Upload(svc.Docs, svc.Resolver))
	docGroup.Get("/", documents.List(svc.Docs))
	docGroup.Get("/:id", documents.Get(svc.Docs))
	docGroup.Get("/:id/export", documents.Export(svc.Docs))

	// Cache Management Routes
	api.Get("/cache/stats", cachectl.Stats(svc.Cache))
	api.Delete("/cache", cachectl.Clear(svc.Cache))

	log.Println("API routes initialized successfully")
}
