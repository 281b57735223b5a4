// package main provides the entry point for the CERT-In-SBOM-Mapper
// microservice, wiring the result cache, the enrichment pipeline and the
// REST plus GraphQL API surface.
package main

import (
	"log"
	"path/filepath"
	"time"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/cache"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/enrich"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/internal/api"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/internal/clients"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/internal/store"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/restapi"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/util"
)

func main() {
	// Result cache with a file snapshot so enrichment survives restarts
	cachePath := util.GetEnvDefault("CERTIN_CACHE_FILE",
		filepath.Join(".", "data", "result-cache.json"))
	results := cache.New(cache.NewFileStore(cachePath))

	// External collaborators share one HTTP client
	timeout := time.Duration(util.GetEnvInt("CERTIN_REGISTRY_TIMEOUT", 0)) * time.Second
	httpClient := clients.NewHTTPClient(timeout)
	orch := enrich.NewOrchestrator(
		results,
		clients.NewRegistry(httpClient),
		clients.NewOSVClient(httpClient),
		clients.NewGitHubClient(httpClient),
		clients.NewLifecycleTable(util.GetEnvDefault("CERTIN_EOL_FILE", "")),
	)

	maxConcurrent := util.GetEnvInt("CERTIN_MAX_CONCURRENT", enrich.DefaultMaxConcurrent)
	resolver := enrich.NewDocumentResolver(orch, results, maxConcurrent)

	app := api.NewFiberApp(restapi.Services{
		Docs:     store.NewDocumentStore(),
		Resolver: resolver,
		Cache:    results,
	})

	port := util.GetEnvDefault("CERTIN_HTTP_PORT", "3000")
	log.Printf("Starting server on port %s", port)
	log.Printf("GraphQL endpoint available at /api/v1/graphql")
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
