package restapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/cache"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/enrich"
	gqlschema "github.com/surajkum4r/CERT-In-SBOM-Mapper/graphql"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/internal/store"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
)

type stubRegistry struct{}

func (stubRegistry) FetchPackage(context.Context, string, string, string) (*model.PackageMetadata, error) {
	return &model.PackageMetadata{LatestVersion: "4.17.21", License: "MIT"}, nil
}

type stubVulns struct{}

func (stubVulns) FetchVulnerabilities(context.Context, string, string, string) (*model.VulnerabilityAggregate, error) {
	return &model.VulnerabilityAggregate{
		HasVulnerabilities: true,
		TotalVulns:         1,
		FixedVersions:      []string{"4.17.21"},
	}, nil
}

type stubRepos struct{}

func (stubRepos) FetchRepository(context.Context, string) (*model.RepositoryMetadata, error) {
	return nil, nil
}

type stubLifecycle struct{}

func (stubLifecycle) LookupEOL(*cdx.Component, *model.PackageMetadata) string { return "" }

const uploadBOM = `{
	"bomFormat": "CycloneDX",
	"specVersion": "1.5",
	"version": 1,
	"components": [
		{
			"bom-ref": "pkg:npm/lodash@4.17.20",
			"type": "library",
			"name": "lodash",
			"version": "4.17.20",
			"purl": "pkg:npm/lodash@4.17.20"
		}
	]
}`

func newTestApp(t *testing.T) (*fiber.App, Services) {
	t.Helper()

	results := cache.New(cache.NewFileStore(filepath.Join(t.TempDir(), "cache.json")))
	orch := enrich.NewOrchestrator(results, stubRegistry{}, stubVulns{}, stubRepos{}, stubLifecycle{})
	svc := Services{
		Docs:     store.NewDocumentStore(),
		Resolver: enrich.NewDocumentResolver(orch, results, 4),
		Cache:    results,
	}

	gqlschema.InitStores(svc.Docs, svc.Cache)
	schema, err := gqlschema.CreateSchema()
	require.NoError(t, err)

	app := fiber.New()
	SetupRoutes(app, svc, schema)
	return app, svc
}

func uploadDocument(t *testing.T, app *fiber.App) string {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/documents/", strings.NewReader(uploadBOM))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.ID)
	return body.ID
}

func TestUploadAndGetDocument(t *testing.T) {
	app, _ := newTestApp(t)
	id := uploadDocument(t, app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/documents/"+id, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var doc model.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	require.NotNil(t, doc.BOM)

	comps := model.Components(doc.BOM)
	require.Len(t, comps, 1)
	require.NotNil(t, comps[0].Properties)

	var patchStatus string
	for _, p := range *comps[0].Properties {
		if p.Name == model.PropPatchStatus {
			patchStatus = p.Value
		}
	}
	assert.Equal(t, "Update available (>= 4.17.21)", patchStatus)
}

func TestUploadRejectsGarbage(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/documents/", strings.NewReader("not a bom"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	app, _ := newTestApp(t)
	uploadDocument(t, app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/documents/", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Documents []struct {
			ID         string `json:"id"`
			Components int    `json:"components"`
		} `json:"documents"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Documents, 1)
	assert.Equal(t, 1, body.Documents[0].Components)
}

func TestExportCSV(t *testing.T) {
	app, _ := newTestApp(t)
	id := uploadDocument(t, app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/documents/"+id+"/export?format=csv", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "component,version")
	assert.Contains(t, text, "lodash,4.17.20")
	assert.Contains(t, text, model.PropPatchStatus)
}

func TestExportUnknownFormat(t *testing.T) {
	app, _ := newTestApp(t)
	id := uploadDocument(t, app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/documents/"+id+"/export?format=xml", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCacheStatsAndClear(t *testing.T) {
	app, svc := newTestApp(t)
	uploadDocument(t, app)
	require.Positive(t, svc.Cache.Stats().EntryCount)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/cache/stats", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stats cache.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Positive(t, stats.EntryCount)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/v1/cache", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, svc.Cache.Stats().EntryCount)
}

func TestGraphQLDocumentsQuery(t *testing.T) {
	app, _ := newTestApp(t)
	uploadDocument(t, app)

	query := `{"query": "{ documents { id fileName components { name properties { name value } } } cacheStats { entryCount } }"}`
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/graphql", strings.NewReader(query))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Documents []struct {
				ID         string `json:"id"`
				Components []struct {
					Name string `json:"name"`
				} `json:"components"`
			} `json:"documents"`
			CacheStats struct {
				EntryCount int `json:"entryCount"`
			} `json:"cacheStats"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Errors)
	require.Len(t, body.Data.Documents, 1)
	assert.Equal(t, "lodash", body.Data.Documents[0].Components[0].Name)
	assert.Positive(t, body.Data.CacheStats.EntryCount)
}
