package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/util"
)

func newRegistryAgainst(npmBase, pypiBase, mavenBase string) *Registry {
	r := NewRegistry(http.DefaultClient)
	if npmBase != "" {
		r.npmBase = npmBase
	}
	if pypiBase != "" {
		r.pypiBase = pypiBase
	}
	if mavenBase != "" {
		r.mavenBase = mavenBase
	}
	return r
}

func TestFetchPackageNPM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lodash", r.URL.Path)
		w.Write([]byte(`{
			"dist-tags": {"latest": "4.17.21"},
			"time": {"4.17.21": "2021-02-20T15:42:16.891Z"},
			"license": "MIT",
			"description": "Lodash modular utilities.",
			"author": {"name": "John-David Dalton"}
		}`))
	}))
	defer srv.Close()

	meta, err := newRegistryAgainst(srv.URL, "", "").FetchPackage(context.Background(), util.EcosystemNPM, "lodash", "")
	require.NoError(t, err)
	require.NotNil(t, meta)

	assert.Equal(t, "4.17.21", meta.LatestVersion)
	assert.Equal(t, "2021-02-20", meta.ReleaseDate)
	assert.Equal(t, "MIT", meta.License)
	assert.Equal(t, "John-David Dalton", meta.Author)
	assert.Equal(t, "Lodash modular utilities.", meta.Description)
}

func TestFetchPackageNPMScopedNameAndLegacyLicense(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The scoped slash must stay encoded in the request path.
		assert.Contains(t, r.URL.RawPath, "%2F")
		w.Write([]byte(`{
			"dist-tags": {"latest": "1.0.0"},
			"license": {"type": "ISC"},
			"author": "someone"
		}`))
	}))
	defer srv.Close()

	meta, err := newRegistryAgainst(srv.URL, "", "").FetchPackage(context.Background(), util.EcosystemNPM, "@types/node", "")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "ISC", meta.License)
	assert.Equal(t, "someone", meta.Author)
}

func TestFetchPackagePyPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pypi/requests/json", r.URL.Path)
		w.Write([]byte(`{
			"info": {"version": "2.31.0", "license": "Apache 2.0", "author": "Kenneth Reitz", "summary": "HTTP for Humans."},
			"releases": {"2.31.0": [{"upload_time_iso_8601": "2023-05-22T15:12:42.313790Z"}]}
		}`))
	}))
	defer srv.Close()

	meta, err := newRegistryAgainst("", srv.URL, "").FetchPackage(context.Background(), util.EcosystemPyPI, "requests", "")
	require.NoError(t, err)
	require.NotNil(t, meta)

	assert.Equal(t, "2.31.0", meta.LatestVersion)
	assert.Equal(t, "2023-05-22", meta.ReleaseDate)
	assert.Equal(t, "Apache 2.0", meta.License)
}

func TestFetchPackageMaven(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/solrsearch/select", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("q"), "log4j-core")
		w.Write([]byte(`{"response": {"docs": [{"latestVersion": "2.23.1", "timestamp": 1709876543000}]}}`))
	}))
	defer srv.Close()

	meta, err := newRegistryAgainst("", "", srv.URL).FetchPackage(context.Background(), util.EcosystemMaven, "log4j-core", "org.apache.logging.log4j")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "2.23.1", meta.LatestVersion)
	assert.NotEmpty(t, meta.ReleaseDate)
}

func TestFetchPackageMavenNoHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": {"docs": []}}`))
	}))
	defer srv.Close()

	meta, err := newRegistryAgainst("", "", srv.URL).FetchPackage(context.Background(), util.EcosystemMaven, "nope", "g")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestFetchPackageUnknownEcosystem(t *testing.T) {
	meta, err := NewRegistry(http.DefaultClient).FetchPackage(context.Background(), util.EcosystemUnknown, "x", "")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestFetchPackageNotFoundIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newRegistryAgainst(srv.URL, "", "").FetchPackage(context.Background(), util.EcosystemNPM, "no-such-pkg", "")
	require.Error(t, err)
	assert.Equal(t, util.ErrorAPI, util.Classify(err))
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2021-02-20", normalizeDate("2021-02-20T15:42:16.891Z"))
	assert.Equal(t, "2021-02-20", normalizeDate("2021-02-20"))
	assert.Empty(t, normalizeDate(""))
}
