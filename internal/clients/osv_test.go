package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/util"
)

func osvClientAgainst(base string) *OSVClient {
	c := NewOSVClient(http.DefaultClient)
	c.base = base
	return c
}

func TestFetchVulnerabilitiesQueryShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/query", r.URL.Path)

		var q map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, "4.17.20", q["version"])
		pkg := q["package"].(map[string]any)
		assert.Equal(t, "lodash", pkg["name"])
		assert.Equal(t, "npm", pkg["ecosystem"])

		w.Write([]byte(`{"vulns": []}`))
	}))
	defer srv.Close()

	agg, err := osvClientAgainst(srv.URL).FetchVulnerabilities(context.Background(), util.EcosystemNPM, "lodash", "4.17.20")
	require.NoError(t, err)
	require.NotNil(t, agg)
	assert.False(t, agg.HasVulnerabilities)
	assert.Zero(t, agg.TotalVulns)
}

func TestFetchVulnerabilitiesAggregates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"vulns": [
			{
				"id": "GHSA-35jh-r3h4-6jhm",
				"affected": [{
					"package": {"ecosystem": "npm", "name": "lodash"},
					"ranges": [{
						"type": "SEMVER",
						"events": [{"introduced": "0"}, {"fixed": "4.17.21"}]
					}]
				}],
				"severity": [{"type": "CVSS_V3", "score": "CVSS:3.1/AV:N/AC:H/PR:N/UI:N/S:U/C:N/I:N/A:H"}]
			},
			{
				"id": "GHSA-xxxx-low",
				"database_specific": {"severity": "moderate"}
			}
		]}`))
	}))
	defer srv.Close()

	agg, err := osvClientAgainst(srv.URL).FetchVulnerabilities(context.Background(), util.EcosystemNPM, "lodash", "4.17.20")
	require.NoError(t, err)
	require.NotNil(t, agg)

	assert.True(t, agg.HasVulnerabilities)
	assert.Equal(t, 2, agg.TotalVulns)
	assert.Equal(t, []string{"4.17.21"}, agg.FixedVersions)
	assert.Greater(t, agg.MaxCvssScore, 0.0)
	assert.Equal(t, "MODERATE", agg.CategoricalSeverity)
}

func TestFetchVulnerabilitiesUnknownEcosystem(t *testing.T) {
	agg, err := NewOSVClient(http.DefaultClient).FetchVulnerabilities(context.Background(), util.EcosystemUnknown, "x", "1.0")
	require.NoError(t, err)
	assert.Nil(t, agg)
}
