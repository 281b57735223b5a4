package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/util"
)

const (
	defaultNPMRegistry  = "https://registry.npmjs.org"
	defaultPyPIRegistry = "https://pypi.org"
	defaultMavenSearch  = "https://search.maven.org"
)

// Registry resolves package metadata from the npm, PyPI and Maven public
// registries based on the component ecosystem.
type Registry struct {
	client    *http.Client
	npmBase   string
	pypiBase  string
	mavenBase string
}

// NewRegistry builds a Registry against the public registry endpoints.
// Base URLs are overridable for tests.
func NewRegistry(client *http.Client) *Registry {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &Registry{
		client:    client,
		npmBase:   util.GetEnvDefault("CERTIN_NPM_REGISTRY", defaultNPMRegistry),
		pypiBase:  util.GetEnvDefault("CERTIN_PYPI_REGISTRY", defaultPyPIRegistry),
		mavenBase: util.GetEnvDefault("CERTIN_MAVEN_SEARCH", defaultMavenSearch),
	}
}

// FetchPackage returns registry metadata for the named package, or (nil, nil)
// when the ecosystem has no registry mapping.
func (r *Registry) FetchPackage(ctx context.Context, ecosystem, name, group string) (*model.PackageMetadata, error) {
	switch ecosystem {
	case util.EcosystemNPM:
		return r.fetchNPM(ctx, name)
	case util.EcosystemPyPI:
		return r.fetchPyPI(ctx, name)
	case util.EcosystemMaven:
		return r.fetchMaven(ctx, group, name)
	default:
		return nil, nil
	}
}

// npmLicense accepts both the modern string form and the legacy
// {"type": "...", "url": "..."} object form.
type npmLicense string

func (l *npmLicense) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = npmLicense(s)
		return nil
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*l = npmLicense(obj.Type)
	return nil
}

type npmPackument struct {
	DistTags    map[string]string `json:"dist-tags"`
	Time        map[string]string `json:"time"`
	License     npmLicense        `json:"license"`
	Description string            `json:"description"`
	Author      json.RawMessage   `json:"author"`
}

func (r *Registry) fetchNPM(ctx context.Context, name string) (*model.PackageMetadata, error) {
	// Scoped names keep the leading @ but encode the slash.
	escaped := strings.ReplaceAll(name, "/", "%2F")
	reqURL := fmt.Sprintf("%s/%s", r.npmBase, escaped)

	var doc npmPackument
	if err := getJSON(ctx, r.client, reqURL, nil, &doc); err != nil {
		return nil, err
	}

	latest := doc.DistTags["latest"]
	meta := &model.PackageMetadata{
		LatestVersion: latest,
		License:       string(doc.License),
		Description:   doc.Description,
		Author:        npmAuthorName(doc.Author),
	}
	if latest != "" {
		meta.ReleaseDate = normalizeDate(doc.Time[latest])
	}
	return meta, nil
}

// npmAuthorName handles both the string and the {"name": ...} author forms.
func npmAuthorName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return obj.Name
}

type pypiProject struct {
	Info struct {
		Version string `json:"version"`
		License string `json:"license"`
		Author  string `json:"author"`
		Summary string `json:"summary"`
	} `json:"info"`
	Releases map[string][]struct {
		UploadTime string `json:"upload_time_iso_8601"`
	} `json:"releases"`
}

func (r *Registry) fetchPyPI(ctx context.Context, name string) (*model.PackageMetadata, error) {
	reqURL := fmt.Sprintf("%s/pypi/%s/json", r.pypiBase, url.PathEscape(name))

	var doc pypiProject
	if err := getJSON(ctx, r.client, reqURL, nil, &doc); err != nil {
		return nil, err
	}

	meta := &model.PackageMetadata{
		LatestVersion: doc.Info.Version,
		License:       doc.Info.License,
		Author:        doc.Info.Author,
		Description:   doc.Info.Summary,
	}
	if files := doc.Releases[doc.Info.Version]; len(files) > 0 {
		meta.ReleaseDate = normalizeDate(files[0].UploadTime)
	}
	return meta, nil
}

type mavenSearchResult struct {
	Response struct {
		Docs []struct {
			LatestVersion string `json:"latestVersion"`
			Timestamp     int64  `json:"timestamp"`
		} `json:"docs"`
	} `json:"response"`
}

func (r *Registry) fetchMaven(ctx context.Context, group, artifact string) (*model.PackageMetadata, error) {
	query := fmt.Sprintf(`g:"%s" AND a:"%s"`, group, artifact)
	reqURL := fmt.Sprintf("%s/solrsearch/select?q=%s&rows=1&wt=json", r.mavenBase, url.QueryEscape(query))

	var doc mavenSearchResult
	if err := getJSON(ctx, r.client, reqURL, nil, &doc); err != nil {
		return nil, err
	}
	if len(doc.Response.Docs) == 0 {
		return nil, nil
	}

	hit := doc.Response.Docs[0]
	meta := &model.PackageMetadata{LatestVersion: hit.LatestVersion}
	if hit.Timestamp > 0 {
		meta.ReleaseDate = time.UnixMilli(hit.Timestamp).UTC().Format("2006-01-02")
	}
	return meta, nil
}

// normalizeDate trims an RFC 3339 timestamp down to its date part.
func normalizeDate(ts string) string {
	if ts == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC().Format("2006-01-02")
	}
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
