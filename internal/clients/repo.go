package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/util"
)

const defaultGitHubAPI = "https://api.github.com"

// GitHubClient resolves repository metadata for components whose SBOM entry
// carries a VCS external reference.
type GitHubClient struct {
	client *http.Client
	base   string
	token  string
}

// NewGitHubClient builds a GitHub API client. A token from
// CERTIN_GITHUB_TOKEN raises the unauthenticated rate limit but is optional.
func NewGitHubClient(client *http.Client) *GitHubClient {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &GitHubClient{
		client: client,
		base:   util.GetEnvDefault("CERTIN_GITHUB_API", defaultGitHubAPI),
		token:  util.GetEnvDefault("CERTIN_GITHUB_TOKEN", ""),
	}
}

type githubRepo struct {
	StargazersCount int    `json:"stargazers_count"`
	PushedAt        string `json:"pushed_at"`
	License         *struct {
		SpdxID string `json:"spdx_id"`
	} `json:"license"`
}

// FetchRepository looks up a GitHub repository by its VCS URL. URLs that do
// not point at GitHub return (nil, nil); the SBOM simply has no repository
// signal for that component.
func (c *GitHubClient) FetchRepository(ctx context.Context, repoURL string) (*model.RepositoryMetadata, error) {
	owner, name, ok := parseGitHubURL(repoURL)
	if !ok {
		return nil, nil
	}

	headers := map[string]string{}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}

	var repo githubRepo
	reqURL := fmt.Sprintf("%s/repos/%s/%s", c.base, owner, name)
	if err := getJSON(ctx, c.client, reqURL, headers, &repo); err != nil {
		return nil, err
	}

	meta := &model.RepositoryMetadata{
		Stars:       repo.StargazersCount,
		ReleaseDate: normalizeDate(repo.PushedAt),
	}
	if repo.License != nil && repo.License.SpdxID != "NOASSERTION" {
		meta.License = repo.License.SpdxID
	}
	return meta, nil
}

// parseGitHubURL extracts owner and repository from the common VCS URL
// shapes found in SBOMs: https, git+https, git@ and the scm trailing ".git".
func parseGitHubURL(raw string) (owner, name string, ok bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "git+")
	raw = strings.TrimPrefix(raw, "scm:git:")
	if strings.HasPrefix(raw, "git@github.com:") {
		raw = "https://github.com/" + strings.TrimPrefix(raw, "git@github.com:")
	}

	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(u.Hostname(), "github.com") {
		return "", "", false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), true
}
