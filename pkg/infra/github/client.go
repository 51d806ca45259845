package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nixbump/pkg/domain/interfaces"
	"github.com/m-mizutani/nixbump/pkg/domain/model"
	"github.com/m-mizutani/nixbump/pkg/domain/types"
)

const (
	objectTypeCommit = "commit"
	objectTypeTag    = "tag"
)

type client struct {
	githubClient *github.Client
}

// config holds internal GitHub client configuration
type config struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*config)

// WithToken attaches a bearer token to every request. An empty token keeps the client anonymous.
func WithToken(token string) Option {
	return func(c *config) {
		c.token = token
	}
}

// WithBaseURL overrides the REST API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *config) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new GitHub REST client
func NewClient(opts ...Option) (interfaces.GitHubClient, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	githubClient := github.NewClient(cfg.httpClient)
	if cfg.token != "" {
		githubClient = githubClient.WithAuthToken(cfg.token)
	}

	if cfg.baseURL != "" {
		base, err := url.Parse(cfg.baseURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse GitHub API base URL", goerr.V("base_url", cfg.baseURL))
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		githubClient.BaseURL = base
	}

	return &client{
		githubClient: githubClient,
	}, nil
}

// GetLatestRelease returns the latest published release of owner/repo
func (c *client) GetLatestRelease(ctx context.Context, owner, repo string) (*model.ReleaseInfo, error) {
	release, resp, err := c.githubClient.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return nil, classifyError(err, resp, "failed to fetch latest release",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
		)
	}

	if release.GetTagName() == "" {
		return nil, goerr.New("latest release has no tag_name",
			goerr.T(types.ErrTagParse),
			goerr.V("owner", owner),
			goerr.V("repo", repo),
		)
	}

	return &model.ReleaseInfo{
		Owner:   owner,
		Repo:    repo,
		TagName: release.GetTagName(),
	}, nil
}

// ResolveTagCommit returns the commit SHA the tag points to. Annotated tags
// are dereferenced exactly once through the tag object's URL.
func (c *client) ResolveTagCommit(ctx context.Context, owner, repo, tag string) (string, error) {
	ref, resp, err := c.githubClient.Git.GetRef(ctx, owner, repo, "tags/"+tag)
	if err != nil {
		return "", classifyError(err, resp, "failed to fetch tag ref",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("tag", tag),
		)
	}

	object := ref.GetObject()
	if object.GetType() != objectTypeTag {
		if object.GetSHA() == "" {
			return "", goerr.New("tag ref has no object sha",
				goerr.T(types.ErrTagParse),
				goerr.V("tag", tag),
				goerr.V("type", object.GetType()),
			)
		}
		return object.GetSHA(), nil
	}

	if object.GetURL() == "" {
		return "", goerr.New("annotated tag ref has no object url",
			goerr.T(types.ErrTagParse),
			goerr.V("tag", tag),
		)
	}

	return c.getTagObjectCommit(ctx, object.GetURL())
}

// getTagObjectCommit fetches an annotated tag object and returns the SHA of the object it points to
func (c *client) getTagObjectCommit(ctx context.Context, objectURL string) (string, error) {
	req, err := c.githubClient.NewRequest(http.MethodGet, objectURL, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create tag object request", goerr.V("url", objectURL))
	}

	var tagObject github.Tag
	resp, err := c.githubClient.Do(ctx, req, &tagObject)
	if err != nil {
		return "", classifyError(err, resp, "failed to fetch annotated tag object",
			goerr.V("url", objectURL),
		)
	}

	sha := tagObject.GetObject().GetSHA()
	if sha == "" {
		return "", goerr.New("annotated tag object has no target sha",
			goerr.T(types.ErrTagParse),
			goerr.V("url", objectURL),
		)
	}

	return sha, nil
}

// classifyError tags a go-github error as a fetch failure (transport or
// non-success status) or a parse failure (success status with an undecodable body)
func classifyError(err error, resp *github.Response, msg string, opts ...goerr.Option) error {
	if resp == nil || resp.Response == nil {
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagFetch))...)
	}

	opts = append(opts,
		goerr.V("status", resp.Status),
		goerr.V("status_code", resp.StatusCode),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return goerr.Wrap(err, msg+": unexpected response body", append(opts, goerr.T(types.ErrTagParse))...)
	}

	return goerr.Wrap(err, msg+": "+resp.Status, append(opts, goerr.T(types.ErrTagFetch))...)
}
