package nix

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nixbump/pkg/domain/interfaces"
	"github.com/m-mizutani/nixbump/pkg/domain/model"
	"github.com/m-mizutani/nixbump/pkg/domain/types"
)

const sriPrefix = "sha256-"

var (
	// nix32 alphabet omits e, o, t and u
	nix32SHA256 = regexp.MustCompile(`^[0-9a-df-np-sv-z]{52}$`)
	hexSHA256   = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// Client invokes the Nix tool chain used to compute hashes and regenerate lockfiles
type Client struct {
	runner       interfaces.CommandRunner
	prefetchBin  string
	nixBin       string
	nixfmtBin    string
	bun2nixFlake string
	lockfileName string
}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithPrefetchBin sets the nix-prefetch-url executable
func WithPrefetchBin(bin string) Option {
	return func(c *Client) {
		c.prefetchBin = bin
	}
}

// WithNixBin sets the nix executable
func WithNixBin(bin string) Option {
	return func(c *Client) {
		c.nixBin = bin
	}
}

// WithNixfmtBin sets the nixfmt executable
func WithNixfmtBin(bin string) Option {
	return func(c *Client) {
		c.nixfmtBin = bin
	}
}

// WithBun2NixFlake sets the flake reference of the lockfile generator
func WithBun2NixFlake(flake string) Option {
	return func(c *Client) {
		c.bun2nixFlake = flake
	}
}

// WithLockfileName sets the file name the generator writes inside the source tree
func WithLockfileName(name string) Option {
	return func(c *Client) {
		c.lockfileName = name
	}
}

// NewClient creates a Nix tool client
func NewClient(runner interfaces.CommandRunner, opts ...Option) *Client {
	c := &Client{
		runner:       runner,
		prefetchBin:  "nix-prefetch-url",
		nixBin:       "nix",
		nixfmtBin:    "nixfmt",
		bun2nixFlake: "github:nix-community/bun2nix",
		lockfileName: "bun.nix",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prefetch unpacks the archive at url into the store and returns the raw
// sha256 printed on the last line of output
func (c *Client) Prefetch(ctx context.Context, url string) (string, error) {
	result, err := c.runner.Run(ctx, &model.Command{
		Name: c.prefetchBin,
		Args: []string{"--unpack", url},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to prefetch archive", goerr.V("url", url))
	}

	raw := result.LastLine()
	if err := ValidateRawHash(raw); err != nil {
		return "", goerr.Wrap(err, "unexpected prefetch output", goerr.V("url", url))
	}

	return raw, nil
}

// ConvertHash converts a raw sha256 hash into SRI form ("sha256-<base64>")
func (c *Client) ConvertHash(ctx context.Context, raw string) (string, error) {
	result, err := c.runner.Run(ctx, &model.Command{
		Name: c.nixBin,
		Args: []string{"hash", "convert", "--hash-algo", "sha256", "--to", "sri", raw},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to convert hash", goerr.V("raw", raw))
	}

	sri := strings.TrimSpace(string(result.Stdout))
	if err := ValidateSRI(sri); err != nil {
		return "", goerr.Wrap(err, "unexpected hash convert output", goerr.V("raw", raw))
	}

	return sri, nil
}

// GenerateLockfile runs bun2nix inside dir and returns the path of the generated lockfile
func (c *Client) GenerateLockfile(ctx context.Context, dir string) (string, error) {
	if _, err := c.runner.Run(ctx, &model.Command{
		Name: c.nixBin,
		Args: []string{"run", c.bun2nixFlake, "--", "-o", c.lockfileName},
		Dir:  dir,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to generate lockfile", goerr.V("dir", dir))
	}

	path := filepath.Join(dir, c.lockfileName)
	if _, err := os.Stat(path); err != nil {
		return "", goerr.Wrap(err, "generator did not produce lockfile", goerr.V("path", path))
	}

	return path, nil
}

// Format runs nixfmt on path
func (c *Client) Format(ctx context.Context, path string) error {
	if _, err := c.runner.Run(ctx, &model.Command{
		Name: c.nixfmtBin,
		Args: []string{path},
	}); err != nil {
		return goerr.Wrap(err, "failed to format file", goerr.V("path", path))
	}
	return nil
}

// ValidateRawHash checks that raw is a sha256 in nix32 or hex encoding
func ValidateRawHash(raw string) error {
	if !nix32SHA256.MatchString(raw) && !hexSHA256.MatchString(raw) {
		return goerr.New("not a sha256 hash in nix32 or hex encoding",
			goerr.T(types.ErrTagInvalidHash),
			goerr.V("value", raw),
		)
	}
	return nil
}

// ValidateSRI checks that sri is "sha256-" followed by the base64 of a 32 byte digest
func ValidateSRI(sri string) error {
	body, ok := strings.CutPrefix(sri, sriPrefix)
	if !ok {
		return goerr.New("SRI hash must start with "+sriPrefix,
			goerr.T(types.ErrTagInvalidHash),
			goerr.V("value", sri),
		)
	}

	digest, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return goerr.Wrap(err, "SRI hash is not valid base64",
			goerr.T(types.ErrTagInvalidHash),
			goerr.V("value", sri),
		)
	}
	if len(digest) != sha256.Size {
		return goerr.New("SRI digest has wrong length",
			goerr.T(types.ErrTagInvalidHash),
			goerr.V("value", sri),
			goerr.V("length", len(digest)),
		)
	}

	return nil
}
