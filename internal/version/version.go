package version

import (
	"context"
	"fmt"
	"net/http"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/nulzo/model-radar/internal/httpclient"
)

// Version is stamped at build time with -ldflags "-X .../internal/version.Version=v1.2.3".
var Version = "v0.0.0"

const DefaultReleaseURL = "https://api.github.com/repos/nulzo/model-radar/releases/latest"

type GitHubRelease struct {
	TagName string `json:"tag_name"`
}

// Checker compares the running build against the latest published release.
type Checker struct {
	URL    string
	Client httpclient.HTTPClient
}

func NewChecker() *Checker {
	return &Checker{
		URL:    DefaultReleaseURL,
		Client: &http.Client{Timeout: 2 * time.Second},
	}
}

// Update describes the outcome of a release check.
type Update struct {
	Current  string
	Latest   string
	Outdated bool
}

// Check fetches the latest release tag. An unparseable current version (e.g. a
// dev build) is never reported as outdated.
func (c *Checker) Check(ctx context.Context, current string) (*Update, error) {
	var release GitHubRelease
	if err := httpclient.SendRequest(ctx, c.Client, http.MethodGet, c.URL, nil, nil, &release); err != nil {
		return nil, fmt.Errorf("fetch latest release: %w", err)
	}

	latest, err := goversion.NewVersion(release.TagName)
	if err != nil {
		return nil, fmt.Errorf("parse release tag %q: %w", release.TagName, err)
	}

	u := &Update{Current: current, Latest: release.TagName}
	if cur, err := goversion.NewVersion(current); err == nil {
		u.Outdated = cur.LessThan(latest)
	}
	return u, nil
}
