// Package updater asks GitHub whether a newer ankiflow release exists.
package updater

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/version"
)

const githubReleaseURL = "https://api.github.com/repos/markgrovs/anki-spanish/releases/latest"

type UpdateInfo struct {
	CurrentVersion string
	LatestVersion  string
	UpdateMessage  string
	DownloadURL    string
	IsAvailable    bool
}

type Checker struct {
	client  *http.Client
	url     string
	current string
	logger  *logger.Logger
}

type Option func(*Checker)

func WithURL(url string) Option {
	return func(c *Checker) {
		c.url = url
	}
}

func WithCurrentVersion(v string) Option {
	return func(c *Checker) {
		c.current = v
	}
}

func NewChecker(logger *logger.Logger, opts ...Option) *Checker {
	c := &Checker{
		client:  &http.Client{Timeout: 10 * time.Second},
		url:     githubReleaseURL,
		current: version.Version,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckForUpdates fetches the latest release and compares it with the
// running version.
func (c *Checker) CheckForUpdates(ctx context.Context) (*UpdateInfo, error) {
	c.logger.Debug("Checking for updates...")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "failed to fetch latest release")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("GitHub API returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read release")
	}
	if !gjson.ValidBytes(body) {
		return nil, eris.New("failed to decode release")
	}

	release := gjson.ParseBytes(body)
	current := strings.TrimPrefix(c.current, "v")
	latest := strings.TrimPrefix(release.Get("tag_name").String(), "v")
	if latest == "" {
		return nil, eris.New("release has no tag")
	}

	return &UpdateInfo{
		CurrentVersion: current,
		LatestVersion:  latest,
		UpdateMessage:  release.Get("body").String(),
		DownloadURL:    release.Get("html_url").String(),
		IsAvailable:    CompareVersions(current, latest) < 0,
	}, nil
}

// CompareVersions compares dotted numeric versions: -1 if v1 < v2, 0 if
// equal, 1 if v1 > v2. Missing parts count as zero and a non-numeric part
// (a development build) sorts before any release.
func CompareVersions(v1, v2 string) int {
	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")

	for i := 0; i < len(parts1) || i < len(parts2); i++ {
		a, b := part(parts1, i), part(parts2, i)
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	}
	return 0
}

func part(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	s := parts[i]
	if j := strings.IndexAny(s, "-+"); j >= 0 {
		s = s[:j]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
