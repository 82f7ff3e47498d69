package updater

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/pkg/logger"
	"github.com/kpauljoseph/ankiforge/pkg/version"
)

const (
	githubReleaseURL = "https://api.github.com/repos/kpauljoseph/ankiforge/releases/latest"
	userAgent        = "ankiforge-updater"
)

type Option func(*Checker)

func WithReleaseURL(url string) Option {
	return func(c *Checker) {
		c.releaseURL = url
	}
}

func WithCurrentVersion(v string) Option {
	return func(c *Checker) {
		c.currentVersion = v
	}
}

type Checker struct {
	client         *http.Client
	releaseURL     string
	currentVersion string
	logger         *logger.Logger
}

func NewChecker(log *logger.Logger, opts ...Option) *Checker {
	if log == nil {
		log = logger.Nop()
	}
	c := &Checker{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		releaseURL:     githubReleaseURL,
		currentVersion: version.Version,
		logger:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckForUpdates compares the running version with the latest GitHub
// release.
func (c *Checker) CheckForUpdates(ctx context.Context) (*UpdateInfo, error) {
	c.logger.Debug("Checking for updates at %s", c.releaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.releaseURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "failed to fetch GitHub release")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, eris.Wrap(err, "failed to decode GitHub release")
	}

	currentVersion := strings.TrimPrefix(c.currentVersion, "v")
	latestVersion := strings.TrimPrefix(release.TagName, "v")

	return &UpdateInfo{
		CurrentVersion: currentVersion,
		LatestVersion:  latestVersion,
		UpdateMessage:  release.Body,
		DownloadURL:    release.HTMLURL,
		IsAvailable:    compareVersions(currentVersion, latestVersion) < 0,
	}, nil
}

// compareVersions returns:
//
//	-1 if v1 < v2
//	 0 if v1 == v2
//	 1 if v1 > v2
//
// Numeric parts compare as numbers; anything else compares as text.
func compareVersions(v1, v2 string) int {
	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")

	for i := 0; i < len(parts1) && i < len(parts2); i++ {
		if c := comparePart(parts1[i], parts2[i]); c != 0 {
			return c
		}
	}

	if len(parts1) < len(parts2) {
		return -1
	}
	if len(parts1) > len(parts2) {
		return 1
	}
	return 0
}

func comparePart(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
