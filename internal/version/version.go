// Package version checks GitHub releases for a newer Halo build.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RequestTimeout bounds the GitHub API request.
const RequestTimeout = 10 * time.Second

// ReleaseURL is the endpoint for fetching the latest release.
var ReleaseURL = "https://api.github.com/repos/surge-downloader/halo/releases/latest"

// UpdateInfo describes the latest published release.
type UpdateInfo struct {
	CurrentVersion  string
	LatestVersion   string
	ReleaseURL      string
	UpdateAvailable bool
}

type githubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// CheckForUpdate asks GitHub for the latest release. Development builds
// return nil, nil without a request.
func CheckForUpdate(ctx context.Context, currentVersion string) (*UpdateInfo, error) {
	if currentVersion == "dev" || currentVersion == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("User-Agent", "Halo-Update-Checker")
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching latest release: %s", resp.Status)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}

	return &UpdateInfo{
		CurrentVersion:  currentVersion,
		LatestVersion:   release.TagName,
		ReleaseURL:      release.HTMLURL,
		UpdateAvailable: isNewerVersion(normalizeVersion(release.TagName), normalizeVersion(currentVersion)),
	}, nil
}

func normalizeVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}

// isNewerVersion compares MAJOR.MINOR.PATCH strings.
func isNewerVersion(latest, current string) bool {
	l, c := parseVersion(latest), parseVersion(current)
	for i := range l {
		if l[i] != c[i] {
			return l[i] > c[i]
		}
	}
	return false
}

func parseVersion(version string) [3]int {
	var parts [3]int
	segments := strings.Split(version, ".")
	for i := 0; i < len(segments) && i < 3; i++ {
		num := segments[i]
		// Ignore pre-release and build suffixes
		if idx := strings.IndexAny(num, "-+"); idx != -1 {
			num = num[:idx]
		}
		_, _ = fmt.Sscanf(num, "%d", &parts[i])
	}
	return parts
}
