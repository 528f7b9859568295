package gateways

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/wrenlet/decant/internal/domain/entities"
)

const (
	defaultGitHubAPI = "https://api.github.com"

	// maxVersionRetries applies to version lookups only; the artifact
	// pipeline itself never retries
	maxVersionRetries = 3
)

// VersionFetcher resolves the latest upstream version for a recipe
type VersionFetcher struct {
	httpClient *http.Client
}

// NewVersionFetcher creates a new version fetcher
func NewVersionFetcher() *VersionFetcher {
	return &VersionFetcher{
		httpClient: &http.Client{
			Timeout: 10 * time.Second, // Version checks are small responses
		},
	}
}

// FetchLatestVersion resolves the latest version based on version.source.
// Supported forms: "static:<value>", "github-release:owner/repo" and
// "url:<endpoint>" combined with an extract pattern.
func (vf *VersionFetcher) FetchLatestVersion(def *entities.Recipe) (string, error) {
	source := def.Version.Source
	if source == "" {
		return "", fmt.Errorf("version.source not specified")
	}

	var rawVersion string
	var err error

	switch {
	case strings.HasPrefix(source, "static:"):
		rawVersion = strings.TrimPrefix(source, "static:")

	case strings.HasPrefix(source, "github-release:"):
		repo := strings.TrimPrefix(source, "github-release:")
		rawVersion, err = vf.fetchGitHubRelease(repo)
		if err != nil {
			return "", err
		}
		if def.Version.ExtractPattern != "" {
			rawVersion, err = extractVersion(rawVersion, def.Version.ExtractPattern)
			if err != nil {
				return "", fmt.Errorf("version extraction failed: %w", err)
			}
		}

	case strings.HasPrefix(source, "url:"):
		endpoint := strings.TrimPrefix(source, "url:")
		var body string
		body, err = vf.fetchFromURL(endpoint)
		if err != nil {
			return "", err
		}
		if def.Version.ExtractPattern == "" {
			rawVersion = body
		} else {
			rawVersion, err = extractLatestVersion(body, def.Version.ExtractPattern, def.Version.ExcludePatterns)
			if err != nil {
				return "", fmt.Errorf("version extraction failed: %w", err)
			}
		}

	default:
		return "", fmt.Errorf("unsupported version.source format: %s", source)
	}

	rawVersion = strings.TrimSpace(rawVersion)
	if def.Version.ExcludePatterns != "" && shouldExcludeVersion(rawVersion, def.Version.ExcludePatterns) {
		return "", fmt.Errorf("version %s excluded by pattern: %s", rawVersion, def.Version.ExcludePatterns)
	}

	return rawVersion, nil
}

// githubAPIBase allows tests and GitHub Enterprise users to point version
// lookups at a different API host
func githubAPIBase() string {
	if base := strings.TrimSpace(os.Getenv("DECANT_GITHUB_API")); base != "" {
		return strings.TrimRight(base, "/")
	}
	return defaultGitHubAPI
}

// gitHubRelease represents the subset of the release API response we consume
type gitHubRelease struct {
	TagName    string `json:"tag_name"`
	Prerelease bool   `json:"prerelease"`
	Draft      bool   `json:"draft"`
}

// fetchGitHubRelease fetches the latest release tag from GitHub
func (vf *VersionFetcher) fetchGitHubRelease(repo string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", githubAPIBase(), repo)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	// A token raises the rate limit, needed in CI
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := vf.doWithRetry(req)
	if err != nil {
		return "", fmt.Errorf("GitHub API request failed: %w", err)
	}
	//nolint:errcheck // Defer close
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("GitHub API error %d (failed to read response)", resp.StatusCode)
		}
		return "", fmt.Errorf("GitHub API error %d: %s", resp.StatusCode, string(body))
	}

	var release gitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("failed to parse GitHub response: %w", err)
	}

	if release.Draft {
		return "", fmt.Errorf("latest release is a draft")
	}

	return release.TagName, nil
}

// doWithRetry executes a request with exponential backoff on retryable
// statuses and network errors
func (vf *VersionFetcher) doWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= maxVersionRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}

		resp, err = vf.httpClient.Do(req)
		if err != nil {
			if attempt < maxVersionRetries {
				continue
			}
			return nil, err
		}

		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		//nolint:errcheck,gosec // G104: Best effort close before retry
		resp.Body.Close()
	}

	return resp, err
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// fetchFromURL fetches version data from a plain URL
func (vf *VersionFetcher) fetchFromURL(url string) (string, error) {
	resp, err := vf.httpClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return string(body), nil
}

// extractVersion extracts a single version from input using a regex,
// preferring the first capture group when present
func extractVersion(input, pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid regex pattern: %w", err)
	}

	matches := re.FindStringSubmatch(input)
	if matches == nil {
		return "", fmt.Errorf("no match found for pattern: %s", pattern)
	}
	if len(matches) > 1 && matches[1] != "" {
		return matches[1], nil
	}
	return matches[0], nil
}

// extractLatestVersion extracts every version match from input and returns
// the first one not excluded, preserving document order
func extractLatestVersion(input, pattern, excludePatterns string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid regex pattern: %w", err)
	}

	allMatches := re.FindAllStringSubmatch(input, -1)
	if len(allMatches) == 0 {
		return "", fmt.Errorf("no match found for pattern: %s", pattern)
	}

	for _, matches := range allMatches {
		version := matches[0]
		if len(matches) > 1 && matches[1] != "" {
			version = matches[1]
		}
		if excludePatterns == "" || !shouldExcludeVersion(matches[0], excludePatterns) {
			return version, nil
		}
	}

	return "", fmt.Errorf("all versions excluded by pattern: %s", excludePatterns)
}

// shouldExcludeVersion reports whether a version matches the exclusion regex.
// An invalid exclusion pattern excludes nothing.
func shouldExcludeVersion(version, excludePatterns string) bool {
	re, err := regexp.Compile(excludePatterns)
	if err != nil {
		return false
	}
	return re.MatchString(version)
}
