// Package orchestrators coordinates the install workflow across domain gateways.
package orchestrators

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/wrenlet/decant/internal/domain/entities"
	"github.com/wrenlet/decant/internal/domain/interfaces"
	"github.com/wrenlet/decant/internal/domain/interfaces/repositories"
)

// VersionFetcher interface for resolving the latest upstream version
type VersionFetcher interface {
	FetchLatestVersion(def *entities.Recipe) (string, error)
}

// URLResolver interface for turning URL templates into concrete URLs
type URLResolver interface {
	ResolveDownloadURL(template, version string, platform *entities.PlatformConfig) string
}

// ArtifactFetcher interface for the fetch-verify-cache pipeline
type ArtifactFetcher interface {
	EnsureArtifact(ctx context.Context, spec entities.ArtifactSpec, paths entities.CachePaths) error
}

// Extractor interface for unpacking verified archives
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) (string, error)
}

// SignatureVerifier interface for optional detached-signature checks
type SignatureVerifier interface {
	VerifyArtifactSignature(ctx context.Context, sec entities.RecipeSecurity, archivePath, sigURL string) error
}

// DigestVerifier interface for checking cached archives without fetching
type DigestVerifier interface {
	HashFile(path string) (string, error)
	Verify(actualHex, expectedHex string) bool
}

// InstallOrchestrator coordinates the complete package install workflow
type InstallOrchestrator struct {
	recipeRepo     repositories.RecipeRepository
	versionFetcher VersionFetcher
	urlResolver    URLResolver
	fetcher        ArtifactFetcher
	extractor      Extractor
	signatures     SignatureVerifier
	digests        DigestVerifier
	cacheDir       string
	workDir        string
	logger         interfaces.Logger
}

// InstallOrchestratorConfig holds configuration for the orchestrator
type InstallOrchestratorConfig struct {
	CacheDir string // where verified archives live; default ".decant/cache"
	WorkDir  string // extraction target; default current directory
	Logger   interfaces.Logger
}

// NewInstallOrchestrator creates a new install orchestrator
func NewInstallOrchestrator(
	recipeRepo repositories.RecipeRepository,
	versionFetcher VersionFetcher,
	urlResolver URLResolver,
	fetcher ArtifactFetcher,
	extractor Extractor,
	signatures SignatureVerifier,
	digests DigestVerifier,
	config InstallOrchestratorConfig,
) *InstallOrchestrator {
	cacheDir := config.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(".decant", "cache")
	}
	workDir := config.WorkDir
	if workDir == "" {
		workDir = "."
	}
	logger := config.Logger
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &InstallOrchestrator{
		recipeRepo:     recipeRepo,
		versionFetcher: versionFetcher,
		urlResolver:    urlResolver,
		fetcher:        fetcher,
		extractor:      extractor,
		signatures:     signatures,
		digests:        digests,
		cacheDir:       cacheDir,
		workDir:        workDir,
		logger:         logger,
	}
}

// InstallResult contains the result of a fetch or install operation
type InstallResult struct {
	Recipe          *entities.Recipe
	Artifact        *entities.Artifact
	Verified        bool // false when the recipe pins no digest for the platform
	ExtractedTo     string
	FetchDuration   time.Duration
	ExtractDuration time.Duration
	TotalDuration   time.Duration
	Success         bool
	Error           error
}

// FetchPackage runs the fetch-verify-cache pipeline for a package without
// extracting. If version is empty the latest upstream version is resolved.
func (o *InstallOrchestrator) FetchPackage(ctx context.Context, packageName, version, platform string) (*InstallResult, error) {
	start := time.Now()
	result := &InstallResult{}

	recipe, err := o.recipeRepo.GetRecipe(ctx, packageName)
	if err != nil {
		return o.fail(result, fmt.Errorf("failed to load recipe: %w", err))
	}
	result.Recipe = recipe

	if version == "" {
		version, err = o.versionFetcher.FetchLatestVersion(recipe)
		if err != nil {
			return o.fail(result, fmt.Errorf("failed to resolve latest version: %w", err))
		}
		o.logger.Info("resolved latest version",
			interfaces.F("package", packageName),
			interfaces.F("version", version))
	}

	platformCfg, ok := recipe.Download.Platforms[platform]
	if !ok {
		return o.fail(result, fmt.Errorf("package %s does not support platform %s", packageName, platform))
	}

	sourceURL := o.urlResolver.ResolveDownloadURL(recipe.Download.URLTemplate, version, &platformCfg)
	paths, err := o.cachePaths(sourceURL)
	if err != nil {
		return o.fail(result, err)
	}

	spec := entities.ArtifactSpec{
		SourceURL:      sourceURL,
		ExpectedSHA256: platformCfg.SHA256,
	}

	fetchStart := time.Now()
	if err := o.fetcher.EnsureArtifact(ctx, spec, paths); err != nil {
		return o.fail(result, err)
	}
	result.FetchDuration = time.Since(fetchStart)
	result.Verified = spec.ExpectedSHA256 != ""

	if result.Verified && recipe.Security.VerifySignature {
		sigURL := o.urlResolver.ResolveDownloadURL(recipe.Security.SignatureURL, version, &platformCfg)
		if err := o.signatures.VerifyArtifactSignature(ctx, recipe.Security, paths.FinalPath, sigURL); err != nil {
			return o.fail(result, err)
		}
		o.logger.Info("signature verified", interfaces.F("package", packageName))
	}

	result.Artifact = &entities.Artifact{
		Name:     recipe.Name,
		Version:  version,
		Platform: platform,
		Path:     paths.FinalPath,
	}
	result.TotalDuration = time.Since(start)
	result.Success = true
	return result, nil
}

// InstallPackage runs the full pipeline and extracts the verified archive
// into the working directory. With no pinned digest the install is a no-op:
// the local build is trusted and nothing is fetched or extracted.
func (o *InstallOrchestrator) InstallPackage(ctx context.Context, packageName, version, platform string) (*InstallResult, error) {
	start := time.Now()

	result, err := o.FetchPackage(ctx, packageName, version, platform)
	if err != nil {
		return result, err
	}

	if !result.Verified {
		o.logger.Info("no pinned digest, leaving local build untouched",
			interfaces.F("package", packageName))
		result.TotalDuration = time.Since(start)
		return result, nil
	}

	extractStart := time.Now()
	root, err := o.extractor.Extract(ctx, result.Artifact.Path, o.workDir)
	if err != nil {
		return o.fail(result, fmt.Errorf("extraction failed: %w", err))
	}
	result.ExtractDuration = time.Since(extractStart)
	result.ExtractedTo = root
	result.TotalDuration = time.Since(start)
	return result, nil
}

// VerifyReport describes the state of a cached archive for one package
type VerifyReport struct {
	Package  string
	Version  string
	Platform string
	Path     string
	Expected string
	Actual   string
	Cached   bool
	Verified bool
}

// VerifyPackage digest-checks the cached archive for a package without any
// network fetch of the artifact itself
func (o *InstallOrchestrator) VerifyPackage(ctx context.Context, packageName, version, platform string) (*VerifyReport, error) {
	recipe, err := o.recipeRepo.GetRecipe(ctx, packageName)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	if version == "" {
		version, err = o.versionFetcher.FetchLatestVersion(recipe)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve latest version: %w", err)
		}
	}

	platformCfg, ok := recipe.Download.Platforms[platform]
	if !ok {
		return nil, fmt.Errorf("package %s does not support platform %s", packageName, platform)
	}

	sourceURL := o.urlResolver.ResolveDownloadURL(recipe.Download.URLTemplate, version, &platformCfg)
	paths, err := o.cachePaths(sourceURL)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{
		Package:  packageName,
		Version:  version,
		Platform: platform,
		Path:     paths.FinalPath,
		Expected: platformCfg.SHA256,
	}

	actual, err := o.digests.HashFile(paths.FinalPath)
	if err != nil {
		// Missing or unreadable means "not cached", not an error
		return report, nil
	}
	report.Cached = true
	report.Actual = actual
	report.Verified = report.Expected != "" && o.digests.Verify(actual, report.Expected)
	return report, nil
}

// cachePaths derives the two well-known cache locations for a source URL.
// The staging path only ever holds unverified bytes and is never exposed.
func (o *InstallOrchestrator) cachePaths(sourceURL string) (entities.CachePaths, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return entities.CachePaths{}, fmt.Errorf("invalid download URL %q: %w", sourceURL, err)
	}
	base := filepath.Base(parsed.Path)
	if base == "." || base == "/" {
		return entities.CachePaths{}, fmt.Errorf("download URL %q has no file component", sourceURL)
	}

	if err := os.MkdirAll(o.cacheDir, 0750); err != nil {
		return entities.CachePaths{}, fmt.Errorf("failed to create cache directory: %w", err)
	}

	final := filepath.Join(o.cacheDir, base)
	return entities.CachePaths{
		FinalPath:   final,
		StagingPath: final + ".part",
	}, nil
}

func (o *InstallOrchestrator) fail(result *InstallResult, err error) (*InstallResult, error) {
	result.Error = err
	result.Success = false
	return result, err
}
