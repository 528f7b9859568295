package entities

// Recipe represents a package recipe loaded from YAML
type Recipe struct {
	Name        string
	Description string
	Version     VersionConfig
	Download    RecipeDownload
	Security    RecipeSecurity
}

// VersionConfig represents version resolution configuration
type VersionConfig struct {
	Source          string // e.g., "github-release:owner/repo", "url:https://...", "static:1.2.3"
	ExcludePatterns string // Regex for versions to skip (alpha, beta, rc, etc.)
	ExtractPattern  string // Regex to extract the version from a tag/response
}

// RecipeDownload represents download configuration
type RecipeDownload struct {
	URLTemplate string // URL with {version}/{os}/{arch}/{suffix} placeholders
	Platforms   map[string]PlatformConfig
}

// PlatformConfig represents platform-specific download configuration
type PlatformConfig struct {
	OS     string
	Arch   string
	Suffix string // Platform-specific suffix for download URLs
	SHA256 string // Expected archive digest; empty disables verification
}

// RecipeSecurity represents optional signature verification configuration
type RecipeSecurity struct {
	VerifySignature bool
	SignatureURL    string // Detached signature location; {version} placeholder allowed
	GPGKeysURL      string // KEYS file to import signer keys from
	GPGKeyFile      string // Local armored key file as an offline alternative
}

// ExpectedDigest returns the expected archive digest for a platform, or empty
// when the recipe does not pin one
func (r *Recipe) ExpectedDigest(platform string) string {
	cfg, ok := r.Download.Platforms[platform]
	if !ok {
		return ""
	}
	return cfg.SHA256
}
