// Package yaml provides YAML-based recipe parsing and repository implementations.
package yaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wrenlet/decant/internal/domain/entities"
)

// yamlRecipe represents the raw YAML structure
type yamlRecipe struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Version     yamlVersion  `yaml:"version"`
	Download    yamlDownload `yaml:"download"`
	Security    yamlSecurity `yaml:"security"`
}

type yamlVersion struct {
	Source          string `yaml:"source"`
	ExcludePatterns string `yaml:"exclude_patterns"`
	ExtractPattern  string `yaml:"extract_pattern"`
}

type yamlDownload struct {
	URL       string                        `yaml:"url"`
	Platforms map[string]yamlPlatformConfig `yaml:"platforms"`
}

type yamlPlatformConfig struct {
	OS     string `yaml:"os"`
	Arch   string `yaml:"arch"`
	Suffix string `yaml:"suffix"`
	SHA256 string `yaml:"sha256"`
}

type yamlSecurity struct {
	VerifySignature bool   `yaml:"verify_signature"`
	SignatureURL    string `yaml:"signature_url"`
	GPGKeysURL      string `yaml:"gpg_keys_url"`
	GPGKeyFile      string `yaml:"gpg_key_file"`
}

// RecipeParser parses YAML recipe files
type RecipeParser struct{}

// NewRecipeParser creates a new YAML parser
func NewRecipeParser() *RecipeParser {
	return &RecipeParser{}
}

// ParseFile parses a YAML recipe file into a Recipe entity
func (p *RecipeParser) ParseFile(filePath string) (*entities.Recipe, error) {
	//nolint:gosec // G304: filePath is a recipe path from the repository
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a Recipe entity
func (p *RecipeParser) Parse(data []byte) (*entities.Recipe, error) {
	var raw yamlRecipe
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if raw.Name == "" {
		return nil, fmt.Errorf("recipe must have a name")
	}
	if raw.Download.URL == "" {
		return nil, fmt.Errorf("recipe %s must have a download.url", raw.Name)
	}

	platforms := make(map[string]entities.PlatformConfig, len(raw.Download.Platforms))
	for name, cfg := range raw.Download.Platforms {
		platforms[name] = entities.PlatformConfig{
			OS:     cfg.OS,
			Arch:   cfg.Arch,
			Suffix: cfg.Suffix,
			SHA256: cfg.SHA256,
		}
	}

	return &entities.Recipe{
		Name:        raw.Name,
		Description: raw.Description,
		Version: entities.VersionConfig{
			Source:          raw.Version.Source,
			ExcludePatterns: raw.Version.ExcludePatterns,
			ExtractPattern:  raw.Version.ExtractPattern,
		},
		Download: entities.RecipeDownload{
			URLTemplate: raw.Download.URL,
			Platforms:   platforms,
		},
		Security: entities.RecipeSecurity{
			VerifySignature: raw.Security.VerifySignature,
			SignatureURL:    raw.Security.SignatureURL,
			GPGKeysURL:      raw.Security.GPGKeysURL,
			GPGKeyFile:      raw.Security.GPGKeyFile,
		},
	}, nil
}
