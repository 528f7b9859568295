package gateways

import (
	"strings"

	"github.com/wrenlet/decant/internal/domain/entities"
)

// URLResolver turns a recipe's URL template into a concrete download URL
type URLResolver struct{}

// NewURLResolver creates a new URL resolver
func NewURLResolver() *URLResolver {
	return &URLResolver{}
}

// ResolveDownloadURL substitutes version and platform placeholders in a
// download URL template. Recognized placeholders: {version}, {os}, {arch}
// and {suffix}; a suffix may itself contain {version}.
func (r *URLResolver) ResolveDownloadURL(template, version string, platform *entities.PlatformConfig) string {
	url := strings.ReplaceAll(template, "{version}", version)

	osName := "linux"
	arch := "amd64"
	suffix := ""

	if platform != nil {
		if platform.OS != "" {
			osName = platform.OS
		}
		if platform.Arch != "" {
			arch = platform.Arch
		}
		if platform.Suffix != "" {
			suffix = strings.ReplaceAll(platform.Suffix, "{version}", version)
		}
	}

	url = strings.ReplaceAll(url, "{os}", osName)
	url = strings.ReplaceAll(url, "{arch}", arch)
	url = strings.ReplaceAll(url, "{suffix}", suffix)

	return url
}
