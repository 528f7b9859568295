package gateways

import (
	"testing"

	"github.com/wrenlet/decant/internal/domain/entities"
)

func TestURLResolver_ResolveDownloadURL(t *testing.T) {
	resolver := NewURLResolver()

	tests := []struct {
		name     string
		template string
		version  string
		platform *entities.PlatformConfig
		want     string
	}{
		{
			name:     "kubectl style URL",
			template: "https://dl.k8s.io/release/v{version}/bin/{os}/{arch}/kubectl",
			version:  "1.28.3",
			platform: &entities.PlatformConfig{OS: "linux", Arch: "amd64"},
			want:     "https://dl.k8s.io/release/v1.28.3/bin/linux/amd64/kubectl",
		},
		{
			name:     "helm style URL with suffix",
			template: "https://get.helm.sh/helm-v{version}-{os}-{arch}{suffix}",
			version:  "3.13.0",
			platform: &entities.PlatformConfig{OS: "linux", Arch: "amd64", Suffix: ".tar.gz"},
			want:     "https://get.helm.sh/helm-v3.13.0-linux-amd64.tar.gz",
		},
		{
			name:     "suffix containing version",
			template: "https://github.com/FiloSottile/age/releases/download/v{version}/{suffix}",
			version:  "1.1.1",
			platform: &entities.PlatformConfig{Suffix: "age-v{version}-linux-amd64.tar.gz"},
			want:     "https://github.com/FiloSottile/age/releases/download/v1.1.1/age-v1.1.1-linux-amd64.tar.gz",
		},
		{
			name:     "darwin arm64 platform",
			template: "https://get.helm.sh/helm-v{version}-{os}-{arch}.tar.gz",
			version:  "3.13.0",
			platform: &entities.PlatformConfig{OS: "darwin", Arch: "arm64"},
			want:     "https://get.helm.sh/helm-v3.13.0-darwin-arm64.tar.gz",
		},
		{
			name:     "nil platform uses defaults",
			template: "https://example.com/{os}/{arch}/tool-{version}",
			version:  "2.0.0",
			platform: nil,
			want:     "https://example.com/linux/amd64/tool-2.0.0",
		},
		{
			name:     "empty platform fields fall back to defaults",
			template: "https://example.com/{os}/{arch}/tool{suffix}",
			version:  "1.0.0",
			platform: &entities.PlatformConfig{},
			want:     "https://example.com/linux/amd64/tool",
		},
		{
			name:     "no placeholders",
			template: "https://example.com/static/archive.tar.gz",
			version:  "9.9.9",
			platform: &entities.PlatformConfig{OS: "linux", Arch: "amd64"},
			want:     "https://example.com/static/archive.tar.gz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.ResolveDownloadURL(tt.template, tt.version, tt.platform)
			if got != tt.want {
				t.Errorf("ResolveDownloadURL() = %v, want %v", got, tt.want)
			}
		})
	}
}
