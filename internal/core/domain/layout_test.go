package domain_test

import (
	"path/filepath"
	"testing"

	"go.trai.ch/corepm/internal/core/domain"
)

func TestLayoutPaths(t *testing.T) {
	top := domain.MustParseVLNV("acme:ip:uart:1.0").Sanitized()

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "GeneratorCachePath",
			got:      domain.GeneratorCachePath("/cache"),
			expected: filepath.Join("/cache", "generator_cache"),
		},
		{
			name:     "GeneratorIndexPath",
			got:      domain.GeneratorIndexPath("/cache"),
			expected: filepath.Join("/cache", "generator_cache", "index.db"),
		},
		{
			name:     "GeneratedPath",
			got:      domain.GeneratedPath("/cache", top),
			expected: filepath.Join("/cache", "generated", "acme_ip_uart_1_0"),
		},
		{
			name:     "ManifestFileName",
			got:      domain.ManifestFileName(top),
			expected: "acme_ip_uart_1_0.eda.yml",
		},
		{
			name:     "DefaultWorkRoot",
			got:      domain.DefaultWorkRoot("build", top, "sim", "icarus"),
			expected: filepath.Join("build", "acme_ip_uart_1_0", "sim-icarus"),
		},
		{
			name:     "DefaultWorkRootNoTool",
			got:      domain.DefaultWorkRoot("build", top, "default", ""),
			expected: filepath.Join("build", "acme_ip_uart_1_0", "default"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}
}
