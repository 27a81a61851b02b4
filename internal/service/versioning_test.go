package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davinci-dev/davinci/internal/service"
)

func TestIsSemanticVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    bool
	}{
		// Valid semantic versions
		{"basic semver", "1.0.0", true},
		{"with patch", "1.2.3", true},
		{"with zeros", "0.0.0", true},
		{"large numbers", "100.200.300", true},
		{"with prerelease alpha", "1.0.0-alpha", true},
		{"with prerelease number", "1.0.0-1", true},
		{"with prerelease dots", "1.0.0-beta.2.3", true},
		{"with build metadata", "1.0.0+build.5", true},
		{"date format", "2021.11.15", true},
		{"with v prefix", "v1.0.0", true},

		// Invalid semantic versions
		{"empty string", "", false},
		{"single number", "1", false},
		{"two parts only", "1.0", false},
		{"four parts", "1.0.0.0", false},
		{"non-numeric patch", "1.0.c", false},
		{"empty prerelease", "1.0.0-", false},
		{"special chars in prerelease", "1.0.0-alpha@1", false},
		{"latest", "latest", false},
		{"with leading zeros", "2021.03.05", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.IsSemanticVersion(tt.version))
		})
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name     string
		version1 string
		version2 string
		want     int
	}{
		{"major less", "1.0.0", "2.0.0", -1},
		{"major greater", "2.0.0", "1.0.0", 1},
		{"equal", "1.0.0", "1.0.0", 0},
		{"v prefix is ignored", "v1.2.0", "1.2.0", 0},
		{"minor numeric ordering", "1.10.0", "1.2.0", 1},
		{"patch less", "1.0.1", "1.0.2", -1},
		{"prerelease below release", "1.0.0-alpha", "1.0.0", -1},
		{"prerelease numeric ordering", "1.0.0-rc.2", "1.0.0-rc.10", -1},
		{"build metadata is ignored", "1.0.0+a", "1.0.0+b", 0},
		{"semver above non-semver", "0.0.1", "latest", 1},
		{"non-semver below semver", "latest", "0.0.1", -1},
		{"neither semver compares lexically", "alpha", "beta", -1},
		{"both empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.CompareVersions(tt.version1, tt.version2))
		})
	}
}

func TestNextPatchVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"patch bump", "1.2.3", "1.2.4"},
		{"v prefix dropped", "v1.2.3", "1.2.4"},
		{"carries past nine", "0.0.9", "0.0.10"},
		{"build metadata dropped", "1.0.0+build.1", "1.0.1"},
		{"prerelease promoted", "2.0.0-rc.1", "2.0.0"},
		{"invalid restarts", "latest", service.InitialVersion},
		{"empty restarts", "", service.InitialVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.NextPatchVersion(tt.version)
			assert.Equal(t, tt.want, got)
			if tt.version != "" && service.IsSemanticVersion(tt.version) {
				assert.Equal(t, 1, service.CompareVersions(got, tt.version))
			}
		})
	}
}
