package cmd

import (
	"os"
	"path"

	"gopkg.in/ini.v1"
)

// DefaultPackageIndexUrl is pip's own default index.
const DefaultPackageIndexUrl = "https://pypi.org/simple/"

// PackageIndexUrl returns the package index pip will actually use, read from
// pip's configuration. Falls back to the default index when no configuration
// is found.
func (env *WorkspaceEnv) PackageIndexUrl() string {
	for _, configPath := range pipConfigPaths() {
		indexUrl, found := readIndexUrlFromPipConfig(configPath)
		if found {
			return indexUrl
		}
	}

	return DefaultPackageIndexUrl
}

// pipConfigPaths lists pip config file candidates in pip's own precedence
// order.
func pipConfigPaths() []string {
	var paths []string

	if explicitPath := os.Getenv("PIP_CONFIG_FILE"); explicitPath != "" {
		paths = append(paths, explicitPath)
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			path.Join(homeDir, ".config", "pip", "pip.conf"),
			path.Join(homeDir, ".pip", "pip.conf"),
		)
	}

	paths = append(paths, etcPipConfigPath)

	return paths
}

// Overridable for tests.
var etcPipConfigPath = "/etc/pip.conf"

func readIndexUrlFromPipConfig(configPath string) (indexUrl string, found bool) {
	cfg, err := ini.Load(configPath)
	if err != nil {
		return "", false
	}

	key, err := cfg.Section("global").GetKey("index-url")
	if err != nil {
		return "", false
	}

	indexUrl = key.String()
	if indexUrl == "" {
		return "", false
	}

	return indexUrl, true
}
