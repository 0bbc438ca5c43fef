// Package configpaths resolves where deckrc looks for its configuration file.
package configpaths

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName is the directory name used below the platform config roots.
const AppName = "deckrc"

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// ConfigCandidatePaths returns the config files kong should try, grouped by
// loader. An explicit userCfg is the only candidate and its extension picks
// the loader (JSON when unknown).
func ConfigCandidatePaths(userCfg string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if userCfg != "" {
		switch strings.ToLower(filepath.Ext(userCfg)) {
		case ".yaml", ".yml":
			return nil, []string{userCfg}, nil
		case ".toml":
			return nil, nil, []string{userCfg}
		default:
			return []string{userCfg}, nil, nil
		}
	}

	var dirs []string
	if d, err := DefaultConfigDir(); err == nil {
		dirs = append(dirs, d)
	}
	if d := SystemConfigDir(); d != "" {
		dirs = append(dirs, d)
	}
	for _, d := range dirs {
		jsonPaths = append(jsonPaths, filepath.Join(d, "config.json"))
		yamlPaths = append(yamlPaths, filepath.Join(d, "config.yaml"), filepath.Join(d, "config.yml"))
		tomlPaths = append(tomlPaths, filepath.Join(d, "config.toml"))
	}
	return jsonPaths, yamlPaths, tomlPaths
}
