package configpaths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplicitConfigPicksLoader(t *testing.T) {
	tests := []struct {
		file                string
		jsonN, yamlN, tomlN int
	}{
		{"deck.json", 1, 0, 0},
		{"deck.YAML", 0, 1, 0},
		{"deck.yml", 0, 1, 0},
		{"deck.toml", 0, 0, 1},
		{"deck.conf", 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			j, y, tm := ConfigCandidatePaths(tt.file)
			assert.Len(t, j, tt.jsonN)
			assert.Len(t, y, tt.yamlN)
			assert.Len(t, tm, tt.tomlN)
		})
	}
}

func TestDefaultCandidates(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	j, y, tm := ConfigCandidatePaths("")
	want := filepath.Join(dir, AppName)
	if assert.NotEmpty(t, j) {
		assert.Equal(t, filepath.Join(want, "config.json"), j[0])
	}
	assert.Contains(t, y, filepath.Join(want, "config.yaml"))
	assert.Contains(t, y, filepath.Join(want, "config.yml"))
	assert.Contains(t, tm, filepath.Join(want, "config.toml"))
}
