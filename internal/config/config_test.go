package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `{"neo4j_password": "secret"}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4jURI)
	assert.Equal(t, "neo4j", cfg.Neo4jUser)
	assert.Equal(t, "en", cfg.WikiLanguage)
	assert.Equal(t, "api", cfg.PageSource)
	assert.Equal(t, 2, cfg.MaxDepth)
	assert.Equal(t, 1000, cfg.FetchDelayMs)
	assert.Equal(t, ":8000", cfg.ListenAddr)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `{"neo4j_uri": "bolt://file:7687", "neo4j_password": "filepass"}`)

	t.Setenv("NEO4J_URI", "bolt://env:7687")
	t.Setenv("NEO4J_USER", "envuser")
	t.Setenv("NEO4J_PASSWORD", "envpass")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "bolt://env:7687", cfg.Neo4jURI)
	assert.Equal(t, "envuser", cfg.Neo4jUser)
	assert.Equal(t, "envpass", cfg.Neo4jPassword)
}

func TestLoadConfig_MissingPassword(t *testing.T) {
	path := writeConfig(t, `{}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neo4j_password")
}

func TestLoadConfig_InvalidPageSource(t *testing.T) {
	path := writeConfig(t, `{"neo4j_password": "secret", "page_source": "carrier-pigeon"}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_source")
}

func TestLoadConfig_InvalidDelay(t *testing.T) {
	path := writeConfig(t, `{"neo4j_password": "secret", "fetch_delay_ms": 10}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch_delay_ms")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadConfig_MalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"neo4j_password": `)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
