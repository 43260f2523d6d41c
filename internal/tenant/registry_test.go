package tenant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAppsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apps.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeAppsFile(t, `{
		"apps": [
			{"app_id": "forum-main", "app_name": "Main Forum", "ingest_token": "secret", "features": {"fingerprinting": true}},
			{"app_id": "forum-beta", "app_name": "Beta Forum"}
		]
	}`)

	registry, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Len(t, registry.All(), 2)
	assert.True(t, registry.Exists("forum-main"))
	assert.False(t, registry.Exists("forum-unknown"))
	assert.True(t, registry.HasFeature("forum-main", "fingerprinting"))
	assert.False(t, registry.HasFeature("forum-beta", "fingerprinting"))
	assert.Equal(t, "secret", registry.GetIngestToken("forum-main"))
	assert.Equal(t, "", registry.GetIngestToken("forum-beta"))
	assert.Equal(t, "", registry.GetIngestToken("forum-unknown"))

	names := registry.ToMap()
	assert.Equal(t, "Main Forum", names["forum-main"])
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeAppsFile(t, `{not json`)
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}
