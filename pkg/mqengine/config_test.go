package mqengine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mqlang/mq/pkg/mqengine"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file returns zero-value config", func(t *testing.T) {
		cfg, err := mqengine.LoadConfig(filepath.Join(t.TempDir(), ".mqrc"))
		require.NoError(t, err)
		assert.Empty(t, cfg.SearchPaths)
		assert.False(t, cfg.UseCompiler)
	})

	t.Run("decodes search paths and compiler flag", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".mqrc")
		contents := "search_paths = [\".\", \"./lib\"]\nuse_compiler = true\n"
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

		cfg, err := mqengine.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{".", "./lib"}, cfg.SearchPaths)
		assert.True(t, cfg.UseCompiler)
	})

	t.Run("malformed toml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".mqrc")
		require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

		_, err := mqengine.LoadConfig(path)
		require.Error(t, err)
	})
}

func TestWithConfigAppliesOptions(t *testing.T) {
	cfg := &mqengine.Config{SearchPaths: []string{"./lib"}, UseCompiler: true}
	e := mqengine.New(mqengine.WithConfig(cfg))
	require.NotNil(t, e)

	results, err := e.Eval(`1 + 1;`, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].String())
}
