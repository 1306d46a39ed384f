package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- ParseConfigPath tests ---

func TestParseConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"single segment", "defaultAgent", []string{"defaultAgent"}, false},
		{"two segments", "logging.level", []string{"logging", "level"}, false},
		{"three segments", "memory.store.kind", []string{"memory", "store", "kind"}, false},
		{"empty", "", nil, true},
		{"empty segment", "logging..level", nil, true},
		{"leading dot", ".logging", nil, true},
		{"trailing dot", "logging.", nil, true},
		{"blocked __proto__", "foo.__proto__.bar", nil, true},
		{"blocked prototype", "prototype.x", nil, true},
		{"blocked constructor", "constructor", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfigPath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				var ce *ConfigError
				assert.ErrorAs(t, err, &ce)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// --- GetValueAtPath tests ---

func TestGetValueAtPath(t *testing.T) {
	root := map[string]any{
		"logging": map[string]any{
			"level": "debug",
			"file":  "/tmp/zerepy.log",
		},
		"defaultAgent": "mino",
	}

	tests := []struct {
		name string
		path []string
		want any
		ok   bool
	}{
		{"nested value", []string{"logging", "level"}, "debug", true},
		{"top level", []string{"defaultAgent"}, "mino", true},
		{"missing key", []string{"nonexistent"}, nil, false},
		{"missing nested", []string{"logging", "nonexistent"}, nil, false},
		{"non-map intermediate", []string{"defaultAgent", "sub"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, ok := GetValueAtPath(root, tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, val)
			}
		})
	}
}

// --- SetValueAtPath tests ---

func TestSetValueAtPath_Update(t *testing.T) {
	root := map[string]any{
		"logging": map[string]any{
			"level": "info",
		},
	}

	SetValueAtPath(root, []string{"logging", "level"}, "debug")
	val, ok := GetValueAtPath(root, []string{"logging", "level"})
	assert.True(t, ok)
	assert.Equal(t, "debug", val)
}

func TestSetValueAtPath_CreatesIntermediates(t *testing.T) {
	root := map[string]any{}

	SetValueAtPath(root, []string{"a", "b", "c"}, "deep")
	val, ok := GetValueAtPath(root, []string{"a", "b", "c"})
	assert.True(t, ok)
	assert.Equal(t, "deep", val)
}

func TestSetValueAtPath_OverwritesNonMap(t *testing.T) {
	root := map[string]any{
		"logging": "string-not-map",
	}

	SetValueAtPath(root, []string{"logging", "level"}, "warn")
	val, ok := GetValueAtPath(root, []string{"logging", "level"})
	assert.True(t, ok)
	assert.Equal(t, "warn", val)
}

func TestSetValueAtPath_SingleKey(t *testing.T) {
	root := map[string]any{}

	SetValueAtPath(root, []string{"defaultAgent"}, "mino")
	assert.Equal(t, "mino", root["defaultAgent"])
}

// --- UnsetValueAtPath tests ---

func TestUnsetValueAtPath_PreserveSiblings(t *testing.T) {
	root := map[string]any{
		"logging": map[string]any{
			"level": "debug",
			"file":  "/tmp/zerepy.log",
		},
	}

	ok := UnsetValueAtPath(root, []string{"logging", "level"})
	assert.True(t, ok)

	_, found := GetValueAtPath(root, []string{"logging", "level"})
	assert.False(t, found)

	val, found := GetValueAtPath(root, []string{"logging", "file"})
	assert.True(t, found)
	assert.Equal(t, "/tmp/zerepy.log", val)
}

func TestUnsetValueAtPath_NotFound(t *testing.T) {
	root := map[string]any{
		"logging": map[string]any{
			"level": "debug",
		},
	}

	ok := UnsetValueAtPath(root, []string{"logging", "nonexistent"})
	assert.False(t, ok)
}

func TestUnsetValueAtPath_MissingIntermediate(t *testing.T) {
	root := map[string]any{}
	ok := UnsetValueAtPath(root, []string{"a", "b", "c"})
	assert.False(t, ok)
}

func TestUnsetValueAtPath_NonMapIntermediate(t *testing.T) {
	root := map[string]any{
		"logging": "string",
	}
	ok := UnsetValueAtPath(root, []string{"logging", "level"})
	assert.False(t, ok)
}

// --- ResolvePaths tests ---

func TestResolvePaths_AllFields(t *testing.T) {
	t.Setenv("ZEREPY_HOME", "")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".zerepy"), paths.Base)
	assert.Equal(t, filepath.Join(home, ".zerepy", "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(home, ".zerepy", "credentials"), paths.Credentials)
	assert.Equal(t, filepath.Join(home, ".zerepy", "agents"), paths.Agents)
	assert.Equal(t, filepath.Join(home, ".zerepy", "logs"), paths.Logs)
	assert.Equal(t, filepath.Join(home, ".zerepy", "data"), paths.Data)
}

func TestResolvePaths_CustomHomeAllFields(t *testing.T) {
	t.Setenv("ZEREPY_HOME", "/tmp/testzp")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/testzp", paths.Base)
	assert.Equal(t, "/tmp/testzp/config.yaml", paths.Config)
	assert.Equal(t, "/tmp/testzp/credentials", paths.Credentials)
	assert.Equal(t, "/tmp/testzp/agents", paths.Agents)
	assert.Equal(t, "/tmp/testzp/logs", paths.Logs)
	assert.Equal(t, "/tmp/testzp/data", paths.Data)
}

func TestEnsureDirs_CreatesAll(t *testing.T) {
	tmpDir := t.TempDir()
	paths := Paths{
		Base:        tmpDir,
		Credentials: filepath.Join(tmpDir, "credentials"),
		Agents:      filepath.Join(tmpDir, "agents"),
		Logs:        filepath.Join(tmpDir, "logs"),
		Data:        filepath.Join(tmpDir, "data"),
	}

	err := paths.EnsureDirs()
	require.NoError(t, err)

	for _, dir := range []string{
		paths.Base, paths.Credentials, paths.Agents, paths.Logs, paths.Data,
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureDirs_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	paths := Paths{
		Base:        tmpDir,
		Credentials: filepath.Join(tmpDir, "credentials"),
		Agents:      filepath.Join(tmpDir, "agents"),
		Logs:        filepath.Join(tmpDir, "logs"),
		Data:        filepath.Join(tmpDir, "data"),
	}

	require.NoError(t, paths.EnsureDirs())
	require.NoError(t, paths.EnsureDirs()) // second call should succeed
}

// --- blockedKeys tests ---

func TestBlockedKeys(t *testing.T) {
	assert.True(t, blockedKeys["__proto__"])
	assert.True(t, blockedKeys["prototype"])
	assert.True(t, blockedKeys["constructor"])
	assert.False(t, blockedKeys["logging"])
	assert.False(t, blockedKeys["defaultAgent"])
}
