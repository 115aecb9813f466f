package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "deepsampler", configBaseName)
	assert.Equal(t, "deepsampler.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "root", rootFlagName)
	assert.Equal(t, "charset", charsetFlagName)
	assert.Equal(t, "load.parallel", parallelConfigKey)
	assert.Equal(t, "view.plain", plainConfigKey)
	assert.Equal(t, "merged.json", defaultOutput)
	assert.Equal(t, "utf-8", defaultCharset)
	assert.Equal(t, 4, defaultParallel)
	assert.Equal(t, "DEEPSAMPLER", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, defaultOutput, configDefaults[outputFlagName])
	assert.Equal(t, defaultParallel, configDefaults[parallelConfigKey])
	assert.Equal(t, defaultLogFilename, configDefaults[logFilenameKey])
	assert.Equal(t, int(slog.LevelInfo), configDefaults[logLevelKey])
	assert.Equal(t, currentConfigVersion, configDefaults[configVersionKey])
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}

func TestConfigureLogger_WritesToFile(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logPath := filepath.Join(t.TempDir(), "deepsampler.log")
	configureLogger(logPath, true)

	slog.Debug("loaded sample file", "path", "a.json")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "loaded sample file")
	assert.Contains(t, string(data), "path=a.json")
	assert.Same(t, globalLogger, slog.Default())
}
