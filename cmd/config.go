package cmd

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "deepsampler"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."
	envPrefix        = "DEEPSAMPLER"
)

// Flags and the config keys they feed. Persistent root flags use their name as key.
const (
	outputFlagName   = "output"
	rootFlagName     = "root"
	charsetFlagName  = "charset"
	verboseFlagName  = "verbose"
	parallelFlagName = "parallel"
	plainFlagName    = "plain"

	parallelConfigKey = "load.parallel"
	plainConfigKey    = "view.plain"

	defaultOutput   = "merged.json"
	defaultRoot     = ""
	defaultCharset  = "utf-8"
	defaultParallel = 4
	defaultPlain    = false
)

const (
	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename = ".deepsampler.log"
	defaultLogVerbose  = false
)

// configDefaults is what `deepsampler init` writes when nothing else is configured.
var configDefaults = map[string]any{
	configVersionKey:  currentConfigVersion,
	outputFlagName:    defaultOutput,
	rootFlagName:      defaultRoot,
	charsetFlagName:   defaultCharset,
	parallelConfigKey: defaultParallel,
	plainConfigKey:    defaultPlain,

	logFilenameKey:   defaultLogFilename,
	logLevelKey:      int(slog.LevelInfo),
	logVerboseKey:    defaultLogVerbose,
	logMaxSizeKey:    10,
	logMaxBackupsKey: 3,
	logMaxAgeKey:     28,
	logCompressKey:   true,
}

var slogLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	for key, value := range configDefaults {
		viper.SetDefault(key, value)
	}

	err := viper.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		slog.Debug("config file not read", "path", viper.ConfigFileUsed(), "error", err)
	}
}

// parseSlogLevel accepts level names and numeric slog levels (-4 is debug).
func parseSlogLevel(value string, fallback slog.Level) slog.Level {
	name := strings.ToLower(strings.TrimSpace(value))
	if name == "" {
		return fallback
	}

	if level, ok := slogLevels[name]; ok {
		return level
	}

	if n, err := strconv.Atoi(name); err == nil {
		return slog.Level(n)
	}

	return fallback
}

func newLogWriter(logPath string) io.Writer {
	return &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}
}

// configureLogger points the default slog logger at a rotating log file.
//
// It logs at the configured level, or at Debug when verbose is set.
func configureLogger(logPath string, verbose bool) {
	for _, candidate := range []string{logPath, viper.GetString(logFilenameKey), defaultLogFilename} {
		if strings.TrimSpace(candidate) != "" {
			logPath = candidate
			break
		}
	}

	level := slog.LevelDebug
	if !verbose {
		level = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	globalLogger = slog.New(slog.NewTextHandler(newLogWriter(logPath), &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}))
	slog.SetDefault(globalLogger)
}
