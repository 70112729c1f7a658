// Package config loads and validates the tool's configuration from
// defaults, an optional config file, environment variables, and flags, in
// ascending priority order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackvity/eol-converter/pkg/eol"
	"github.com/stackvity/eol-converter/pkg/eol/rewrite"
)

const (
	EnvPrefix         = "EOL_CONVERTER"
	DefaultConfigName = "eol-converter"
)

// LoadAndValidate loads configuration from all sources (defaults, file,
// env, flags), validates the merged result, derives the rewrite target and
// effective TUI state, and sets up the final logger. The returned handler
// inside Options is the same backend the returned logger writes to.
func LoadAndValidate(cfgFile, appVersion string, patterns []string, flags *pflag.FlagSet) (eol.Options, *slog.Logger, error) {
	var opts eol.Options
	v := viper.New()

	// Basic logger for errors raised before the verbose flag is resolved.
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Flag conflicts are rejected before any file or disk access.
	if flags.Changed("lf") && flags.Changed("crlf") {
		err := fmt.Errorf("%w: --lf and --crlf are mutually exclusive", eol.ErrConfigValidation)
		tempLogger.Error(err.Error())
		return opts, tempLogger, err
	}

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			tempLogger.Error("Failed to get user home directory", slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("failed to get user home directory: %w", err)
		}
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
		v.AddConfigPath(filepath.Join(home, "."+DefaultConfigName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags.")
		} else {
			used := cfgFile
			if used == "" {
				used = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", used), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error reading config file '%s': %w", used, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
		tempLogger.Debug("Using configuration file", slog.String("path", opts.ConfigFilePath))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Flags take highest priority. Keys match the flag names; mapstructure
	// aliases map them onto the Options fields.
	flagKeys := []string{
		"folder", "recursive", "case-sensitive", "bom", "strip-bom",
		"delete-backups", "concurrency", "output-format", "verbose",
	}
	for _, key := range flagKeys {
		if flag := flags.Lookup(key); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				tempLogger.Error("Error binding flag", slog.String("flag", key), slog.Any("error", err))
				return opts, tempLogger, fmt.Errorf("error binding flag '--%s': %w", key, err)
			}
		} else {
			tempLogger.Debug("Flag lookup failed during binding", slog.String("flag", key))
		}
	}
	v.RegisterAlias("caseSensitive", "case-sensitive")
	v.RegisterAlias("stripBom", "strip-bom")
	v.RegisterAlias("deleteBackups", "delete-backups")
	v.RegisterAlias("outputFormat", "output-format")

	opts.AppVersion = appVersion
	if err := v.Unmarshal(&opts); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.Any("error", err))
		return opts, tempLogger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}
	opts.Patterns = patterns

	// Boolean flags always win when explicitly set.
	if flags.Changed("verbose") {
		opts.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("recursive") {
		opts.Recursive, _ = flags.GetBool("recursive")
	}
	if flags.Changed("case-sensitive") {
		opts.CaseSensitive, _ = flags.GetBool("case-sensitive")
	}
	if flags.Changed("bom") {
		opts.CheckBOM, _ = flags.GetBool("bom")
	}
	if flags.Changed("strip-bom") {
		opts.StripBOM, _ = flags.GetBool("strip-bom")
	}
	if flags.Changed("delete-backups") {
		opts.DeleteBackups, _ = flags.GetBool("delete-backups")
	}
	if flags.Changed("no-tui") {
		if noTui, _ := flags.GetBool("no-tui"); noTui {
			opts.TuiEnabled = false
		}
	}
	if flags.Changed("no-binary-check") {
		if noCheck, _ := flags.GetBool("no-binary-check"); noCheck {
			opts.DetectBinary = false
		}
	}

	// The rewrite target comes only from flags; config files cannot request
	// a destructive rewrite on their own.
	if lf, _ := flags.GetBool("lf"); lf {
		target := rewrite.LF
		opts.Target = &target
	} else if crlf, _ := flags.GetBool("crlf"); crlf {
		target := rewrite.CRLF
		opts.Target = &target
	}

	// Stripping needs detection; imply it rather than erroring.
	if opts.StripBOM {
		opts.CheckBOM = true
	}

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	opts.Logger = logHandler

	if err := validateAndDerive(&opts, logger, flags); err != nil {
		return opts, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", opts.ConfigFilePath),
		slog.Bool("verbose", opts.Verbose),
		slog.String("logLevel", logLevel.String()),
	)

	return opts, logger, nil
}

// setDefaults establishes the default values for configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("folder", "")
	v.SetDefault("recursive", false)
	v.SetDefault("caseSensitive", false)
	v.SetDefault("bom", false)
	v.SetDefault("stripBom", false)
	v.SetDefault("deleteBackups", false)
	v.SetDefault("detectBinary", eol.DefaultDetectBinary)
	v.SetDefault("concurrency", eol.DefaultConcurrency)
	v.SetDefault("outputFormat", string(eol.DefaultOutputFormat))
	v.SetDefault("verbose", eol.DefaultVerbose)
	v.SetDefault("tui", eol.DefaultTuiEnabled)
}

func isValidEnumValue[T ~string](value T, allowed []T) bool {
	return slices.Contains(allowed, value)
}

// validateAndDerive performs semantic validation on the populated Options
// and settles the derived fields. It wraps errors with
// eol.ErrConfigValidation.
func validateAndDerive(opts *eol.Options, logger *slog.Logger, flags *pflag.FlagSet) error {
	if len(opts.Patterns) == 0 {
		err := fmt.Errorf("%w: at least one file pattern argument is required", eol.ErrConfigValidation)
		logger.Error(err.Error())
		return err
	}

	if opts.Folder != "" {
		info, err := os.Stat(opts.Folder)
		if err != nil {
			if os.IsNotExist(err) {
				err = fmt.Errorf("%w: folder '%s' does not exist", eol.ErrConfigValidation, opts.Folder)
			} else {
				err = fmt.Errorf("%w: cannot access folder '%s': %w", eol.ErrConfigValidation, opts.Folder, err)
			}
			logger.Error(err.Error(), slog.String("key", "folder"))
			return err
		}
		if !info.IsDir() {
			err = fmt.Errorf("%w: folder '%s' is not a directory", eol.ErrConfigValidation, opts.Folder)
			logger.Error(err.Error(), slog.String("key", "folder"))
			return err
		}
	}

	allowedFormats := []eol.OutputFormat{eol.OutputFormatText, eol.OutputFormatJSON, eol.OutputFormatYAML}
	if !isValidEnumValue(opts.OutputFormat, allowedFormats) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'outputFormat' (flag --output-format). Allowed: %v",
			eol.ErrConfigValidation, opts.OutputFormat, allowedFormats)
		logger.Error(err.Error(), slog.String("key", "outputFormat"), slog.String("value", string(opts.OutputFormat)))
		return err
	}

	if opts.Concurrency < 0 {
		err := fmt.Errorf("%w: invalid value '%d' for key 'concurrency' (flag --concurrency). Must be >= 0",
			eol.ErrConfigValidation, opts.Concurrency)
		logger.Error(err.Error(), slog.String("key", "concurrency"), slog.Int("value", opts.Concurrency))
		return err
	}

	// Deleting backups together with an operation that creates them would
	// destroy the recovery copy the same run just wrote.
	if opts.DeleteBackups && (opts.HasRewrite() || opts.StripBOM) {
		err := fmt.Errorf("%w: --delete-backups cannot be combined with --lf, --crlf, or --strip-bom", eol.ErrConfigValidation)
		logger.Error(err.Error())
		return err
	}

	// Verbose output and the live TUI share the terminal; verbose wins.
	if opts.Verbose {
		if opts.TuiEnabled && !flags.Changed("no-tui") {
			logger.Debug("Verbose mode enabled, TUI explicitly disabled")
		}
		opts.TuiEnabled = false
	}

	logger.Debug("Final derived settings validated",
		slog.Int("concurrency", opts.Concurrency),
		slog.Bool("checkBom", opts.CheckBOM),
		slog.Bool("stripBom", opts.StripBOM),
		slog.Bool("rewrite", opts.HasRewrite()),
		slog.Bool("tuiEnabledEffective", opts.TuiEnabled),
	)

	return nil
}
