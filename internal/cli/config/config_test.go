package config_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/eol-converter/internal/cli/config"
	"github.com/stackvity/eol-converter/internal/testutil"
	"github.com/stackvity/eol-converter/pkg/eol"
	"github.com/stackvity/eol-converter/pkg/eol/rewrite"
)

// newTestFlags mirrors the flag set defined on the root command.
func newTestFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.BoolP("lf", "l", false, "")
	fs.BoolP("crlf", "w", false, "")
	fs.BoolP("bom", "b", false, "")
	fs.BoolP("strip-bom", "m", false, "")
	fs.BoolP("recursive", "r", false, "")
	fs.BoolP("delete-backups", "d", false, "")
	fs.BoolP("case-sensitive", "c", false, "")
	fs.StringP("folder", "f", "", "")
	fs.Int("concurrency", eol.DefaultConcurrency, "")
	fs.String("output-format", string(eol.DefaultOutputFormat), "")
	fs.Bool("no-tui", false, "")
	fs.Bool("no-binary-check", false, "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("config", "", "")
	return fs
}

func load(t *testing.T, patterns []string, args ...string) (eol.Options, error) {
	t.Helper()
	fs := newTestFlags()
	require.NoError(t, fs.Parse(args))
	opts, _, err := config.LoadAndValidate("", "test", patterns, fs)
	return opts, err
}

func TestLoadAndValidate_Defaults(t *testing.T) {
	opts, err := load(t, []string{"*.txt"})
	require.NoError(t, err)

	assert.Equal(t, []string{"*.txt"}, opts.Patterns)
	assert.False(t, opts.Recursive)
	assert.False(t, opts.CaseSensitive)
	assert.False(t, opts.CheckBOM)
	assert.False(t, opts.StripBOM)
	assert.Nil(t, opts.Target)
	assert.True(t, opts.DetectBinary)
	assert.True(t, opts.TuiEnabled)
	assert.Equal(t, eol.OutputFormatText, opts.OutputFormat)
	assert.Zero(t, opts.Concurrency)
	require.NotNil(t, opts.Logger)
}

func TestLoadAndValidate_RewriteFlags(t *testing.T) {
	opts, err := load(t, []string{"*.txt"}, "--lf")
	require.NoError(t, err)
	require.NotNil(t, opts.Target)
	assert.Equal(t, rewrite.LF, *opts.Target)

	opts, err = load(t, []string{"*.txt"}, "-w")
	require.NoError(t, err)
	require.NotNil(t, opts.Target)
	assert.Equal(t, rewrite.CRLF, *opts.Target)
}

func TestLoadAndValidate_LFAndCRLFConflict(t *testing.T) {
	_, err := load(t, []string{"*.txt"}, "--lf", "--crlf")
	require.Error(t, err)
	assert.ErrorIs(t, err, eol.ErrConfigValidation)
}

func TestLoadAndValidate_StripImpliesCheck(t *testing.T) {
	opts, err := load(t, []string{"*.txt"}, "--strip-bom")
	require.NoError(t, err)
	assert.True(t, opts.StripBOM)
	assert.True(t, opts.CheckBOM, "stripping requires detection")
	assert.True(t, opts.ScanConfig().CheckBOM)
}

func TestLoadAndValidate_DeleteBackupsConflicts(t *testing.T) {
	for _, args := range [][]string{
		{"--delete-backups", "--lf"},
		{"--delete-backups", "--crlf"},
		{"--delete-backups", "--strip-bom"},
	} {
		_, err := load(t, []string{"*.txt"}, args...)
		assert.ErrorIs(t, err, eol.ErrConfigValidation, "args: %v", args)
	}

	opts, err := load(t, []string{"*.txt"}, "--delete-backups")
	require.NoError(t, err)
	assert.True(t, opts.DeleteBackups)
}

func TestLoadAndValidate_NoPatterns(t *testing.T) {
	_, err := load(t, nil)
	assert.ErrorIs(t, err, eol.ErrConfigValidation)
}

func TestLoadAndValidate_InvalidOutputFormat(t *testing.T) {
	_, err := load(t, []string{"*.txt"}, "--output-format", "xml")
	assert.ErrorIs(t, err, eol.ErrConfigValidation)
}

func TestLoadAndValidate_NegativeConcurrency(t *testing.T) {
	_, err := load(t, []string{"*.txt"}, "--concurrency", "-2")
	assert.ErrorIs(t, err, eol.ErrConfigValidation)
}

func TestLoadAndValidate_MissingFolder(t *testing.T) {
	_, err := load(t, []string{"*.txt"}, "--folder", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, eol.ErrConfigValidation)
}

func TestLoadAndValidate_VerboseDisablesTui(t *testing.T) {
	opts, err := load(t, []string{"*.txt"}, "--verbose")
	require.NoError(t, err)
	assert.True(t, opts.Verbose)
	assert.False(t, opts.TuiEnabled)
}

func TestLoadAndValidate_NoBinaryCheck(t *testing.T) {
	opts, err := load(t, []string{"*.txt"}, "--no-binary-check")
	require.NoError(t, err)
	assert.False(t, opts.DetectBinary)
}

func TestLoadAndValidate_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "eol-converter.yaml")
	testutil.CreateDummyFile(t, cfgPath, "recursive: true\noutputFormat: json\n")

	fs := newTestFlags()
	require.NoError(t, fs.Parse(nil))
	opts, _, err := config.LoadAndValidate(cfgPath, "test", []string{"*.txt"}, fs)
	require.NoError(t, err)

	assert.True(t, opts.Recursive)
	assert.Equal(t, eol.OutputFormatJSON, opts.OutputFormat)
	assert.Equal(t, cfgPath, opts.ConfigFilePath)
}

func TestLoadAndValidate_FlagOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "eol-converter.yaml")
	testutil.CreateDummyFile(t, cfgPath, "outputFormat: json\n")

	fs := newTestFlags()
	require.NoError(t, fs.Parse([]string{"--output-format", "yaml"}))
	opts, _, err := config.LoadAndValidate(cfgPath, "test", []string{"*.txt"}, fs)
	require.NoError(t, err)
	assert.Equal(t, eol.OutputFormatYAML, opts.OutputFormat)
}

func TestLoadAndValidate_EnvOverride(t *testing.T) {
	t.Setenv("EOL_CONVERTER_RECURSIVE", "true")

	opts, err := load(t, []string{"*.txt"})
	require.NoError(t, err)
	assert.True(t, opts.Recursive)
}

func TestLoadAndValidate_BrokenConfigFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "broken.yaml")
	testutil.CreateDummyFile(t, cfgPath, "recursive: [unclosed\n")

	fs := newTestFlags()
	require.NoError(t, fs.Parse(nil))
	_, _, err := config.LoadAndValidate(cfgPath, "test", []string{"*.txt"}, fs)
	assert.Error(t, err)
}
