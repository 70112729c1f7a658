package eol_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/eol-converter/internal/testutil"
	"github.com/stackvity/eol-converter/pkg/eol"
	"github.com/stackvity/eol-converter/pkg/eol/bom"
	"github.com/stackvity/eol-converter/pkg/eol/rewrite"
)

func TestAnalyze_Counts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mixed.txt")
	testutil.CreateDummyFile(t, path, "a\r\nb\nc\r\n")

	a := eol.Analyze(path, eol.ScanConfig{DetectBinary: true})

	assert.Equal(t, path, a.Path)
	assert.Equal(t, 1, a.LFCount)
	assert.Equal(t, 2, a.CRLFCount)
	assert.True(t, a.HasMixedLineEndings())
	assert.Empty(t, a.Error)
	assert.False(t, a.Binary)
}

func TestAnalyze_BOMFieldAbsentWhenNotChecked(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.txt")
	testutil.CreateDummyFileBytes(t, path, append([]byte{0xEF, 0xBB, 0xBF}, []byte("hi\n")...))

	unchecked := eol.Analyze(path, eol.ScanConfig{})
	assert.Nil(t, unchecked.BOM, "BOM field must be absent when detection is off")

	checked := eol.Analyze(path, eol.ScanConfig{CheckBOM: true})
	require.NotNil(t, checked.BOM)
	assert.Equal(t, bom.UTF8, *checked.BOM)
	assert.True(t, checked.HasBOM())
}

func TestAnalyze_BOMCheckedButAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.txt")
	testutil.CreateDummyFile(t, path, "hello\n")

	a := eol.Analyze(path, eol.ScanConfig{CheckBOM: true})

	require.NotNil(t, a.BOM, "checked-and-absent must still carry a BOM field")
	assert.Equal(t, bom.None, *a.BOM)
	assert.False(t, a.HasBOM())
}

func TestAnalyze_BinarySkip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.dat")
	testutil.CreateDummyFileBytes(t, path, []byte{'a', 0x00, 'b', '\n'})

	a := eol.Analyze(path, eol.ScanConfig{DetectBinary: true})
	assert.True(t, a.Binary)
	assert.Empty(t, a.Error)
	assert.False(t, a.Mutable())
	assert.Equal(t, "binary", a.Classification())

	// With the guard disabled the same file is counted like any other.
	a = eol.Analyze(path, eol.ScanConfig{DetectBinary: false})
	assert.False(t, a.Binary)
	assert.Equal(t, 1, a.LFCount)
}

func TestAnalyze_MissingFileRecordsError(t *testing.T) {
	a := eol.Analyze(filepath.Join(t.TempDir(), "missing.txt"), eol.ScanConfig{DetectBinary: true})
	assert.NotEmpty(t, a.Error)
	assert.False(t, a.Mutable())
	assert.Equal(t, "error", a.Classification())
}

func TestAnalyzeAll_PreservesInputOrder(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 8)
	for i := range paths {
		paths[i] = filepath.Join(dir, string(rune('a'+i))+".txt")
		testutil.CreateDummyFile(t, paths[i], "line\n")
	}

	results := eol.AnalyzeAll(paths, eol.ScanConfig{}, 4)
	require.Len(t, results, len(paths))
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
	}
}

func TestRewrite_NilTargetIsConfigError(t *testing.T) {
	_, err := eol.Rewrite(nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, eol.ErrConfigValidation)
	assert.ErrorIs(t, err, eol.ErrNoRewriteTarget)
}

func TestRewrite_BatchAndIdempotence(t *testing.T) {
	dir := t.TempDir()
	mixed := filepath.Join(dir, "mixed.txt")
	lfOnly := filepath.Join(dir, "lf.txt")
	testutil.CreateDummyFile(t, mixed, "a\r\nb\n")
	testutil.CreateDummyFile(t, lfOnly, "a\nb\n")

	results := eol.AnalyzeAll([]string{mixed, lfOnly}, eol.ScanConfig{}, 1)
	target := rewrite.LF
	outcomes, err := eol.Rewrite(results, &target)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.True(t, outcomes[0].Rewritten)
	assert.False(t, outcomes[1].Rewritten, "file already in the target kind is left alone")
	assert.Equal(t, "a\nb\n", testutil.ReadFileString(t, mixed))

	// A rebuilt file gets its backup; an untouched one does not.
	assert.FileExists(t, rewrite.BackupPath(mixed))
	assert.NoFileExists(t, rewrite.BackupPath(lfOnly))

	// A second pass over the now-uniform files rewrites nothing.
	results = eol.AnalyzeAll([]string{mixed, lfOnly}, eol.ScanConfig{}, 1)
	outcomes, err = eol.Rewrite(results, &target)
	require.NoError(t, err)
	assert.False(t, outcomes[0].Rewritten)
	assert.False(t, outcomes[1].Rewritten)
}

func TestRewrite_SkipsBinaryAndErrored(t *testing.T) {
	dir := t.TempDir()
	blob := filepath.Join(dir, "blob.dat")
	testutil.CreateDummyFileBytes(t, blob, []byte{0x00, '\r', '\n'})

	results := eol.AnalyzeAll(
		[]string{blob, filepath.Join(dir, "missing.txt")},
		eol.ScanConfig{DetectBinary: true}, 1)

	target := rewrite.LF
	outcomes, err := eol.Rewrite(results, &target)
	require.NoError(t, err, "skipped files are not failures")
	assert.False(t, outcomes[0].Rewritten)
	assert.False(t, outcomes[1].Rewritten)
	assert.Empty(t, outcomes[0].Error)
	assert.Empty(t, outcomes[1].Error)
}

func TestStripBOM_RequiresCheckedBatch(t *testing.T) {
	_, err := eol.StripBOM(nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, eol.ErrConfigValidation)
	assert.ErrorIs(t, err, eol.ErrBOMNotChecked)
}

func TestStripBOM_Batch(t *testing.T) {
	dir := t.TempDir()
	withBOM := filepath.Join(dir, "bom.txt")
	plain := filepath.Join(dir, "plain.txt")
	testutil.CreateDummyFileBytes(t, withBOM, append([]byte{0xEF, 0xBB, 0xBF}, []byte("hi\n")...))
	testutil.CreateDummyFile(t, plain, "hi\n")

	results := eol.AnalyzeAll([]string{withBOM, plain}, eol.ScanConfig{CheckBOM: true}, 1)
	outcomes, err := eol.StripBOM(results, true)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.True(t, outcomes[0].Removed)
	require.NotNil(t, outcomes[0].BOM)
	assert.Equal(t, bom.UTF8, *outcomes[0].BOM)
	assert.Equal(t, "hi\n", testutil.ReadFileString(t, withBOM))
	assert.FileExists(t, rewrite.BackupPath(withBOM))

	assert.False(t, outcomes[1].Removed)
	assert.Nil(t, outcomes[1].BOM)
	assert.NoFileExists(t, rewrite.BackupPath(plain))
}

func TestDeleteBackups(t *testing.T) {
	dir := t.TempDir()
	backed := filepath.Join(dir, "backed.txt")
	bare := filepath.Join(dir, "bare.txt")
	testutil.CreateDummyFile(t, backed, "a\n")
	testutil.CreateDummyFile(t, rewrite.BackupPath(backed), "old\n")
	testutil.CreateDummyFile(t, bare, "b\n")

	results := eol.AnalyzeAll([]string{backed, bare}, eol.ScanConfig{}, 1)
	outcomes, err := eol.DeleteBackups(results)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.True(t, outcomes[0].Deleted)
	assert.NoFileExists(t, rewrite.BackupPath(backed))
	assert.False(t, outcomes[1].Deleted)
}
