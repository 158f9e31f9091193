package packaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWheelFilename(t *testing.T) {
	info, err := ParseWheelFilename("sampleproject-3.0.0-py3-none-any.whl")
	require.NoError(t, err)
	assert.Equal(t, "sampleproject", info.Distribution)
	assert.Equal(t, "3.0.0", info.Version.String())
	assert.Empty(t, info.Build)
	assert.Equal(t, "py3-none-any", info.CompatibilityTag())

	info, err = ParseWheelFilename("cryptography-41.0.1-1abc-cp311-cp311-manylinux_2_28_x86_64.whl")
	require.NoError(t, err)
	assert.Equal(t, "1abc", info.Build)
	assert.Equal(t, "cp311", info.PythonTag)
	assert.Equal(t, "manylinux_2_28_x86_64", info.PlatformTag)

	for _, bad := range []string{
		"sampleproject-3.0.0.whl",
		"sampleproject-3.0.0-py3-none-any.tar.gz",
		"sampleproject-py3-none-any.whl",
		"sampleproject-not.a.version-py3-none-any.whl",
		`sampleproject-3.0.0-py3-none-any"><b>.whl`,
	} {
		_, err := ParseWheelFilename(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseSdistFilename(t *testing.T) {
	info, err := ParseSdistFilename("sampleproject-3.0.0.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "sampleproject", info.Distribution)
	assert.Equal(t, "3.0.0", info.Version.String())

	info, err = ParseSdistFilename("my_pkg-1.0rc1.zip")
	require.NoError(t, err)
	assert.Equal(t, "my_pkg", info.Distribution)
	assert.Equal(t, "1.0rc1", info.Version.String())

	for _, bad := range []string{
		"sampleproject.tar.gz",
		"sampleproject-3.0.0.tar.bz2",
		"sampleproject-3.0.0.exe",
		"-3.0.0.tar.gz",
	} {
		_, err := ParseSdistFilename(bad)
		assert.Error(t, err, bad)
	}
}

func TestCheckFilename(t *testing.T) {
	ver, err := ParseVersion("3.0.0")
	require.NoError(t, err)

	t.Run("matching wheel", func(t *testing.T) {
		err := CheckFilename("Sample_Project-3.0.0-py3-none-any.whl", FileTypeWheel, "sample-project", *ver)
		assert.NoError(t, err)
	})

	t.Run("matching sdist", func(t *testing.T) {
		err := CheckFilename("sample_project-3.0.0.tar.gz", FileTypeSdist, "Sample.Project", *ver)
		assert.NoError(t, err)
	})

	t.Run("wrong project", func(t *testing.T) {
		err := CheckFilename("otherproject-3.0.0.tar.gz", FileTypeSdist, "sample-project", *ver)
		assert.Error(t, err)
	})

	t.Run("wrong version", func(t *testing.T) {
		err := CheckFilename("sample_project-3.0.1.tar.gz", FileTypeSdist, "sample-project", *ver)
		assert.Error(t, err)
	})

	t.Run("wrong extension for filetype", func(t *testing.T) {
		err := CheckFilename("sample_project-3.0.0.tar.gz", FileTypeWheel, "sample-project", *ver)
		assert.Error(t, err)
	})

	t.Run("path separators rejected", func(t *testing.T) {
		err := CheckFilename("../sample_project-3.0.0.tar.gz", FileTypeSdist, "sample-project", *ver)
		assert.Error(t, err)
	})

	t.Run("markup characters rejected", func(t *testing.T) {
		err := CheckFilename(`sample_project-3.0.0-py3-none-any"><script>x<.whl`, FileTypeWheel, "sample-project", *ver)
		assert.Error(t, err)

		err = CheckFilename(`sample_project-3.0.0<x>.tar.gz`, FileTypeSdist, "sample-project", *ver)
		assert.Error(t, err)
	})
}
