package packaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersionNormalization(t *testing.T) {
	testcases := []struct {
		in   string
		want string
	}{
		{"1.0", "1.0"},
		{"v1.0", "1.0"},
		{"  1.0  ", "1.0"},
		{"1.0.0", "1.0.0"},
		{"2!1.0", "2!1.0"},
		{"1.0a1", "1.0a1"},
		{"1.0alpha1", "1.0a1"},
		{"1.0-beta.2", "1.0b2"},
		{"1.0c1", "1.0rc1"},
		{"1.0pre1", "1.0rc1"},
		{"1.0preview4", "1.0rc4"},
		{"1.0rc", "1.0rc0"},
		{"1.0.post1", "1.0.post1"},
		{"1.0-1", "1.0.post1"},
		{"1.0rev3", "1.0.post3"},
		{"1.0.post", "1.0.post0"},
		{"1.0.dev1", "1.0.dev1"},
		{"1.0-dev", "1.0.dev0"},
		{"1.0+ubuntu-1", "1.0+ubuntu.1"},
		{"1.0+ABC.2", "1.0+abc.2"},
		{"1.0A1.post2.dev3", "1.0a1.post2.dev3"},
	}
	for _, tc := range testcases {
		t.Run(tc.in, func(t *testing.T) {
			ver, err := ParseVersion(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ver.String())
		})
	}
}

func TestParseVersionInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"french toast",
		"1.0+",
		"1.0+_",
		"1.0someday",
		"1.0.post1.post2",
		"a1",
		// Numbers beyond int must error, not parse as zero
		"99999999999999999999!1.0",
		"1.0rc99999999999999999999",
		"1.0.post99999999999999999999",
		"1.0.dev99999999999999999999",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseVersion(in)
			assert.Error(t, err)
		})
	}
}

func TestVersionCompare(t *testing.T) {
	// Strictly ascending per PEP 440.
	ordered := []string{
		"0.9",
		"1.0.dev1",
		"1.0.dev2",
		"1.0a1",
		"1.0a2.dev1",
		"1.0a2",
		"1.0b1",
		"1.0rc1",
		"1.0",
		"1.0+local.1",
		"1.0+local.2",
		"1.0.post1.dev1",
		"1.0.post1",
		"1.0.1",
		"1.1",
		"1!0.5",
	}
	versions := make([]Version, len(ordered))
	for i, s := range ordered {
		ver, err := ParseVersion(s)
		require.NoError(t, err, s)
		versions[i] = *ver
	}
	for i := range versions {
		for j := range versions {
			got := versions[i].Compare(versions[j])
			switch {
			case i < j:
				assert.Equal(t, -1, got, "%s < %s", ordered[i], ordered[j])
			case i > j:
				assert.Equal(t, 1, got, "%s > %s", ordered[i], ordered[j])
			default:
				assert.Equal(t, 0, got, "%s == %s", ordered[i], ordered[j])
			}
		}
	}
}

func TestVersionCompareEquivalents(t *testing.T) {
	a, err := ParseVersion("1.0")
	require.NoError(t, err)
	b, err := ParseVersion("1.0.0")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Compare(*b))
}

func TestVersionFlags(t *testing.T) {
	local, err := ParseVersion("1.0+deadbeef")
	require.NoError(t, err)
	assert.True(t, local.IsLocal())
	assert.False(t, local.IsPrerelease())

	pre, err := ParseVersion("1.0rc1")
	require.NoError(t, err)
	assert.False(t, pre.IsLocal())
	assert.True(t, pre.IsPrerelease())

	dev, err := ParseVersion("1.0.dev3")
	require.NoError(t, err)
	assert.True(t, dev.IsPrerelease())
}
